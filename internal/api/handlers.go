package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/outliner/internal/apperr"
	"github.com/starford/outliner/internal/index"
	"github.com/starford/outliner/internal/kanban"
	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/parser"
	"github.com/starford/outliner/internal/plot"
	"github.com/starford/outliner/internal/query"
	"github.com/starford/outliner/internal/workspace"
)

// Handler holds API route handlers.
type Handler struct {
	svc *workspace.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *workspace.Service) *Handler {
	return &Handler{svc: svc}
}

// pageName extracts the page name from the URL. Hierarchical names arrive
// with encoded slashes (project%2Falpha).
func pageName(r *http.Request) string {
	return pathParam(r, "name")
}

// pathParam returns a decoded route parameter. chi matches on the raw path
// when it contains escapes such as %2F.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListPages handles GET /api/pages and GET /api/journals.
func (h *Handler) ListPages(kind models.PageKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, PageListResponse{Pages: h.svc.Pages(r.Context(), kind)})
	}
}

// GetPage handles GET /api/pages/{name}. With ?format=html the rendered
// page is returned as an HTML fragment.
func (h *Handler) GetPage(kind models.PageKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := models.PageID{Name: pageName(r), Kind: kind}
		if r.URL.Query().Get("format") == "html" {
			html, err := h.svc.PageHTML(r.Context(), id)
			if err != nil {
				writeError(w, "render page", err)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(html))
			return
		}
		page, err := h.svc.Page(r.Context(), id)
		if err != nil {
			writeError(w, "get page", err)
			return
		}
		w.Header().Set("ETag", `"`+page.Checksum+`"`)
		writeJSON(w, http.StatusOK, page)
	}
}

// PutPage handles PUT /api/pages/{name} with optimistic concurrency via
// the If-Match header.
func (h *Handler) PutPage(kind models.PageKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WritePageRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		id := models.PageID{Name: pageName(r), Kind: kind}
		page, err := h.svc.WritePage(r.Context(), id, req.Content, ifMatch(r))
		if err != nil {
			writeError(w, "write page", err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// ifMatch strips surrounding quotes (standard ETag format).
func ifMatch(r *http.Request) string {
	return strings.Trim(r.Header.Get("If-Match"), `"`)
}

// PutBlock handles PUT /api/pages/{name}/blocks/{index}.
func (h *Handler) PutBlock(kind models.PageKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("block index must be an integer"))
			return
		}
		var req UpdateBlockRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		id := models.PageID{Name: pageName(r), Kind: kind}
		update := parser.BlockUpdate{Index: idx, Markdown: req.Markdown}
		page, err := h.svc.UpdateBlock(r.Context(), id, update, ifMatch(r))
		if err != nil {
			writeError(w, "update block", err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// DeletePage handles DELETE /api/pages/{name}.
func (h *Handler) DeletePage(kind models.PageKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := models.PageID{Name: pageName(r), Kind: kind}
		if err := h.svc.DeletePage(r.Context(), id); err != nil {
			writeError(w, "delete page", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RenamePage handles POST /api/pages/{name}/rename.
func (h *Handler) RenamePage(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	changed, err := h.svc.Rename(r.Context(), pageName(r), req.NewName)
	if err != nil {
		writeError(w, "rename page", err)
		return
	}
	writeJSON(w, http.StatusOK, RenameResponse{Changed: changed})
}

// ListTemplates handles GET /api/templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls := h.svc.Templates(r.Context())
	if tpls == nil {
		tpls = []index.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": tpls})
}

// InsertTemplate handles POST /api/templates/insert.
func (h *Handler) InsertTemplate(w http.ResponseWriter, r *http.Request) {
	var req InsertTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Template == "" || req.Target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("template and target are required"))
		return
	}
	target := models.PageID{Name: req.Target, Kind: models.ParsePageKind(req.Kind)}
	page, err := h.svc.InsertTemplate(r.Context(), req.Template, target, req.BlockIndex)
	if err != nil {
		writeError(w, "insert template", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Backlinks handles GET /api/backlinks/{name}.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"backlinks": h.svc.Backlinks(r.Context(), pageName(r)),
	})
}

// Overview handles GET /api/overview/pages.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Overview(r.Context()))
}

// JournalOverview handles GET /api/overview/journals.
func (h *Handler) JournalOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.JournalOverview(r.Context()))
}

// PropertyKeys handles GET /api/properties.
func (h *Handler) PropertyKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"keys": h.svc.PropertyKeys(r.Context())})
}

// PropertyValues handles GET /api/properties/{key}.
func (h *Handler) PropertyValues(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "values": h.svc.PropertyValues(r.Context(), key)})
}

// Todos handles GET /api/todos?tag=&state=todo|done.
func (h *Handler) Todos(w http.ResponseWriter, r *http.Request) {
	state := index.Todo
	if r.URL.Query().Get("state") == index.Done.String() {
		state = index.Done
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"todos": h.svc.Todos(r.Context(), r.URL.Query().Get("tag"), state),
	})
}

// Search handles GET /api/search. mode=fulltext queries the snapshot store,
// everything else scans the raw lines of the live index.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	if r.URL.Query().Get("mode") == "fulltext" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		hits, err := h.svc.FullTextSearch(r.Context(), q, limit)
		if err != nil {
			writeError(w, "search", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": hits})
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Search(r.Context(), q))
}

// Kanban handles GET /api/kanban?data=<json board request>.
func (h *Handler) Kanban(w http.ResponseWriter, r *http.Request) {
	var req kanban.Request
	if err := json.Unmarshal([]byte(r.URL.Query().Get("data")), &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid board data"))
		return
	}
	if req.ColumnKey == "" || len(req.ColumnValues) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("columnKey and columnValues are required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Kanban(r.Context(), req))
}

// Plot handles GET /api/plot and renders an SVG line chart.
func (h *Handler) Plot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, errW := strconv.Atoi(q.Get(query.ParamWidth))
	height, errH := strconv.Atoi(q.Get(query.ParamHeight))
	if errW != nil || errH != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("width and height must be integers"))
		return
	}
	from, to, err := plot.Dates(q.Get(query.ParamStartingAt), q.Get(query.ParamEndingAt))
	if err != nil {
		writeError(w, "plot", err)
		return
	}
	svg, err := h.svc.Plot(r.Context(), workspace.PlotRequest{
		Label:       q.Get(query.ParamLabel),
		PropertyKey: q.Get(query.ParamPropertyKey),
		Caption:     q.Get(query.ParamCaption),
		Width:       width,
		Height:      height,
		From:        from,
		To:          to,
	})
	if err != nil {
		writeError(w, "plot", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "max-age=60")
	_, _ = w.Write([]byte(svg))
}

// Query handles POST /api/query and renders one query payload.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, "query", apperr.ErrInvalid)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Query(r.Context(), req.Query))
}
