package api

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/starford/outliner/internal/markdown"
	"github.com/starford/outliner/internal/query"
)

const maxUploadBytes = 50 << 20 // 50 MB

// ServeAsset handles GET /api/assets/{name} and GET /assets/{name}.
func (h *Handler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	data, err := h.svc.Asset(r.Context(), name)
	if err != nil {
		writeError(w, "serve asset", err)
		return
	}
	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	_, _ = w.Write(data)
}

// UploadAsset handles POST /api/assets (multipart/form-data, field "file").
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if err := h.svc.UploadAsset(r.Context(), header.Filename, data); err != nil {
		writeError(w, "upload asset", err)
		return
	}

	writeJSON(w, http.StatusCreated, AssetUploadResponse{
		Filename: header.Filename,
		Size:     int64(len(data)),
		URL:      markdown.MediaPath(header.Filename),
		Markdown: query.AssetMarkup(header.Filename),
	})
}
