package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/workspace"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *workspace.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Pages and journals share their routes.
	for prefix, kind := range map[string]models.PageKind{"/pages": models.UserPage, "/journals": models.JournalPage} {
		r.Route(prefix, func(r chi.Router) {
			r.Get("/", h.ListPages(kind))
			r.Get("/{name}", h.GetPage(kind))
			r.Put("/{name}", h.PutPage(kind))
			r.Delete("/{name}", h.DeletePage(kind))
			r.Put("/{name}/blocks/{index}", h.PutBlock(kind))
			if kind == models.UserPage {
				r.Post("/{name}/rename", h.RenamePage)
			}
		})
	}

	// Templates.
	r.Get("/templates", h.ListTemplates)
	r.Post("/templates/insert", h.InsertTemplate)

	// Built-in pages.
	r.Get("/overview/pages", h.Overview)
	r.Get("/overview/journals", h.JournalOverview)

	// Indexes and queries.
	r.Get("/backlinks/{name}", h.Backlinks)
	r.Get("/todos", h.Todos)
	r.Get("/properties", h.PropertyKeys)
	r.Get("/properties/{key}", h.PropertyValues)
	r.Get("/search", h.Search)
	r.Get("/kanban", h.Kanban)
	r.Get("/plot", h.Plot)
	r.Get("/plot/", h.Plot)
	r.Post("/query", h.Query)

	// Assets.
	r.Get("/assets/{name}", h.ServeAsset)
	r.Post("/assets", h.UploadAsset)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
