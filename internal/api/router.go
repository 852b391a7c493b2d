package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/obweb/internal/objectservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *objectservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/objects", func(r chi.Router) {
		r.Get("/", h.ListObjects)
		r.Route("/{token}", func(r chi.Router) {
			r.Get("/", h.GetObject)
			r.Get("/wood", h.GetWood)
			r.Get("/lineage", h.Lineage)
			r.Get("/backlinks", h.Backlinks)
			r.Put("/short_name", h.SetShortName)
		})
	})

	r.Get("/names", h.Names)
	r.Get("/names/{name}", h.LookupName)
	r.Get("/search", h.Search)
	r.Get("/stats", h.Stats)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
