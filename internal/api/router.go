package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// Public routes are always open; the admin routes (build report, rebuild)
// and the SSE endpoint sit behind AuthMiddleware when authEnabled is true.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Posts.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/*", h.GetPost)
	r.Get("/home", h.Home)

	// Projects.
	r.Get("/projects", h.Projects)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		r.Get("/build", h.BuildReport)
		r.Post("/rebuild", h.Rebuild)

		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
