// internal/app/features/crisiscalls/routes.go
package crisiscalls

import (
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted under /api/crisis-calls.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.With(am.RequireUser).Post("/create", h.Create)
	r.Get("/summary", h.Summary)
	return r
}
