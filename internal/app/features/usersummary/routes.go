// internal/app/features/usersummary/routes.go
package usersummary

import (
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted under /api/user.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.With(am.RequireUser).Get("/summary", h.Summary)
	return r
}
