// internal/app/features/admin/routes.go
package admin

import (
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted under /api/admin.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)
	r.With(am.RequireAdmin).Put("/profile-image", h.UpdateProfile)
	return r
}
