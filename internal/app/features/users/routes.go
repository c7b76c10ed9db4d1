// internal/app/features/users/routes.go
package users

import (
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted under /api/users.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup/request-otp", h.RequestOTP)
	r.Post("/verify-otp", h.VerifyOTP)
	r.Post("/resend-otp", h.ResendOTP)
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.With(am.RequireUser).Put("/update/profile", h.UpdateProfile)
	return r
}
