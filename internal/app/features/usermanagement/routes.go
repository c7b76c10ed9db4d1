// internal/app/features/usermanagement/routes.go
package usermanagement

import (
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted under /api/users/management. Every
// route requires the administrator.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireAdmin)
	r.Post("/create-user", h.Create)
	r.Put("/update-user/{userId}", h.Update)
	r.Patch("/change-status/{userId}", h.ToggleStatus)
	r.Get("/all-user", h.List)
	r.Get("/dashboard/stats", h.Stats)
	r.Delete("/delete/{userId}", h.Delete)
	r.Get("/audit-log", h.AuditLog)
	return r
}
