// internal/app/features/usermanagement/list.go
package usermanagement

import (
	"net/http"

	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/normalize"
	"github.com/crisisline/crisishub/internal/app/system/paging"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"github.com/crisisline/crisishub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listFilter struct {
	Status string `json:"status"`
	Search string `json:"search"`
}

// List serves one page of users, newest first. Query parameters: page,
// limit, status (active|inactive|all) and search (name substring).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r)
	status := normalize.StatusFilter(query.Get(r, "status"))
	if status != models.StatusActive && status != models.StatusInactive {
		status = ""
	}
	search := normalize.QueryParam(query.Get(r, "search"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin list users")
	defer cancel()

	users, total, err := h.Users.List(ctx, userstore.ListFilter{Status: status, Search: search}, pg)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to list users", err))
		return
	}

	shown := status
	if shown == "" {
		shown = "all"
	}
	apierr.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"users":      users,
		"pagination": paging.Compute(pg, total),
		"filter":     listFilter{Status: shown, Search: search},
	})
}

// Stats serves account totals, recent signups and the active/inactive split.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Report(), h.Log, "admin user stats")
	defer cancel()

	s, err := h.Engine.AccountStats(ctx)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to load user stats", err))
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"stats":       s.Stats,
		"percentages": s.Percentages,
	})
}
