// internal/app/features/usermanagement/audit.go
package usermanagement

import (
	"net/http"
	"strings"

	"github.com/crisisline/crisishub/internal/app/store/audit"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/paging"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog serves one page of audit events, newest first. Query
// parameters: page, limit, category (auth|admin), type and accountId.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r)
	filter := audit.QueryFilter{
		EventType: strings.TrimSpace(query.Get(r, "type")),
		Limit:     int64(pg.Limit),
		Offset:    pg.Skip(),
	}
	switch c := strings.ToLower(strings.TrimSpace(query.Get(r, "category"))); c {
	case "", "all":
	case audit.CategoryAuth, audit.CategoryAdmin:
		filter.Category = c
	default:
		apierr.Write(w, h.Log, apierr.Validation("category must be auth or admin", "category"))
		return
	}
	if raw := strings.TrimSpace(query.Get(r, "accountId")); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apierr.Write(w, h.Log, apierr.Validation("Invalid account ID format", "accountId"))
			return
		}
		filter.AccountID = &oid
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin audit log")
	defer cancel()

	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to load audit log", err))
		return
	}
	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to load audit log", err))
		return
	}

	apierr.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"events":     events,
		"pagination": paging.Compute(pg, total),
	})
}
