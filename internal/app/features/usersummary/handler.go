// internal/app/features/usersummary/handler.go
package usersummary

import (
	"net/http"

	"github.com/crisisline/crisishub/internal/app/reporting"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own submission summary.
type Handler struct {
	Engine *reporting.Engine
	Log    *zap.Logger
}

func NewHandler(engine *reporting.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// Summary returns totals, per-type counts, the latest submission time and
// the last seven days of activity for the current user.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("Not authorized"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Report(), h.Log, "user summary")
	defer cancel()

	summary, err := h.Engine.UserSummary(ctx, p.ID)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to build user summary", err))
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]any{"success": true, "data": summary})
}
