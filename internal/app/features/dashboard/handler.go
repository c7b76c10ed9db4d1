// internal/app/features/dashboard/handler.go
package dashboard

import (
	"errors"
	"net/http"

	"github.com/crisisline/crisishub/internal/app/features/shared/params"
	"github.com/crisisline/crisishub/internal/app/reporting"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the cross-type dashboard summary.
type Handler struct {
	Engine *reporting.Engine
	Log    *zap.Logger
}

func NewHandler(engine *reporting.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// Summary serves GET /summary?days=N. days defaults to 7.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	days, err := params.Days(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Report(), h.Log, "dashboard summary")
	defer cancel()

	summary, err := h.Engine.Dashboard(ctx, days)
	if errors.Is(err, reporting.ErrInvalidDays) {
		apierr.Write(w, h.Log, apierr.Validation(err.Error(), "days"))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to build dashboard summary", err))
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]any{"success": true, "data": summary})
}
