// internal/app/features/stabilization/handler.go
package stabilization

import (
	"net/http"

	"github.com/crisisline/crisishub/internal/app/features/shared/params"
	"github.com/crisisline/crisishub/internal/app/reporting"
	submissionstore "github.com/crisisline/crisishub/internal/app/store/submissions"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/inputval"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"github.com/crisisline/crisishub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler records crisis stabilization unit visits and serves their monthly summary.
type Handler struct {
	Store  *submissionstore.Store
	Engine *reporting.Engine
	Log    *zap.Logger
}

func NewHandler(store *submissionstore.Store, engine *reporting.Engine, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Engine: engine, Log: logger}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("Not authorized"))
		return
	}

	var rec models.Stabilization
	if err := inputval.Decode(r, &rec); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create crisis stabilization")
	defer cancel()

	if err := h.Store.Insert(ctx, &rec, p.ID); err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to create crisis stabilization record", err))
		return
	}

	h.Log.Info("crisis stabilization record created",
		zap.String("user_id", p.ID),
		zap.String("county", string(rec.County)),
		zap.String("outcome", string(rec.Outcome)),
	)
	apierr.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Crisis stabilization record created successfully",
		"data":    rec,
	})
}

// Summary serves the monthly report for ?year=YYYY&month=MM.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	year, month, err := params.Month(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Report(), h.Log, "crisis stabilization summary")
	defer cancel()

	report, err := h.Engine.Stabilization(ctx, year, month)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to build crisis stabilization summary", err))
		return
	}
	apierr.JSON(w, http.StatusOK, report)
}
