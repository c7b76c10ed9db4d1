// internal/app/features/crisiscalls/handler.go
package crisiscalls

import (
	"net/http"

	"github.com/crisisline/crisishub/internal/app/features/shared/params"
	"github.com/crisisline/crisishub/internal/app/reporting"
	submissionstore "github.com/crisisline/crisishub/internal/app/store/submissions"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/htmlsanitize"
	"github.com/crisisline/crisishub/internal/app/system/inputval"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"github.com/crisisline/crisishub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler records crisis line calls and serves their monthly summary.
type Handler struct {
	Store  *submissionstore.Store
	Engine *reporting.Engine
	Log    *zap.Logger
}

func NewHandler(store *submissionstore.Store, engine *reporting.Engine, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Engine: engine, Log: logger}
}

// Create stores one call for the signed-in user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("Not authorized"))
		return
	}

	var call models.CrisisCall
	if err := inputval.Decode(r, &call); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	call.Description = htmlsanitize.PlainText(call.Description)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create crisis call")
	defer cancel()

	if err := h.Store.Insert(ctx, &call, p.ID); err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to submit crisis call", err))
		return
	}

	h.Log.Info("crisis call submitted",
		zap.String("user_id", p.ID),
		zap.String("county", string(call.County)),
		zap.String("crisis_type", string(call.CrisisType)),
	)
	apierr.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Crisis call submitted successfully",
		"data":    call,
	})
}

// Summary serves the monthly report for ?year=YYYY&month=MM.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	year, month, err := params.Month(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Report(), h.Log, "crisis call summary")
	defer cancel()

	report, err := h.Engine.CrisisCalls(ctx, year, month)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to build crisis call summary", err))
		return
	}
	apierr.JSON(w, http.StatusOK, report)
}
