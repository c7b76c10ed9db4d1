// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"go.uber.org/zap"
)

// Handler answers requests that matched no route.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound renders the JSON 404 body for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("route not found", zap.String("method", r.Method), zap.String("path", r.URL.Path))
	apierr.Write(w, h.Log, apierr.NotFound("Route not found"))
}

// MethodNotAllowed renders the JSON 405 body for a known path used with
// the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierr.JSON(w, http.StatusMethodNotAllowed, map[string]any{
		"success": false,
		"message": "Method " + r.Method + " not allowed on " + r.URL.Path,
	})
}
