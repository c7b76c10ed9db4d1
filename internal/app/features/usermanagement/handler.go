// internal/app/features/usermanagement/handler.go
package usermanagement

import (
	"net/http"

	"github.com/crisisline/crisishub/internal/app/reporting"
	"github.com/crisisline/crisishub/internal/app/store/audit"
	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/auditlog"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler lets the administrator create, edit, activate, deactivate,
// list and delete field user accounts.
type Handler struct {
	Users  *userstore.Store
	Engine *reporting.Engine
	Events *audit.Store
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, engine *reporting.Engine, events *audit.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Engine: engine, Events: events, Audit: auditLog, Log: logger}
}

type createRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=50"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
	Status       string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type updateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Password     *string `json:"password"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,url"`
}

// userID parses the {userId} URL parameter.
func userID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		return primitive.NilObjectID, apierr.Validation("Invalid user ID format", "userId")
	}
	return id, nil
}

// actorID is the acting admin's account ID, or "" outside RequireAdmin.
func actorID(r *http.Request) string {
	if p, ok := auth.CurrentPrincipal(r); ok {
		return p.ID
	}
	return ""
}
