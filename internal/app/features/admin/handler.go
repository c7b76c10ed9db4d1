// internal/app/features/admin/handler.go
package admin

import (
	"github.com/crisisline/crisishub/internal/app/features/shared/otpmail"
	adminstore "github.com/crisisline/crisishub/internal/app/store/admins"
	"github.com/crisisline/crisishub/internal/app/system/auditlog"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/ratelimit"
	"github.com/crisisline/crisishub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the single administrator account: first-run signup,
// login, password reset by emailed code and profile changes.
type Handler struct {
	Admins  *adminstore.Store
	OTP     *otpmail.Sender
	Auth    *auth.Manager
	Limiter *ratelimit.AuthLimiter
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(admins *adminstore.Store, otp *otpmail.Sender, am *auth.Manager, limiter *ratelimit.AuthLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Admins:  admins,
		OTP:     otp,
		Auth:    am,
		Limiter: limiter,
		Audit:   audit,
		Log:     logger,
	}
}

// adminView is the public shape of the admin account.
type adminView struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	ProfileImage string             `json:"profileImage,omitempty"`
}

func viewOf(a *models.Admin) adminView {
	return adminView{ID: a.ID, Name: a.Name, Email: a.Email, ProfileImage: a.ProfileImage}
}

type signupRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=50"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type profileRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=50"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,url"`
}
