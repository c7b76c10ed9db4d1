// internal/app/features/users/handler.go
package users

import (
	"github.com/crisisline/crisishub/internal/app/features/shared/otpmail"
	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/auditlog"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves self-service signup, login and profile updates for
// field users.
type Handler struct {
	Users   *userstore.Store
	OTP     *otpmail.Sender
	Auth    *auth.Manager
	Limiter *ratelimit.AuthLimiter
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, otp *otpmail.Sender, am *auth.Manager, limiter *ratelimit.AuthLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		OTP:     otp,
		Auth:    am,
		Limiter: limiter,
		Audit:   audit,
		Log:     logger,
	}
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=50"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,url"`
}
