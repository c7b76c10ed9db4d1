// internal/app/features/users/login.go
package users

import (
	"errors"
	"net/http"

	"github.com/crisisline/crisishub/internal/app/store/audit"
	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/authutil"
	"github.com/crisisline/crisishub/internal/app/system/inputval"
	"github.com/crisisline/crisishub/internal/app/system/normalize"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"github.com/crisisline/crisishub/internal/domain/models"
	"go.uber.org/zap"
)

// Login exchanges email and password for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)

	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Log.Warn("login rate limited", zap.String("email", email))
		h.Audit.LoginFailedRateLimit(r.Context(), r, audit.AccountUser, email, reason)
		apierr.Write(w, h.Log, apierr.TooManyRequests(reason))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user login")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, userstore.ErrNotFound) {
		apierr.Write(w, h.Log, apierr.Server("Login failed", err))
		return
	}
	if u == nil || !u.HasPassword() {
		h.Audit.LoginFailedUnknown(ctx, r, audit.AccountUser, email)
		apierr.Write(w, h.Log, apierr.Unauthorized("Invalid email or password"))
		return
	}
	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID, audit.AccountUser, email)
		apierr.Write(w, h.Log, apierr.Unauthorized("Invalid email or password"))
		return
	}
	if u.Status != models.StatusActive {
		h.Audit.LoginFailedInactive(ctx, r, u.ID, email)
		apierr.Write(w, h.Log, apierr.Unauthorized("Your account is inactive. Please contact the administrator."))
		return
	}

	token, err := h.Auth.Issue(u.ID.Hex(), auth.KindUser)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to issue token", err))
		return
	}
	h.Limiter.ResetEmail(email)
	h.Audit.LoginSuccess(ctx, r, u.ID, audit.AccountUser, email)

	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()))
	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    u,
	})
}
