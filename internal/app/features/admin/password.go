// internal/app/features/admin/password.go
package admin

import (
	"errors"
	"net/http"

	adminstore "github.com/crisisline/crisishub/internal/app/store/admins"
	"github.com/crisisline/crisishub/internal/app/store/audit"
	"github.com/crisisline/crisishub/internal/app/store/otp"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/authutil"
	"github.com/crisisline/crisishub/internal/app/system/inputval"
	"github.com/crisisline/crisishub/internal/app/system/normalize"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ForgotPassword emails a reset code to the admin address.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)

	if ok, reason := h.Limiter.Check(r, email); !ok {
		apierr.Write(w, h.Log, apierr.TooManyRequests(reason))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin forgot password")
	defer cancel()

	if _, err := h.Admins.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, adminstore.ErrNotFound) {
			apierr.Write(w, h.Log, apierr.NotFound("Admin not found"))
			return
		}
		apierr.Write(w, h.Log, apierr.Server("Something went wrong", err))
		return
	}

	if err := h.OTP.Send(ctx, email, otp.PurposePasswordReset, false); err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to send OTP", err))
		return
	}
	h.Audit.VerificationCodeSent(ctx, r, audit.AccountAdmin, email, string(otp.PurposePasswordReset))

	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "OTP sent to your email",
	})
}

// ResetPassword sets a new password after checking the emailed code.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if err := authutil.ValidatePassword(req.NewPassword); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(authutil.PasswordRules(), "newPassword"))
		return
	}
	email := normalize.Email(req.Email)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin reset password")
	defer cancel()

	a, err := h.Admins.GetByEmail(ctx, email)
	if errors.Is(err, adminstore.ErrNotFound) {
		apierr.Write(w, h.Log, apierr.NotFound("Admin not found"))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Something went wrong", err))
		return
	}

	if err := h.OTP.Codes.Verify(ctx, email, otp.PurposePasswordReset, req.OTP); err != nil {
		h.Audit.VerificationCodeFailed(ctx, r, audit.AccountAdmin, email, err.Error())
		switch {
		case errors.Is(err, otp.ErrNotFound), errors.Is(err, otp.ErrInvalidCode):
			apierr.Write(w, h.Log, apierr.Validation("Invalid or expired OTP"))
		case errors.Is(err, otp.ErrTooManyAttempts):
			apierr.Write(w, h.Log, apierr.Validation("Too many attempts. Please request a new OTP."))
		default:
			apierr.Write(w, h.Log, apierr.Server("Something went wrong", err))
		}
		return
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Something went wrong", err))
		return
	}
	if err := h.Admins.SetPassword(ctx, a.ID, hash); err != nil {
		apierr.Write(w, h.Log, apierr.Server("Something went wrong", err))
		return
	}

	h.Audit.PasswordReset(ctx, r, a.ID, email)
	h.Log.Info("admin password reset", zap.String("admin_id", a.ID.Hex()))
	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Password reset successful",
	})
}
