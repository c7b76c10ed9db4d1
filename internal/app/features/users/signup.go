// internal/app/features/users/signup.go
package users

import (
	"errors"
	"net/http"

	"github.com/crisisline/crisishub/internal/app/store/audit"
	"github.com/crisisline/crisishub/internal/app/store/otp"
	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/authutil"
	"github.com/crisisline/crisishub/internal/app/system/inputval"
	"github.com/crisisline/crisishub/internal/app/system/normalize"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// RequestOTP creates or resets a pending account and emails a signup code.
func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)

	if ok, reason := h.Limiter.Check(r, email); !ok {
		apierr.Write(w, h.Log, apierr.TooManyRequests(reason))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "signup request otp")
	defer cancel()

	if _, err := h.Users.UpsertPending(ctx, email); err != nil {
		if errors.Is(err, userstore.ErrAlreadyRegistered) {
			apierr.Write(w, h.Log, apierr.Validation("User already exists. Please log in."))
			return
		}
		apierr.Write(w, h.Log, apierr.Server("Failed to start signup", err))
		return
	}

	if err := h.OTP.Send(ctx, email, otp.PurposeSignup, false); err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to send OTP", err))
		return
	}
	h.Audit.VerificationCodeSent(ctx, r, audit.AccountUser, email, string(otp.PurposeSignup))

	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "OTP sent to your email",
	})
}

// VerifyOTP confirms the emailed signup code.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "signup verify otp")
	defer cancel()

	if err := h.OTP.Codes.Verify(ctx, email, otp.PurposeSignup, req.OTP); err != nil {
		h.Audit.VerificationCodeFailed(ctx, r, audit.AccountUser, email, err.Error())
		apierr.Write(w, h.Log, codeError(err))
		return
	}
	if err := h.Users.MarkOtpVerified(ctx, email); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apierr.Write(w, h.Log, apierr.NotFound("User not found"))
			return
		}
		apierr.Write(w, h.Log, apierr.Server("Failed to verify OTP", err))
		return
	}

	h.Log.Info("signup email verified", zap.String("email", email))
	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "OTP verified successfully",
	})
}

// ResendOTP issues a fresh signup code for a pending account.
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)

	if ok, reason := h.Limiter.Check(r, email); !ok {
		apierr.Write(w, h.Log, apierr.TooManyRequests(reason))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "signup resend otp")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		apierr.Write(w, h.Log, apierr.NotFound("User not found"))
		return
	case err != nil:
		apierr.Write(w, h.Log, apierr.Server("Failed to resend OTP", err))
		return
	case u.HasPassword():
		apierr.Write(w, h.Log, apierr.Validation("User already exists. Please log in."))
		return
	}

	if err := h.OTP.Send(ctx, email, otp.PurposeSignup, true); err != nil {
		if errors.Is(err, otp.ErrTooManyResends) {
			apierr.Write(w, h.Log, apierr.TooManyRequests("Too many resend requests. Please wait a few minutes before trying again."))
			return
		}
		apierr.Write(w, h.Log, apierr.Server("Failed to resend OTP", err))
		return
	}
	h.Audit.VerificationCodeSent(ctx, r, audit.AccountUser, email, string(otp.PurposeSignup))

	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "OTP resent to your email",
	})
}

// Signup completes a verified pending account with a name and password.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(authutil.PasswordRules(), "password"))
		return
	}
	email := normalize.Email(req.Email)

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to complete signup", err))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "signup complete")
	defer cancel()

	u, err := h.Users.CompleteSignup(ctx, email, req.Name, hash)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		apierr.Write(w, h.Log, apierr.NotFound("User not found. Please request an OTP first."))
		return
	case errors.Is(err, userstore.ErrNotVerified):
		apierr.Write(w, h.Log, apierr.Validation("Please verify your email before signing up."))
		return
	case errors.Is(err, userstore.ErrAlreadyRegistered):
		apierr.Write(w, h.Log, apierr.Validation("User already exists. Please log in."))
		return
	case err != nil:
		apierr.Write(w, h.Log, apierr.Server("Failed to complete signup", err))
		return
	}

	token, err := h.Auth.Issue(u.ID.Hex(), auth.KindUser)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to issue token", err))
		return
	}

	h.Audit.SignupCompleted(ctx, r, u.ID, u.Email)
	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	apierr.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Signup successful",
		"token":   token,
		"user":    u,
	})
}

// codeError maps one-time code failures to client errors.
func codeError(err error) error {
	switch {
	case errors.Is(err, otp.ErrNotFound), errors.Is(err, otp.ErrInvalidCode):
		return apierr.Validation("Invalid or expired OTP")
	case errors.Is(err, otp.ErrTooManyAttempts):
		return apierr.Validation("Too many attempts. Please request a new OTP.")
	default:
		return apierr.Server("Failed to verify OTP", err)
	}
}
