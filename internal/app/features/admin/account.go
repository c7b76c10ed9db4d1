// internal/app/features/admin/account.go
package admin

import (
	"errors"
	"net/http"

	adminstore "github.com/crisisline/crisishub/internal/app/store/admins"
	"github.com/crisisline/crisishub/internal/app/store/audit"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/authutil"
	"github.com/crisisline/crisishub/internal/app/system/inputval"
	"github.com/crisisline/crisishub/internal/app/system/normalize"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"github.com/crisisline/crisishub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Signup creates the administrator. Only one may ever exist.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin signup")
	defer cancel()

	exists, err := h.Admins.Exists(ctx)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to create admin", err))
		return
	}
	if exists {
		apierr.Write(w, h.Log, apierr.Validation("Admin already exists. Only one admin allowed."))
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(authutil.PasswordRules(), "password"))
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to create admin", err))
		return
	}

	a, err := h.Admins.Create(ctx, models.Admin{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  hash,
		ProfileImage:  req.ProfileImage,
		IsOtpVerified: true,
	})
	if errors.Is(err, adminstore.ErrExists) {
		apierr.Write(w, h.Log, apierr.Validation("Admin already exists. Only one admin allowed."))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to create admin", err))
		return
	}

	h.Log.Info("admin account created", zap.String("admin_id", a.ID.Hex()), zap.String("email", a.Email))
	apierr.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Admin created successfully.",
		"admin":   viewOf(&a),
	})
}

// Login exchanges the admin's email and password for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)

	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Log.Warn("admin login rate limited", zap.String("email", email))
		h.Audit.LoginFailedRateLimit(r.Context(), r, audit.AccountAdmin, email, reason)
		apierr.Write(w, h.Log, apierr.TooManyRequests(reason))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin login")
	defer cancel()

	a, err := h.Admins.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, adminstore.ErrNotFound) {
		apierr.Write(w, h.Log, apierr.Server("Login failed", err))
		return
	}
	if a == nil {
		h.Audit.LoginFailedUnknown(ctx, r, audit.AccountAdmin, email)
		apierr.Write(w, h.Log, apierr.Unauthorized("Invalid email or password."))
		return
	}
	if !authutil.CheckPassword(req.Password, a.PasswordHash) {
		h.Audit.LoginFailedWrongPassword(ctx, r, a.ID, audit.AccountAdmin, email)
		apierr.Write(w, h.Log, apierr.Unauthorized("Invalid email or password."))
		return
	}

	token, err := h.Auth.Issue(a.ID.Hex(), auth.KindAdmin)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to issue token", err))
		return
	}
	h.Limiter.ResetEmail(email)
	h.Audit.LoginSuccess(ctx, r, a.ID, audit.AccountAdmin, email)

	h.Log.Info("admin logged in", zap.String("admin_id", a.ID.Hex()))
	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful.",
		"token":   token,
		"admin":   viewOf(a),
	})
}

// UpdateProfile changes the admin's name and/or profile image URL.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("Not authorized"))
		return
	}
	id, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Unauthorized("Not authorized"))
		return
	}

	var req profileRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if req.Name == nil && req.ProfileImage == nil {
		apierr.Write(w, h.Log, apierr.Validation("No update data provided", "name", "profileImage"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin update profile")
	defer cancel()

	a, err := h.Admins.UpdateProfile(ctx, id, req.Name, req.ProfileImage)
	if errors.Is(err, adminstore.ErrNotFound) {
		apierr.Write(w, h.Log, apierr.NotFound("Admin not found"))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to update profile", err))
		return
	}

	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"admin":   viewOf(a),
	})
}
