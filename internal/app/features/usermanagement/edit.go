// internal/app/features/usermanagement/edit.go
package usermanagement

import (
	"errors"
	"net/http"
	"strings"

	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/authutil"
	"github.com/crisisline/crisishub/internal/app/system/inputval"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"github.com/crisisline/crisishub/internal/domain/models"
	"go.uber.org/zap"
)

// Create adds a fully signed-up user. The account is active unless the
// request says otherwise.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(authutil.PasswordRules(), "password"))
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to create user", err))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin create user")
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		ProfileImage: req.ProfileImage,
		Status:       req.Status,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		apierr.Write(w, h.Log, apierr.Validation("User already exists with this email", "email"))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to create user", err))
		return
	}

	h.Audit.UserCreated(ctx, r, actorID(r), u.ID, u.Email)
	h.Log.Info("user created by admin", zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	apierr.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "User created successfully by admin",
		"user":    u,
	})
}

// Update changes any of name, email, password and profile image. A blank
// password leaves the current one in place.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	var req updateRequest
	if err := inputval.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	upd := userstore.Update{Name: req.Name, Email: req.Email, ProfileImage: req.ProfileImage}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		if err := authutil.ValidatePassword(*req.Password); err != nil {
			apierr.Write(w, h.Log, apierr.Validation(authutil.PasswordRules(), "password"))
			return
		}
		hash, err := authutil.HashPassword(*req.Password)
		if err != nil {
			apierr.Write(w, h.Log, apierr.Server("Failed to update user", err))
			return
		}
		upd.PasswordHash = &hash
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin update user")
	defer cancel()

	u, err := h.Users.Update(ctx, id, upd)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		apierr.Write(w, h.Log, apierr.NotFound("User not found"))
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		apierr.Write(w, h.Log, apierr.Validation("Email already exists", "email"))
		return
	case err != nil:
		apierr.Write(w, h.Log, apierr.Server("Failed to update user", err))
		return
	}

	h.Audit.UserUpdated(ctx, r, actorID(r), u.ID, req.changed(upd.PasswordHash != nil))
	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User updated successfully",
		"user":    u,
	})
}

// ToggleStatus flips a user between active and inactive.
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin toggle user status")
	defer cancel()

	u, err := h.Users.ToggleStatus(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		apierr.Write(w, h.Log, apierr.NotFound("User not found"))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to change user status", err))
		return
	}

	h.Audit.UserStatusChanged(ctx, r, actorID(r), u.ID, u.Status)
	h.Log.Info("user status changed", zap.String("user_id", u.ID.Hex()), zap.String("status", u.Status))
	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User status changed to " + u.Status,
		"user":    u,
	})
}

// Delete removes a user account. Its submissions are kept.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin delete user")
	defer cancel()

	n, err := h.Users.Delete(ctx, id)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to delete user", err))
		return
	}
	if n == 0 {
		apierr.Write(w, h.Log, apierr.NotFound("User not found"))
		return
	}

	h.Audit.UserDeleted(ctx, r, actorID(r), id)
	h.Log.Info("user deleted", zap.String("user_id", id.Hex()))
	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User deleted successfully",
	})
}

// changed lists the fields an update request touches.
func (req updateRequest) changed(password bool) []string {
	var fields []string
	if req.Name != nil {
		fields = append(fields, "name")
	}
	if req.Email != nil {
		fields = append(fields, "email")
	}
	if password {
		fields = append(fields, "password")
	}
	if req.ProfileImage != nil {
		fields = append(fields, "profileImage")
	}
	return fields
}
