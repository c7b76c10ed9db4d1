// internal/app/features/users/profile.go
package users

import (
	"errors"
	"net/http"

	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/inputval"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpdateProfile changes the caller's name and/or profile image URL.
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
		apierr.Write(w, h.Log, apierr.Validation("Nothing to update", "name", "profileImage"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user update profile")
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, id, req.Name, req.ProfileImage)
	if errors.Is(err, userstore.ErrNotFound) {
		apierr.Write(w, h.Log, apierr.NotFound("User not found"))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Server("Failed to update profile", err))
		return
	}

	apierr.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"user":    u,
	})
}
