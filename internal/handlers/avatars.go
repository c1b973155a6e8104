package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Magicred-1/agenthub/internal/api/middleware"
	"github.com/Magicred-1/agenthub/internal/metrics"
	"github.com/Magicred-1/agenthub/internal/storage"
)

// UploadAvatarRequest represents the avatar upload request body.
type UploadAvatarRequest struct {
	Image string `json:"image"` // base64, optionally with a data-URI prefix
}

// UploadAvatarResponse represents the avatar upload response.
type UploadAvatarResponse struct {
	URL string `json:"url"`
}

// UploadAvatar stores an avatar image for the authenticated user and
// returns its public URL.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfileFromContext(r.Context())
	if profile == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req UploadAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Image == "" {
		h.Error(w, http.StatusBadRequest, "image is required")
		return
	}

	url, err := h.avatars.Upload(profile.ID.String(), req.Image)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidImage):
			h.Error(w, http.StatusBadRequest, "image must be valid base64")
		case errors.Is(err, storage.ErrImageTooLarge):
			h.Error(w, http.StatusRequestEntityTooLarge, "image too large")
		default:
			h.logger.Error().Err(err).Msg("avatar upload failed")
			h.Error(w, http.StatusInternalServerError, "failed to store avatar")
		}
		return
	}
	metrics.AvatarsUploaded.Inc()

	h.JSON(w, http.StatusCreated, UploadAvatarResponse{URL: url})
}
