package handlers

import (
	"net/http"
	"strconv"

	"github.com/Magicred-1/agenthub/internal/api/middleware"
	"github.com/Magicred-1/agenthub/internal/models"
)

// InteractionListResponse represents the interaction history response.
type InteractionListResponse struct {
	Interactions []models.Interaction `json:"interactions"`
	Total        int                  `json:"total"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
}

// ListInteractions returns the authenticated user's interaction history,
// newest first.
func (h *Handler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfileFromContext(r.Context())
	if profile == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit := parseIntParam(r, "limit", 50, 200)
	offset := parseIntParam(r, "offset", 0, 1<<30)

	interactions, total, err := h.store.ListInteractionsByUser(r.Context(), profile.ID.String(), limit, offset)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if interactions == nil {
		interactions = []models.Interaction{}
	}

	h.JSON(w, http.StatusOK, InteractionListResponse{
		Interactions: interactions,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	})
}

func parseIntParam(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
