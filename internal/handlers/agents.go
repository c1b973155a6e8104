package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Magicred-1/agenthub/internal/api/middleware"
	"github.com/Magicred-1/agenthub/internal/metrics"
	"github.com/Magicred-1/agenthub/internal/models"
	"github.com/Magicred-1/agenthub/internal/store"
)

// CreateAgentRequest represents the create agent request body.
type CreateAgentRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Type        string             `json:"type"`
	AvatarURL   string             `json:"avatar_url"`
	Config      models.AgentConfig `json:"config"`
}

// UpdateAgentRequest represents the update agent request body. Absent
// fields are left unchanged.
type UpdateAgentRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Type        *string             `json:"type"`
	AvatarURL   *string             `json:"avatar_url"`
	Config      *models.AgentConfig `json:"config"`
	IsActive    *bool               `json:"is_active"`
}

// AgentListResponse represents the agent list response.
type AgentListResponse struct {
	Agents []models.Agent `json:"agents"`
}

// ListAgents returns the authenticated user's agents, newest first.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfileFromContext(r.Context())
	if profile == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	agents, err := h.store.ListAgentsByOwner(r.Context(), profile.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if agents == nil {
		agents = []models.Agent{}
	}

	h.JSON(w, http.StatusOK, AgentListResponse{Agents: agents})
}

// CreateAgent creates a new agent owned by the authenticated user.
func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfileFromContext(r.Context())
	if profile == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = sanitizeName(req.Name)
	if req.Name == "" {
		h.Error(w, http.StatusBadRequest, "Agent name is required")
		return
	}
	if req.Type == "" {
		h.Error(w, http.StatusBadRequest, "Agent type is required")
		return
	}
	if req.AvatarURL != "" && !isValidURL(req.AvatarURL) {
		h.Error(w, http.StatusBadRequest, "Invalid avatar URL")
		return
	}
	if err := req.Config.Validate(); err != nil {
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Config.ApplyDefaults()

	agent, err := h.store.CreateAgent(r.Context(), &models.Agent{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		AvatarURL:   req.AvatarURL,
		Config:      req.Config,
		IsActive:    true,
		CreatedBy:   profile.ID,
	})
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create agent")
		return
	}
	metrics.AgentsCreated.Inc()

	// Config is forwarded to the runtime once, at creation. Best-effort:
	// the agent record exists either way.
	if h.provisioner != nil {
		if err := h.provisioner.ProvisionAgent(r.Context(), agent.ID.String(), agent.Config); err != nil {
			h.logger.Warn().Err(err).Str("agent_id", agent.ID.String()).Msg("runtime provisioning failed")
		}
	}

	h.JSON(w, http.StatusCreated, agent)
}

// UpdateAgent updates an agent's mutable fields, scoped to the
// authenticated owner.
func (h *Handler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfileFromContext(r.Context())
	if profile == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid agent ID format")
		return
	}

	var req UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Name != nil {
		name := sanitizeName(*req.Name)
		if name == "" {
			h.Error(w, http.StatusBadRequest, "Agent name is required")
			return
		}
		req.Name = &name
	}
	if req.AvatarURL != nil && *req.AvatarURL != "" && !isValidURL(*req.AvatarURL) {
		h.Error(w, http.StatusBadRequest, "Invalid avatar URL")
		return
	}
	if req.Config != nil {
		if err := req.Config.Validate(); err != nil {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Config.ApplyDefaults()
	}

	agent, err := h.store.UpdateAgent(r.Context(), id, profile.ID, store.AgentUpdate{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		AvatarURL:   req.AvatarURL,
		Config:      req.Config,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if agent == nil {
		h.Error(w, http.StatusNotFound, "Agent not found")
		return
	}

	h.JSON(w, http.StatusOK, agent)
}

// DeleteAgent deletes an agent, scoped to the authenticated owner.
func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfileFromContext(r.Context())
	if profile == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid agent ID format")
		return
	}

	deleted, err := h.store.DeleteAgent(r.Context(), id, profile.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !deleted {
		h.Error(w, http.StatusNotFound, "Agent not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
