package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Magicred-1/agenthub/internal/auth"
	"github.com/Magicred-1/agenthub/internal/models"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse represents a successful register or login.
type SessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt int64           `json:"expires_at"` // Unix seconds
	Profile   *models.Profile `json:"profile"`
}

// Register handles account registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Email == "" || !isValidEmail(req.Email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if len(req.Password) < 8 {
		h.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.store.GetProfileByEmail(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		h.Error(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	profile, err := h.store.CreateProfile(r.Context(), sanitizeName(req.Name), req.Email, hash)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	h.issueSession(w, http.StatusCreated, profile)
}

// Login handles account login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	profile, err := h.store.GetProfileByEmail(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if profile == nil || !auth.CheckPassword(profile.PasswordHash, req.Password) {
		h.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.issueSession(w, http.StatusOK, profile)
}

func (h *Handler) issueSession(w http.ResponseWriter, status int, profile *models.Profile) {
	token, expiresAt, err := h.tokens.Generate(profile.ID.String(), profile.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.JSON(w, status, SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		Profile:   profile,
	})
}
