package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Magicred-1/agenthub/internal/auth"
	"github.com/Magicred-1/agenthub/internal/models"
	"github.com/Magicred-1/agenthub/internal/store"
)

type contextKey string

const ProfileContextKey contextKey = "profile"

// AuthMiddleware resolves bearer session tokens to profiles.
type AuthMiddleware struct {
	tokens *auth.TokenService
	store  store.DataStore
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *auth.TokenService, st store.DataStore) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, store: st}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// OptionalAuth may already have resolved the profile
		if GetProfileFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		profile, errMsg := m.resolve(r)
		if profile == nil {
			jsonError(w, http.StatusUnauthorized, errMsg)
			return
		}

		ctx := context.WithValue(r.Context(), ProfileContextKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the profile when a valid token is present and lets
// the request through either way. The message endpoint uses it: an
// anonymous sender falls back to the form-supplied user identifier.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if profile, _ := m.resolve(r); profile != nil {
			r = r.WithContext(context.WithValue(r.Context(), ProfileContextKey, profile))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*models.Profile, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, "authorization required"
	}
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, "authorization must be a bearer token"
	}

	claims, err := m.tokens.Validate(tokenStr)
	if err != nil {
		return nil, "invalid or expired token"
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, "invalid token subject"
	}

	profile, err := m.store.GetProfileByID(r.Context(), userID)
	if err != nil || profile == nil {
		return nil, "unknown user"
	}
	return profile, ""
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetProfileFromContext retrieves the authenticated profile from the
// request context.
func GetProfileFromContext(ctx context.Context) *models.Profile {
	profile, ok := ctx.Value(ProfileContextKey).(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}
