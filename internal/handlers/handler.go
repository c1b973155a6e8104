package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/Magicred-1/agenthub/internal/auth"
	"github.com/Magicred-1/agenthub/internal/notify"
	"github.com/Magicred-1/agenthub/internal/relay"
	"github.com/Magicred-1/agenthub/internal/storage"
	"github.com/Magicred-1/agenthub/internal/store"
)

// Provisioner forwards a freshly created agent's config to the runtime.
type Provisioner interface {
	ProvisionAgent(ctx context.Context, agentID string, config any) error
}

// emailRegex validates email addresses per RFC 5322 (simplified).
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store       store.DataStore
	redis       *store.RedisStore // nil when Redis is not configured
	events      notify.Subscriber // nil when no event source is configured
	relay       *relay.Service
	avatars     *storage.AvatarStore
	tokens      *auth.TokenService
	provisioner Provisioner // nil when no runtime is configured
	logger      zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(st store.DataStore, redis *store.RedisStore, events notify.Subscriber, relaySvc *relay.Service, avatars *storage.AvatarStore, tokens *auth.TokenService, provisioner Provisioner, logger zerolog.Logger) *Handler {
	return &Handler{
		store:       st,
		redis:       redis,
		events:      events,
		relay:       relaySvc,
		avatars:     avatars,
		tokens:      tokens,
		provisioner: provisioner,
		logger:      logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// sanitizeName trims and limits name to 100 characters, removing control characters.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	// Remove control characters
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	// Limit to 100 characters
	if len(name) > 100 {
		name = name[:100]
	}

	return name
}

// isValidEmail validates email addresses using RFC 5322 pattern.
func isValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// isValidURL reports whether s parses as an absolute http(s) URL.
func isValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
