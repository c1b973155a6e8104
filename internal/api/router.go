package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Magicred-1/agenthub/internal/api/middleware"
	"github.com/Magicred-1/agenthub/internal/handlers"
	"github.com/Magicred-1/agenthub/internal/store"
)

// RouterConfig carries the router's optional pieces.
type RouterConfig struct {
	RedisStore      *store.RedisStore // nil disables rate limiting
	StaticRoot      string            // avatar storage root served at /static/
	RateLimitConfig middleware.RateLimiterConfig
}

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, auth *middleware.AuthMiddleware, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024 * 1024)) // avatars arrive base64-encoded
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	// Resolve the profile early so the rate limiter can key on it and the
	// request log can carry it
	r.Use(auth.OptionalAuth)

	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (needs Redis)
	if cfg.RedisStore != nil {
		limiter := middleware.NewRateLimiter(cfg.RedisStore.Client(), logger, cfg.RateLimitConfig)
		r.Use(limiter.Middleware)
	}

	// CORS - the app's web target calls from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	// Uploaded avatars
	if cfg.StaticRoot != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticRoot))))
	}

	// Chat relay: authenticated callers are scoped to their profile,
	// anonymous callers fall back to the form userId
	r.Post("/message", h.SendMessage)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/agents", h.ListAgents)
		r.Post("/agents", h.CreateAgent)
		r.Put("/agents/{id}", h.UpdateAgent)
		r.Delete("/agents/{id}", h.DeleteAgent)
		r.Get("/interactions", h.ListInteractions)
		r.Get("/notifications", h.StreamNotifications)
		r.Post("/avatars", h.UploadAvatar)
	})

	return r
}
