package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Magicred-1/agenthub/internal/api"
	"github.com/Magicred-1/agenthub/internal/api/middleware"
	"github.com/Magicred-1/agenthub/internal/auth"
	"github.com/Magicred-1/agenthub/internal/config"
	"github.com/Magicred-1/agenthub/internal/handlers"
	"github.com/Magicred-1/agenthub/internal/notify"
	"github.com/Magicred-1/agenthub/internal/relay"
	"github.com/Magicred-1/agenthub/internal/runtime"
	"github.com/Magicred-1/agenthub/internal/storage"
	"github.com/Magicred-1/agenthub/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Run migrations
	if cfg.DatabaseURL != "" {
		logger.Info().Msg("running database migrations...")
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Msg("migrations completed")
	}

	// Initialize the primary store: PostgreSQL, or SQLite when no
	// DATABASE_URL is configured
	var dataStore store.DataStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pgStore.Close()
		logger.Info().Msg("connected to PostgreSQL")
		dataStore = pgStore
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer sqliteStore.Close()
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite store")
		dataStore = sqliteStore
	}

	// Initialize Redis store
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Runtime client and relay
	runtimeClient := runtime.NewClient(cfg.ElizaURL, cfg.ElizaTimeout)
	var publisher relay.Publisher
	var subscriber notify.Subscriber
	if redisStore != nil {
		publisher = redisStore
		subscriber = redisStore
	}
	relaySvc := relay.NewService(dataStore, runtimeClient, publisher, logger)

	// Avatar storage
	avatars, err := storage.NewAvatarStore(cfg.StorageDir, cfg.PublicBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("avatar storage init failed")
	}

	// Auth
	tokens := auth.NewTokenService(cfg.JWTSecret, 24*time.Hour)
	authMW := middleware.NewAuthMiddleware(tokens, dataStore)

	// Handler and router
	h := handlers.NewHandler(dataStore, redisStore, subscriber, relaySvc, avatars, tokens, runtimeClient, logger)
	router := api.NewRouter(logger, h, authMW, api.RouterConfig{
		RedisStore: redisStore,
		StaticRoot: avatars.Root(),
		RateLimitConfig: middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		},
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // relay calls may take up to the runtime timeout
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting AgentHub server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
