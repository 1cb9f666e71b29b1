// SMS scavenger hunt server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelasco/textquest/internal/api"
	"github.com/avelasco/textquest/internal/config"
	"github.com/avelasco/textquest/internal/events"
	"github.com/avelasco/textquest/internal/hunt"
	"github.com/avelasco/textquest/internal/middleware"
	"github.com/avelasco/textquest/internal/outbound"
	"github.com/avelasco/textquest/internal/store"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	twclient "github.com/twilio/twilio-go/client"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	hub := events.NewHub()

	engine := hunt.NewEngine(repo, repo)
	if err := engine.InitializeClues(context.Background()); err != nil {
		slog.Error("Failed to load clue catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Clue catalog loaded", "clues", engine.Size())

	var carrier outbound.Carrier
	if cfg.HasTwilioCredentials() {
		carrier = outbound.NewTwilioCarrier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
		slog.Info("Twilio carrier configured", "from", cfg.Twilio.FromNumber)
	} else {
		// Only reachable in development; Validate enforces credentials elsewhere.
		carrier = outbound.LogCarrier{}
		slog.Warn("No Twilio credentials, outbound messages will be logged only")
	}

	queue := outbound.New(carrier, hub, outbound.Options{
		Size:       cfg.Queue.Size,
		MaxRetries: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay,
	})

	processor := hunt.NewProcessor(engine, repo, repo, queue, hub)

	// Initialize handlers.
	webhookHandler := api.NewWebhookHandler(processor)
	adminHandler := api.NewAdminHandler(repo, engine)
	healthHandler := api.NewHealthHandler(repo, queue)
	wsHandler := events.NewWSHandler(hub)

	validator := twclient.NewRequestValidator(cfg.Twilio.AuthToken)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS())

	// Public routes.
	healthHandler.RegisterRoutes(r)

	// Inbound webhook: rate limited, signature checked outside development.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit.Max, cfg.RateLimit.Window))
		r.Use(middleware.TwilioSignature(&validator, cfg.BaseURL, cfg.IsDevelopment()))
		webhookHandler.RegisterRoutes(r)
	})

	// Admin routes and the operator event stream share the API key guard.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.AdminAPIKey))
		adminHandler.RegisterRoutes(r)
	})
	r.With(middleware.APIKey(cfg.AdminAPIKey)).Get("/ws/events", wsHandler.ServeHTTP)

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the outbound delivery worker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	slog.Info("Outbound queue worker started", "size", cfg.Queue.Size)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	queue.Stop()
	slog.Info("Server stopped successfully")
}
