package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chat-notify/internal/auth"
	"chat-notify/internal/config"
	"chat-notify/internal/handler"
	"chat-notify/internal/messaging"
	"chat-notify/internal/middleware"
	"chat-notify/internal/notify"
	"chat-notify/internal/observability"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting notify server")

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgresql")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := notify.NewRegistry(notify.DefaultCapacity)
	sinks := []notify.Sink{registry}

	var bridge *messaging.EventBridge
	if cfg.RabbitMQURL != "" {
		bridgeCtx, bridgeCancel := context.WithTimeout(ctx, 60*time.Second)
		bridge, err = messaging.NewEventBridgeWithRetry(bridgeCtx, cfg.RabbitMQURL)
		bridgeCancel()
		if err != nil {
			slog.Error("failed to connect event bridge", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer bridge.Close()
		sinks = append(sinks, bridge)
	}

	listener := notify.NewListener(cfg.DatabaseURL, sinks...)
	listenerErr := make(chan error, 1)
	go func() {
		listenerErr <- listener.Run(ctx)
	}()
	slog.Info("change feed listener started")

	tokenManager := auth.NewTokenManager(cfg.JWTSecret)
	eventsHandler := handler.NewEventsHandler(registry)
	wsHandler := handler.NewWSHandler(registry, middleware.ParseOrigins(cfg.AllowedOrigins))

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.Metrics())
	r.Use(middleware.OpenAPIValidator(middleware.DefaultOpenAPIValidatorConfig()))

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db, bridge))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", handler.Index)

	connectLimiter := middleware.NewRateLimiter(ctx, 5, 10)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokenManager))
		r.Use(connectLimiter.Middleware())

		r.Get("/events", eventsHandler.HandleEvents)
		r.Get("/ws/events", wsHandler.HandleConnection)
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// No write timeout: event streams stay open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("notify server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("shutting down server", slog.String("signal", sig.String()))
	case err := <-listenerErr:
		// The feed has no backlog, so a lost connection means missed
		// events; exit and let the supervisor restart us.
		slog.Error("change feed listener failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	time.Sleep(100 * time.Millisecond)

	slog.Info("server stopped gracefully")
}
