package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/tasktracker/internal/handler"
	"github.com/aryan0dhankhar/tasktracker/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/tasktracker/internal/observability/tracing"
	"github.com/aryan0dhankhar/tasktracker/internal/security/audit"
	"github.com/aryan0dhankhar/tasktracker/internal/security/auth"
	"github.com/aryan0dhankhar/tasktracker/internal/service"
	"github.com/aryan0dhankhar/tasktracker/pkg/config"
)

const serviceName = "tasktracker"

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting task tracker server",
		slog.String("environment", cfg.Environment),
		slog.String("store", cfg.StoreDriver),
	)

	if cfg.UsesDevSecret() {
		log.Warn("JWT_SECRET not set: signing tokens with the public development key")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	shutdownTracing, err := tracing.Init(ctx, log, tracing.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: serviceName,
		Environment: cfg.Environment,
		StoreDriver: cfg.StoreDriver,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	// 4. Storage backends
	be, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.close(log)

	// 5. Security components
	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("init token manager: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	auditLogger := audit.NewLogger(log)

	// 6. Services and handlers
	authService := service.NewAuthService(be.users, tokenManager, hasher, be.profiles, log)
	taskService := service.NewTaskService(be.tasks, log)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:               handler.NewAuthHandler(authService, log),
		Tasks:              handler.NewTaskHandler(taskService, log),
		Health:             handler.NewHealthHandler(be.checks, log),
		Verifier:           tokenManager,
		Audit:              auditLogger,
		Metrics:            promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             log,
	})

	// 7. HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Duration("token_ttl", cfg.TokenTTL),
	)

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
	return nil
}
