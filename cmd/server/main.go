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

	"github.com/Priya8975/newsletter-subscription-service/internal/api"
	"github.com/Priya8975/newsletter-subscription-service/internal/config"
	"github.com/Priya8975/newsletter-subscription-service/internal/ratelimit"
	"github.com/Priya8975/newsletter-subscription-service/internal/store"
	"github.com/Priya8975/newsletter-subscription-service/internal/subscription"
	ws "github.com/Priya8975/newsletter-subscription-service/internal/websocket"
	"github.com/Priya8975/newsletter-subscription-service/migrations"
)

const demoRecords = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL
	pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()
	logger.Info("connected to PostgreSQL")

	if err := pgStore.RunMigrations(ctx, migrations.FS); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	if cfg.SeedData {
		seeded, err := pgStore.SeedDemoData(ctx, demoRecords, time.Now())
		if err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
		logger.Info("demo data checked", "inserted", seeded)
	}

	// Redis only backs the rate limiter, so it stays optional.
	var limiter *ratelimit.Limiter
	if cfg.RateLimitEnabled() {
		redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", "error", err)
		} else {
			defer redisStore.Close()
			limiter = ratelimit.NewLimiter(redisStore.Client(), cfg.RateLimitPerSecond, logger)
			logger.Info("rate limiting enabled", "per_second", limiter.Limit())
		}
	}

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	svc := subscription.NewService(pgStore)
	router := api.NewRouter(svc, pgStore, hub, limiter, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
