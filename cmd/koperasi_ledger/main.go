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

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/SscSPs/koperasi_ledger/internal/core/services"
	"github.com/SscSPs/koperasi_ledger/internal/handlers"
	"github.com/SscSPs/koperasi_ledger/internal/jobs"
	"github.com/SscSPs/koperasi_ledger/internal/middleware"
	"github.com/SscSPs/koperasi_ledger/internal/platform/cache"
	"github.com/SscSPs/koperasi_ledger/internal/platform/config"
	"github.com/SscSPs/koperasi_ledger/internal/platform/lock"
	"github.com/SscSPs/koperasi_ledger/internal/repositories"
	"github.com/SscSPs/koperasi_ledger/internal/utils"
)

// @title Koperasi Ledger API
// @version 1.0
// @description Double-entry ledger and period reports for a koperasi.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, closeRepos, err := repositories.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	routeOpts := handlers.Options{Posthog: posthogClient}
	var containerOpts []services.ContainerOption

	if cfg.RedisURL != "" {
		rdb, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("redis close", slog.String("error", err.Error()))
			}
		}()
		containerOpts = append(containerOpts,
			services.WithReportCache(cache.NewReportCache(rdb, cfg.ReportCacheTTL)),
			services.WithPeriodLocker(lock.NewPeriodLocker(rdb, 0)),
		)

		redisOpts, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to parse REDIS_URL for the task queue", slog.String("error", err.Error()))
			os.Exit(1)
		}
		jobClient := jobs.NewClient(redisOpts)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("task client close", slog.String("error", err.Error()))
			}
		}()
		routeOpts.Enqueuer = jobClient
		logger.Info("Report cache and task queue enabled")
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, containerOpts...)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, routeOpts); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}
