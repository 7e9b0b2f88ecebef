package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/SscSPs/koperasi_ledger/internal/core/services"
	"github.com/SscSPs/koperasi_ledger/internal/jobs"
	"github.com/SscSPs/koperasi_ledger/internal/platform/cache"
	"github.com/SscSPs/koperasi_ledger/internal/platform/config"
	"github.com/SscSPs/koperasi_ledger/internal/platform/lock"
	"github.com/SscSPs/koperasi_ledger/internal/repositories"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.RedisURL == "" {
		logger.Error("REDIS_URL is required to run the worker")
		os.Exit(1)
	}
	if cfg.StorageDriver == config.StorageDriverMemory {
		// Snapshots must land in the store the API process reads.
		logger.Error("the worker needs a shared store, STORAGE_DRIVER=memory is not supported")
		os.Exit(1)
	}

	repos, closeRepos, err := repositories.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("open ledger store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	rdb, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("redis close", slog.String("error", err.Error()))
		}
	}()

	container := services.NewServiceContainer(cfg, repos,
		services.WithReportCache(cache.NewReportCache(rdb, cfg.ReportCacheTTL)),
		services.WithPeriodLocker(lock.NewPeriodLocker(rdb, 0)),
	)
	snapshotJobs := jobs.NewSnapshotJobs(container.Snapshot, logger)

	redisOpts, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Error("parse redis uri", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cron []jobs.CronRegistration
	if cfg.SnapshotRefreshCron != "" {
		cron = append(cron, jobs.CronRegistration{Spec: cfg.SnapshotRefreshCron, Task: jobs.NewRefreshStaleTask()})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers:    snapshotJobs.Handlers(),
		Cron:        cron,
	})
	if err != nil {
		logger.Error("init worker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
