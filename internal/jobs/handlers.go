package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/middleware"
)

// SnapshotJobs runs snapshot maintenance tasks.
type SnapshotJobs struct {
	Snapshots portssvc.SnapshotService
	Logger    *slog.Logger
}

// NewSnapshotJobs constructs the job handlers.
func NewSnapshotJobs(snapshots portssvc.SnapshotService, logger *slog.Logger) *SnapshotJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotJobs{Snapshots: snapshots, Logger: logger}
}

// Handlers lists the task handlers to mount on the worker.
func (j *SnapshotJobs) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskSnapshotPeriod, Handler: j.HandleSnapshotPeriod},
		{Type: TaskRefreshStale, Handler: j.HandleRefreshStale},
		{Type: TaskCloseYear, Handler: j.HandleCloseYear},
	}
}

func (j *SnapshotJobs) taskContext(ctx context.Context, task *asynq.Task) (context.Context, *slog.Logger) {
	logger := j.Logger.With(slog.String("task", task.Type()))
	if id, ok := asynq.GetTaskID(ctx); ok {
		logger = logger.With(slog.String("task_id", id))
	}
	return middleware.WithLogger(ctx, logger), logger
}

// HandleSnapshotPeriod executes TaskSnapshotPeriod.
func (j *SnapshotJobs) HandleSnapshotPeriod(ctx context.Context, task *asynq.Task) error {
	ctx, logger := j.taskContext(ctx, task)
	var payload SnapshotPeriodPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warn("decode snapshot payload", slog.Any("error", err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	period, err := domain.ParsePeriod(domain.PeriodType(payload.PeriodType), payload.PeriodKey)
	if err != nil {
		logger.Warn("invalid snapshot period", slog.Any("error", err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if _, err := j.Snapshots.SnapshotPeriod(ctx, period); err != nil {
		return retryable(err)
	}
	return nil
}

// HandleRefreshStale executes TaskRefreshStale.
func (j *SnapshotJobs) HandleRefreshStale(ctx context.Context, task *asynq.Task) error {
	ctx, logger := j.taskContext(ctx, task)
	n, err := j.Snapshots.RefreshStaleSnapshots(ctx)
	if err != nil {
		logger.Error("refresh stale snapshots", slog.Any("error", err), slog.Int("refreshed", n))
		return retryable(err)
	}
	return nil
}

// HandleCloseYear executes TaskCloseYear.
func (j *SnapshotJobs) HandleCloseYear(ctx context.Context, task *asynq.Task) error {
	ctx, logger := j.taskContext(ctx, task)
	var payload CloseYearPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warn("decode close year payload", slog.Any("error", err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if _, err := j.Snapshots.CloseYear(ctx, payload.Year); err != nil {
		return retryable(err)
	}
	return nil
}

// retryable keeps conflicts and infrastructure errors retryable and stops
// retries for errors a second attempt cannot fix.
func retryable(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrComputation):
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}
