package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

// Client submits ledger tasks to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisConnOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueSnapshotPeriod enqueues a snapshot task and returns its id. A task
// already pending for the period is reported as success.
func (c *Client) EnqueueSnapshotPeriod(ctx context.Context, period domain.Period) (string, error) {
	task, err := NewSnapshotPeriodTask(period)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return snapshotTaskID(period), nil
	}
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// EnqueueCloseYear enqueues a close-year task. A task already pending for
// the year is reported as success.
func (c *Client) EnqueueCloseYear(ctx context.Context, year int) (string, error) {
	task, err := NewCloseYearTask(year)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return closeYearTaskID(year), nil
	}
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
