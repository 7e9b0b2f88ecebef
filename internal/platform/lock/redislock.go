// Package lock coordinates snapshot work across worker processes through Redis.
package lock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/middleware"
)

const defaultTTL = 2 * time.Minute

// PeriodLocker implements portssvc.PeriodLocker with bsm/redislock.
type PeriodLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewPeriodLocker creates a locker. A non-positive ttl falls back to two minutes.
func NewPeriodLocker(rdb *redis.Client, ttl time.Duration) *PeriodLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &PeriodLocker{client: redislock.New(rdb), ttl: ttl}
}

var _ portssvc.PeriodLocker = (*PeriodLocker)(nil)

func (l *PeriodLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error) {
	lk, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() {
		// Release even when the caller has been cancelled.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := lk.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			middleware.GetLoggerFromCtx(ctx).Warn("failed to release redis lock",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}()
	return true, fn(ctx)
}
