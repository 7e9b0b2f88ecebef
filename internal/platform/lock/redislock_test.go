package lock

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) (*PeriodLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPeriodLocker(client, time.Minute), mr
}

func TestWithLock_RunsAndReleases(t *testing.T) {
	ctx := context.Background()
	locker, mr := newLocker(t)

	ran := false
	obtained, err := locker.WithLock(ctx, "snapshot:monthly:2025-01", func(context.Context) error {
		ran = true
		assert.True(t, mr.Exists("lock:snapshot:monthly:2025-01"))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, obtained)
	assert.True(t, ran)
	assert.False(t, mr.Exists("lock:snapshot:monthly:2025-01"))
}

func TestWithLock_HeldElsewhere(t *testing.T) {
	ctx := context.Background()
	locker, _ := newLocker(t)

	obtained, err := locker.WithLock(ctx, "snapshot:yearly:2025", func(ctx context.Context) error {
		inner, err := locker.WithLock(ctx, "snapshot:yearly:2025", func(context.Context) error {
			t.Fatal("must not run while the key is held")
			return nil
		})
		assert.False(t, inner)
		return err
	})

	require.NoError(t, err)
	assert.True(t, obtained)
}

func TestWithLock_PropagatesError(t *testing.T) {
	locker, mr := newLocker(t)

	obtained, err := locker.WithLock(context.Background(), "k", func(context.Context) error {
		return assert.AnError
	})

	assert.True(t, obtained)
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, mr.Exists("lock:k"))
}
