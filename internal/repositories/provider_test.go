package repositories

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/koperasi_ledger/internal/platform/config"
)

func TestOpen_MemorySeedsChart(t *testing.T) {
	ctx := context.Background()
	provider, closeFn, err := Open(ctx, &config.Config{StorageDriver: config.StorageDriverMemory}, slog.Default())
	require.NoError(t, err)
	defer closeFn()

	for _, code := range []string{"3-1300", "3-9000", "1-1000"} {
		acc, err := provider.AccountRepo.FindAccountByCode(ctx, code)
		require.NoError(t, err, code)
		assert.True(t, acc.IsActive, code)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{StorageDriver: "mongo"}, slog.Default())
	assert.ErrorContains(t, err, "unknown storage driver")
}
