package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

func TestSeed_BaselineChart(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	chart := BaselineChart(time.Now())

	require.NoError(t, store.Seed(ctx, chart))
	require.NoError(t, store.Seed(ctx, chart))

	accounts, err := store.ListAccounts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, accounts, len(chart))

	shu, err := store.FindAccountByCode(ctx, "3-1300")
	require.NoError(t, err)
	assert.True(t, shu.CarriesShu)
	assert.Equal(t, domain.Credit, shu.NormalBalanceSide)
	require.NotNil(t, shu.ParentCode)
	assert.Equal(t, "3-0000", *shu.ParentCode)

	counter, err := store.FindAccountByCode(ctx, "3-9000")
	require.NoError(t, err)
	assert.False(t, counter.IsHeader)

	beban, err := store.FindAccountByCode(ctx, "5-0000")
	require.NoError(t, err)
	assert.True(t, beban.IsHeader)
	assert.Equal(t, domain.Debit, beban.NormalBalanceSide)
}
