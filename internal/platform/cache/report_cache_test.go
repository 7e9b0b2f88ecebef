package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

func setupCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReportCache(client, time.Minute), mr
}

func TestReportCache_RoundTripByRevision(t *testing.T) {
	ctx := context.Background()
	rc, mr := setupCache(t)
	period := domain.DailyPeriod(domain.NewDate(2025, 1, 5))
	report := domain.PeriodReport{
		Period:   period,
		Revision: 4,
		Rows: []domain.TrialBalanceRow{
			{AccountCode: "1-1000", ClosingBalance: decimal.RequireFromString("100000.50")},
		},
		Summary: domain.ReportSummary{ShuPeriod: decimal.RequireFromString("100000.50"), Source: domain.SourceJurnal},
	}

	_, err := rc.GetReport(ctx, period, 4)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, rc.SetReport(ctx, report))
	assert.True(t, mr.Exists("laporan:daily:2025-01-05:4"))

	got, err := rc.GetReport(ctx, period, 4)
	require.NoError(t, err)
	assert.Equal(t, "1-1000", got.Rows[0].AccountCode)
	assert.True(t, report.Summary.ShuPeriod.Equal(got.Summary.ShuPeriod))

	_, err = rc.GetReport(ctx, period, 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "a newer revision never sees older reports")
}

func TestReportCache_ExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	rc, mr := setupCache(t)
	period := domain.DailyPeriod(domain.NewDate(2025, 1, 5))
	require.NoError(t, rc.SetReport(ctx, domain.PeriodReport{Period: period, Revision: 1}))

	mr.FastForward(2 * time.Minute)

	_, err := rc.GetReport(ctx, period, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), "not a url")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client, err := New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	_ = client.Close()
}
