package services

import (
	"context"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

// TrialBalanceEngine computes PeriodReports live from the journal
type TrialBalanceEngine interface {
	// ComputeDaily computes the report for a single date.
	ComputeDaily(ctx context.Context, date time.Time) (*domain.PeriodReport, error)

	// ComputePeriod computes the report for any window.
	ComputePeriod(ctx context.Context, period domain.Period) (*domain.PeriodReport, error)
}

// RollupService resolves reports from snapshots or live computation
type RollupService interface {
	ResolveDaily(ctx context.Context, date time.Time) (*domain.PeriodReport, error)
	ComputeMonthly(ctx context.Context, year int, month time.Month) (*domain.PeriodReport, error)
	ComputeYearly(ctx context.Context, year int) (*domain.PeriodReport, error)

	// Resolve returns a fresh snapshot when one exists, else a live report.
	Resolve(ctx context.Context, period domain.Period) (*domain.PeriodReport, error)

	// DailyShuSeries lists shuPeriod/shuCumulative for every day of the period.
	DailyShuSeries(ctx context.Context, period domain.Period) ([]domain.DailyShu, error)
}

// SnapshotService manages persisted period snapshots
type SnapshotService interface {
	SnapshotPeriod(ctx context.Context, period domain.Period) (*domain.PeriodSnapshot, error)
	RefreshStaleSnapshots(ctx context.Context) (int, error)
	CloseYear(ctx context.Context, year int) ([]domain.PeriodSnapshot, error)
	DeleteSnapshot(ctx context.Context, period domain.Period) error
}

// PeriodLocker serialises snapshot work on one period key across processes.
type PeriodLocker interface {
	// WithLock runs fn while holding key. It reports false without running fn
	// when another holder has the key.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error)
}
