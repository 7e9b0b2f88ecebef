package services_test

import (
	"context"
	"iter"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/SscSPs/koperasi_ledger/internal/core/services"
	"github.com/SscSPs/koperasi_ledger/internal/repositories/memory"
)

// stubJournalReader serves a fixed aggregate and counts how often it is read.
type stubJournalReader struct {
	agg        domain.WindowAggregate
	daily      *domain.DailyAggregate
	reads      atomic.Int32
	dailyReads atomic.Int32
}

func (r *stubJournalReader) FindEntryByID(context.Context, string) (*domain.JournalEntry, error) {
	return nil, apperrors.ErrNotFound
}

func (r *stubJournalReader) ListEntries(context.Context, domain.EntryFilter, int, *string) ([]domain.JournalEntry, *string, error) {
	return nil, nil, nil
}

func (r *stubJournalReader) QueryLines(context.Context, string, time.Time, time.Time) iter.Seq2[domain.LedgerLine, error] {
	return func(func(domain.LedgerLine, error) bool) {}
}

func (r *stubJournalReader) AggregateWindow(_ context.Context, start, end time.Time) (*domain.WindowAggregate, error) {
	r.reads.Add(1)
	agg := r.agg
	agg.Start, agg.End = start, end
	return &agg, nil
}

func (r *stubJournalReader) AggregateDaily(_ context.Context, period domain.Period) (*domain.DailyAggregate, error) {
	r.dailyReads.Add(1)
	if r.daily == nil {
		return domain.NewDailyAggregate(period, r.agg.Revision), nil
	}
	return r.daily, nil
}

func (r *stubJournalReader) CurrentRevision(context.Context) (int64, error) {
	return r.agg.Revision, nil
}

func within(debit, credit string) domain.AccountWindowTotals {
	return domain.AccountWindowTotals{Within: domain.BalanceTotals{Debit: d(debit), Credit: d(credit)}}
}

func TestDailyShuSeries_ComesFromOneRead(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedChart(t, store)
	accountSvc := services.NewAccountService(store)

	period, err := domain.MonthlyPeriod(2025, time.February)
	require.NoError(t, err)
	daily := domain.NewDailyAggregate(period, 4)
	daily.Before["4-1000"] = domain.BalanceTotals{Debit: d("0"), Credit: d("1000")}
	daily.Before["1-1000"] = domain.BalanceTotals{Debit: d("1000"), Credit: d("0")}
	daily.AddWithin(domain.NewDate(2025, 2, 3), "4-1000", domain.BalanceTotals{Debit: d("0"), Credit: d("250")})
	daily.AddWithin(domain.NewDate(2025, 2, 3), "5-1000", domain.BalanceTotals{Debit: d("50"), Credit: d("0")})
	daily.AddWithin(domain.NewDate(2025, 2, 3), "1-1000", domain.BalanceTotals{Debit: d("200"), Credit: d("0")})
	daily.AddWithin(domain.NewDate(2025, 2, 10), "3-1300", domain.BalanceTotals{Debit: d("0"), Credit: d("75")})

	reader := &stubJournalReader{daily: daily}
	rollup := services.NewRollupService(services.NewTrialBalanceEngine(reader, accountSvc), reader, store, accountSvc, nil)

	series, err := rollup.DailyShuSeries(ctx, period)
	require.NoError(t, err)
	require.Len(t, series, 28)
	assert.Equal(t, int32(1), reader.dailyReads.Load())

	assert.True(t, series[0].ShuCumulative.Equal(d("1000")), series[0].ShuCumulative.String())
	assert.True(t, series[2].ShuPeriod.Equal(d("200")), series[2].ShuPeriod.String())
	assert.True(t, series[9].ShuPeriod.Equal(d("75")), series[9].ShuPeriod.String())
	assert.True(t, series[27].ShuCumulative.Equal(d("1275")), series[27].ShuCumulative.String())
}

func TestTrialBalanceEngine_ComputationErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedChart(t, store)
	accountSvc := services.NewAccountService(store)

	cases := map[string]map[string]domain.AccountWindowTotals{
		"unbalanced": {
			"1-1000": within("100", "0"),
			"4-1000": within("0", "90"),
		},
		"header activity": {
			"1-0000": within("100", "0"),
			"4-1000": within("0", "100"),
		},
		"unknown account": {
			"7-7777": within("100", "0"),
			"4-1000": within("0", "100"),
		},
	}
	for name, accounts := range cases {
		t.Run(name, func(t *testing.T) {
			reader := &stubJournalReader{agg: domain.WindowAggregate{Accounts: accounts, Revision: 3}}
			engine := services.NewTrialBalanceEngine(reader, accountSvc)

			report, err := engine.ComputeDaily(ctx, domain.NewDate(2025, 1, 5))

			assert.ErrorIs(t, err, apperrors.ErrComputation)
			assert.Nil(t, report)
		})
	}
}

func TestTrialBalanceEngine_NegativeBalanceShowsOnOppositeSide(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedChart(t, store)
	reader := &stubJournalReader{agg: domain.WindowAggregate{Accounts: map[string]domain.AccountWindowTotals{
		"1-1000": within("0", "250"),
		"2-1000": within("250", "0"),
	}}}
	engine := services.NewTrialBalanceEngine(reader, services.NewAccountService(store))

	report, err := engine.ComputeDaily(ctx, domain.NewDate(2025, 1, 5))
	require.NoError(t, err)

	kas, _ := report.Row("1-1000")
	assert.True(t, d("-250").Equal(kas.ClosingBalance))
	assert.True(t, d("250").Equal(kas.ClosingCredit))
	assert.True(t, kas.ClosingDebit.IsZero())
	simpanan, _ := report.Row("2-1000")
	assert.True(t, d("250").Equal(simpanan.ClosingDebit))
}

func TestTrialBalanceEngine_EmptyLedger(t *testing.T) {
	reader := &stubJournalReader{agg: domain.WindowAggregate{Accounts: map[string]domain.AccountWindowTotals{}}}
	engine := services.NewTrialBalanceEngine(reader, services.NewAccountService(memory.NewStore()))

	report, err := engine.ComputeDaily(context.Background(), domain.NewDate(2025, 1, 5))

	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.True(t, report.Summary.TotalDebit.IsZero())
}

// MockReportCache is a mock type for the ReportCache interface
type MockReportCache struct {
	mock.Mock
}

func (m *MockReportCache) GetReport(ctx context.Context, period domain.Period, revision int64) (*domain.PeriodReport, error) {
	args := m.Called(ctx, period, revision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodReport), args.Error(1)
}

func (m *MockReportCache) SetReport(ctx context.Context, report domain.PeriodReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func TestRollupService_LiveReportsGoThroughCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedChart(t, store)
	accountSvc := services.NewAccountService(store)
	reader := &stubJournalReader{agg: domain.WindowAggregate{Revision: 9, Accounts: map[string]domain.AccountWindowTotals{
		"1-1000": within("100", "0"),
		"4-1000": within("0", "100"),
	}}}
	engine := services.NewTrialBalanceEngine(reader, accountSvc)
	cache := new(MockReportCache)
	rollup := services.NewRollupService(engine, reader, store, accountSvc, cache)
	period := domain.DailyPeriod(domain.NewDate(2025, 1, 5))

	cache.On("GetReport", ctx, period, int64(9)).Return(nil, apperrors.NewNotFoundError("report")).Once()
	cache.On("SetReport", ctx, mock.MatchedBy(func(r domain.PeriodReport) bool { return r.Revision == 9 })).Return(nil).Once()

	first, err := rollup.Resolve(ctx, period)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceJurnal, first.Summary.Source)
	assert.Equal(t, int32(1), reader.reads.Load())

	cache.On("GetReport", ctx, period, int64(9)).Return(first, nil).Once()

	second, err := rollup.Resolve(ctx, period)
	require.NoError(t, err)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, int32(1), reader.reads.Load(), "a cache hit must not recompute")
	cache.AssertExpectations(t)
}

func TestRollupService_CacheFailureStillComputes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedChart(t, store)
	accountSvc := services.NewAccountService(store)
	engine := services.NewTrialBalanceEngine(store, accountSvc)
	cache := new(MockReportCache)
	rollup := services.NewRollupService(engine, store, store, accountSvc, cache)

	cache.On("GetReport", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)
	cache.On("SetReport", mock.Anything, mock.Anything).Return(assert.AnError)

	report, err := rollup.ResolveDaily(ctx, domain.NewDate(2025, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, domain.SourceJurnal, report.Summary.Source)
}

// MockPeriodLocker is a mock type for the PeriodLocker interface
type MockPeriodLocker struct {
	mock.Mock
}

func (m *MockPeriodLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error) {
	args := m.Called(ctx, key)
	if args.Bool(0) {
		if err := fn(ctx); err != nil {
			return true, err
		}
	}
	return args.Bool(0), args.Error(1)
}

func TestSnapshotService_RefreshRespectsPeriodLock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedChart(t, store)
	svc := services.NewServiceContainer(testConfig(), memory.NewRepositoryProvider(store))
	jan, _ := domain.MonthlyPeriod(2025, time.January)
	feb, _ := domain.MonthlyPeriod(2025, time.February)

	_, err := svc.Snapshot.SnapshotPeriod(ctx, jan)
	require.NoError(t, err)
	_, err = svc.Snapshot.SnapshotPeriod(ctx, feb)
	require.NoError(t, err)
	_, err = store.SaveEntry(ctx, domain.JournalEntry{
		EntryID:    "e1",
		EntryDate:  domain.NewDate(2025, 1, 10),
		SourceKind: domain.SourceManual,
		Lines: []domain.JournalLine{
			{AccountCode: "1-1000", Debit: d("10")},
			{AccountCode: "4-1000", Credit: d("10")},
		},
	})
	require.NoError(t, err)

	locker := new(MockPeriodLocker)
	locker.On("WithLock", mock.Anything, "snapshot:monthly:2025-01").Return(true, nil).Once()
	locker.On("WithLock", mock.Anything, "snapshot:monthly:2025-02").Return(false, nil).Once()
	snapshots := services.NewSnapshotService(services.NewTrialBalanceEngine(store, svc.Account), store, locker, 2)

	n, err := snapshots.RefreshStaleSnapshots(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stale, err := store.ListStaleSnapshots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "2025-02", stale[0].Key)
	locker.AssertExpectations(t)
}

func TestSnapshotService_SaveConflictsWhenLedgerMoves(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedChart(t, store)
	// The stub reports revision 5 while the store is still at 0.
	reader := &stubJournalReader{agg: domain.WindowAggregate{Revision: 5, Accounts: map[string]domain.AccountWindowTotals{}}}
	engine := services.NewTrialBalanceEngine(reader, services.NewAccountService(store))
	snapshots := services.NewSnapshotService(engine, store, nil, 1)
	jan, _ := domain.MonthlyPeriod(2025, time.January)

	_, err := snapshots.SnapshotPeriod(ctx, jan)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	_, err = store.FindSnapshot(ctx, jan.Type, jan.Key)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
