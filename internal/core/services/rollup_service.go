package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/utils/accounting"
)

// rollupService answers period reports from fresh snapshots, falling back to
// live computation through the optional report cache.
type rollupService struct {
	BaseService
	engine       portssvc.TrialBalanceEngine
	journalRepo  portsrepo.JournalReader
	snapshotRepo portsrepo.SnapshotRepository
	accountSvc   portssvc.AccountReaderSvc
	cache        portsrepo.ReportCache
}

// NewRollupService creates the RollupService. cache may be nil.
func NewRollupService(
	engine portssvc.TrialBalanceEngine,
	journalRepo portsrepo.JournalReader,
	snapshotRepo portsrepo.SnapshotRepository,
	accountSvc portssvc.AccountReaderSvc,
	cache portsrepo.ReportCache,
) portssvc.RollupService {
	return &rollupService{
		engine:       engine,
		journalRepo:  journalRepo,
		snapshotRepo: snapshotRepo,
		accountSvc:   accountSvc,
		cache:        cache,
	}
}

var _ portssvc.RollupService = (*rollupService)(nil)

func (s *rollupService) ResolveDaily(ctx context.Context, date time.Time) (*domain.PeriodReport, error) {
	return s.Resolve(ctx, domain.DailyPeriod(date))
}

func (s *rollupService) ComputeMonthly(ctx context.Context, year int, month time.Month) (*domain.PeriodReport, error) {
	period, err := domain.MonthlyPeriod(year, month)
	if err != nil {
		return nil, apperrors.NewValidationError("bulan", err.Error())
	}
	return s.Resolve(ctx, period)
}

func (s *rollupService) ComputeYearly(ctx context.Context, year int) (*domain.PeriodReport, error) {
	period, err := domain.YearlyPeriod(year)
	if err != nil {
		return nil, apperrors.NewValidationError("tahun", err.Error())
	}
	return s.Resolve(ctx, period)
}

func (s *rollupService) Resolve(ctx context.Context, period domain.Period) (*domain.PeriodReport, error) {
	snap, err := s.snapshotRepo.FindSnapshot(ctx, period.Type, period.Key)
	switch {
	case err == nil && !snap.Stale:
		report := snap.Report
		report.Summary.Source = domain.SourceSnapshot
		return &report, nil
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		// A broken snapshot store must not take reporting down.
		s.LogWarn(ctx, "Snapshot lookup failed, computing live",
			slog.String("period_type", string(period.Type)),
			slog.String("period_key", period.Key),
			slog.String("error", err.Error()))
	}
	return s.live(ctx, period)
}

func (s *rollupService) live(ctx context.Context, period domain.Period) (*domain.PeriodReport, error) {
	if s.cache == nil {
		return s.engine.ComputePeriod(ctx, period)
	}

	revision, err := s.journalRepo.CurrentRevision(ctx)
	if err != nil {
		return nil, err
	}
	cached, err := s.cache.GetReport(ctx, period, revision)
	if err == nil {
		cached.Summary.Source = domain.SourceJurnal
		return cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogWarn(ctx, "Report cache read failed", slog.String("error", err.Error()))
	}

	report, err := s.engine.ComputePeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetReport(ctx, *report); err != nil {
		s.LogWarn(ctx, "Report cache write failed", slog.String("error", err.Error()))
	}
	return report, nil
}

// DailyShuSeries buckets SHU contributions by day from one consistent read,
// integrating from ledger inception.
func (s *rollupService) DailyShuSeries(ctx context.Context, period domain.Period) ([]domain.DailyShu, error) {
	accounts, err := s.accountSvc.ListPostable(ctx)
	if err != nil {
		return nil, err
	}
	agg, err := s.journalRepo.AggregateDaily(ctx, period)
	if err != nil {
		return nil, err
	}

	classes := make(map[string]domain.Classification, len(accounts))
	for _, acc := range accounts {
		if class := s.accountSvc.Classify(acc); class.AffectsShu() {
			classes[acc.Code] = class
		}
	}
	contribution := func(totals map[string]domain.BalanceTotals) decimal.Decimal {
		sum := decimal.Zero
		for code, t := range totals {
			if class, ok := classes[code]; ok {
				sum = sum.Add(accounting.ShuContribution(class, t.Debit, t.Credit))
			}
		}
		return sum
	}

	days := period.Days()
	series := make([]domain.DailyShu, 0, len(days))
	cumulative := contribution(agg.Before)
	for _, d := range days {
		shu := contribution(agg.Days[d])
		cumulative = cumulative.Add(shu)
		series = append(series, domain.DailyShu{
			Date:          d,
			ShuPeriod:     accounting.Round(shu),
			ShuCumulative: accounting.Round(cumulative),
		})
	}
	return series, nil
}
