package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
)

// staleBatchSize bounds one refresh run.
const staleBatchSize = 500

type snapshotService struct {
	BaseService
	engine       portssvc.TrialBalanceEngine
	snapshotRepo portsrepo.SnapshotRepository
	locker       portssvc.PeriodLocker
	concurrency  int
	now          func() time.Time
}

// NewSnapshotService creates the SnapshotService. locker may be nil, in which
// case refreshes only coordinate within this process.
func NewSnapshotService(engine portssvc.TrialBalanceEngine, snapshotRepo portsrepo.SnapshotRepository, locker portssvc.PeriodLocker, concurrency int) portssvc.SnapshotService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &snapshotService{
		engine:       engine,
		snapshotRepo: snapshotRepo,
		locker:       locker,
		concurrency:  concurrency,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.SnapshotService = (*snapshotService)(nil)

// SnapshotPeriod computes the period live and persists it as fresh. The save
// fails with ErrConflict when a write landed after the computation.
func (s *snapshotService) SnapshotPeriod(ctx context.Context, period domain.Period) (*domain.PeriodSnapshot, error) {
	report, err := s.engine.ComputePeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	snapshot := domain.PeriodSnapshot{
		Period:     period,
		Report:     *report,
		Revision:   report.Revision,
		ComputedAt: s.now(),
	}
	snapshot.Report.Summary.Source = domain.SourceSnapshot
	if err := s.snapshotRepo.SaveSnapshot(ctx, snapshot); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to save snapshot", slog.String("period_key", period.Key))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Snapshot saved",
		slog.String("period_type", string(period.Type)),
		slog.String("period_key", period.Key),
		slog.Int64("revision", snapshot.Revision))
	return &snapshot, nil
}

func (s *snapshotService) lockKey(period domain.Period) string {
	return fmt.Sprintf("snapshot:%s:%s", period.Type, period.Key)
}

// snapshotLocked runs SnapshotPeriod under the period lock when a locker is
// configured. It returns a nil snapshot when another worker holds the lock.
func (s *snapshotService) snapshotLocked(ctx context.Context, period domain.Period) (*domain.PeriodSnapshot, error) {
	if s.locker == nil {
		return s.SnapshotPeriod(ctx, period)
	}
	var snap *domain.PeriodSnapshot
	obtained, err := s.locker.WithLock(ctx, s.lockKey(period), func(ctx context.Context) error {
		var err error
		snap, err = s.SnapshotPeriod(ctx, period)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !obtained {
		s.LogDebug(ctx, "Snapshot already being refreshed elsewhere", slog.String("period_key", period.Key))
	}
	return snap, nil
}

// RefreshStaleSnapshots recomputes up to one batch of stale snapshots. A
// snapshot that loses the race against a concurrent write stays stale for the
// next run.
func (s *snapshotService) RefreshStaleSnapshots(ctx context.Context) (int, error) {
	stale, err := s.snapshotRepo.ListStaleSnapshots(ctx, staleBatchSize)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	var refreshed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, snap := range stale {
		period := snap.Period
		g.Go(func() error {
			saved, err := s.snapshotLocked(gctx, period)
			switch {
			case errors.Is(err, apperrors.ErrConflict):
				s.LogWarn(gctx, "Snapshot refresh raced a write, leaving it stale", slog.String("period_key", period.Key))
				return nil
			case err != nil:
				return fmt.Errorf("refresh %s %s: %w", period.Type, period.Key, err)
			}
			if saved != nil {
				refreshed.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()
	n := int(refreshed.Load())
	s.LogInfo(ctx, "Stale snapshot refresh finished", slog.Int("stale", len(stale)), slog.Int("refreshed", n))
	return n, err
}

// CloseYear snapshots every month of the year and the year itself.
func (s *snapshotService) CloseYear(ctx context.Context, year int) ([]domain.PeriodSnapshot, error) {
	yearly, err := domain.YearlyPeriod(year)
	if err != nil {
		return nil, apperrors.NewValidationError("tahun", err.Error())
	}
	periods := make([]domain.Period, 0, 13)
	for m := time.January; m <= time.December; m++ {
		p, _ := domain.MonthlyPeriod(year, m)
		periods = append(periods, p)
	}
	periods = append(periods, yearly)

	results := make([]*domain.PeriodSnapshot, len(periods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, p := range periods {
		g.Go(func() error {
			snap, err := s.snapshotLocked(gctx, p)
			if err != nil {
				return fmt.Errorf("close %s: %w", p.Key, err)
			}
			results[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.PeriodSnapshot, 0, len(results))
	for _, snap := range results {
		if snap != nil {
			out = append(out, *snap)
		}
	}
	s.LogInfo(ctx, "Year closed", slog.Int("year", year), slog.Int("snapshots", len(out)))
	return out, nil
}

func (s *snapshotService) DeleteSnapshot(ctx context.Context, period domain.Period) error {
	if err := s.snapshotRepo.DeleteSnapshot(ctx, period.Type, period.Key); err != nil {
		return err
	}
	s.LogInfo(ctx, "Snapshot deleted",
		slog.String("period_type", string(period.Type)),
		slog.String("period_key", period.Key))
	return nil
}
