package repositories

import (
	"context"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

// SnapshotRepository persists PeriodReports for closed periods.
type SnapshotRepository interface {
	// FindSnapshot returns apperrors.ErrNotFound when no snapshot exists.
	FindSnapshot(ctx context.Context, periodType domain.PeriodType, periodKey string) (*domain.PeriodSnapshot, error)

	// SaveSnapshot upserts a snapshot as fresh. It runs under the writer lock and
	// fails with apperrors.ErrConflict when the ledger revision no longer matches
	// snapshot.Revision.
	SaveSnapshot(ctx context.Context, snapshot domain.PeriodSnapshot) error

	// ListStaleSnapshots returns up to limit stale snapshots, oldest period first.
	ListStaleSnapshots(ctx context.Context, limit int) ([]domain.PeriodSnapshot, error)

	// DeleteSnapshot removes a snapshot; apperrors.ErrNotFound when absent.
	DeleteSnapshot(ctx context.Context, periodType domain.PeriodType, periodKey string) error
}
