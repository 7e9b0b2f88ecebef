package repositories

import (
	"context"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

// ReportCache holds live-computed reports keyed by period and ledger revision.
// A new revision makes older entries unreachable, so nothing is ever evicted explicitly.
type ReportCache interface {
	// GetReport returns apperrors.ErrNotFound on a miss.
	GetReport(ctx context.Context, period domain.Period, revision int64) (*domain.PeriodReport, error)
	SetReport(ctx context.Context, report domain.PeriodReport) error
}
