package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_ledger/internal/models"
	"github.com/SscSPs/koperasi_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSnapshotRepository struct {
	BaseRepository
}

func newPgxSnapshotRepository(pool *pgxpool.Pool) *PgxSnapshotRepository {
	return &PgxSnapshotRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SnapshotRepository = (*PgxSnapshotRepository)(nil)

const snapshotColumns = `period_type, period_key, start_date, end_date, report, stale, revision, computed_at`

func scanSnapshot(row pgx.Row) (domain.PeriodSnapshot, error) {
	var m models.PeriodSnapshot
	if err := row.Scan(&m.PeriodType, &m.PeriodKey, &m.StartDate, &m.EndDate, &m.Report, &m.Stale, &m.Revision, &m.ComputedAt); err != nil {
		return domain.PeriodSnapshot{}, err
	}
	return mapping.ToDomainSnapshot(m)
}

// FindSnapshot retrieves a snapshot by period.
func (r *PgxSnapshotRepository) FindSnapshot(ctx context.Context, periodType domain.PeriodType, periodKey string) (*domain.PeriodSnapshot, error) {
	snap, err := scanSnapshot(r.Pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM period_snapshots WHERE period_type = $1 AND period_key = $2;`,
		string(periodType), periodKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("snapshot %s/%s", periodType, periodKey))
		}
		return nil, fmt.Errorf("failed to find snapshot %s/%s: %w", periodType, periodKey, err)
	}
	return &snap, nil
}

// SaveSnapshot upserts under the writer lock so no entry can commit between the
// revision check and the write.
func (r *PgxSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.PeriodSnapshot) error {
	snapshot.Stale = false
	if snapshot.ComputedAt.IsZero() {
		snapshot.ComputedAt = time.Now().UTC()
	}
	m, err := mapping.ToModelSnapshot(snapshot)
	if err != nil {
		return err
	}

	return r.withWriterLock(ctx, func(tx pgx.Tx) error {
		var current int64
		if err := tx.QueryRow(ctx, `SELECT revision FROM ledger_state WHERE id = 1;`).Scan(&current); err != nil {
			return fmt.Errorf("failed to read ledger revision: %w", err)
		}
		if current != snapshot.Revision {
			return fmt.Errorf("%w: ledger moved from revision %d to %d while computing snapshot %s/%s",
				apperrors.ErrConflict, snapshot.Revision, current, snapshot.Type, snapshot.Key)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO period_snapshots (`+snapshotColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (period_type, period_key) DO UPDATE SET
				start_date  = EXCLUDED.start_date,
				end_date    = EXCLUDED.end_date,
				report      = EXCLUDED.report,
				stale       = EXCLUDED.stale,
				revision    = EXCLUDED.revision,
				computed_at = EXCLUDED.computed_at;`,
			m.PeriodType, m.PeriodKey, m.StartDate, m.EndDate, m.Report, m.Stale, m.Revision, m.ComputedAt)
		if err != nil {
			return apperrors.NewAppError(500, "failed to save snapshot "+m.PeriodType+"/"+m.PeriodKey, err)
		}
		return nil
	})
}

// ListStaleSnapshots returns stale snapshots oldest period first.
func (r *PgxSnapshotRepository) ListStaleSnapshots(ctx context.Context, limit int) ([]domain.PeriodSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT `+snapshotColumns+` FROM period_snapshots WHERE stale ORDER BY start_date, end_date LIMIT $1;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []domain.PeriodSnapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return snapshots, nil
}

// DeleteSnapshot removes a snapshot.
func (r *PgxSnapshotRepository) DeleteSnapshot(ctx context.Context, periodType domain.PeriodType, periodKey string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM period_snapshots WHERE period_type = $1 AND period_key = $2;`, string(periodType), periodKey)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s/%s: %w", periodType, periodKey, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("snapshot %s/%s", periodType, periodKey))
	}
	return nil
}
