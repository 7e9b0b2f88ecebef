package pgsql

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_ledger/internal/models"
	"github.com/SscSPs/koperasi_ledger/internal/utils/accounting"
	"github.com/SscSPs/koperasi_ledger/internal/utils/mapping"
	"github.com/SscSPs/koperasi_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_date, sequence, source_document_number, source_kind, source_id, description,
	created_at, created_by, last_updated_at, last_updated_by`

// loadEntries runs a header query selecting entryColumns and attaches each entry's lines.
func loadEntries(ctx context.Context, q querier, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	var headers []models.JournalEntry
	for rows.Next() {
		var m models.JournalEntry
		if err := rows.Scan(
			&m.EntryID,
			&m.EntryDate,
			&m.Sequence,
			&m.SourceDocumentNumber,
			&m.SourceKind,
			&m.SourceID,
			&m.Description,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		headers = append(headers, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}
	if len(headers) == 0 {
		return []domain.JournalEntry{}, nil
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.EntryID
	}
	lineRows, err := q.Query(ctx, `
		SELECT entry_id, line_no, account_id, account_code, debit, credit
		FROM journal_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_no;`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer lineRows.Close()

	linesByEntry := make(map[string][]models.JournalLine, len(headers))
	for lineRows.Next() {
		var l models.JournalLine
		if err := lineRows.Scan(&l.EntryID, &l.LineNo, &l.AccountID, &l.AccountCode, &l.Debit, &l.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		linesByEntry[l.EntryID] = append(linesByEntry[l.EntryID], l)
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal line rows: %w", err)
	}

	entries := make([]domain.JournalEntry, len(headers))
	for i, h := range headers {
		entries[i] = mapping.ToDomainJournalEntry(h, linesByEntry[h.EntryID])
	}
	return entries, nil
}

func findEntryByID(ctx context.Context, q querier, entryID string) (*domain.JournalEntry, error) {
	entries, err := loadEntries(ctx, q, `SELECT `+entryColumns+` FROM journal_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.NewNotFoundError("journal entry " + entryID)
	}
	return &entries[0], nil
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return findEntryByID(ctx, r.Pool, entryID)
}

// ListEntries returns entries newest first using a (date, sequence) keyset cursor.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "entry_date >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "entry_date <= "+arg(filter.To))
	}
	if filter.SourceKind != "" {
		conds = append(conds, "source_kind = "+arg(string(filter.SourceKind)))
	}
	if nextToken != nil && *nextToken != "" {
		date, seq, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		conds = append(conds, fmt.Sprintf("(entry_date, sequence) < (%s, %s)", arg(date), arg(seq)))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY entry_date DESC, sequence DESC LIMIT " + arg(limit+1) + ";"

	entries, err := loadEntries(ctx, r.Pool, query, args...)
	if err != nil {
		return nil, nil, err
	}

	var token *string
	if len(entries) > limit {
		last := entries[limit-1]
		t := pagination.EncodeToken(last.EntryDate, last.Sequence)
		token = &t
		entries = entries[:limit]
	}
	return entries, token, nil
}

// QueryLines streams an account's lines straight from the cursor.
func (r *PgxJournalRepository) QueryLines(ctx context.Context, accountCode string, fromExclusive, toInclusive time.Time) iter.Seq2[domain.LedgerLine, error] {
	return func(yield func(domain.LedgerLine, error) bool) {
		var from any
		if !fromExclusive.IsZero() {
			from = fromExclusive
		}
		rows, err := r.Pool.Query(ctx, `
			SELECT je.entry_id, je.entry_date, je.sequence, jl.line_no, jl.account_id, jl.account_code, jl.debit, jl.credit
			FROM journal_lines jl
			JOIN journal_entries je ON je.entry_id = jl.entry_id
			WHERE jl.account_code = $1
			  AND ($2::date IS NULL OR je.entry_date > $2::date)
			  AND je.entry_date <= $3
			ORDER BY je.entry_date, je.sequence, jl.line_no;`, accountCode, from, toInclusive)
		if err != nil {
			yield(domain.LedgerLine{}, fmt.Errorf("failed to query ledger lines for %s: %w", accountCode, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var l domain.LedgerLine
			if err := rows.Scan(&l.EntryID, &l.EntryDate, &l.EntrySequence, &l.LineNo,
				&l.AccountID, &l.AccountCode, &l.Debit, &l.Credit); err != nil {
				yield(domain.LedgerLine{}, fmt.Errorf("failed to scan ledger line: %w", err))
				return
			}
			l.EntryDate = domain.NormalizeDate(l.EntryDate)
			if !yield(l, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.LedgerLine{}, fmt.Errorf("error iterating ledger lines: %w", err))
		}
	}
}

// AggregateWindow reads the revision and the per-account sums from one snapshot.
func (r *PgxJournalRepository) AggregateWindow(ctx context.Context, start, end time.Time) (*domain.WindowAggregate, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin read transaction", err)
	}
	defer r.Rollback(ctx, tx)

	agg := &domain.WindowAggregate{
		Start:    start,
		End:      end,
		Accounts: make(map[string]domain.AccountWindowTotals),
	}
	if err := tx.QueryRow(ctx, `SELECT revision FROM ledger_state WHERE id = 1;`).Scan(&agg.Revision); err != nil {
		return nil, fmt.Errorf("failed to read ledger revision: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT jl.account_code,
		       COALESCE(SUM(CASE WHEN je.entry_date <  $1 THEN jl.debit  ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN je.entry_date <  $1 THEN jl.credit ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN je.entry_date >= $1 THEN jl.debit  ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN je.entry_date >= $1 THEN jl.credit ELSE 0 END), 0)
		FROM journal_lines jl
		JOIN journal_entries je ON je.entry_id = jl.entry_id
		WHERE je.entry_date <= $2
		GROUP BY jl.account_code;`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger window: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			code string
			t    domain.AccountWindowTotals
		)
		if err := rows.Scan(&code, &t.Before.Debit, &t.Before.Credit, &t.Within.Debit, &t.Within.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		agg.Accounts[code] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregate rows: %w", err)
	}
	return agg, r.Commit(ctx, tx)
}

// AggregateDaily reads the revision, the per-account sums before the period
// and the per-day sums inside it from one snapshot.
func (r *PgxJournalRepository) AggregateDaily(ctx context.Context, period domain.Period) (*domain.DailyAggregate, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin read transaction", err)
	}
	defer r.Rollback(ctx, tx)

	var revision int64
	if err := tx.QueryRow(ctx, `SELECT revision FROM ledger_state WHERE id = 1;`).Scan(&revision); err != nil {
		return nil, fmt.Errorf("failed to read ledger revision: %w", err)
	}
	agg := domain.NewDailyAggregate(period, revision)

	// Rows before the window carry a NULL day.
	rows, err := tx.Query(ctx, `
		SELECT CASE WHEN je.entry_date < $1 THEN NULL ELSE je.entry_date END AS day,
		       jl.account_code,
		       COALESCE(SUM(jl.debit), 0),
		       COALESCE(SUM(jl.credit), 0)
		FROM journal_lines jl
		JOIN journal_entries je ON je.entry_id = jl.entry_id
		WHERE je.entry_date <= $2
		GROUP BY 1, jl.account_code;`, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger days: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day  *time.Time
			code string
			t    domain.BalanceTotals
		)
		if err := rows.Scan(&day, &code, &t.Debit, &t.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan daily aggregate row: %w", err)
		}
		if day == nil {
			agg.Before[code] = agg.Before[code].Add(t)
			continue
		}
		agg.AddWithin(*day, code, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily aggregate rows: %w", err)
	}
	return agg, r.Commit(ctx, tx)
}

// CurrentRevision returns the ledger revision.
func (r *PgxJournalRepository) CurrentRevision(ctx context.Context) (int64, error) {
	var rev int64
	if err := r.Pool.QueryRow(ctx, `SELECT revision FROM ledger_state WHERE id = 1;`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("failed to read ledger revision: %w", err)
	}
	return rev, nil
}

// SaveEntry persists one entry in its own write transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	var saved *domain.JournalEntry
	err := r.WithinWriteTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		saved, err = tx.SaveEntry(ctx, entry)
		return err
	})
	return saved, err
}

// DeleteEntry removes one entry in its own write transaction.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	var deleted *domain.JournalEntry
	err := r.WithinWriteTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		deleted, err = tx.DeleteEntry(ctx, entryID)
		return err
	})
	return deleted, err
}

// WithinWriteTx runs fn under the advisory writer lock. The revision is bumped
// before commit when fn changed the journal.
func (r *PgxJournalRepository) WithinWriteTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	return r.withWriterLock(ctx, func(tx pgx.Tx) error {
		ltx := &pgxLedgerTx{tx: tx}
		if err := fn(ctx, ltx); err != nil {
			return err
		}
		if !ltx.dirty {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE ledger_state SET revision = revision + 1 WHERE id = 1;`); err != nil {
			return fmt.Errorf("failed to bump ledger revision: %w", err)
		}
		return nil
	})
}

// pgxLedgerTx implements portsrepo.LedgerTx inside a locked transaction.
type pgxLedgerTx struct {
	tx    pgx.Tx
	dirty bool
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

func (t *pgxLedgerTx) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	return findAccountsByCodes(ctx, t.tx, codes)
}

func (t *pgxLedgerTx) SaveEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	if err := accounting.ValidateLines(entry.Lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	accounts, err := findAccountsByCodes(ctx, t.tx, entry.AccountCodes())
	if err != nil {
		return nil, err
	}
	lines := make([]domain.JournalLine, len(entry.Lines))
	for i, l := range entry.Lines {
		acc, ok := accounts[l.AccountCode]
		if !ok {
			return nil, fmt.Errorf("%w: account %s does not exist", apperrors.ErrReference, l.AccountCode)
		}
		if acc.IsHeader {
			return nil, fmt.Errorf("%w: account %s is a header account", apperrors.ErrReference, l.AccountCode)
		}
		l.AccountID = acc.AccountID
		lines[i] = l
	}
	entry.Lines = lines
	entry.EntryDate = domain.NormalizeDate(entry.EntryDate)

	m := mapping.ToModelJournalEntry(entry)
	err = t.tx.QueryRow(ctx, `
		INSERT INTO journal_entries (entry_id, entry_date, source_document_number, source_kind, source_id, description,
		                             created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING sequence;`,
		m.EntryID,
		m.EntryDate,
		m.SourceDocumentNumber,
		m.SourceKind,
		m.SourceID,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	).Scan(&entry.Sequence)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
		}
		return nil, apperrors.NewAppError(500, "failed to insert journal entry "+entry.EntryID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (entry_id, line_no, account_id, account_code, debit, credit)
		VALUES ($1, $2, $3, $4, $5, $6);`
	for i, l := range entry.Lines {
		batch.Queue(lineQuery, entry.EntryID, i+1, l.AccountID, l.AccountCode, l.Debit, l.Credit)
	}
	// Close surfaces the first failing insert.
	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert lines for journal entry "+entry.EntryID, err)
	}

	if err := t.invalidateFrom(ctx, entry.EntryDate); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (t *pgxLedgerTx) DeleteEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := findEntryByID(ctx, t.tx, entryID)
	if err != nil {
		return nil, err
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, entryID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete journal entry "+entryID, err)
	}
	// A replayed key must not point at an entry that no longer exists.
	if _, err := t.tx.Exec(ctx, `DELETE FROM idempotency_keys WHERE entry_id = $1;`, entryID); err != nil {
		return nil, fmt.Errorf("failed to drop idempotency keys of %s: %w", entryID, err)
	}
	if err := t.invalidateFrom(ctx, entry.EntryDate); err != nil {
		return nil, err
	}
	return entry, nil
}

// invalidateFrom marks every snapshot whose window ends on or after date stale.
func (t *pgxLedgerTx) invalidateFrom(ctx context.Context, date time.Time) error {
	t.dirty = true
	if _, err := t.tx.Exec(ctx, `UPDATE period_snapshots SET stale = TRUE WHERE end_date >= $1 AND NOT stale;`, date); err != nil {
		return fmt.Errorf("failed to invalidate snapshots from %s: %w", date.Format(domain.DateFormat), err)
	}
	return nil
}

func (t *pgxLedgerTx) FindEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.JournalEntry, error) {
	return loadEntries(ctx, t.tx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE source_kind = $1 AND source_id = $2 ORDER BY sequence;`,
		string(kind), sourceID)
}

func (t *pgxLedgerTx) SumBefore(ctx context.Context, accountCode string, before time.Time) (domain.BalanceTotals, error) {
	totals := domain.BalanceTotals{Debit: decimal.Zero, Credit: decimal.Zero}
	err := t.tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(jl.debit), 0), COALESCE(SUM(jl.credit), 0)
		FROM journal_lines jl
		JOIN journal_entries je ON je.entry_id = jl.entry_id
		WHERE jl.account_code = $1 AND je.entry_date < $2;`, accountCode, before).Scan(&totals.Debit, &totals.Credit)
	if err != nil {
		return domain.BalanceTotals{}, fmt.Errorf("failed to sum lines of %s: %w", accountCode, err)
	}
	return totals, nil
}

func (t *pgxLedgerTx) FindIdempotencyRecord(ctx context.Context, scope, key string) (*domain.IdempotencyRecord, error) {
	var rec domain.IdempotencyRecord
	err := t.tx.QueryRow(ctx, `
		SELECT scope, key, fingerprint, entry_id, created_at
		FROM idempotency_keys
		WHERE scope = $1 AND key = $2;`, scope, key).Scan(&rec.Scope, &rec.Key, &rec.Fingerprint, &rec.EntryID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("idempotency key " + key)
		}
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return &rec, nil
}

func (t *pgxLedgerTx) SaveIdempotencyRecord(ctx context.Context, record domain.IdempotencyRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO idempotency_keys (scope, key, fingerprint, entry_id, created_at)
		VALUES ($1, $2, $3, $4, $5);`, record.Scope, record.Key, record.Fingerprint, record.EntryID, record.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: idempotency key %s", apperrors.ErrDuplicate, record.Key)
		}
		return fmt.Errorf("failed to save idempotency key: %w", err)
	}
	return nil
}
