package repositories

import (
	"context"
	"iter"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

// JournalReader defines read operations on the ledger.
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries returns entries newest first with keyset pagination.
	ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// QueryLines yields an account's lines with fromExclusive < date <= toInclusive,
	// ordered by entry date, insertion sequence and line number. A zero fromExclusive
	// starts at ledger inception. Each range over the sequence re-reads the store.
	QueryLines(ctx context.Context, accountCode string, fromExclusive, toInclusive time.Time) iter.Seq2[domain.LedgerLine, error]

	// AggregateWindow returns per-account totals before start and within [start, end]
	// from a single consistent read, together with the ledger revision it observed.
	AggregateWindow(ctx context.Context, start, end time.Time) (*domain.WindowAggregate, error)

	// AggregateDaily returns per-account totals before the period and per day
	// within it from a single consistent read.
	AggregateDaily(ctx context.Context, period domain.Period) (*domain.DailyAggregate, error)

	// CurrentRevision returns the ledger revision, bumped by every committed write.
	CurrentRevision(ctx context.Context) (int64, error)
}

// LedgerTx is the view of the ledger inside the global writer lock.
// SaveEntry and DeleteEntry mark affected snapshots stale and bump the
// revision as part of the same transaction. DeleteEntry also drops the
// idempotency records that point at the entry.
type LedgerTx interface {
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)
	SaveEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)
	DeleteEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	FindEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.JournalEntry, error)
	SumBefore(ctx context.Context, accountCode string, before time.Time) (domain.BalanceTotals, error)
	FindIdempotencyRecord(ctx context.Context, scope, key string) (*domain.IdempotencyRecord, error)
	SaveIdempotencyRecord(ctx context.Context, record domain.IdempotencyRecord) error
}

// JournalWriter defines write operations on the ledger.
type JournalWriter interface {
	// SaveEntry persists the entry and its lines atomically and returns it with its sequence.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)

	// DeleteEntry hard deletes an entry and returns what was removed.
	DeleteEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// WithinWriteTx runs fn under the writer lock in one transaction.
	// Returning an error rolls everything back.
	WithinWriteTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// JournalRepositoryFacade combines all ledger repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
