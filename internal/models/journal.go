package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	EntryID              string         `db:"entry_id"`
	EntryDate            time.Time      `db:"entry_date"`
	Sequence             int64          `db:"sequence"`
	SourceDocumentNumber sql.NullString `db:"source_document_number"`
	SourceKind           string         `db:"source_kind"`
	SourceID             sql.NullString `db:"source_id"`
	Description          sql.NullString `db:"description"`
	AuditFields
}

// JournalLine is a row of the journal_lines table.
type JournalLine struct {
	EntryID     string          `db:"entry_id"`
	LineNo      int             `db:"line_no"`
	AccountID   int64           `db:"account_id"`
	AccountCode string          `db:"account_code"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
}

// PeriodSnapshot is a row of the period_snapshots table.
type PeriodSnapshot struct {
	PeriodType string    `db:"period_type"`
	PeriodKey  string    `db:"period_key"`
	StartDate  time.Time `db:"start_date"`
	EndDate    time.Time `db:"end_date"`
	Report     []byte    `db:"report"`
	Stale      bool      `db:"stale"`
	Revision   int64     `db:"revision"`
	ComputedAt time.Time `db:"computed_at"`
}
