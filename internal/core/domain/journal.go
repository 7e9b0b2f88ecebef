package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind names the business operation that produced a journal entry.
type SourceKind string

const (
	SourceManual       SourceKind = "manual"
	SourceSavingsTxn   SourceKind = "transaksi_tabungan"
	SourceOpeningSheet SourceKind = "neraca-awal"
	SourceShuAwal      SourceKind = "shu-awal"
	SourceSaldoAwal    SourceKind = "saldo-awal"
)

// JournalEntry is one balanced double-entry transaction.
type JournalEntry struct {
	EntryID              string        `json:"entryID"`
	EntryDate            time.Time     `json:"entryDate"`
	SourceDocumentNumber *string       `json:"sourceDocumentNumber,omitempty"`
	SourceKind           SourceKind    `json:"sourceKind"`
	SourceID             *string       `json:"sourceID,omitempty"`
	Description          *string       `json:"description,omitempty"`
	Lines                []JournalLine `json:"lines"`
	// Sequence is assigned by the store on insert and orders entries sharing a date.
	Sequence int64 `json:"sequence"`
	AuditFields
}

// JournalLine posts a debit or a credit to one account.
// AccountID is filled in by the store from the account registry.
type JournalLine struct {
	AccountID   int64           `json:"accountID,omitempty"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Totals sums the debit and credit columns of the entry.
func (e JournalEntry) Totals() (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// AccountCodes returns the distinct account codes in line order.
func (e JournalEntry) AccountCodes() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	codes := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountCode]; ok {
			continue
		}
		seen[l.AccountCode] = struct{}{}
		codes = append(codes, l.AccountCode)
	}
	return codes
}

// LedgerLine is a journal line joined with its entry's ordering data.
type LedgerLine struct {
	EntryID       string    `json:"entryID"`
	EntryDate     time.Time `json:"entryDate"`
	EntrySequence int64     `json:"entrySequence"`
	LineNo        int       `json:"lineNo"`
	JournalLine
}

// EntryFilter narrows journal listings. Zero dates are open bounds.
type EntryFilter struct {
	From       time.Time
	To         time.Time
	SourceKind SourceKind
}
