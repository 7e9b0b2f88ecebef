package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpeningBalance is an account's balance at the start of EffectiveDate.
type OpeningBalance struct {
	AccountCode   string          `json:"accountCode"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// ShuAwalResult reports the entry behind a SHU-awal posting.
type ShuAwalResult struct {
	EntryID  string    `json:"entryID"`
	Date     time.Time `json:"date"`
	Replayed bool      `json:"replayed"`
}
