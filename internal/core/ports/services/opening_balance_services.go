package services

import (
	"context"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// OpeningBalanceSvc is the saldo-awal compatibility layer over the journal
type OpeningBalanceSvc interface {
	// GetOpeningBalance returns the journal-derived balance at the start of date.
	GetOpeningBalance(ctx context.Context, accountCode string, date time.Time) (*domain.OpeningBalance, error)

	// SetOpeningBalance overwrites the opening balance keyed by (accountCode, date).
	SetOpeningBalance(ctx context.Context, accountCode string, date time.Time, debit, credit decimal.Decimal, userID string) (*domain.OpeningBalance, error)

	// PostShuAwal posts the SHU-awal entry, idempotent on the request's key.
	PostShuAwal(ctx context.Context, req dto.ShuAwalRequest, userID string) (*domain.ShuAwalResult, error)
}
