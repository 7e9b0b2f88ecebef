package services

import (
	"context"
	"iter"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntry retrieves a journal entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of journal entries, newest first.
	ListEntries(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// QueryLines yields an account's lines in (fromExclusive, toInclusive].
	QueryLines(ctx context.Context, accountCode string, fromExclusive, toInclusive time.Time) iter.Seq2[domain.LedgerLine, error]

	// AccountLedger builds the buku besar for one account over [from, to].
	AccountLedger(ctx context.Context, accountID int64, from, to time.Time) (*dto.AccountLedgerResponse, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// CreateJournal validates and persists a request from the HTTP layer.
	CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error)

	// CreateEntry validates and persists an entry addressed by account codes.
	CreateEntry(ctx context.Context, entry domain.JournalEntry, creatorUserID string) (*domain.JournalEntry, error)

	// DeleteEntry hard deletes an entry.
	DeleteEntry(ctx context.Context, entryID string, requestingUserID string) error
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
