package services

import (
	"context"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
)

// AccountReaderSvc exposes chart-of-accounts metadata
type AccountReaderSvc interface {
	// GetAccount retrieves an account by code.
	GetAccount(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountByID retrieves an account by numeric id.
	GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	// ListAccounts lists the chart of accounts ordered by code.
	ListAccounts(ctx context.Context, includeHeaders bool) ([]domain.Account, error)

	// ListPostable lists every non-header account, active or not.
	ListPostable(ctx context.Context) ([]domain.Account, error)

	// Classify is a pure predicate on the account type.
	Classify(account domain.Account) domain.Classification
}

// AccountWriterSvc defines COA maintenance operations
type AccountWriterSvc interface {
	// CreateAccount adds a node to the chart of accounts.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// SetAccountActive activates or deactivates an account.
	SetAccountActive(ctx context.Context, accountID int64, active bool, userID string) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
