package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data
type AccountReader interface {
	// FindAccountByCode retrieves an account by its unique code, e.g. "1-1000".
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountByID retrieves an account by its numeric surrogate key.
	FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code. Missing codes are absent from the map.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts lists accounts ordered by code.
	ListAccounts(ctx context.Context, includeHeaders bool) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data
type AccountWriter interface {
	// SaveAccount persists a new account and returns it with its assigned ID.
	SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error)

	// SetAccountActive flips the active flag.
	SetAccountActive(ctx context.Context, code string, active bool, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
