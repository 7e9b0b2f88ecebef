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

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, code, name, account_type, normal_balance_side, parent_code,
	is_header, is_active, carries_shu, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.NormalBalanceSide,
		&m.ParentCode,
		&m.IsHeader,
		&m.IsActive,
		&m.CarriesShu,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

// SaveAccount inserts a new account and returns it with its serial id.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (code, name, account_type, normal_balance_side, parent_code, is_header, is_active,
		                      carries_shu, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING account_id;
	`
	err := r.Pool.QueryRow(ctx, query,
		m.Code,
		m.Name,
		m.AccountType,
		m.NormalBalanceSide,
		m.ParentCode,
		m.IsHeader,
		m.IsActive,
		m.CarriesShu,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	).Scan(&account.AccountID)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return nil, fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, account.Code)
		case pgForeignKeyViolation:
			return nil, apperrors.NewValidationError("parentCode", "parent account does not exist")
		}
		return nil, fmt.Errorf("failed to save account %s: %w", account.Code, err)
	}
	return &account, nil
}

// FindAccountByCode retrieves an account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	acc, err := scanAccount(r.Pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = $1;`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account " + code)
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	return &acc, nil
}

// FindAccountByID retrieves an account by its serial id.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	acc, err := scanAccount(r.Pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = $1;`, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account id %d", accountID))
		}
		return nil, fmt.Errorf("failed to find account by ID %d: %w", accountID, err)
	}
	return &acc, nil
}

// FindAccountsByCodes retrieves multiple accounts keyed by code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	return findAccountsByCodes(ctx, r.Pool, codes)
}

func findAccountsByCodes(ctx context.Context, q querier, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}
	rows, err := q.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = ANY($1);`, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by codes: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(codes))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accounts[acc.Code] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}
	return accounts, nil
}

// ListAccounts lists the chart of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, includeHeaders bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ($1 OR NOT is_header) ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, includeHeaders)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// SetAccountActive flips the active flag.
func (r *PgxAccountRepository) SetAccountActive(ctx context.Context, code string, active bool, userID string, now time.Time) error {
	query := `UPDATE accounts SET is_active = $2, last_updated_at = $3, last_updated_by = $4 WHERE code = $1;`
	tag, err := r.Pool.Exec(ctx, query, code, active, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + code)
	}
	return nil
}
