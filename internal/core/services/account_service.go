package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates the account registry service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: repo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByCode(ctx, code)
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

func (s *accountService) ListAccounts(ctx context.Context, includeHeaders bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, includeHeaders)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

// ListPostable includes inactive accounts so historical balances stay visible.
func (s *accountService) ListPostable(ctx context.Context) ([]domain.Account, error) {
	return s.ListAccounts(ctx, false)
}

func (s *accountService) Classify(account domain.Account) domain.Classification {
	return domain.Classify(account)
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, apperrors.NewValidationError("code", "code is required")
	}
	accType, ok := domain.ParseAccountType(req.AccountType)
	if !ok {
		return nil, apperrors.NewValidationError("accountType", "must be one of asset, liability, equity, revenue, expense")
	}
	side := accType.DefaultNormalSide()
	if req.NormalBalanceSide != nil {
		side = domain.BalanceSide(strings.ToLower(*req.NormalBalanceSide))
		if !side.IsValid() {
			return nil, apperrors.NewValidationError("normalBalanceSide", "must be debit or credit")
		}
	}
	if req.CarriesShu && accType != domain.Equity {
		return nil, apperrors.NewValidationError("carriesShu", "only equity accounts can carry SHU")
	}

	var parentCode *string
	if req.ParentCode != nil && strings.TrimSpace(*req.ParentCode) != "" {
		pc := strings.TrimSpace(*req.ParentCode)
		parent, err := s.accountRepo.FindAccountByCode(ctx, pc)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("parentCode", "parent account "+pc+" does not exist")
			}
			return nil, err
		}
		if !parent.IsHeader {
			return nil, apperrors.NewValidationError("parentCode", "parent account "+pc+" is not a header account")
		}
		parentCode = &pc
	}

	now := time.Now().UTC()
	account := domain.Account{
		Code:              code,
		Name:              strings.TrimSpace(req.Name),
		AccountType:       accType,
		NormalBalanceSide: side,
		ParentCode:        parentCode,
		IsHeader:          req.IsHeader,
		IsActive:          true,
		CarriesShu:        req.CarriesShu,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	saved, err := s.accountRepo.SaveAccount(ctx, account)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created", slog.String("code", saved.Code), slog.Int64("account_id", saved.AccountID))
	return saved, nil
}

func (s *accountService) SetAccountActive(ctx context.Context, accountID int64, active bool, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.SetAccountActive(ctx, account.Code, active, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to update account status", slog.String("code", account.Code))
		return nil, err
	}
	s.LogInfo(ctx, "Account status updated", slog.String("code", account.Code), slog.Bool("active", active))
	return s.accountRepo.FindAccountByID(ctx, accountID)
}
