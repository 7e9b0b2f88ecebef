package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
	"github.com/SscSPs/koperasi_ledger/internal/utils/accounting"
)

// OpeningBalanceAccounts names the default accounts used by saldo-awal and SHU-awal postings.
type OpeningBalanceAccounts struct {
	ShuAccountCode            string
	ShuCounterAccountCode     string
	OpeningBalanceCounterCode string
}

// openingBalanceService keeps no balances of its own. Every opening balance
// is derived from the journal, and setting one posts the difference.
type openingBalanceService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountReaderSvc
	accounts    OpeningBalanceAccounts
	now         func() time.Time
}

// NewOpeningBalanceService creates the OpeningBalanceSvc.
func NewOpeningBalanceService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountReaderSvc, accounts OpeningBalanceAccounts) portssvc.OpeningBalanceSvc {
	return &openingBalanceService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
		accounts:    accounts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.OpeningBalanceSvc = (*openingBalanceService)(nil)

func (s *openingBalanceService) GetOpeningBalance(ctx context.Context, accountCode string, date time.Time) (*domain.OpeningBalance, error) {
	acc, err := s.accountSvc.GetAccount(ctx, accountCode)
	if err != nil {
		return nil, err
	}
	date = domain.NormalizeDate(date)
	agg, err := s.journalRepo.AggregateWindow(ctx, date, date)
	if err != nil {
		return nil, err
	}
	before := agg.Accounts[acc.Code].Before
	balance := accounting.Round(accounting.SignedBalance(acc.NormalBalanceSide, before.Debit, before.Credit))
	ob := &domain.OpeningBalance{AccountCode: acc.Code, EffectiveDate: date}
	ob.Debit, ob.Credit = accounting.SplitBalance(acc.NormalBalanceSide, balance)
	return ob, nil
}

// SetOpeningBalance replaces any earlier saldo-awal entry for (account, date)
// with one that brings the balance at the start of date to the target.
func (s *openingBalanceService) SetOpeningBalance(ctx context.Context, accountCode string, date time.Time, debit, credit decimal.Decimal, userID string) (*domain.OpeningBalance, error) {
	debit, credit = accounting.Round(debit), accounting.Round(credit)
	fields := map[string]string{}
	if debit.IsNegative() {
		fields["debet"] = "must not be negative"
	}
	if credit.IsNegative() {
		fields["kredit"] = "must not be negative"
	}
	if debit.IsPositive() && credit.IsPositive() {
		fields["debet"] = "only one of debet or kredit may be nonzero"
		fields["kredit"] = "only one of debet or kredit may be nonzero"
	}
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Message: "invalid opening balance", Fields: fields}
	}

	acc, err := s.accountSvc.GetAccount(ctx, accountCode)
	if err != nil {
		return nil, err
	}
	if acc.IsHeader {
		return nil, fmt.Errorf("%w: account %s is a header account", apperrors.ErrReference, acc.Code)
	}
	counterCode := s.accounts.OpeningBalanceCounterCode
	if acc.Code == counterCode {
		return nil, apperrors.NewValidationError("akun", "the opening balance counter account cannot hold a saldo awal")
	}

	date = domain.NormalizeDate(date)
	sourceID := acc.Code + "@" + date.Format(domain.DateFormat)
	target := accounting.SignedBalance(acc.NormalBalanceSide, debit, credit)
	now := s.now()

	err = s.journalRepo.WithinWriteTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		previous, err := tx.FindEntriesBySource(ctx, domain.SourceSaldoAwal, sourceID)
		if err != nil {
			return err
		}
		for _, e := range previous {
			if _, err := tx.DeleteEntry(ctx, e.EntryID); err != nil {
				return err
			}
		}

		sum, err := tx.SumBefore(ctx, acc.Code, date)
		if err != nil {
			return err
		}
		diff := accounting.Round(target.Sub(accounting.SignedBalance(acc.NormalBalanceSide, sum.Debit, sum.Credit)))
		if diff.IsZero() {
			return nil
		}

		amount := diff.Abs()
		accountLine := domain.JournalLine{AccountCode: acc.Code}
		counterLine := domain.JournalLine{AccountCode: counterCode}
		if (acc.NormalBalanceSide == domain.Debit) == diff.IsPositive() {
			accountLine.Debit, counterLine.Credit = amount, amount
		} else {
			accountLine.Credit, counterLine.Debit = amount, amount
		}
		desc := "Saldo awal " + acc.Code
		entry, err := prepareEntry(domain.JournalEntry{
			EntryDate:   date.AddDate(0, 0, -1),
			SourceKind:  domain.SourceSaldoAwal,
			SourceID:    &sourceID,
			Description: &desc,
			Lines:       []domain.JournalLine{accountLine, counterLine},
		}, userID, now)
		if err != nil {
			return err
		}
		_, err = postEntryTx(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Opening balance set",
		slog.String("account_code", acc.Code),
		slog.String("date", date.Format(domain.DateFormat)),
		slog.String("balance", target.StringFixed(accounting.Places)))
	ob := &domain.OpeningBalance{AccountCode: acc.Code, EffectiveDate: date}
	ob.Debit, ob.Credit = accounting.SplitBalance(acc.NormalBalanceSide, target)
	return ob, nil
}

// shuFingerprint identifies a SHU-awal payload for idempotent replays.
func shuFingerprint(date time.Time, nilai decimal.Decimal, shuCode, counterCode string) string {
	payload := strings.Join([]string{
		date.Format(domain.DateFormat),
		nilai.StringFixed(accounting.Places),
		shuCode,
		counterCode,
	}, "|")
	sum := blake2b.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func (s *openingBalanceService) resolveAccount(ctx context.Context, id *int64, defaultCode, field string) (*domain.Account, error) {
	var (
		acc *domain.Account
		err error
	)
	if id != nil {
		acc, err = s.accountSvc.GetAccountByID(ctx, *id)
	} else {
		acc, err = s.accountSvc.GetAccount(ctx, defaultCode)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrReference, field, err)
	}
	return acc, err
}

func (s *openingBalanceService) PostShuAwal(ctx context.Context, req dto.ShuAwalRequest, userID string) (*domain.ShuAwalResult, error) {
	tanggal, err := domain.ParseDate(req.Tanggal)
	if err != nil {
		return nil, apperrors.NewValidationError("tanggal", err.Error())
	}
	nilai := accounting.Round(req.Nilai)
	if nilai.IsZero() {
		return nil, apperrors.NewValidationError("nilai", "must not be zero")
	}

	shuAcc, err := s.resolveAccount(ctx, req.AkunShuID, s.accounts.ShuAccountCode, "akun_shu_id")
	if err != nil {
		return nil, err
	}
	class := s.accountSvc.Classify(*shuAcc)
	if !class.IsRevenue && !class.CarriesShu {
		return nil, apperrors.NewValidationError("akun_shu_id", "account "+shuAcc.Code+" is neither revenue nor an SHU carry account")
	}
	counterAcc, err := s.resolveAccount(ctx, req.AkunLawanID, s.accounts.ShuCounterAccountCode, "akun_lawan_id")
	if err != nil {
		return nil, err
	}
	if counterAcc.Code == shuAcc.Code {
		return nil, apperrors.NewValidationError("akun_lawan_id", "must differ from the SHU account")
	}

	amount := nilai.Abs()
	shuLine := domain.JournalLine{AccountCode: shuAcc.Code}
	counterLine := domain.JournalLine{AccountCode: counterAcc.Code}
	if nilai.IsPositive() {
		counterLine.Debit, shuLine.Credit = amount, amount
	} else {
		shuLine.Debit, counterLine.Credit = amount, amount
	}
	desc := "SHU awal " + tanggal.Format(domain.DateFormat)
	var key *string
	if req.IdempotencyKey != nil && strings.TrimSpace(*req.IdempotencyKey) != "" {
		k := strings.TrimSpace(*req.IdempotencyKey)
		key = &k
	}
	now := s.now()
	entry, err := prepareEntry(domain.JournalEntry{
		EntryDate:   tanggal.AddDate(0, 0, -1),
		SourceKind:  domain.SourceShuAwal,
		SourceID:    key,
		Description: &desc,
		Lines:       []domain.JournalLine{counterLine, shuLine},
	}, userID, now)
	if err != nil {
		return nil, err
	}

	result := &domain.ShuAwalResult{EntryID: entry.EntryID, Date: entry.EntryDate}
	err = s.journalRepo.WithinWriteTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if key == nil {
			_, err := postEntryTx(ctx, tx, entry)
			return err
		}

		fingerprint := shuFingerprint(tanggal, nilai, shuAcc.Code, counterAcc.Code)
		rec, err := tx.FindIdempotencyRecord(ctx, domain.IdempotencyScopeShuAwal, *key)
		switch {
		case err == nil:
			if rec.Fingerprint != fingerprint {
				return fmt.Errorf("%w: idempotency key %q was used with a different payload", apperrors.ErrConflict, *key)
			}
			result.EntryID = rec.EntryID
			result.Replayed = true
			return nil
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		if _, err := postEntryTx(ctx, tx, entry); err != nil {
			return err
		}
		return tx.SaveIdempotencyRecord(ctx, domain.IdempotencyRecord{
			Scope:       domain.IdempotencyScopeShuAwal,
			Key:         *key,
			Fingerprint: fingerprint,
			EntryID:     entry.EntryID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.LogWarn(ctx, "SHU awal replay rejected", slog.String("error", err.Error()))
		}
		return nil, err
	}

	s.LogInfo(ctx, "SHU awal posted",
		slog.String("entry_id", result.EntryID),
		slog.Bool("replayed", result.Replayed),
		slog.String("nilai", nilai.StringFixed(accounting.Places)))
	return result, nil
}
