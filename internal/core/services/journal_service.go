package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
	"github.com/SscSPs/koperasi_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// journalService provides core journal operations.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountReaderSvc
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountReaderSvc) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// prepareEntry rounds and validates the lines and fills identity and audit fields.
func prepareEntry(entry domain.JournalEntry, userID string, now time.Time) (domain.JournalEntry, error) {
	entry.Lines = slices.Clone(entry.Lines)
	accounting.RoundLines(entry.Lines)
	if err := accounting.ValidateLines(entry.Lines); err != nil {
		return domain.JournalEntry{}, &apperrors.ValidationError{
			Message: err.Error(),
			Fields:  map[string]string{"details": err.Error()},
		}
	}
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	if entry.SourceKind == "" {
		entry.SourceKind = domain.SourceManual
	}
	entry.EntryDate = domain.NormalizeDate(entry.EntryDate)
	entry.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	return entry, nil
}

// postEntryTx checks every referenced account inside the write transaction and saves the entry.
func postEntryTx(ctx context.Context, tx portsrepo.LedgerTx, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	codes := entry.AccountCodes()
	accounts, err := tx.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		acc, ok := accounts[code]
		switch {
		case !ok:
			return nil, fmt.Errorf("%w: account %s does not exist", apperrors.ErrReference, code)
		case acc.IsHeader:
			return nil, fmt.Errorf("%w: account %s is a header account", apperrors.ErrReference, code)
		case !acc.IsActive:
			return nil, apperrors.NewValidationError("details", "account "+code+" is inactive")
		}
	}
	return tx.SaveEntry(ctx, entry)
}

// CreateJournal resolves the request's akun ids to codes and posts the entry.
func (s *journalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error) {
	date, err := domain.ParseDate(req.Tanggal)
	if err != nil {
		return nil, apperrors.NewValidationError("tanggal", err.Error())
	}

	codes := make(map[int64]string, len(req.Details))
	lines := make([]domain.JournalLine, len(req.Details))
	for i, d := range req.Details {
		code, ok := codes[d.AkunID]
		if !ok {
			acc, err := s.accountSvc.GetAccountByID(ctx, d.AkunID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return nil, fmt.Errorf("%w: details[%d]: akun_id %d does not exist", apperrors.ErrReference, i, d.AkunID)
				}
				return nil, err
			}
			code = acc.Code
			codes[d.AkunID] = code
		}
		lines[i] = domain.JournalLine{AccountCode: code, Debit: d.Debet, Credit: d.Kredit}
	}

	entry := domain.JournalEntry{
		EntryDate:            date,
		SourceDocumentNumber: req.NoBukti,
		SourceID:             req.SumberID.Ptr(),
		Description:          req.Keterangan,
		Lines:                lines,
	}
	if req.Sumber != nil && strings.TrimSpace(*req.Sumber) != "" {
		entry.SourceKind = domain.SourceKind(strings.TrimSpace(*req.Sumber))
	}
	return s.CreateEntry(ctx, entry, creatorUserID)
}

// CreateEntry validates and persists an entry addressed by account codes.
func (s *journalService) CreateEntry(ctx context.Context, entry domain.JournalEntry, creatorUserID string) (*domain.JournalEntry, error) {
	prepared, err := prepareEntry(entry, creatorUserID, time.Now().UTC())
	if err != nil {
		s.LogDebug(ctx, "Journal rejected", slog.String("error", err.Error()))
		return nil, err
	}

	var saved *domain.JournalEntry
	err = s.journalRepo.WithinWriteTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		saved, err = postEntryTx(ctx, tx, prepared)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrReference) {
			s.LogError(ctx, err, "Failed to persist journal entry", slog.String("entry_id", prepared.EntryID))
		}
		return nil, err
	}

	debit, _ := saved.Totals()
	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", saved.EntryID),
		slog.String("date", saved.EntryDate.Format(domain.DateFormat)),
		slog.String("source_kind", string(saved.SourceKind)),
		slog.String("amount", debit.StringFixed(accounting.Places)))
	return saved, nil
}

func (s *journalService) DeleteEntry(ctx context.Context, entryID string, requestingUserID string) error {
	deleted, err := s.journalRepo.DeleteEntry(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete journal entry", slog.String("entry_id", entryID))
		}
		return err
	}
	s.LogInfo(ctx, "Journal entry deleted",
		slog.String("entry_id", entryID),
		slog.String("date", deleted.EntryDate.Format(domain.DateFormat)),
		slog.String("user_id", requestingUserID))
	return nil
}

func (s *journalService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return s.journalRepo.FindEntryByID(ctx, entryID)
}

func (s *journalService) ListEntries(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	var filter domain.EntryFilter
	if params.Dari != "" {
		d, err := domain.ParseDate(params.Dari)
		if err != nil {
			return nil, apperrors.NewValidationError("dari", err.Error())
		}
		filter.From = d
	}
	if params.Sampai != "" {
		d, err := domain.ParseDate(params.Sampai)
		if err != nil {
			return nil, apperrors.NewValidationError("sampai", err.Error())
		}
		filter.To = d
	}
	filter.SourceKind = domain.SourceKind(params.Sumber)

	entries, next, err := s.journalRepo.ListEntries(ctx, filter, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListJournalsResponse{Journals: dto.ToJournalResponses(entries), NextToken: next}, nil
}

func (s *journalService) QueryLines(ctx context.Context, accountCode string, fromExclusive, toInclusive time.Time) iter.Seq2[domain.LedgerLine, error] {
	return s.journalRepo.QueryLines(ctx, accountCode, fromExclusive, toInclusive)
}

// AccountLedger walks the account's lines once: lines before from fold into
// the opening balance, the rest carry a running balance.
func (s *journalService) AccountLedger(ctx context.Context, accountID int64, from, to time.Time) (*dto.AccountLedgerResponse, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError("sampai", "must not be before dari")
	}
	account, err := s.accountSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	opening := decimal.Zero
	running := decimal.Zero
	lines := []dto.LedgerLineResponse{}
	for line, err := range s.journalRepo.QueryLines(ctx, account.Code, time.Time{}, to) {
		if err != nil {
			return nil, err
		}
		movement := accounting.SignedBalance(account.NormalBalanceSide, line.Debit, line.Credit)
		if line.EntryDate.Before(from) {
			opening = opening.Add(movement)
			running = opening
			continue
		}
		running = running.Add(movement)
		lines = append(lines, dto.LedgerLineResponse{
			EntryID:        line.EntryID,
			Date:           line.EntryDate.Format(domain.DateFormat),
			Sequence:       line.EntrySequence,
			LineNo:         line.LineNo,
			Debit:          line.Debit,
			Credit:         line.Credit,
			RunningBalance: accounting.Round(running),
		})
	}

	return &dto.AccountLedgerResponse{
		Account:        dto.ToAccountResponse(account),
		From:           from.Format(domain.DateFormat),
		To:             to.Format(domain.DateFormat),
		OpeningBalance: accounting.Round(opening),
		ClosingBalance: accounting.Round(running),
		Lines:          lines,
	}, nil
}
