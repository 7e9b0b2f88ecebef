package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/utils/accounting"
)

type trialBalanceEngine struct {
	BaseService
	journalRepo portsrepo.JournalReader
	accountSvc  portssvc.AccountReaderSvc
	now         func() time.Time
}

// NewTrialBalanceEngine creates the live neraca saldo calculator.
func NewTrialBalanceEngine(journalRepo portsrepo.JournalReader, accountSvc portssvc.AccountReaderSvc) portssvc.TrialBalanceEngine {
	return &trialBalanceEngine{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.TrialBalanceEngine = (*trialBalanceEngine)(nil)

func (e *trialBalanceEngine) ComputeDaily(ctx context.Context, date time.Time) (*domain.PeriodReport, error) {
	return e.ComputePeriod(ctx, domain.DailyPeriod(date))
}

func (e *trialBalanceEngine) ComputePeriod(ctx context.Context, period domain.Period) (*domain.PeriodReport, error) {
	if period.Start.IsZero() || period.End.Before(period.Start) {
		return nil, apperrors.NewValidationError("period", "invalid report window")
	}

	agg, err := e.journalRepo.AggregateWindow(ctx, period.Start, period.End)
	if err != nil {
		e.LogError(ctx, err, "Failed to aggregate ledger window", slog.String("period", period.Key))
		return nil, err
	}
	accounts, err := e.accountSvc.ListAccounts(ctx, true)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		byCode[acc.Code] = acc
	}
	for code := range agg.Accounts {
		acc, ok := byCode[code]
		if !ok || acc.IsHeader {
			err := fmt.Errorf("%w: activity on unknown or header account %s", apperrors.ErrComputation, code)
			e.LogAlert(ctx, err, "Ledger holds lines the registry cannot place",
				slog.String("period", period.Key), slog.String("account_code", code))
			return nil, err
		}
	}

	report := &domain.PeriodReport{
		Period:      period,
		Rows:        []domain.TrialBalanceRow{},
		Revision:    agg.Revision,
		GeneratedAt: e.now(),
	}
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	shuPeriod, shuCumulative := decimal.Zero, decimal.Zero

	for _, acc := range accounts {
		if acc.IsHeader {
			continue
		}
		totals := agg.Accounts[acc.Code]
		row := buildRow(acc, totals)
		report.Rows = append(report.Rows, row)
		totalDebit = totalDebit.Add(row.ClosingDebit)
		totalCredit = totalCredit.Add(row.ClosingCredit)

		class := domain.Classify(acc)
		shuPeriod = shuPeriod.Add(accounting.ShuContribution(class, totals.Within.Debit, totals.Within.Credit))
		all := totals.Before.Add(totals.Within)
		shuCumulative = shuCumulative.Add(accounting.ShuContribution(class, all.Debit, all.Credit))
	}
	slices.SortFunc(report.Rows, func(a, b domain.TrialBalanceRow) int {
		return strings.Compare(a.AccountCode, b.AccountCode)
	})

	totalDebit, totalCredit = accounting.Round(totalDebit), accounting.Round(totalCredit)
	if !totalDebit.Equal(totalCredit) {
		err := fmt.Errorf("%w: trial balance for %s %s does not balance, debit %s credit %s",
			apperrors.ErrComputation, period.Type, period.Key,
			totalDebit.StringFixed(accounting.Places), totalCredit.StringFixed(accounting.Places))
		e.LogAlert(ctx, err, "Trial balance totals mismatch",
			slog.String("period", period.Key), slog.Int64("revision", agg.Revision))
		return nil, err
	}

	shuPeriod, shuCumulative = accounting.Round(shuPeriod), accounting.Round(shuCumulative)
	report.Summary = domain.ReportSummary{
		TotalDebit:    totalDebit,
		TotalCredit:   totalCredit,
		ShuOpening:    shuCumulative.Sub(shuPeriod),
		ShuPeriod:     shuPeriod,
		ShuCumulative: shuCumulative,
		Source:        domain.SourceJurnal,
	}
	return report, nil
}

func buildRow(acc domain.Account, totals domain.AccountWindowTotals) domain.TrialBalanceRow {
	side := acc.NormalBalanceSide
	opening := accounting.Round(accounting.SignedBalance(side, totals.Before.Debit, totals.Before.Credit))
	periodDebit := accounting.Round(totals.Within.Debit)
	periodCredit := accounting.Round(totals.Within.Credit)
	closing := opening.Add(accounting.SignedBalance(side, periodDebit, periodCredit))

	row := domain.TrialBalanceRow{
		AccountID:         acc.AccountID,
		AccountCode:       acc.Code,
		AccountName:       acc.Name,
		AccountType:       acc.AccountType,
		NormalBalanceSide: side,
		OpeningBalance:    opening,
		PeriodDebit:       periodDebit,
		PeriodCredit:      periodCredit,
		ClosingBalance:    closing,
	}
	row.OpeningDebit, row.OpeningCredit = accounting.SplitBalance(side, opening)
	row.ClosingDebit, row.ClosingCredit = accounting.SplitBalance(side, closing)
	return row
}
