package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportSource tells the caller where a PeriodReport came from.
type ReportSource string

const (
	SourceSnapshot ReportSource = "snapshot"
	SourceJurnal   ReportSource = "jurnal"
)

// TrialBalanceRow is one account's line in the neraca saldo.
// Signed balances are expressed on the account's normal side.
type TrialBalanceRow struct {
	AccountID         int64           `json:"accountID"`
	AccountCode       string          `json:"accountCode"`
	AccountName       string          `json:"accountName"`
	AccountType       AccountType     `json:"accountType"`
	NormalBalanceSide BalanceSide     `json:"normalBalanceSide"`
	OpeningBalance    decimal.Decimal `json:"openingBalance"`
	OpeningDebit      decimal.Decimal `json:"openingDebit"`
	OpeningCredit     decimal.Decimal `json:"openingCredit"`
	PeriodDebit       decimal.Decimal `json:"periodDebit"`
	PeriodCredit      decimal.Decimal `json:"periodCredit"`
	ClosingBalance    decimal.Decimal `json:"closingBalance"`
	ClosingDebit      decimal.Decimal `json:"closingDebit"`
	ClosingCredit     decimal.Decimal `json:"closingCredit"`
}

// ReportSummary aggregates the rows of a PeriodReport.
type ReportSummary struct {
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	ShuOpening    decimal.Decimal `json:"shuOpening"`
	ShuPeriod     decimal.Decimal `json:"shuPeriod"`
	ShuCumulative decimal.Decimal `json:"shuCumulative"`
	Source        ReportSource    `json:"source"`
}

// PeriodReport is a computed or snapshotted trial balance for one window.
type PeriodReport struct {
	Period
	Rows        []TrialBalanceRow `json:"rows"`
	Summary     ReportSummary     `json:"summary"`
	Revision    int64             `json:"revision"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Row finds the row for an account code.
func (r PeriodReport) Row(code string) (TrialBalanceRow, bool) {
	for _, row := range r.Rows {
		if row.AccountCode == code {
			return row, true
		}
	}
	return TrialBalanceRow{}, false
}

// BalanceTotals are raw column sums for one account.
type BalanceTotals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Add returns the column-wise sum.
func (t BalanceTotals) Add(o BalanceTotals) BalanceTotals {
	return BalanceTotals{Debit: t.Debit.Add(o.Debit), Credit: t.Credit.Add(o.Credit)}
}

// AccountWindowTotals splits an account's activity around a window.
type AccountWindowTotals struct {
	Before BalanceTotals
	Within BalanceTotals
}

// WindowAggregate is a consistent read of the ledger for one window.
type WindowAggregate struct {
	Start    time.Time
	End      time.Time
	Accounts map[string]AccountWindowTotals
	Revision int64
}

// DailyAggregate is a consistent read of per-account totals before a period
// and per day inside it.
type DailyAggregate struct {
	Period   Period
	Before   map[string]BalanceTotals
	Days     map[time.Time]map[string]BalanceTotals
	Revision int64
}

// AddWithin records a movement on day for an account inside the period.
func (a *DailyAggregate) AddWithin(day time.Time, code string, t BalanceTotals) {
	day = NormalizeDate(day)
	accounts, ok := a.Days[day]
	if !ok {
		accounts = make(map[string]BalanceTotals)
		a.Days[day] = accounts
	}
	accounts[code] = accounts[code].Add(t)
}

// NewDailyAggregate returns an empty aggregate for period.
func NewDailyAggregate(period Period, revision int64) *DailyAggregate {
	return &DailyAggregate{
		Period:   period,
		Before:   make(map[string]BalanceTotals),
		Days:     make(map[time.Time]map[string]BalanceTotals),
		Revision: revision,
	}
}

// DailyShu is one point of a daily SHU series.
type DailyShu struct {
	Date          time.Time       `json:"date"`
	ShuPeriod     decimal.Decimal `json:"shuPeriod"`
	ShuCumulative decimal.Decimal `json:"shuCumulative"`
}
