package dto

import (
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the neraca saldo response
type TrialBalanceRowResponse struct {
	AccountID         int64           `json:"accountID"`
	AccountCode       string          `json:"accountCode"`
	AccountName       string          `json:"accountName"`
	AccountType       string          `json:"accountType"`
	NormalBalanceSide string          `json:"normalBalanceSide"`
	OpeningBalance    decimal.Decimal `json:"openingBalance"`
	OpeningDebit      decimal.Decimal `json:"openingDebit"`
	OpeningCredit     decimal.Decimal `json:"openingCredit"`
	PeriodDebit       decimal.Decimal `json:"periodDebit"`
	PeriodCredit      decimal.Decimal `json:"periodCredit"`
	ClosingBalance    decimal.Decimal `json:"closingBalance"`
	ClosingDebit      decimal.Decimal `json:"closingDebit"`
	ClosingCredit     decimal.Decimal `json:"closingCredit"`
}

// ReportSummaryResponse carries the totals and SHU figures
type ReportSummaryResponse struct {
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	ShuOpening    decimal.Decimal `json:"shuOpening"`
	ShuPeriod     decimal.Decimal `json:"shuPeriod"`
	ShuCumulative decimal.Decimal `json:"shuCumulative"`
	Source        string          `json:"source"`
}

// PeriodReportResponse represents a neraca harian/bulanan/tahunan response
type PeriodReportResponse struct {
	PeriodType  string                    `json:"periodType"`
	PeriodKey   string                    `json:"periodKey"`
	StartDate   string                    `json:"startDate"`
	EndDate     string                    `json:"endDate"`
	Rows        []TrialBalanceRowResponse `json:"rows"`
	Summary     ReportSummaryResponse     `json:"summary"`
	Revision    int64                     `json:"revision"`
	GeneratedAt time.Time                 `json:"generatedAt"`
}

// ToPeriodReportResponse converts a domain.PeriodReport to its response DTO.
func ToPeriodReportResponse(r *domain.PeriodReport) PeriodReportResponse {
	rows := make([]TrialBalanceRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = TrialBalanceRowResponse{
			AccountID:         row.AccountID,
			AccountCode:       row.AccountCode,
			AccountName:       row.AccountName,
			AccountType:       string(row.AccountType),
			NormalBalanceSide: string(row.NormalBalanceSide),
			OpeningBalance:    row.OpeningBalance,
			OpeningDebit:      row.OpeningDebit,
			OpeningCredit:     row.OpeningCredit,
			PeriodDebit:       row.PeriodDebit,
			PeriodCredit:      row.PeriodCredit,
			ClosingBalance:    row.ClosingBalance,
			ClosingDebit:      row.ClosingDebit,
			ClosingCredit:     row.ClosingCredit,
		}
	}
	return PeriodReportResponse{
		PeriodType: string(r.Type),
		PeriodKey:  r.Key,
		StartDate:  r.Start.Format(domain.DateFormat),
		EndDate:    r.End.Format(domain.DateFormat),
		Rows:       rows,
		Summary: ReportSummaryResponse{
			TotalDebit:    r.Summary.TotalDebit,
			TotalCredit:   r.Summary.TotalCredit,
			ShuOpening:    r.Summary.ShuOpening,
			ShuPeriod:     r.Summary.ShuPeriod,
			ShuCumulative: r.Summary.ShuCumulative,
			Source:        string(r.Summary.Source),
		},
		Revision:    r.Revision,
		GeneratedAt: r.GeneratedAt,
	}
}

// NeracaHarianParams are the query parameters of the daily report.
type NeracaHarianParams struct {
	Tanggal string `form:"tanggal" binding:"required"`
}

// NeracaBulananParams are the query parameters of the monthly report / SHU series.
type NeracaBulananParams struct {
	Tahun int `form:"tahun" binding:"required,min=1,max=9999"`
	Bulan int `form:"bulan" binding:"required,min=1,max=12"`
}

// NeracaTahunanParams are the query parameters of the yearly report.
type NeracaTahunanParams struct {
	Tahun int `form:"tahun" binding:"required,min=1,max=9999"`
}

// SnapshotRequest asks for a period to be snapshotted.
type SnapshotRequest struct {
	PeriodType string `json:"period_type" binding:"required,oneof=daily monthly yearly"`
	PeriodKey  string `json:"period_key" binding:"required"`
	Async      bool   `json:"async"`
}

// SnapshotResponse describes a persisted snapshot.
type SnapshotResponse struct {
	PeriodType string    `json:"periodType"`
	PeriodKey  string    `json:"periodKey"`
	Revision   int64     `json:"revision"`
	ComputedAt time.Time `json:"computedAt,omitzero"`
	Queued     bool      `json:"queued"`
	TaskID     string    `json:"taskID,omitempty"`
}

// ToSnapshotResponse converts a persisted snapshot.
func ToSnapshotResponse(s *domain.PeriodSnapshot) SnapshotResponse {
	return SnapshotResponse{
		PeriodType: string(s.Type),
		PeriodKey:  s.Key,
		Revision:   s.Revision,
		ComputedAt: s.ComputedAt,
	}
}

// CloseYearRequest asks for the twelve months and the year to be snapshotted.
type CloseYearRequest struct {
	Tahun int  `json:"tahun" binding:"required,min=1,max=9999"`
	Async bool `json:"async"`
}

// CloseYearResponse is returned by POST /api/laporan/tutup-tahun.
type CloseYearResponse struct {
	Tahun     int                `json:"tahun"`
	Snapshots []SnapshotResponse `json:"snapshots,omitempty"`
	Queued    bool               `json:"queued"`
	TaskID    string             `json:"taskID,omitempty"`
}

// ToCloseYearResponse converts the snapshots written when a year is closed.
func ToCloseYearResponse(year int, snaps []domain.PeriodSnapshot) CloseYearResponse {
	resp := CloseYearResponse{Tahun: year, Snapshots: make([]SnapshotResponse, 0, len(snaps))}
	for i := range snaps {
		resp.Snapshots = append(resp.Snapshots, ToSnapshotResponse(&snaps[i]))
	}
	return resp
}

// DailyShuResponse is one day of the SHU series.
type DailyShuResponse struct {
	Date          string          `json:"date"`
	ShuPeriod     decimal.Decimal `json:"shuPeriod"`
	ShuCumulative decimal.Decimal `json:"shuCumulative"`
}

// ShuSeriesResponse is returned by GET /api/laporan/shu-harian.
type ShuSeriesResponse struct {
	PeriodKey string             `json:"periodKey"`
	Days      []DailyShuResponse `json:"days"`
	Total     decimal.Decimal    `json:"total"`
}

// ToShuSeriesResponse converts a daily SHU series.
func ToShuSeriesResponse(period domain.Period, series []domain.DailyShu) ShuSeriesResponse {
	days := make([]DailyShuResponse, len(series))
	total := decimal.Zero
	for i, s := range series {
		days[i] = DailyShuResponse{
			Date:          s.Date.Format(domain.DateFormat),
			ShuPeriod:     s.ShuPeriod,
			ShuCumulative: s.ShuCumulative,
		}
		total = total.Add(s.ShuPeriod)
	}
	return ShuSeriesResponse{PeriodKey: period.Key, Days: days, Total: total}
}

// ClientConfigResponse is the static jenis mapping served to the dashboard.
type ClientConfigResponse struct {
	Jenis map[string]int64 `json:"jenis"`
}
