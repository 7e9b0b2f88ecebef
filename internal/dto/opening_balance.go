package dto

import (
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SetSaldoAwalRequest is the body of PUT /api/akuns/:id/saldo-awal.
type SetSaldoAwalRequest struct {
	Tanggal string          `json:"tanggal" binding:"required"`
	Debet   decimal.Decimal `json:"debet"`
	Kredit  decimal.Decimal `json:"kredit"`
}

// SaldoAwalResponse reports an account's opening balance at a date.
type SaldoAwalResponse struct {
	AccountID   int64           `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Date        string          `json:"date"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// ToSaldoAwalResponse converts a domain.OpeningBalance.
func ToSaldoAwalResponse(accountID int64, ob *domain.OpeningBalance) SaldoAwalResponse {
	return SaldoAwalResponse{
		AccountID:   accountID,
		AccountCode: ob.AccountCode,
		Date:        ob.EffectiveDate.Format(domain.DateFormat),
		Debit:       ob.Debit,
		Credit:      ob.Credit,
	}
}

// ShuAwalRequest is the body of POST /api/laporan/shu-awal.
type ShuAwalRequest struct {
	Tanggal        string          `json:"tanggal" binding:"required"`
	Nilai          decimal.Decimal `json:"nilai"`
	AkunShuID      *int64          `json:"akun_shu_id" binding:"omitempty,gt=0"`
	AkunLawanID    *int64          `json:"akun_lawan_id" binding:"omitempty,gt=0"`
	IdempotencyKey *string         `json:"idempotency_key" binding:"omitempty,min=1,max=128"`
}

// ShuAwalResponse is returned by POST /api/laporan/shu-awal.
type ShuAwalResponse struct {
	EntryID  string `json:"entryID"`
	Date     string `json:"date"`
	Replayed bool   `json:"replayed"`
}

// SaldoAwalParams are the query parameters of GET /api/akuns/:id/saldo-awal.
type SaldoAwalParams struct {
	Tanggal string `form:"tanggal" binding:"required"`
}
