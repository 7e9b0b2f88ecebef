package dto

import (
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a COA node.
type CreateAccountRequest struct {
	Code              string  `json:"code" binding:"required,max=32"`
	Name              string  `json:"name" binding:"required,max=200"`
	AccountType       string  `json:"accountType" binding:"required"`
	NormalBalanceSide *string `json:"normalBalanceSide" binding:"omitempty,oneof=debit credit"`
	ParentCode        *string `json:"parentCode" binding:"omitempty,max=32"`
	IsHeader          bool    `json:"isHeader"`
	CarriesShu        bool    `json:"carriesShu"`
}

// SetAccountStatusRequest toggles an account's active flag.
type SetAccountStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID         int64     `json:"accountID"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	AccountType       string    `json:"accountType"`
	NormalBalanceSide string    `json:"normalBalanceSide"`
	ParentCode        *string   `json:"parentCode,omitempty"`
	IsHeader          bool      `json:"isHeader"`
	IsActive          bool      `json:"isActive"`
	CarriesShu        bool      `json:"carriesShu"`
	CreatedAt         time.Time `json:"createdAt"`
	CreatedBy         string    `json:"createdBy"`
	LastUpdatedAt     time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy     string    `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:         acc.AccountID,
		Code:              acc.Code,
		Name:              acc.Name,
		AccountType:       string(acc.AccountType),
		NormalBalanceSide: string(acc.NormalBalanceSide),
		ParentCode:        acc.ParentCode,
		IsHeader:          acc.IsHeader,
		IsActive:          acc.IsActive,
		CarriesShu:        acc.CarriesShu,
		CreatedAt:         acc.CreatedAt,
		CreatedBy:         acc.CreatedBy,
		LastUpdatedAt:     acc.LastUpdatedAt,
		LastUpdatedBy:     acc.LastUpdatedBy,
	}
}

// ToAccountResponses converts a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out
}

// LedgerLineResponse is one row of an account's buku besar.
type LedgerLineResponse struct {
	EntryID        string          `json:"entryID"`
	Date           string          `json:"date"`
	Sequence       int64           `json:"sequence"`
	LineNo         int             `json:"lineNo"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountLedgerResponse is returned by GET /api/akuns/:id/mutasi.
type AccountLedgerResponse struct {
	Account        AccountResponse      `json:"account"`
	From           string               `json:"from"`
	To             string               `json:"to"`
	OpeningBalance decimal.Decimal      `json:"openingBalance"`
	ClosingBalance decimal.Decimal      `json:"closingBalance"`
	Lines          []LedgerLineResponse `json:"lines"`
}

// AccountLedgerParams are the query parameters for the buku besar.
type AccountLedgerParams struct {
	Dari   string `form:"dari" binding:"required"`
	Sampai string `form:"sampai" binding:"required"`
}

// ListAccountsParams are the query parameters of GET /api/akuns.
type ListAccountsParams struct {
	IncludeHeaders *bool `form:"include_headers"`
}
