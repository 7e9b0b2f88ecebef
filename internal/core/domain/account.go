package domain

import "strings"

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "asset"
	Liability AccountType = "liability"
	Equity    AccountType = "equity"
	Revenue   AccountType = "revenue"
	Expense   AccountType = "expense"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// ParseAccountType accepts any casing, e.g. "ASSET" or "asset".
func ParseAccountType(s string) (AccountType, bool) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.IsValid()
}

// DefaultNormalSide is debit for assets and expenses, credit otherwise.
func (t AccountType) DefaultNormalSide() BalanceSide {
	if t == Asset || t == Expense {
		return Debit
	}
	return Credit
}

// BalanceSide is the side of the ledger a balance or movement sits on.
type BalanceSide string

const (
	Debit  BalanceSide = "debit"
	Credit BalanceSide = "credit"
)

// IsValid reports whether s is debit or credit.
func (s BalanceSide) IsValid() bool {
	return s == Debit || s == Credit
}

// Account is a node of the chart of accounts.
type Account struct {
	AccountID         int64       `json:"accountID"`
	Code              string      `json:"code"`
	Name              string      `json:"name"`
	AccountType       AccountType `json:"accountType"`
	NormalBalanceSide BalanceSide `json:"normalBalanceSide"`
	ParentCode        *string     `json:"parentCode,omitempty"`
	IsHeader          bool        `json:"isHeader"`
	IsActive          bool        `json:"isActive"`
	// CarriesShu marks an equity account that holds carried SHU (e.g. "SHU Tahun Berjalan").
	CarriesShu bool `json:"carriesShu"`
	AuditFields
}

// Classification tells the SHU computation how an account participates.
type Classification struct {
	IsRevenue  bool `json:"isRevenue"`
	IsExpense  bool `json:"isExpense"`
	CarriesShu bool `json:"carriesShu"`
}

// AffectsShu reports whether movements on the account change SHU.
func (c Classification) AffectsShu() bool {
	return c.IsRevenue || c.IsExpense || c.CarriesShu
}

// Classify derives the SHU classification from the account type.
func Classify(a Account) Classification {
	return Classification{
		IsRevenue:  a.AccountType == Revenue,
		IsExpense:  a.AccountType == Expense,
		CarriesShu: a.CarriesShu && a.AccountType == Equity,
	}
}
