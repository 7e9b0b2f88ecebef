package accounting

import (
	"testing"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSignedBalance(t *testing.T) {
	assert.True(t, d("70").Equal(SignedBalance(domain.Debit, d("100"), d("30"))))
	assert.True(t, d("-70").Equal(SignedBalance(domain.Credit, d("100"), d("30"))))
}

func TestSplitBalance(t *testing.T) {
	tests := []struct {
		name       string
		side       domain.BalanceSide
		balance    string
		wantDebit  string
		wantCredit string
	}{
		{"debit normal positive", domain.Debit, "100", "100", "0"},
		{"debit normal negative", domain.Debit, "-40", "0", "40"},
		{"credit normal positive", domain.Credit, "100", "0", "100"},
		{"credit normal negative", domain.Credit, "-25.5", "25.5", "0"},
		{"zero", domain.Credit, "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debit, credit := SplitBalance(tt.side, d(tt.balance))
			assert.True(t, d(tt.wantDebit).Equal(debit), "debit %s", debit)
			assert.True(t, d(tt.wantCredit).Equal(credit), "credit %s", credit)
		})
	}
}

func TestShuContribution(t *testing.T) {
	revenue := domain.Classification{IsRevenue: true}
	expense := domain.Classification{IsExpense: true}
	assert.True(t, d("100").Equal(ShuContribution(revenue, d("0"), d("100"))))
	assert.True(t, d("-20").Equal(ShuContribution(expense, d("20"), d("0"))))
	assert.True(t, decimal.Zero.Equal(ShuContribution(domain.Classification{}, d("20"), d("0"))))
}

func TestValidateLines(t *testing.T) {
	ok := []domain.JournalLine{
		{AccountCode: "1-1000", Debit: d("100000"), Credit: decimal.Zero},
		{AccountCode: "4-1000", Debit: decimal.Zero, Credit: d("100000")},
	}
	assert.NoError(t, ValidateLines(ok))

	assert.Error(t, ValidateLines(ok[:1]), "single line")

	both := []domain.JournalLine{
		{AccountCode: "1-1000", Debit: d("50"), Credit: d("50")},
		{AccountCode: "4-1000", Debit: decimal.Zero, Credit: d("0")},
	}
	err := ValidateLines(both)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")

	unbalanced := []domain.JournalLine{
		{AccountCode: "1-1000", Debit: d("100"), Credit: decimal.Zero},
		{AccountCode: "4-1000", Debit: decimal.Zero, Credit: d("99.99")},
	}
	err = ValidateLines(unbalanced)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "credits sum is 99.99")

	negative := []domain.JournalLine{
		{AccountCode: "1-1000", Debit: d("-1"), Credit: decimal.Zero},
		{AccountCode: "4-1000", Debit: decimal.Zero, Credit: d("-1")},
	}
	assert.Error(t, ValidateLines(negative))
}
