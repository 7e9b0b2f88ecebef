package accounting

import (
	"fmt"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Places is the precision every ledger amount is rounded to.
const Places int32 = 2

// Round rounds to Places decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// SignedBalance expresses debit/credit totals on the given normal side.
// Debit-normal: debit - credit. Credit-normal: credit - debit.
func SignedBalance(side domain.BalanceSide, debit, credit decimal.Decimal) decimal.Decimal {
	if side == domain.Credit {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// SplitBalance turns a signed normal-side balance into a display pair.
// A nonnegative balance sits on the normal side; a negative one shows its
// absolute value on the opposite side.
func SplitBalance(side domain.BalanceSide, balance decimal.Decimal) (debit, credit decimal.Decimal) {
	onNormal := !balance.IsNegative()
	abs := balance.Abs()
	if (side == domain.Debit) == onNormal {
		return abs, decimal.Zero
	}
	return decimal.Zero, abs
}

// ShuContribution is the SHU effect of debit/credit movement on one account.
// Revenue and SHU carry accounts add credit - debit; expenses subtract
// debit - credit, which is the same expression.
func ShuContribution(c domain.Classification, debit, credit decimal.Decimal) decimal.Decimal {
	if !c.AffectsShu() {
		return decimal.Zero
	}
	return credit.Sub(debit)
}

// RoundLines rounds every amount of lines to Places in place.
func RoundLines(lines []domain.JournalLine) {
	for i := range lines {
		lines[i].Debit = Round(lines[i].Debit)
		lines[i].Credit = Round(lines[i].Credit)
	}
}

// ValidateLines checks a journal's lines: at least two, each with exactly one nonzero
// nonnegative side, and debit/credit totals equal after rounding.
func ValidateLines(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal must have at least two lines")
	}
	debits, credits := decimal.Zero, decimal.Zero
	for i, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("line %d: amounts must not be negative", i)
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return fmt.Errorf("line %d: exactly one of debit or credit must be nonzero", i)
		}
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	if !Round(debits).Equal(Round(credits)) {
		return fmt.Errorf("debits sum is %s and credits sum is %s", debits.StringFixed(Places), credits.StringFixed(Places))
	}
	return nil
}
