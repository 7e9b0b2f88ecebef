package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatWithPrecision formats an amount with the given precision
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.Round(int32(precision)).StringFixed(int32(precision))
}

// FormatRupiah renders an amount the way Indonesian reports show it,
// e.g. 1234567.5 -> "Rp 1.234.567,50" and -20000 -> "-Rp 20.000,00".
func FormatRupiah(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	f, _ := rounded.Abs().Float64()
	body := idPrinter.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	if rounded.IsNegative() {
		return "-Rp " + body
	}
	return "Rp " + body
}
