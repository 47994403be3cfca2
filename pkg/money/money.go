// Package money provides decimal helpers for Brazilian real amounts.
// Arithmetic stays in shopspring/decimal; go-money is used for display and
// golang.org/x/text for pt-BR digit grouping.
package money

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// BRL is the only currency the dashboard handles.
const BRL = money.BRL

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// Round2 rounds to two decimal places (half away from zero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToCents converts an amount to integer centavos.
func ToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// FromCents converts integer centavos back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Display returns the amount with currency grapheme, e.g. "R$1.234,56".
func Display(d decimal.Decimal) string {
	return money.New(ToCents(d), BRL).Display()
}

// FormatBRL formats an amount with pt-BR separators and two decimals,
// e.g. "1.234,56" or "-89,90".
func FormatBRL(d decimal.Decimal) string {
	return brPrinter.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// FormatPlain formats an amount with a '.' decimal separator, two decimals
// and no grouping, e.g. "-1234.50".
func FormatPlain(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatComma formats the absolute amount with ',' as decimal separator and no
// grouping, e.g. "45,9". Trailing zeros are dropped.
func FormatComma(d decimal.Decimal) string {
	return strings.Replace(d.Abs().String(), ".", ",", 1)
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Percent returns part/whole*100 rounded to two decimals, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}
