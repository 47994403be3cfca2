// Package normalizer turns raw statement fields into typed values: signed
// decimal amounts, canonical DD/MM/YYYY dates and counterparty names.
package normalizer

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a value cannot be read as a finite number.
var ErrInvalidAmount = errors.New("invalid amount")

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	brGroupedRe      = regexp.MustCompile(`\d+\.\d{3}(?:\.\d{3})*,\d{1,2}$`)
	commaDecimalRe   = regexp.MustCompile(`^\d+,\d{1,2}$`)
	commaGroupedRe   = regexp.MustCompile(`\d{1,3}(?:,\d{3})+\.\d+`)
	currencyPrefixRe = regexp.MustCompile(`^\p{L}{0,3}\p{Sc}`)
	unicodeMinusSign = "−"
)

// ParseAmount reads a locale-ambiguous amount such as "R$ 1.234,56",
// "-89,90", "US$ 10.00" or "45.90-" into a signed decimal. A leading
// currency symbol, optionally preceded by up to three letters, is dropped.
//
// Separator resolution, first match wins:
//  1. "1.234,56" grouping, or both '.' and ',' present: '.' groups, ',' is decimal
//  2. "89,90": ',' is decimal
//  3. comma grouping with a dot decimal: ',' groups
//  4. anything else is parsed as is
//
// Rule 1 wins over rule 3, so "1,234.56" reads as 1.23456.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := whitespaceRe.ReplaceAllString(raw, "")
	s = currencyPrefixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, unicodeMinusSign, "-")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	negative := strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "-")
	s = strings.ReplaceAll(s, "+", "")
	// "-R$ 10,00" keeps the symbol behind the sign.
	s = currencyPrefixRe.ReplaceAllString(s, "")

	switch {
	case brGroupedRe.MatchString(s) || (strings.Contains(s, ".") && strings.Contains(s, ",")):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case commaDecimalRe.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	case commaGroupedRe.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	value = value.Abs()
	if negative {
		value = value.Neg()
	}
	return value, nil
}

// AmountFromFloat accepts an already numeric amount, rejecting NaN and infinities.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrInvalidAmount
	}
	return decimal.NewFromFloat(f), nil
}
