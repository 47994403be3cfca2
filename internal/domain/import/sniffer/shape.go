package sniffer

import (
	"errors"
	"regexp"
	"strings"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
)

// ErrUnsupportedShape is returned for rows whose column count maps to no layout.
var ErrUnsupportedShape = errors.New("unsupported column count")

// Field identifies the semantic meaning of a column.
type Field int

const (
	FieldDate Field = iota
	FieldAmount
	FieldDescription
	FieldIdentifier
	FieldCategory
	FieldPaymentMethod
	FieldCounterparty
	FieldInstallments
)

// Layout is an ordered column assignment.
type Layout struct {
	Name   string
	Fields []Field
	// DescriptionRest joins every column from the description's position to
	// the end of the row back into the description.
	DescriptionRest bool
}

var (
	layoutFull = Layout{Name: "full", Fields: []Field{
		FieldDate, FieldAmount, FieldDescription, FieldIdentifier,
		FieldCategory, FieldPaymentMethod, FieldCounterparty, FieldInstallments,
	}}
	layoutSix = Layout{Name: "six", Fields: []Field{
		FieldDate, FieldAmount, FieldDescription, FieldIdentifier, FieldCategory, FieldPaymentMethod,
	}}
	layoutFive = Layout{Name: "five", Fields: []Field{
		FieldDate, FieldAmount, FieldDescription, FieldCategory, FieldPaymentMethod,
	}}
	layoutFour = Layout{Name: "four", Fields: []Field{
		FieldDate, FieldAmount, FieldIdentifier, FieldDescription,
	}}
	layoutFourRest = Layout{Name: "four-rest", Fields: layoutFour.Fields, DescriptionRest: true}
	layoutDated    = Layout{Name: "dated", Fields: []Field{
		FieldDate, FieldAmount, FieldDescription,
	}}
	layoutUndated = Layout{Name: "undated", Fields: []Field{
		FieldDescription, FieldAmount, FieldIdentifier,
	}}
	layoutPair = Layout{Name: "pair", Fields: []Field{
		FieldDescription, FieldAmount,
	}}
)

// RawFields holds the raw cell text assigned to each field of a row.
type RawFields struct {
	Layout        string
	Date          string
	Amount        string
	Description   string
	Identifier    string
	Category      string
	PaymentMethod string
	Counterparty  string
	Installments  string
	HasDate       bool // the layout carries a date column
}

var (
	splitIntegerRe  = regexp.MustCompile(`^[-+−]?(?:R\$)?\d{1,3}(?:\.\d{3})*$|^[-+−]?(?:R\$)?\d+$`)
	splitFractionRe = regexp.MustCompile(`^\d{1,2}-?$`)
)

// Assign maps a split row onto a layout by column count, highest arity first:
//
//	8+ date, amount, description, identifier, category, payment, counterparty, installments
//	7  date, amount, identifier, description (remaining columns joined)
//	6  date, amount, description, identifier, category, payment
//	5  date, amount, description, category, payment
//	4  date, amount, identifier, description
//	3  date, amount, description when column 0 is a date, else description, amount, identifier
//	2  description, amount
//
// Comma-delimited rows get their comma-decimal amount repaired first, then
// trailing empty cells are dropped before the count is mapped. A row that
// was eight or more columns wide keeps the full layout when only its
// installments cell was empty.
func Assign(cells []string, delimiter rune) (RawFields, error) {
	if delimiter == ',' {
		cells = RepairSplitDecimal(cells)
	}
	width := len(cells)
	cells = trimTrailingEmpty(cells)

	layout, ok := layoutFor(cells)
	if !ok {
		return RawFields{}, ErrUnsupportedShape
	}
	if len(cells) == 7 && width >= len(layoutFull.Fields) {
		layout = layoutFull
		cells = append(cells, "")
	}

	raw := RawFields{Layout: layout.Name}
	for i, field := range layout.Fields {
		value := cells[i]
		if field == FieldDescription && layout.DescriptionRest {
			value = strings.Join(cells[i:], string(delimiter))
		}
		raw.set(field, value)
	}
	return raw, nil
}

// RepairSplitDecimal merges "-45","90" back into "-45,90" when a date-first
// comma-delimited row had its decimal comma treated as a delimiter. Rows are
// only merged when at least four columns remain.
func RepairSplitDecimal(cells []string) []string {
	if len(cells) < 5 || !normalizer.LooksLikeDate(cells[0]) {
		return cells
	}
	if !splitIntegerRe.MatchString(cells[1]) || !splitFractionRe.MatchString(cells[2]) {
		return cells
	}

	merged := make([]string, 0, len(cells)-1)
	merged = append(merged, cells[0], cells[1]+","+cells[2])
	return append(merged, cells[3:]...)
}

func layoutFor(cells []string) (Layout, bool) {
	switch n := len(cells); {
	case n >= 8:
		return layoutFull, true
	case n == 7:
		return layoutFourRest, true
	case n == 6:
		return layoutSix, true
	case n == 5:
		return layoutFive, true
	case n == 4:
		return layoutFour, true
	case n == 3:
		if normalizer.LooksLikeDate(cells[0]) {
			return layoutDated, true
		}
		return layoutUndated, true
	case n == 2:
		return layoutPair, true
	default:
		return Layout{}, false
	}
}

func trimTrailingEmpty(cells []string) []string {
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func (r *RawFields) set(f Field, value string) {
	switch f {
	case FieldDate:
		r.Date = value
		r.HasDate = true
	case FieldAmount:
		r.Amount = value
	case FieldDescription:
		r.Description = value
	case FieldIdentifier:
		r.Identifier = value
	case FieldCategory:
		r.Category = value
	case FieldPaymentMethod:
		r.PaymentMethod = value
	case FieldCounterparty:
		r.Counterparty = value
	case FieldInstallments:
		r.Installments = value
	}
}
