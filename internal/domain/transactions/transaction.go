// Package transactions holds the canonical transaction record and the
// in-memory store that owns the authoritative record list.
package transactions

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
)

const (
	// DefaultDescription is used when a row carries no description.
	DefaultDescription = "Sem descrição"
	// DefaultCategory is the catch-all category.
	DefaultCategory = "Outros"
	// ManualSource tags records typed in by hand.
	ManualSource = "Manual"
)

// Direction classifies a record by the sign of its amount.
type Direction string

const (
	Inflow  Direction = "entrada"
	Outflow Direction = "saida"
)

// Transaction is a normalized statement entry. Amount sign is the only
// inflow/outflow discriminator. JSON keys match the persisted payload.
type Transaction struct {
	Date          string          `json:"data"` // DD/MM/YYYY
	Amount        decimal.Decimal `json:"valor"`
	Identifier    string          `json:"identificador"`
	Description   string          `json:"descricao"`
	Category      string          `json:"categoria"`
	PaymentMethod string          `json:"formaPagamento,omitempty"`
	Counterparty  string          `json:"destinatario,omitempty"`
	Installments  string          `json:"parcelas,omitempty"`
	SourceFile    string          `json:"origemArquivo,omitempty"`
}

// Timestamp returns the record date in Unix milliseconds (0 when malformed).
func (t Transaction) Timestamp() int64 {
	return normalizer.Timestamp(t.Date)
}

// Year returns the YYYY part of the record date.
func (t Transaction) Year() string {
	return normalizer.Year(t.Date)
}

// IsInflow reports a strictly positive amount.
func (t Transaction) IsInflow() bool {
	return t.Amount.IsPositive()
}

// IsOutflow reports a strictly negative amount.
func (t Transaction) IsOutflow() bool {
	return t.Amount.IsNegative()
}

// Direction returns Inflow for positive amounts and Outflow otherwise.
func (t Transaction) Direction() Direction {
	if t.IsInflow() {
		return Inflow
	}
	return Outflow
}

// SortByDateDesc orders records newest first. Records on the same day keep
// their relative order.
func SortByDateDesc(records []Transaction) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp() > records[j].Timestamp()
	})
}

// SortByDateAsc orders records oldest first, keeping same-day order.
func SortByDateAsc(records []Transaction) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp() < records[j].Timestamp()
	})
}

// Dedup keeps the first record for each identifier and reports how many
// later records were dropped.
func Dedup(records []Transaction) ([]Transaction, int) {
	seen := make(map[string]struct{}, len(records))
	unique := make([]Transaction, 0, len(records))
	duplicates := 0
	for _, r := range records {
		if _, ok := seen[r.Identifier]; ok {
			duplicates++
			continue
		}
		seen[r.Identifier] = struct{}{}
		unique = append(unique, r)
	}
	return unique, duplicates
}

// Clone returns a copy of records that callers may mutate freely.
func Clone(records []Transaction) []Transaction {
	if records == nil {
		return []Transaction{}
	}
	out := make([]Transaction, len(records))
	copy(out, records)
	return out
}
