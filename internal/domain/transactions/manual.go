package transactions

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
)

// User-facing validation messages for manual entry.
const (
	InvalidAmountMessage = "Valor inválido"
	InvalidDateMessage   = "Data inválida"
)

// ManualEntry carries the raw form values of a hand-typed transaction.
type ManualEntry struct {
	Date          string `json:"data"`
	Amount        string `json:"valor"`
	Description   string `json:"descricao"`
	Category      string `json:"categoria"`
	PaymentMethod string `json:"formaPagamento"`
	Counterparty  string `json:"destinatario"`
	Installments  string `json:"parcelas"`
}

// EntryError reports an invalid manual-entry field.
type EntryError struct {
	Field   string
	Message string
	Err     error
}

func (e *EntryError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// NewManual validates entry and builds a record. An empty date means today.
// A blank category is resolved with categorize when given, else DefaultCategory.
func NewManual(entry ManualEntry, categorize func(string) string, now time.Time) (Transaction, error) {
	amount, err := normalizer.ParseAmount(entry.Amount)
	if err != nil {
		return Transaction{}, &EntryError{Field: "valor", Message: InvalidAmountMessage, Err: err}
	}

	date := normalizer.FormatDate(now)
	if strings.TrimSpace(entry.Date) != "" {
		date, err = normalizer.NormalizeDate(entry.Date)
		if err != nil {
			return Transaction{}, &EntryError{Field: "data", Message: InvalidDateMessage, Err: err}
		}
	}

	description := strings.TrimSpace(entry.Description)
	if description == "" {
		description = DefaultDescription
	}

	category := strings.TrimSpace(entry.Category)
	if category == "" {
		category = DefaultCategory
		if categorize != nil {
			category = categorize(description)
		}
	}

	return Transaction{
		Date:          date,
		Amount:        amount,
		Identifier:    "manual-" + uuid.NewString(),
		Description:   description,
		Category:      category,
		PaymentMethod: strings.TrimSpace(entry.PaymentMethod),
		Counterparty:  strings.TrimSpace(entry.Counterparty),
		Installments:  strings.TrimSpace(entry.Installments),
		SourceFile:    ManualSource,
	}, nil
}

// IsInvalidAmount reports whether err came from a rejected manual amount.
func IsInvalidAmount(err error) bool {
	return errors.Is(err, normalizer.ErrInvalidAmount)
}
