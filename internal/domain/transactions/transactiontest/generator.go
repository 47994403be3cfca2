// Package transactiontest generates realistic transaction data for tests.
package transactiontest

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/money"
)

// Generator produces transactions with gofakeit.
type Generator struct {
	faker *gofakeit.Faker
	seq   int
}

// NewGenerator creates a generator with a fixed seed for reproducibility.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

var expenseDescriptions = []string{
	"PADARIA CENTRAL", "FARMACIA POPULAR", "UBER *TRIP", "POSTO SHELL",
	"SUPERMERCADO EXTRA", "NETFLIX.COM", "RESTAURANTE SABOR", "LOJA AMERICANAS",
	"PIX ENVIADO - Fulano de Tal", "ALUGUEL APTO", "ESCOLA ABC", "PET SHOP AMIGO",
}

var incomeDescriptions = []string{
	"SALARIO EMPRESA LTDA", "PIX RECEBIDO - Maria Silva", "RENDIMENTO POUPANCA", "REEMBOLSO",
}

var paymentMethods = []string{"Pix", "Débito", "Crédito", "Boleto", ""}

var counterparties = []string{"Fulano", "Maria Silva", "Empresa LTDA", "", ""}

// Transaction generates one record dated between from and to.
func (g *Generator) Transaction(from, to time.Time) transactions.Transaction {
	g.seq++

	cents := int64(g.faker.Number(100, 500000))
	description := expenseDescriptions[g.faker.Number(0, len(expenseDescriptions)-1)]
	if g.faker.Number(1, 4) == 1 {
		description = incomeDescriptions[g.faker.Number(0, len(incomeDescriptions)-1)]
	} else {
		cents = -cents
	}

	return transactions.Transaction{
		Date:          g.faker.DateRange(from, to).Format("02/01/2006"),
		Amount:        money.FromCents(cents),
		Identifier:    fmt.Sprintf("gen-%d", g.seq),
		Description:   description,
		Category:      transactions.SeedCategories[g.faker.Number(0, len(transactions.SeedCategories)-1)],
		PaymentMethod: paymentMethods[g.faker.Number(0, len(paymentMethods)-1)],
		Counterparty:  counterparties[g.faker.Number(0, len(counterparties)-1)],
		SourceFile:    "extrato.csv",
	}
}

// Transactions generates count records dated between from and to.
func (g *Generator) Transactions(count int, from, to time.Time) []transactions.Transaction {
	out := make([]transactions.Transaction, count)
	for i := range out {
		out[i] = g.Transaction(from, to)
	}
	return out
}

// Between returns a generator window ending at now and starting days earlier.
func Between(now time.Time, days int) (time.Time, time.Time) {
	return now.AddDate(0, 0, -days), now
}
