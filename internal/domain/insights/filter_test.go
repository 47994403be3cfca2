package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions/transactiontest"
)

var fixedNow = time.Date(2024, 3, 20, 12, 0, 0, 0, normalizer.Location)

func rec(id, date, amount, category string) transactions.Transaction {
	return transactions.Transaction{
		Date:        date,
		Amount:      decimal.RequireFromString(amount),
		Identifier:  id,
		Description: "DESC " + id,
		Category:    category,
	}
}

func ids(records []transactions.Transaction) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Identifier
	}
	return out
}

func sampleRecords() []transactions.Transaction {
	return []transactions.Transaction{
		rec("old", "10/12/2023", "-50.00", "Lazer"),
		rec("today", "20/03/2024", "-10.00", "Alimentação"),
		rec("d6", "14/03/2024", "200.00", "Salário"),
		rec("d7", "13/03/2024", "-15.00", "Transporte"),
		rec("month", "01/03/2024", "-30.00", "Alimentação"),
		rec("year", "15/01/2024", "-5.00", "Saúde"),
		rec("future", "25/03/2024", "-1.00", "Outros"),
	}
}

func TestApply_Period(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		period Period
		want   []string
	}{
		{PeriodAll, []string{"future", "today", "d6", "d7", "month", "year", "old"}},
		{PeriodLast7, []string{"today", "d6"}},
		{PeriodLast15, []string{"today", "d6", "d7"}},
		{PeriodLast30, []string{"today", "d6", "d7", "month"}},
		{PeriodLast90, []string{"today", "d6", "d7", "month", "year"}},
		{PeriodThisMonth, []string{"today", "d6", "d7", "month"}},
		{PeriodThisYear, []string{"today", "d6", "d7", "month", "year"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got := Apply(records, Criteria{Period: tt.period}, fixedNow)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_Dimensions(t *testing.T) {
	records := sampleRecords()
	records[1].Counterparty = "Padaria do Zé"
	records[2].PaymentMethod = "Pix"

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"year", Criteria{Year: "2023"}, []string{"old"}},
		{"year wildcard", Criteria{Year: "todos"}, []string{"future", "today", "d6", "d7", "month", "year", "old"}},
		{"category", Criteria{Category: "Alimentação"}, []string{"today", "month"}},
		{"category is exact", Criteria{Category: "alimentação"}, []string{}},
		{"inflow", Criteria{Type: TypeInflow}, []string{"d6"}},
		{"outflow", Criteria{Type: TypeOutflow}, []string{"future", "today", "d7", "month", "year", "old"}},
		{"search description", Criteria{Search: "desc d7"}, []string{"d7"}},
		{"search category", Criteria{Search: "saúde"}, []string{"year"}},
		{"search counterparty", Criteria{Search: "PADARIA"}, []string{"today"}},
		{"search payment method", Criteria{Search: "pix"}, []string{"d6"}},
		{"conjunction", Criteria{Period: PeriodThisMonth, Category: "Alimentação", Type: TypeOutflow}, []string{"today", "month"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(records, tt.criteria, fixedNow)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := ids(records)

	Apply(records, Criteria{}, fixedNow)

	assert.Equal(t, before, ids(records))
}

func TestApply_Conjunction(t *testing.T) {
	gen := transactiontest.NewGenerator(42)
	from, to := transactiontest.Between(fixedNow, 400)
	records := gen.Transactions(300, from, to)

	periods := []Period{PeriodAll, PeriodLast7, PeriodLast30, PeriodLast90, PeriodThisMonth, PeriodThisYear}
	for _, p := range periods {
		for _, c := range transactions.SeedCategories {
			byPeriod := Apply(records, Criteria{Period: p}, fixedNow)
			byCategory := Apply(records, Criteria{Category: c}, fixedNow)
			both := Apply(records, Criteria{Period: p, Category: c}, fixedNow)

			inCategory := make(map[string]bool)
			for _, r := range byCategory {
				inCategory[r.Identifier] = true
			}
			want := []string{}
			for _, r := range byPeriod {
				if inCategory[r.Identifier] {
					want = append(want, r.Identifier)
				}
			}
			assert.ElementsMatch(t, want, ids(both), "period %s category %s", p, c)
		}
	}
}

func TestParsePeriodAndType(t *testing.T) {
	p, err := ParsePeriod("mensal")
	require.NoError(t, err)
	assert.Equal(t, PeriodThisMonth, p)

	p, err = ParsePeriod("todos")
	require.NoError(t, err)
	assert.Equal(t, PeriodAll, p)

	_, err = ParsePeriod("semanal")
	assert.Error(t, err)

	ty, err := ParseType("saidas")
	require.NoError(t, err)
	assert.Equal(t, TypeOutflow, ty)

	_, err = ParseType("neutro")
	assert.Error(t, err)
}

func TestParseYear(t *testing.T) {
	for _, raw := range []string{"", "todos", "ALL"} {
		y, err := ParseYear(raw)
		require.NoError(t, err)
		assert.Empty(t, y)
	}

	y, err := ParseYear(" 2024 ")
	require.NoError(t, err)
	assert.Equal(t, "2024", y)

	for _, raw := range []string{"24", "2024\"", "20245", "dois mil"} {
		_, err := ParseYear(raw)
		assert.Error(t, err, raw)
	}
}
