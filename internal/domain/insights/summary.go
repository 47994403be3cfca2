package insights

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/money"
)

// DateRange is the span covered by a record set, as canonical dates.
type DateRange struct {
	Start string `json:"inicio"`
	End   string `json:"fim"`
}

// DailySpend is the outflow total of one day.
type DailySpend struct {
	Date  string          `json:"data"`
	Total decimal.Decimal `json:"total"`
}

// SpendingSummary describes the expenses of a record set.
type SpendingSummary struct {
	Period         DateRange       `json:"periodo"`
	TotalSpent     decimal.Decimal `json:"total_gasto"`
	Count          int             `json:"quantidade_transacoes"`
	Average        decimal.Decimal `json:"media_por_transacao"`
	LargestExpense decimal.Decimal `json:"maior_gasto"`
	Display        string          `json:"total_gasto_formatado"`
	Categories     []CategoryTotal `json:"categorias"`
	Daily          []DailySpend    `json:"evolucao_diaria"`
}

// Summarize computes the spending summary. The period covers every record
// with a valid date; the money figures only look at outflows.
func Summarize(records []transactions.Transaction) SpendingSummary {
	var (
		s        SpendingSummary
		minTs    int64
		maxTs    int64
		expenses []transactions.Transaction
	)
	daily := make(map[string]decimal.Decimal)

	for _, r := range records {
		if ts := r.Timestamp(); ts != 0 {
			if s.Period.Start == "" || ts < minTs {
				minTs, s.Period.Start = ts, r.Date
			}
			if s.Period.End == "" || ts > maxTs {
				maxTs, s.Period.End = ts, r.Date
			}
		}
		if !r.IsOutflow() {
			continue
		}
		abs := r.Amount.Abs()
		s.TotalSpent = s.TotalSpent.Add(abs)
		s.Count++
		if abs.GreaterThan(s.LargestExpense) {
			s.LargestExpense = abs
		}
		daily[r.Date] = daily[r.Date].Add(abs)
		expenses = append(expenses, r)
	}

	if s.Count > 0 {
		s.Average = money.Round2(s.TotalSpent.Div(decimal.NewFromInt(int64(s.Count))))
	}
	s.TotalSpent = money.Round2(s.TotalSpent)
	s.LargestExpense = money.Round2(s.LargestExpense)
	s.Display = money.Display(s.TotalSpent)
	s.Categories = CategoryBreakdown(expenses)
	s.Daily = dailySeries(daily)
	return s
}

func dailySeries(daily map[string]decimal.Decimal) []DailySpend {
	out := make([]DailySpend, 0, len(daily))
	for date, total := range daily {
		out = append(out, DailySpend{Date: date, Total: money.Round2(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := normalizer.Timestamp(out[i].Date), normalizer.Timestamp(out[j].Date)
		if ti != tj {
			return ti < tj
		}
		return out[i].Date < out[j].Date
	})
	return out
}

// Recipients groups records by the counterparty found in their description
// and orders the groups by count. Unlike TopCounterparties it ignores the
// counterparty field and returns every group.
func Recipients(records []transactions.Transaction) []CounterpartyTotal {
	index := make(map[string]int)
	groups := make([]CounterpartyTotal, 0)
	for _, r := range records {
		name := normalizer.ExtractCounterparty(r.Description)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, CounterpartyTotal{Name: name, Direction: r.Direction()})
		}
		groups[i].Count++
		groups[i].Total = groups[i].Total.Add(r.Amount.Abs())
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}
