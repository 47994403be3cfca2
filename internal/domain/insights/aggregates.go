package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/money"
)

// DefaultCounterpartyLimit is the size of the top counterparties list.
const DefaultCounterpartyLimit = 5

// counterpartyFallbackLen is how much of the description keys a record
// without counterparty.
const counterpartyFallbackLen = 40

// Totals summarizes a record set. Outflow is reported as a positive number.
type Totals struct {
	Inflow  decimal.Decimal `json:"entradas"`
	Outflow decimal.Decimal `json:"saidas"`
	Balance decimal.Decimal `json:"saldo"`

	InflowCount  int `json:"numeroEntradas"`
	OutflowCount int `json:"numeroSaidas"`
}

// ComputeTotals sums inflows and the absolute value of outflows.
func ComputeTotals(records []transactions.Transaction) Totals {
	var t Totals
	for _, r := range records {
		switch {
		case r.IsInflow():
			t.Inflow = t.Inflow.Add(r.Amount)
			t.InflowCount++
		case r.IsOutflow():
			t.Outflow = t.Outflow.Add(r.Amount.Abs())
			t.OutflowCount++
		}
	}
	t.Balance = t.Inflow.Sub(t.Outflow)
	return t
}

// CategoryTotal is one bucket of the category breakdown.
type CategoryTotal struct {
	Category string          `json:"nome"`
	Total    decimal.Decimal `json:"total"`
	Percent  decimal.Decimal `json:"percentual"`
	Count    int             `json:"quantidade"`
}

// CategoryBreakdown groups records by category and sums absolute amounts.
// Buckets are ordered by total, largest first; ties keep first-seen order.
func CategoryBreakdown(records []transactions.Transaction) []CategoryTotal {
	index := make(map[string]int)
	buckets := make([]CategoryTotal, 0)
	grand := decimal.Zero

	for _, r := range records {
		abs := r.Amount.Abs()
		grand = grand.Add(abs)
		i, ok := index[r.Category]
		if !ok {
			i = len(buckets)
			index[r.Category] = i
			buckets = append(buckets, CategoryTotal{Category: r.Category})
		}
		buckets[i].Total = buckets[i].Total.Add(abs)
		buckets[i].Count++
	}

	for i := range buckets {
		buckets[i].Percent = money.Percent(buckets[i].Total, grand)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Total.GreaterThan(buckets[j].Total)
	})
	return buckets
}

// BalancePoint is the running balance at the end of a MM/YYYY key.
type BalancePoint struct {
	Period  string          `json:"mes"`
	Balance decimal.Decimal `json:"saldo"`
}

// RunningBalance sweeps every record oldest first and accumulates the signed
// amounts. Each MM/YYYY key gets the total as of its last record; keys appear
// in the order they are first met during the sweep. Pass the full store, not
// a filtered view.
func RunningBalance(records []transactions.Transaction) []BalancePoint {
	sorted := transactions.Clone(records)
	transactions.SortByDateAsc(sorted)

	index := make(map[string]int)
	points := make([]BalancePoint, 0)
	running := decimal.Zero
	for _, r := range sorted {
		running = running.Add(r.Amount)
		key := normalizer.MonthKey(r.Date)
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, BalancePoint{Period: key})
		}
		points[i].Balance = money.Round2(running)
	}
	return points
}

// CounterpartyTotal is one entry of the top counterparties list.
type CounterpartyTotal struct {
	Name      string                 `json:"nome"`
	Count     int                    `json:"quantidade"`
	Total     decimal.Decimal        `json:"total"`
	Direction transactions.Direction `json:"tipo"`
}

// TopCounterparties groups by counterparty, or by the first 40 characters of
// the description when no counterparty is set. A group's direction comes from
// the record that created it. Groups are ordered by count, ties keep
// first-seen order. limit <= 0 uses DefaultCounterpartyLimit.
func TopCounterparties(records []transactions.Transaction, limit int) []CounterpartyTotal {
	if limit <= 0 {
		limit = DefaultCounterpartyLimit
	}

	index := make(map[string]int)
	groups := make([]CounterpartyTotal, 0)
	for _, r := range records {
		key := counterpartyKey(r)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CounterpartyTotal{Name: key, Direction: r.Direction()})
		}
		groups[i].Count++
		groups[i].Total = groups[i].Total.Add(r.Amount.Abs())
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

func counterpartyKey(r transactions.Transaction) string {
	if r.Counterparty != "" {
		return r.Counterparty
	}
	runes := []rune(r.Description)
	if len(runes) > counterpartyFallbackLen {
		return string(runes[:counterpartyFallbackLen])
	}
	return r.Description
}

// Projection is the period totals, scaled to a full year for PeriodThisYear.
type Projection struct {
	Inflow  decimal.Decimal `json:"entradas"`
	Outflow decimal.Decimal `json:"saidas"`
	Balance decimal.Decimal `json:"saldo"`
}

var daysPerYear = decimal.NewFromInt(365)

// YearlyProjection extrapolates this-year totals to 365 days using the whole
// days elapsed since January 1st (at least one). Any other period returns the
// totals unchanged.
func YearlyProjection(p Period, inflow, outflow decimal.Decimal, now time.Time) Projection {
	if p != PeriodThisYear {
		return Projection{Inflow: inflow, Outflow: outflow, Balance: inflow.Sub(outflow)}
	}

	now = now.In(normalizer.Location)
	jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, normalizer.Location)
	elapsed := int64(now.Sub(jan1).Hours() / 24)
	if elapsed < 1 {
		elapsed = 1
	}
	days := decimal.NewFromInt(elapsed)

	dailyIn := inflow.Div(days)
	dailyOut := outflow.Div(days)
	return Projection{
		Inflow:  money.Round2(dailyIn.Mul(daysPerYear)),
		Outflow: money.Round2(dailyOut.Mul(daysPerYear)),
		Balance: money.Round2(dailyIn.Sub(dailyOut).Mul(daysPerYear)),
	}
}
