// Package insights filters the transaction list and derives the dashboard
// aggregates from it. Everything here is pure: callers pass a snapshot and
// the clock.
package insights

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
)

// Period is a relative or anchored date window.
type Period string

const (
	PeriodAll       Period = "all"
	PeriodLast7     Period = "7d"
	PeriodLast15    Period = "15d"
	PeriodLast30    Period = "30d"
	PeriodLast90    Period = "90d"
	PeriodThisMonth Period = "month"
	PeriodThisYear  Period = "year"
)

// Type restricts records by amount sign.
type Type string

const (
	TypeAll     Type = "all"
	TypeInflow  Type = "inflow"
	TypeOutflow Type = "outflow"
)

// AllValues is the wildcard accepted by Year and Category.
const AllValues = "all"

var periodAliases = map[string]Period{
	"":       PeriodAll,
	"all":    PeriodAll,
	"todos":  PeriodAll,
	"7d":     PeriodLast7,
	"15d":    PeriodLast15,
	"30d":    PeriodLast30,
	"90d":    PeriodLast90,
	"month":  PeriodThisMonth,
	"mensal": PeriodThisMonth,
	"year":   PeriodThisYear,
	"anual":  PeriodThisYear,
}

var typeAliases = map[string]Type{
	"":         TypeAll,
	"all":      TypeAll,
	"todos":    TypeAll,
	"inflow":   TypeInflow,
	"entradas": TypeInflow,
	"outflow":  TypeOutflow,
	"saidas":   TypeOutflow,
}

var periodDays = map[Period]int{
	PeriodLast7:  7,
	PeriodLast15: 15,
	PeriodLast30: 30,
	PeriodLast90: 90,
}

// ParsePeriod accepts the canonical names and the Portuguese aliases.
func ParsePeriod(s string) (Period, error) {
	if p, ok := periodAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// ParseType accepts the canonical names and the Portuguese aliases.
func ParseType(s string) (Type, error) {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown type %q", s)
}

var yearRe = regexp.MustCompile(`^\d{4}$`)

// ParseYear accepts a four-digit year or a wildcard ("", "all", "todos").
// Wildcards come back as "".
func ParseYear(s string) (string, error) {
	s = strings.TrimSpace(s)
	if isWildcard(s) {
		return "", nil
	}
	if !yearRe.MatchString(s) {
		return "", fmt.Errorf("unknown year %q", s)
	}
	return s, nil
}

// Criteria is the immutable filter configuration. Zero values mean "no
// restriction" for every field.
type Criteria struct {
	Period   Period
	Year     string
	Category string
	Type     Type
	Search   string
}

// Window returns the inclusive [start, now] range of a period. ok is false
// for PeriodAll.
func Window(p Period, now time.Time) (start time.Time, ok bool) {
	now = now.In(normalizer.Location)
	if days, found := periodDays[p]; found {
		return now.AddDate(0, 0, -days), true
	}
	switch p {
	case PeriodThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, normalizer.Location), true
	case PeriodThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, normalizer.Location), true
	}
	return time.Time{}, false
}

func isWildcard(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todos":
		return true
	}
	return false
}

// Apply returns the records matching every criterion, newest first. The
// input slice is not modified.
func Apply(records []transactions.Transaction, c Criteria, now time.Time) []transactions.Transaction {
	start, windowed := Window(c.Period, now)
	startMs, endMs := start.UnixMilli(), now.UnixMilli()
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]transactions.Transaction, 0, len(records))
	for _, r := range records {
		if windowed {
			ts := r.Timestamp()
			if ts < startMs || ts > endMs {
				continue
			}
		}
		if !isWildcard(c.Year) && r.Year() != c.Year {
			continue
		}
		if !isWildcard(c.Category) && r.Category != c.Category {
			continue
		}
		switch c.Type {
		case TypeInflow:
			if !r.IsInflow() {
				continue
			}
		case TypeOutflow:
			if !r.IsOutflow() {
				continue
			}
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		out = append(out, r)
	}

	transactions.SortByDateDesc(out)
	return out
}

func matchesSearch(r transactions.Transaction, term string) bool {
	for _, field := range []string{r.Description, r.Category, r.Counterparty, r.PaymentMethod} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
