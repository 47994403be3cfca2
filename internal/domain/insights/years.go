package insights

import (
	"sort"
	"strconv"
	"time"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
)

// yearOptionSpan is how many years before the current one the selector offers.
const yearOptionSpan = 5

// AvailableYears lists the distinct years present in records, newest first.
func AvailableYears(records []transactions.Transaction) []string {
	seen := make(map[string]struct{})
	years := make([]string, 0)
	for _, r := range records {
		y := r.Year()
		if y == "" {
			continue
		}
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

// YearOptions returns the year selector entries: the current year, the five
// before it, then the "todos" wildcard.
func YearOptions(now time.Time) []string {
	current := now.Year()
	opts := make([]string, 0, yearOptionSpan+2)
	for y := current; y >= current-yearOptionSpan; y-- {
		opts = append(opts, strconv.Itoa(y))
	}
	return append(opts, "todos")
}

// CategoryOptions returns "todos" followed by the distinct categories of
// records in first-seen order.
func CategoryOptions(records []transactions.Transaction) []string {
	seen := make(map[string]struct{})
	opts := []string{"todos"}
	for _, r := range records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		opts = append(opts, r.Category)
	}
	return opts
}
