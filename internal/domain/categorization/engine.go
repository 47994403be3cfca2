package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Categorizer assigns a category label to a free-text description using an
// ordered keyword table. All keywords are matched in a single pass with an
// Aho-Corasick automaton; among the hits the rule with the lowest table
// position wins.
type Categorizer struct {
	matcher  *ahocorasick.Matcher
	rules    []Rule
	firstHit []int // pattern index -> position of its first rule
	mu       sync.RWMutex
}

// NewCategorizer builds a categorizer over rules. Nil rules means DefaultRules.
func NewCategorizer(rules []Rule) *Categorizer {
	c := &Categorizer{}
	if rules == nil {
		rules = DefaultRules
	}
	c.Build(rules)
	return c
}

// Build replaces the keyword table. Repeated keywords share one automaton
// pattern that points at their first rule.
func (c *Categorizer) Build(rules []Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rules = make([]Rule, 0, len(rules))
	patternToIndex := make(map[string]int, len(rules))
	patterns := make([][]byte, 0, len(rules))
	firstHit := make([]int, 0, len(rules))

	for _, r := range rules {
		keyword := strings.ToUpper(strings.TrimSpace(r.Keyword))
		if keyword == "" || strings.TrimSpace(r.Category) == "" {
			continue
		}
		pos := len(c.rules)
		c.rules = append(c.rules, Rule{Keyword: keyword, Category: r.Category})

		if _, exists := patternToIndex[keyword]; exists {
			continue
		}
		patternToIndex[keyword] = len(patterns)
		patterns = append(patterns, []byte(keyword))
		firstHit = append(firstHit, pos)
	}

	c.firstHit = firstHit
	if len(patterns) == 0 {
		c.matcher = nil
		return
	}
	c.matcher = ahocorasick.NewMatcher(patterns)
}

// Match returns the first rule, in table order, whose keyword occurs in
// description (case-insensitive).
func (c *Categorizer) Match(description string) (Rule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.matcher == nil {
		return Rule{}, false
	}

	hits := c.matcher.Match([]byte(strings.ToUpper(description)))
	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(c.firstHit) {
			continue
		}
		if pos := c.firstHit[idx]; best < 0 || pos < best {
			best = pos
		}
	}
	if best < 0 {
		return Rule{}, false
	}
	return c.rules[best], true
}

// Categorize returns the category for description: the first matching rule,
// then the transfer fallback, then the purchase fallback, else "Outros".
func (c *Categorizer) Categorize(description string) string {
	if rule, ok := c.Match(description); ok {
		return rule.Category
	}

	upper := strings.ToUpper(description)
	if containsAny(upper, transferFallback) {
		return TransferCategory
	}
	if containsAny(upper, purchaseFallback) {
		return PurchaseCategory
	}
	return FallbackCategory
}

// Rules returns a copy of the active keyword table.
func (c *Categorizer) Rules() []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Categories lists the distinct labels the table can produce, in table order.
func (c *Categorizer) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{}, len(c.rules))
	var out []string
	for _, r := range c.rules {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
