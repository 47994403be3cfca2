package categorization

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSuggestionLimit caps SuggestCategories when limit <= 0.
const DefaultSuggestionLimit = 5

// SuggestCategories ranks labels against a typed query for the category
// picker. Prefix matches come first, then other fuzzy matches by distance.
// Matching ignores case and diacritics.
func SuggestCategories(query string, labels []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if len(labels) > limit {
			labels = labels[:limit]
		}
		return append([]string(nil), labels...)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, labels)
	sort.SliceStable(ranks, func(i, j int) bool {
		pi := hasFoldPrefix(ranks[i].Target, query)
		pj := hasFoldPrefix(ranks[j].Target, query)
		if pi != pj {
			return pi
		}
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]string, 0, limit)
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

// SuggestForDescription proposes categories for a description that no keyword
// matched exactly, by comparing each word against the keyword table with a
// small edit-distance budget (typos like "FARMACI" or "PADRIA").
func (c *Categorizer) SuggestForDescription(description string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	rules := c.Rules()
	type candidate struct {
		category string
		distance int
		pos      int
	}
	best := make(map[string]candidate)

	for _, word := range strings.Fields(strings.ToUpper(description)) {
		if len(word) < 4 {
			continue
		}
		budget := 1
		if len(word) >= 7 {
			budget = 2
		}
		for pos, r := range rules {
			d := fuzzy.LevenshteinDistance(word, r.Keyword)
			if d > budget {
				continue
			}
			if cur, ok := best[r.Category]; !ok || d < cur.distance || (d == cur.distance && pos < cur.pos) {
				best[r.Category] = candidate{category: r.Category, distance: d, pos: pos}
			}
		}
	}

	candidates := make([]candidate, 0, len(best))
	for _, cand := range best {
		candidates = append(candidates, cand)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].pos < candidates[j].pos
	})

	out := make([]string, 0, limit)
	for _, cand := range candidates {
		if len(out) == limit {
			break
		}
		out = append(out, cand.category)
	}
	return out
}

func hasFoldPrefix(s, prefix string) bool {
	return strings.HasPrefix(foldKey(s), foldKey(prefix))
}

// foldKey lowercases s and strips combining marks, so "Saúde" keys as "saude".
func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
