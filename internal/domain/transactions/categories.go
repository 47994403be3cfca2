package transactions

import "strings"

// SeedCategories is the starter category list.
var SeedCategories = []string{
	"Alimentação", "Transporte", "Saúde", "Educação", "Moradia",
	"Compras", "Lazer", "Viagem", "Dívidas", "Investimentos",
	"Impostos", "Serviços", "Assinaturas", "Pets", "Outros",
}

// CategorySet is an insertion-ordered set of category labels. It is not safe
// for concurrent use; Store guards it.
type CategorySet struct {
	labels []string
	index  map[string]struct{}
}

// NewCategorySet builds a set from labels, skipping blanks and repeats.
func NewCategorySet(labels ...string) *CategorySet {
	c := &CategorySet{index: make(map[string]struct{}, len(labels))}
	for _, l := range labels {
		c.Append(l)
	}
	return c
}

// Contains reports whether label is known.
func (c *CategorySet) Contains(label string) bool {
	_, ok := c.index[label]
	return ok
}

// Append adds label at the end. Returns false for blanks and known labels.
func (c *CategorySet) Append(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || c.Contains(label) {
		return false
	}
	c.index[label] = struct{}{}
	c.labels = append(c.labels, label)
	return true
}

// Prepend adds label at the front, so the newest label is listed first.
func (c *CategorySet) Prepend(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || c.Contains(label) {
		return false
	}
	c.index[label] = struct{}{}
	c.labels = append([]string{label}, c.labels...)
	return true
}

// Labels returns a copy of the labels in set order.
func (c *CategorySet) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Len returns the number of labels.
func (c *CategorySet) Len() int {
	return len(c.labels)
}
