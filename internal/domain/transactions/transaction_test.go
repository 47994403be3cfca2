package transactions

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Direction(t *testing.T) {
	assert.Equal(t, Inflow, tx("a", "01/01/2024", "10", "").Direction())
	assert.Equal(t, Outflow, tx("a", "01/01/2024", "-10", "").Direction())
	assert.Equal(t, Outflow, tx("a", "01/01/2024", "0", "").Direction())

	zero := tx("z", "01/01/2024", "0", "")
	assert.False(t, zero.IsInflow())
	assert.False(t, zero.IsOutflow())
}

func TestSortByDate(t *testing.T) {
	records := []Transaction{
		tx("a", "01/01/2024", "1", ""),
		tx("b", "03/01/2024", "1", ""),
		tx("c", "01/01/2024", "1", ""),
		tx("d", "02/01/2024", "1", ""),
	}

	SortByDateDesc(records)
	assert.Equal(t, []string{"b", "d", "a", "c"}, identifiers(records))

	SortByDateAsc(records)
	assert.Equal(t, []string{"a", "c", "d", "b"}, identifiers(records))
}

func TestDedup(t *testing.T) {
	records := []Transaction{
		{Identifier: "x", Amount: decimal.NewFromInt(1)},
		{Identifier: "y"},
		{Identifier: "x", Amount: decimal.NewFromInt(2)},
	}
	unique, dups := Dedup(records)
	assert.Equal(t, 1, dups)
	assert.Equal(t, []string{"x", "y"}, identifiers(unique))
	assert.True(t, unique[0].Amount.Equal(decimal.NewFromInt(1)))
}

func TestCategorySet(t *testing.T) {
	set := NewCategorySet("A", "B", "A", " ")
	assert.Equal(t, []string{"A", "B"}, set.Labels())

	assert.True(t, set.Prepend("C"))
	assert.False(t, set.Prepend("B"))
	assert.True(t, set.Append("D"))
	assert.Equal(t, []string{"C", "A", "B", "D"}, set.Labels())
	assert.Equal(t, 4, set.Len())
}
