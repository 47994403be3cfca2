package categorization

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizer_Categorize(t *testing.T) {
	c := NewCategorizer(nil)

	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"bakery", "PADARIA CENTRAL", "Alimentação"},
		{"supermarket resolves to first table entry", "SUPERMERCADO EXTRA", "Alimentação"},
		{"ride hailing", "UBER *TRIP HELP.UBER.COM", "Transporte"},
		{"lower case", "Farmacia Pague Menos", "Saúde"},
		{"pix rule", "PIX ENVIADO MARIA", "Transferência"},
		{"transfer fallback", "TRANSF ENTRE CONTAS", "Transferência"},
		{"purchase fallback", "SUPERCENTER ABC", "Compras"},
		{"no match", "NETFLIX.COM", "Outros"},
		{"empty", "", "Outros"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.description))
		})
	}
}

func TestCategorizer_FirstRuleWins(t *testing.T) {
	t.Run("repeated keyword keeps its first category", func(t *testing.T) {
		c := NewCategorizer([]Rule{
			{"MERCADO", "A"},
			{"SUPERMERCADO", "B"},
			{"MERCADO", "C"},
		})
		rule, ok := c.Match("SUPERMERCADO X")
		require.True(t, ok)
		assert.Equal(t, "A", rule.Category)
	})

	t.Run("table order beats text position", func(t *testing.T) {
		c := NewCategorizer([]Rule{
			{"LOJA", "Compras"},
			{"UBER", "Transporte"},
		})
		assert.Equal(t, "Compras", c.Categorize("UBER PARA A LOJA"))
	})

	t.Run("rebuild replaces table", func(t *testing.T) {
		c := NewCategorizer([]Rule{{"UBER", "Transporte"}})
		c.Build([]Rule{{"UBER", "Mobilidade"}})
		assert.Equal(t, "Mobilidade", c.Categorize("uber"))
		assert.Len(t, c.Rules(), 1)
	})

	t.Run("empty table still applies fallbacks", func(t *testing.T) {
		c := NewCategorizer([]Rule{})
		assert.Equal(t, TransferCategory, c.Categorize("pix recebido"))
		assert.Equal(t, PurchaseCategory, c.Categorize("minha loja"))
		assert.Equal(t, FallbackCategory, c.Categorize("qualquer"))
	})
}

// The automaton must agree with a top-to-bottom scan of the table.
func TestCategorizer_MatchesLinearScan(t *testing.T) {
	c := NewCategorizer(nil)
	faker := gofakeit.New(7)

	linear := func(description string) string {
		upper := strings.ToUpper(description)
		for _, r := range DefaultRules {
			if strings.Contains(upper, r.Keyword) {
				return r.Category
			}
		}
		return ""
	}

	for i := 0; i < 500; i++ {
		words := []string{faker.Word()}
		for j := 0; j < 3; j++ {
			if faker.Bool() {
				words = append(words, DefaultRules[faker.Number(0, len(DefaultRules)-1)].Keyword)
			} else {
				words = append(words, faker.Company())
			}
		}
		description := strings.Join(words, " ")

		want := linear(description)
		rule, ok := c.Match(description)
		if want == "" {
			assert.False(t, ok, description)
			continue
		}
		require.True(t, ok, description)
		assert.Equal(t, want, rule.Category, description)
	}
}

func TestCategorizer_Categories(t *testing.T) {
	c := NewCategorizer([]Rule{{"A", "X"}, {"B", "Y"}, {"C", "X"}})
	assert.Equal(t, []string{"X", "Y"}, c.Categories())
}
