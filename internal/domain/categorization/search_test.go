package categorization

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
)

func searchFixture() []transactions.Transaction {
	return []transactions.Transaction{
		{Date: "15/03/2024", Amount: decimal.RequireFromString("-45.90"), Identifier: "id1", Description: "PADARIA CENTRAL", Category: "Alimentação"},
		{Date: "14/03/2024", Amount: decimal.RequireFromString("-120"), Identifier: "id2", Description: "DROGARIA SAO PAULO", Category: "Saúde", PaymentMethod: "Crédito"},
		{Date: "10/03/2024", Amount: decimal.RequireFromString("300"), Identifier: "id3", Description: "PIX RECEBIDO", Category: "Transferência", Counterparty: "Joana Silva"},
	}
}

func TestSearchIndex(t *testing.T) {
	index, err := NewSearchIndex()
	require.NoError(t, err)
	defer index.Close()

	require.NoError(t, index.Rebuild(searchFixture()))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	t.Run("exact term", func(t *testing.T) {
		hits, err := index.Search("padaria", 10)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "id1", hits[0].Identifier)
	})

	t.Run("typo tolerant", func(t *testing.T) {
		hits, err := index.Search("drogaria", 10)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "id2", hits[0].Identifier)

		hits, err = index.Search("drogria", 10)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "id2", hits[0].Identifier)
	})

	t.Run("counterparty field", func(t *testing.T) {
		hits, err := index.Search("joana", 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "id3", hits[0].Identifier)
	})

	t.Run("no hits", func(t *testing.T) {
		hits, err := index.Search("xyzzyq", 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("rebuild replaces documents", func(t *testing.T) {
		require.NoError(t, index.Rebuild(searchFixture()[:1]))
		count, err := index.DocumentCount()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
	})
}

type versionedFixture struct {
	records []transactions.Transaction
	version uint64
	calls   int
}

func (v *versionedFixture) Versioned() ([]transactions.Transaction, uint64) {
	v.calls++
	return v.records, v.version
}

func TestSearchIndex_Sync(t *testing.T) {
	index, err := NewSearchIndex()
	require.NoError(t, err)
	defer index.Close()

	src := &versionedFixture{records: searchFixture()[:1], version: 1}
	require.NoError(t, index.Sync(src))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	// Same version: the index is left alone even if the slice changed.
	src.records = searchFixture()
	require.NoError(t, index.Sync(src))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	src.version = 2
	require.NoError(t, index.Sync(src))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}
