package transactions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() State {
	return State{
		Transactions: []Transaction{
			tx("b", "15/03/2024", "-45.90", "Alimentação"),
			tx("a", "01/03/2024", "1500", "Outros"),
		},
		Categories: []string{"Alimentação", "Outros"},
	}
}

func assertRoundTrip(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Transactions)

	want := sampleState()
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, identifiers(want.Transactions), identifiers(got.Transactions))
	assert.True(t, got.Transactions[0].Amount.Equal(want.Transactions[0].Amount))
	assert.Equal(t, want.Categories, got.Categories)

	require.NoError(t, repo.Save(ctx, State{}))
	cleared, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cleared.Transactions)
}

func TestMemoryRepository(t *testing.T) {
	assertRoundTrip(t, NewMemoryRepository(State{}))
}

func TestJSONFileRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewJSONFileRepository(dir)
	require.NoError(t, err)

	assertRoundTrip(t, repo)

	_, err = os.Stat(filepath.Join(dir, StorageKey+".json"))
	assert.NoError(t, err)
}

func TestJSONFileRepository_ReadsNumericAmounts(t *testing.T) {
	dir := t.TempDir()
	payload := `[{"data":"15/03/2024","valor":-45.9,"identificador":"id1","descricao":"PADARIA","categoria":"Alimentação"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, StorageKey+".json"), []byte(payload), 0o644))

	repo, err := NewJSONFileRepository(dir)
	require.NoError(t, err)

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Transactions, 1)
	assert.Equal(t, "-45.9", state.Transactions[0].Amount.String())
}

func TestSQLiteRepository(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	assertRoundTrip(t, repo)
}
