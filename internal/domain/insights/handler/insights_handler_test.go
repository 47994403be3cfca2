package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/insights"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
)

var fixedNow = time.Date(2024, 3, 20, 12, 0, 0, 0, normalizer.Location)

type staticStore []transactions.Transaction

func (s staticStore) Snapshot() []transactions.Transaction {
	return transactions.Clone(s)
}

func fixture() staticStore {
	return staticStore{
		{Date: "15/03/2024", Amount: decimal.RequireFromString("-45.90"), Identifier: "id1", Description: "PADARIA CENTRAL", Category: "Alimentação"},
		{Date: "10/03/2024", Amount: decimal.RequireFromString("3000"), Identifier: "id2", Description: "SALARIO EMPRESA", Category: "Salário"},
		{Date: "02/02/2024", Amount: decimal.RequireFromString("-120"), Identifier: "id3", Description: "PIX ENVIADO - Fulano de Tal", Category: "Transferência", Counterparty: "Fulano"},
		{Date: "20/12/2023", Amount: decimal.RequireFromString("-80"), Identifier: "id4", Description: "FARMACIA \"BOA\"", Category: "Saúde"},
	}
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	NewInsightsHandler(fixture(), nil).WithClock(func() time.Time { return fixedNow }).Register(mux)
	return mux
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListTransactions(t *testing.T) {
	mux := newMux()

	tests := []struct {
		name  string
		query string
		want  []string
		total int
	}{
		{"everything", "", []string{"id1", "id2", "id3", "id4"}, 4},
		{"this month", "?period=mensal", []string{"id1", "id2"}, 2},
		{"outflows of 2024", "?year=2024&type=saidas", []string{"id1", "id3"}, 2},
		{"category", "?category=Sa%C3%BAde", []string{"id4"}, 1},
		{"search", "?search=fulano", []string{"id3"}, 1},
		{"paged", "?page=2&per_page=3", []string{"id4"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(mux, "/api/transactions"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var page insights.Page
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
			got := make([]string, len(page.Items))
			for i, r := range page.Items {
				got[i] = r.Identifier
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.total, page.Total)
		})
	}
}

func TestListTransactions_BadQuery(t *testing.T) {
	mux := newMux()

	for _, q := range []string{"?period=semanal", "?type=neutro", "?page=abc", "?per_page=x"} {
		rec := get(mux, "/api/transactions"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func TestGetSummary(t *testing.T) {
	rec := get(newMux(), "/api/summary?year=2024")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SummaryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, 3, resp.Count)
	assert.True(t, resp.Totals.Inflow.Equal(decimal.RequireFromString("3000")))
	assert.True(t, resp.Totals.Outflow.Equal(decimal.RequireFromString("165.90")))
	assert.Len(t, resp.RunningBalance, 3)
	assert.Equal(t, []string{"2024", "2023"}, resp.Years)
	assert.Equal(t, 2, resp.Spending.Count)
	assert.Equal(t, "02/02/2024", resp.Spending.Period.Start)
	require.NotEmpty(t, resp.Recipients)
	assert.Equal(t, "Salário", resp.Categories[0].Category)
}

func TestExport(t *testing.T) {
	mux := newMux()

	t.Run("strict", func(t *testing.T) {
		rec := get(mux, "/api/export?category=Sa%C3%BAde")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="transacoes_filtradas_2024-03-20.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "Data,Valor,Identificador,Descrição\n\"20/12/2023\",\"-80.00\",\"id4\",\"FARMACIA \"\"BOA\"\"\"\n", rec.Body.String())
	})

	t.Run("legacy", func(t *testing.T) {
		rec := get(mux, "/api/export?variant=legacy&period=anual&year=2024&type=entradas")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="relatorio-financeiro-anual-2024.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "Data;Descrição;Categoria;Valor;Tipo\n10/03/2024;SALARIO EMPRESA;Salário;3000;Entrada", rec.Body.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := get(mux, "/api/export?variant=xlsx")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasSuffix(rec.Header().Get("Content-Disposition"), `.xlsx"`))

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		require.NoError(t, err)
		assert.Len(t, rows, 5)
	})

	t.Run("malformed year rejected", func(t *testing.T) {
		rec := get(mux, "/api/export?variant=legacy&year=2024%22%3B%20x%3D%22")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})

	t.Run("wildcard year named todos", func(t *testing.T) {
		rec := get(mux, "/api/export?variant=legacy&year=all")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="relatorio-financeiro-todos-todos.csv"`, rec.Header().Get("Content-Disposition"))
	})

	t.Run("unknown variant", func(t *testing.T) {
		rec := get(mux, "/api/export?variant=pdf")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
