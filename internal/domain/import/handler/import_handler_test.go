package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/categorization"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/parser"
	importservice "github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/service"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/storage"
)

type file struct {
	name, content string
}

func multipartBody(t *testing.T, files []file, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(filesField, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newTestMux(t *testing.T, withInbox bool) (*http.ServeMux, *transactions.Store) {
	t.Helper()
	store := transactions.NewStore(nil, nil)
	p := parser.NewParser(categorization.NewCategorizer(nil), nil)
	svc := importservice.NewImportService(p, store, nil)

	var inbox storage.Inbox
	if withInbox {
		local, err := storage.NewLocalInbox(t.TempDir())
		require.NoError(t, err)
		inbox = local
		svc.WithInbox(local)
	}

	mux := http.NewServeMux()
	NewImportHandler(svc, inbox, 1<<20, nil).Register(mux)
	return mux, store
}

func do(mux *http.ServeMux, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestImport(t *testing.T) {
	mux, store := newTestMux(t, false)

	body, ct := multipartBody(t, []file{
		{"a.csv", "15/03/2024;-45,90;id1;PADARIA CENTRAL"},
		{"b.csv", "16/03/2024;-10,00;id1;DUPLICADA\n17/03/2024;100,00;id2;SALARIO"},
	}, nil)
	rec := do(mux, http.MethodPost, "/api/import", body, ct)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		Imported   int    `json:"importadas"`
		Duplicates int    `json:"duplicadas"`
		Policy     string `json:"politica"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, "overwrite", report.Policy)
	assert.Equal(t, 2, store.Len())
}

func TestImport_BadRequests(t *testing.T) {
	mux, store := newTestMux(t, false)

	t.Run("unknown policy", func(t *testing.T) {
		body, ct := multipartBody(t, []file{{"a.csv", "15/03/2024;-1,00;x;Y"}}, map[string]string{"policy": "merge"})
		rec := do(mux, http.MethodPost, "/api/import", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no files", func(t *testing.T) {
		body, ct := multipartBody(t, nil, nil)
		rec := do(mux, http.MethodPost, "/api/import", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := do(mux, http.MethodPost, "/api/import", bytes.NewBufferString("{}"), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		big := bytes.Repeat([]byte("15/03/2024;-1,00;x;Y\n"), 60000)
		body, ct := multipartBody(t, []file{{"big.csv", string(big)}}, nil)
		rec := do(mux, http.MethodPost, "/api/import", body, ct)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	assert.Equal(t, 0, store.Len())
}

func TestPreview_LeavesStoreUntouched(t *testing.T) {
	mux, store := newTestMux(t, false)

	body, ct := multipartBody(t, []file{{"a.csv", "15/03/2024,-45,90,id1,PADARIA CENTRAL"}}, nil)
	rec := do(mux, http.MethodPost, "/api/import/preview", body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	var preview struct {
		Transactions []transactions.Transaction `json:"transacoes"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	require.Len(t, preview.Transactions, 1)
	assert.Equal(t, "Alimentação", preview.Transactions[0].Category)
	assert.Equal(t, 0, store.Len())
}

func TestScan(t *testing.T) {
	t.Run("without inbox", func(t *testing.T) {
		mux, _ := newTestMux(t, false)
		rec := do(mux, http.MethodPost, "/api/import/scan", nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = do(mux, http.MethodGet, "/api/inbox", nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("upload then scan", func(t *testing.T) {
		mux, store := newTestMux(t, true)

		body, ct := multipartBody(t, []file{
			{"marco.csv", "15/03/2024;-45,90;id1;PADARIA CENTRAL"},
			{"notas.txt", "ignored"},
		}, nil)
		rec := do(mux, http.MethodPost, "/api/inbox", body, ct)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = do(mux, http.MethodGet, "/api/inbox", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var files []storage.FileInfo
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&files))
		require.Len(t, files, 1)
		assert.Equal(t, "marco.csv", files[0].Name)

		rec = do(mux, http.MethodPost, "/api/import/scan?policy=append", nil, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, store.Len())
	})
}
