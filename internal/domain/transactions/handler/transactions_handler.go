// Package handler exposes store mutations, categories and search over HTTP.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/categorization"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/middleware"
)

// TransactionsHandler handles manual entry, category edits and search.
type TransactionsHandler struct {
	store       *transactions.Store
	categorizer *categorization.Categorizer
	index       *categorization.SearchIndex
	now         func() time.Time
	logger      *slog.Logger
}

// NewTransactionsHandler creates a new handler. index may be nil, which
// disables GET /api/search.
func NewTransactionsHandler(
	store *transactions.Store,
	categorizer *categorization.Categorizer,
	index *categorization.SearchIndex,
	logger *slog.Logger,
) *TransactionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionsHandler{
		store:       store,
		categorizer: categorizer,
		index:       index,
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock overrides the clock used to date manual entries without a date.
func (h *TransactionsHandler) WithClock(now func() time.Time) *TransactionsHandler {
	h.now = now
	return h
}

// Register mounts the routes on mux.
func (h *TransactionsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/transactions", h.AddTransaction)
	mux.HandleFunc("DELETE /api/transactions", h.ClearTransactions)
	mux.HandleFunc("PATCH /api/transactions/{id}/category", h.ReassignCategory)
	mux.HandleFunc("POST /api/transactions/categorize", h.Backfill)
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/categories", h.AddCategory)
	mux.HandleFunc("GET /api/categories/suggest", h.SuggestCategories)
	mux.HandleFunc("GET /api/search", h.Search)
}

// AddTransaction creates a manual record.
func (h *TransactionsHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var entry transactions.ManualEntry
	if err := middleware.DecodeJSON(r, &entry); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := transactions.NewManual(entry, h.categorizer.Categorize, h.now())
	if err != nil {
		var entryErr *transactions.EntryError
		if errors.As(err, &entryErr) {
			middleware.WriteError(w, http.StatusBadRequest, entryErr.Message)
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.AddOne(r.Context(), record); err != nil {
		h.writeStoreError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, record)
}

// ClearTransactions removes every record.
func (h *TransactionsHandler) ClearTransactions(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Category string `json:"categoria"`
}

// ReassignCategory changes the category of one record.
func (h *TransactionsHandler) ReassignCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req categoryRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	found, err := h.store.ReassignCategory(r.Context(), id, req.Category)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if !found {
		middleware.WriteError(w, http.StatusNotFound, transactions.ErrNotFound.Error())
		return
	}

	record, _ := h.store.Get(id)
	middleware.WriteJSON(w, http.StatusOK, record)
}

// Backfill categorizes every record that has no category.
func (h *TransactionsHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	updated, err := h.store.Backfill(r.Context(), h.categorizer.Categorize)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int{"atualizadas": updated})
}

// ListCategories returns the known category labels.
func (h *TransactionsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.store.Categories())
}

type newCategoryRequest struct {
	Name string `json:"nome"`
}

// AddCategory registers a new label. It answers 201 when the label is new
// and 200 when it was already known.
func (h *TransactionsHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req newCategoryRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added, err := h.store.AddCategory(r.Context(), req.Name)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	middleware.WriteJSON(w, status, h.store.Categories())
}

// SuggestionsResponse carries label suggestions for the category picker.
type SuggestionsResponse struct {
	Labels         []string `json:"categorias"`
	ForDescription []string `json:"porDescricao,omitempty"`
}

// SuggestCategories ranks known labels for q and, when descricao is given,
// the labels whose keywords nearly match it.
func (h *TransactionsHandler) SuggestCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := categorization.DefaultSuggestionLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	resp := SuggestionsResponse{
		Labels: categorization.SuggestCategories(q.Get("q"), h.store.Categories(), limit),
	}
	if desc := q.Get("descricao"); desc != "" {
		resp.ForDescription = h.categorizer.SuggestForDescription(desc, limit)
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// SearchResult is a ranked record.
type SearchResult struct {
	transactions.Transaction
	Score float64 `json:"score"`
}

// Search runs a ranked full-text query over the store.
func (h *TransactionsHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "search is disabled")
		return
	}
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		middleware.WriteError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := categorization.DefaultSearchLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	if err := h.index.Sync(h.store); err != nil {
		h.logger.Error("failed to refresh search index", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "search failed")
		return
	}
	hits, err := h.index.Search(query, limit)
	if err != nil {
		h.logger.Error("search failed", slog.String("query", query), slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "search failed")
		return
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		// A record removed since the index was synced is skipped.
		if record, ok := h.store.Get(hit.Identifier); ok {
			results = append(results, SearchResult{Transaction: record, Score: hit.Score})
		}
	}
	middleware.WriteJSON(w, http.StatusOK, results)
}

func (h *TransactionsHandler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transactions.ErrEmptyCategory):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, transactions.ErrDuplicateIdentifier):
		middleware.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, transactions.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("store operation failed", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "failed to save transactions")
	}
}
