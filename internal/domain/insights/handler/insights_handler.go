// Package handler exposes the filtered transaction list, the dashboard
// aggregates and the exports over HTTP.
package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/parser"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/insights"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/middleware"
)

// Snapshotter hands out a copy of the current records.
type Snapshotter interface {
	Snapshot() []transactions.Transaction
}

// InsightsHandler serves read-only views over the store.
type InsightsHandler struct {
	store  Snapshotter
	now    func() time.Time
	logger *slog.Logger
}

// NewInsightsHandler constructs a new handler.
func NewInsightsHandler(store Snapshotter, logger *slog.Logger) *InsightsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightsHandler{store: store, now: time.Now, logger: logger}
}

// WithClock overrides the clock used for period windows.
func (h *InsightsHandler) WithClock(now func() time.Time) *InsightsHandler {
	h.now = now
	return h
}

// Register mounts the insights routes on mux.
func (h *InsightsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("GET /api/summary", h.GetSummary)
	mux.HandleFunc("GET /api/export", h.Export)
}

// ListTransactions returns one page of the filtered records.
func (h *InsightsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria, err := criteriaFromQuery(q)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := intParam(q, "page", 1)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	perPage, err := intParam(q, "per_page", insights.DefaultPerPage)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	filtered := insights.Apply(h.store.Snapshot(), criteria, h.now())
	middleware.WriteJSON(w, http.StatusOK, insights.Paginate(filtered, page, perPage))
}

// SummaryResponse is the payload of GET /api/summary.
type SummaryResponse struct {
	insights.Dashboard
	Spending   insights.SpendingSummary     `json:"resumo"`
	Recipients []insights.CounterpartyTotal `json:"destinatarios"`
}

// GetSummary returns the dashboard aggregates for the filter selection.
func (h *InsightsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	dashboard, filtered := insights.BuildDashboard(h.store.Snapshot(), criteria, h.now())
	middleware.WriteJSON(w, http.StatusOK, SummaryResponse{
		Dashboard:  dashboard,
		Spending:   insights.Summarize(filtered),
		Recipients: insights.Recipients(filtered),
	})
}

// Export downloads the filtered records in the requested variant.
func (h *InsightsHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria, err := criteriaFromQuery(q)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	variant, err := parser.ParseExportVariant(q.Get("variant"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.now()
	filtered := insights.Apply(h.store.Snapshot(), criteria, now)

	var buf bytes.Buffer
	if err := parser.Export(&buf, variant, filtered); err != nil {
		h.logger.Error("export failed", slog.String("variant", string(variant)), slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "export failed")
		return
	}

	year := criteria.Year
	if year == "" {
		year = "todos"
	}
	filename := parser.Filename(variant, queryOr(q, "period", "todos"), year, now)

	contentType := "text/csv; charset=utf-8"
	if variant == parser.ExportXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func criteriaFromQuery(q url.Values) (insights.Criteria, error) {
	period, err := insights.ParsePeriod(q.Get("period"))
	if err != nil {
		return insights.Criteria{}, err
	}
	typ, err := insights.ParseType(q.Get("type"))
	if err != nil {
		return insights.Criteria{}, err
	}
	year, err := insights.ParseYear(q.Get("year"))
	if err != nil {
		return insights.Criteria{}, err
	}
	return insights.Criteria{
		Period:   period,
		Year:     year,
		Category: q.Get("category"),
		Type:     typ,
		Search:   q.Get("search"),
	}, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

func queryOr(q url.Values, key, def string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	return def
}
