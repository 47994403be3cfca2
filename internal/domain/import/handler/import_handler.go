// Package handler exposes statement ingestion over HTTP.
package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	importservice "github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/service"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/middleware"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/storage"
)

// filesField is the multipart field carrying statement files.
const filesField = "files"

// ImportHandler handles statement uploads and folder scans.
type ImportHandler struct {
	importSvc *importservice.ImportService
	inbox     storage.Inbox
	maxUpload int64
	logger    *slog.Logger
}

// NewImportHandler creates a new import handler. inbox may be nil, in which
// case the folder routes answer 503.
func NewImportHandler(importSvc *importservice.ImportService, inbox storage.Inbox, maxUploadBytes int64, logger *slog.Logger) *ImportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportHandler{
		importSvc: importSvc,
		inbox:     inbox,
		maxUpload: maxUploadBytes,
		logger:    logger,
	}
}

// Register mounts the import routes on mux.
func (h *ImportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/import", h.Import)
	mux.HandleFunc("POST /api/import/preview", h.Preview)
	mux.HandleFunc("POST /api/import/scan", h.Scan)
	mux.HandleFunc("GET /api/inbox", h.ListInbox)
	mux.HandleFunc("POST /api/inbox", h.UploadToInbox)
}

// Import parses the uploaded files and applies them to the store using the
// "policy" form value, or the configured default.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	sources, ok := h.readSources(w, r)
	if !ok {
		return
	}
	policy, ok := h.policy(w, r)
	if !ok {
		return
	}

	report, err := h.importSvc.Import(r.Context(), sources, policy)
	if err != nil {
		h.writeImportError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, report)
}

// Preview parses the uploaded files without touching the store.
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	sources, ok := h.readSources(w, r)
	if !ok {
		return
	}

	result, err := h.importSvc.Ingest(r.Context(), sources)
	if err != nil {
		h.writeImportError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, struct {
		*importservice.Result
		Transactions []transactions.Transaction `json:"transacoes"`
	}{Result: result, Transactions: result.Transactions})
}

// Scan ingests every statement in the configured folder.
func (h *ImportHandler) Scan(w http.ResponseWriter, r *http.Request) {
	policy, ok := h.policy(w, r)
	if !ok {
		return
	}

	report, err := h.importSvc.ScanInbox(r.Context(), policy)
	if err != nil {
		h.writeImportError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, report)
}

// ListInbox lists the statement files waiting in the folder.
func (h *ImportHandler) ListInbox(w http.ResponseWriter, r *http.Request) {
	if h.inbox == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, importservice.ErrNoInbox.Error())
		return
	}
	files, err := h.inbox.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list inbox", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list statement folder")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, files)
}

// UploadToInbox stores the uploaded files in the folder for the next scan.
func (h *ImportHandler) UploadToInbox(w http.ResponseWriter, r *http.Request) {
	if h.inbox == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, importservice.ErrNoInbox.Error())
		return
	}
	headers, ok := h.parseMultipart(w, r)
	if !ok {
		return
	}

	stored := make([]*storage.FileInfo, 0, len(headers))
	for _, fh := range headers {
		info, err := h.putFile(r, fh)
		switch {
		case errors.Is(err, storage.ErrInvalidName):
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			h.logger.Error("failed to store statement", slog.String("file", fh.Filename), slog.Any("error", err))
			middleware.WriteError(w, http.StatusInternalServerError, "failed to store statement")
			return
		}
		stored = append(stored, info)
	}
	middleware.WriteJSON(w, http.StatusCreated, stored)
}

func (h *ImportHandler) putFile(r *http.Request, fh *multipart.FileHeader) (*storage.FileInfo, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return h.inbox.Put(r.Context(), fh.Filename, f)
}

func (h *ImportHandler) policy(w http.ResponseWriter, r *http.Request) (transactions.ImportPolicy, bool) {
	raw := r.FormValue("policy")
	if raw == "" {
		return "", true
	}
	policy, err := transactions.ParsePolicy(raw)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return policy, true
}

func (h *ImportHandler) parseMultipart(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, bool) {
	if h.maxUpload > 0 {
		if r.ContentLength > h.maxUpload {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, false
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, false
		}
		middleware.WriteError(w, http.StatusBadRequest, "expected a multipart form")
		return nil, false
	}
	headers := r.MultipartForm.File[filesField]
	if len(headers) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("no files in field %q", filesField))
		return nil, false
	}
	return headers, true
}

// readSources returns the uploaded files in form order.
func (h *ImportHandler) readSources(w http.ResponseWriter, r *http.Request) ([]importservice.Source, bool) {
	headers, ok := h.parseMultipart(w, r)
	if !ok {
		return nil, false
	}

	sources := make([]importservice.Source, 0, len(headers))
	for _, fh := range headers {
		data, err := readFile(fh)
		if err != nil {
			h.logger.Warn("failed to read upload", slog.String("file", fh.Filename), slog.Any("error", err))
			middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s", fh.Filename))
			return nil, false
		}
		sources = append(sources, importservice.Source{Name: fh.Filename, Data: data})
	}
	return sources, true
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *ImportHandler) writeImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, importservice.ErrNoInbox):
		middleware.WriteError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, importservice.ErrNothingImported):
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("import failed", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "import failed")
	}
}
