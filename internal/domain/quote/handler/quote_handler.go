// Package handler exposes the quote service over HTTP.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/parser"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/service"
	"github.com/FACorreiaa/quote-ingest/pkg/storage"
)

// DefaultMaxUploadBytes caps request bodies when no limit is configured.
const DefaultMaxUploadBytes = 20 << 20

const uploadNamespace = "uploads"

var (
	errMissingFile = errors.New("missing file")
	errEmptyFile   = errors.New("empty file")
)

// QuoteHandler serves the quote parsing endpoints.
type QuoteHandler struct {
	svc       *service.QuoteService
	storage   storage.Storage // Optional: keeps a copy of imported uploads
	health    func(ctx context.Context) error
	maxUpload int64
	logger    *slog.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(svc *service.QuoteService, logger *slog.Logger) *QuoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteHandler{svc: svc, maxUpload: DefaultMaxUploadBytes, logger: logger}
}

// WithStorage stores every imported upload.
func (h *QuoteHandler) WithStorage(s storage.Storage) *QuoteHandler {
	h.storage = s
	return h
}

// WithMaxUploadBytes overrides the request body cap.
func (h *QuoteHandler) WithMaxUploadBytes(n int64) *QuoteHandler {
	if n > 0 {
		h.maxUpload = n
	}
	return h
}

// WithHealthCheck adds a dependency probe to /healthz.
func (h *QuoteHandler) WithHealthCheck(fn func(ctx context.Context) error) *QuoteHandler {
	h.health = fn
	return h
}

// Register mounts the routes on mux.
func (h *QuoteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/quotes/parse", h.Parse)
	mux.HandleFunc("POST /v1/quotes/parse.csv", h.ParseCSV)
	mux.HandleFunc("POST /v1/quotes/parse.xlsx", h.ParseXLSX)
	mux.HandleFunc("POST /v1/quotes/import", h.Import)
	mux.HandleFunc("GET /healthz", h.Healthz)
}

// Parse returns the parse result as JSON. Unsuccessful parses answer 422 with
// the same body.
func (h *QuoteHandler) Parse(w http.ResponseWriter, r *http.Request) {
	result, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, resultStatus(result), result)
}

// ParseCSV returns the rows as a CSV attachment.
func (h *QuoteHandler) ParseCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	if !result.Success {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	out, err := parser.ToCSV(result)
	if err != nil {
		h.logger.Error("failed to render csv", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to render csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(parser.OutputFilename(result.Metadata)))
	_, _ = io.WriteString(w, out)
}

// ParseXLSX returns the rows and warnings as a workbook attachment.
func (h *QuoteHandler) ParseXLSX(w http.ResponseWriter, r *http.Request) {
	result, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	if !result.Success {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	data, err := service.ExportXLSX(result)
	if err != nil {
		h.logger.Error("failed to render xlsx", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to render xlsx")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(service.XLSXFilename(result.Metadata)))
	_, _ = w.Write(data)
}

type importResponse struct {
	Result *parser.ParseResult   `json:"result"`
	Import *service.ImportResult `json:"import,omitempty"`
	File   *storage.FileInfo     `json:"file,omitempty"`
}

// Import stores the upload, parses it and persists the line items.
func (h *QuoteHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Persists() {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	name, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	resp := importResponse{}
	if h.storage != nil {
		info, err := h.storage.Upload(r.Context(), uploadNamespace, name, contentType(name), bytes.NewReader(data))
		if err != nil {
			h.logger.Error("failed to store upload", "name", name, slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "failed to store upload")
			return
		}
		resp.File = info
	}

	result, imported, err := h.svc.ParseAndImport(r.Context(), name, data)
	resp.Result = result
	resp.Import = imported
	switch {
	case errors.Is(err, service.ErrNoRepository):
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	case err != nil && r.Context().Err() != nil:
		writeError(w, http.StatusRequestTimeout, "request canceled")
		return
	case err != nil:
		h.logger.Error("failed to import quote", "name", name, slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to import quote")
		return
	}

	writeJSON(w, resultStatus(result), resp)
}

// Healthz reports liveness and, when configured, database reachability.
func (h *QuoteHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *QuoteHandler) parseUpload(w http.ResponseWriter, r *http.Request) (*parser.ParseResult, bool) {
	name, data, ok := h.readUpload(w, r)
	if !ok {
		return nil, false
	}

	result, err := h.svc.ParseBytes(r.Context(), name, data)
	if err != nil {
		writeError(w, http.StatusRequestTimeout, "request canceled")
		return nil, false
	}
	return result, true
}

// readUpload accepts either a multipart form with a "file" field or a raw
// body named by the "filename" query parameter.
func (h *QuoteHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	name, data, err := h.uploadBody(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))
		case errors.Is(err, errMissingFile), errors.Is(err, errEmptyFile):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		}
		return "", nil, false
	}
	return name, data, true
}

func (h *QuoteHandler) uploadBody(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return "", nil, err
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, errMissingFile
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, err
		}
		if len(data) == 0 {
			return "", nil, errEmptyFile
		}
		return header.Filename, data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, errEmptyFile
	}

	name := r.URL.Query().Get("filename")
	if name == "" {
		switch mediaType {
		case "application/pdf":
			name = "upload.pdf"
		case "text/plain":
			name = "upload.txt"
		default:
			name = "upload"
		}
	}
	return name, data, nil
}

func resultStatus(result *parser.ParseResult) int {
	if result.Success {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func contentType(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".txt") {
		return "text/plain"
	}
	return "application/pdf"
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
