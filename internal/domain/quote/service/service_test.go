package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/extractor"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/parser"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/repository"
	"github.com/FACorreiaa/quote-ingest/pkg/storage"
)

const sampleText = `WAGO Corporation
Quote #: Q-2024-001
Date: 01/15/2024
Customer: Acme Controls Inc.

750 Series Terminal Blocks Discount 10%

WAGO Part # | Description | Price
750-343   3-pos push-in block   $2.45
221-412   Lever connector   MOQ: 100   $0.95
`

// ============================================================================
// Test doubles
// ============================================================================

type stubExtractor struct {
	ext extractor.Extraction
	err error
}

func (s stubExtractor) Extract(context.Context, []byte) (extractor.Extraction, error) {
	return s.ext, s.err
}

type fakeRepo struct {
	mu          sync.Mutex
	imports     []*repository.QuoteImport
	items       []*repository.LineItem
	discounts   []*repository.SeriesDiscount
	failParts   map[string]bool
	failImports bool
}

func (r *fakeRepo) CreateImport(_ context.Context, imp *repository.QuoteImport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failImports {
		return errors.New("connection refused")
	}
	imp.ID = uuid.New()
	r.imports = append(r.imports, imp)
	return nil
}

func (r *fakeRepo) GetImport(_ context.Context, id uuid.UUID) (*repository.QuoteImport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, imp := range r.imports {
		if imp.ID == id {
			return imp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) UpsertLineItem(_ context.Context, item *repository.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failParts[item.PartNumber] {
		return errors.New("constraint violation")
	}
	r.items = append(r.items, item)
	return nil
}

func (r *fakeRepo) UpsertSeriesDiscount(_ context.Context, d *repository.SeriesDiscount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discounts = append(r.discounts, d)
	return nil
}

func (r *fakeRepo) ListLineItems(_ context.Context, quoteNumber string) ([]repository.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.LineItem
	for _, it := range r.items {
		if it.QuoteNumber == quoteNumber {
			out = append(out, *it)
		}
	}
	return out, nil
}

func newTestService(ex extractor.TextExtractor) *QuoteService {
	return NewQuoteService(ex, nil)
}

// ============================================================================
// ParseFile / ParseBytes
// ============================================================================

func TestQuoteService_ParseFile_NotFound(t *testing.T) {
	svc := newTestService(stubExtractor{})

	result, err := svc.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	require.NotNil(t, result)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "PDF file not found")
	assert.Empty(t, result.Rows)
}

func TestQuoteService_ParseFile_Unreadable(t *testing.T) {
	svc := newTestService(stubExtractor{})

	// A directory exists but cannot be read as a file.
	result, err := svc.ParseFile(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrSourceUnreadable)
	assert.False(t, result.Success)
}

func TestQuoteService_ParseFile_TextDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleText), 0o644))

	svc := newTestService(stubExtractor{err: errors.New("must not be called")})
	result, err := svc.ParseFile(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, result.Success, result.Errors)
	assert.Len(t, result.ProductRows(), 2)
	require.NotNil(t, result.Metadata.QuoteNumber)
	assert.Equal(t, "Q-2024-001", *result.Metadata.QuoteNumber)
}

func TestQuoteService_ParseBytes_Failures(t *testing.T) {
	pdf := []byte("%PDF-1.4\n")

	tests := []struct {
		name      string
		file      string
		data      []byte
		extractor stubExtractor
		wantMsg   string
	}{
		{
			name:    "unsupported extension",
			file:    "quote.docx",
			data:    []byte(sampleText),
			wantMsg: "Not a PDF file: quote.docx",
		},
		{
			name:      "corrupted pdf",
			file:      "quote.pdf",
			data:      pdf,
			extractor: stubExtractor{err: extractor.ErrInvalidSource},
			wantMsg:   "Invalid or corrupted PDF",
		},
		{
			name:      "scanned pdf",
			file:      "quote.pdf",
			data:      pdf,
			extractor: stubExtractor{err: extractor.ErrNoText},
			wantMsg:   "No text could be extracted from PDF",
		},
		{
			name:      "extractor failure",
			file:      "quote.pdf",
			data:      pdf,
			extractor: stubExtractor{err: errors.New("pdftotext unavailable")},
			wantMsg:   "Text extraction failed",
		},
		{
			name:      "no product rows",
			file:      "quote.pdf",
			data:      pdf,
			extractor: stubExtractor{ext: extractor.Extraction{Text: "Quote #: 1\nThank you", Method: extractor.MethodPDF}},
			wantMsg:   parser.ErrMsgNoProductRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestService(tt.extractor).ParseBytes(context.Background(), tt.file, tt.data)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Empty(t, result.ProductRows())
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.wantMsg)
		})
	}
}

func TestQuoteService_ParseBytes_NoProductsKeepsMetadata(t *testing.T) {
	ex := stubExtractor{ext: extractor.Extraction{Text: "Quote #: 98765\nThank you", Method: extractor.MethodPDF}}

	result, err := newTestService(ex).ParseBytes(context.Background(), "q.pdf", []byte("%PDF-1.4\n"))
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Metadata.QuoteNumber)
	assert.Equal(t, "98765", *result.Metadata.QuoteNumber)
	assert.NotEmpty(t, result.Warnings)
}

func TestQuoteService_ParseBytes_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := stubExtractor{err: context.Canceled}
	result, err := newTestService(ex).ParseBytes(ctx, "q.pdf", []byte("%PDF-1.4\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, result.Success)
}

func TestQuoteService_ParseBytes_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ex := stubExtractor{ext: extractor.Extraction{Text: sampleText, Pages: 1, Method: extractor.MethodPDF}}

	svc := newTestService(ex).WithMetrics(m)
	_, err := svc.ParseBytes(context.Background(), "q.pdf", []byte("%PDF-1.4\n"))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParsesTotal.WithLabelValues(extractor.MethodPDF, "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LinesTotal.WithLabelValues("product")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinesTotal.WithLabelValues("discount")))
}

// ============================================================================
// Import
// ============================================================================

func TestQuoteService_Import(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(stubExtractor{}).WithRepository(repo)

	result := parser.Parse(sampleText)
	require.True(t, result.Success)

	imported, err := svc.Import(context.Background(), "q.txt", result)
	require.NoError(t, err)

	assert.Equal(t, "Q-2024-001", imported.QuoteNumber)
	assert.Equal(t, 2, imported.RowsTotal)
	assert.Equal(t, 2, imported.RowsImported)
	assert.Zero(t, imported.RowsFailed)
	assert.Equal(t, 1, imported.DiscountsImported)
	assert.Empty(t, imported.Errors)

	require.Len(t, repo.imports, 1)
	assert.Equal(t, 2, repo.imports[0].ProductRows)

	items, err := repo.ListLineItems(context.Background(), "Q-2024-001")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "750-343", items[0].PartNumber)
	assert.True(t, items[0].DiscountPercent.Valid)
	assert.Equal(t, "2.21", items[0].NetUnitPrice.StringFixed(2))
	assert.False(t, items[1].DiscountPercent.Valid)
	assert.Equal(t, "100", items[1].MOQ)
}

func TestQuoteService_Import_RowFailuresAreTolerated(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	repo := &fakeRepo{failParts: map[string]bool{"750-343": true}}
	svc := newTestService(stubExtractor{}).WithRepository(repo).WithMetrics(m)

	imported, err := svc.Import(context.Background(), "q.txt", parser.Parse(sampleText))
	require.NoError(t, err)

	assert.Equal(t, 1, imported.RowsImported)
	assert.Equal(t, 1, imported.RowsFailed)
	require.Len(t, imported.Errors, 1)
	assert.Contains(t, imported.Errors[0], "750-343")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportRows.WithLabelValues("imported")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportRows.WithLabelValues("failed")))
}

func TestQuoteService_Import_HeaderFailure(t *testing.T) {
	svc := newTestService(stubExtractor{}).WithRepository(&fakeRepo{failImports: true})

	_, err := svc.Import(context.Background(), "q.txt", parser.Parse(sampleText))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create import")
}

func TestQuoteService_Import_WithoutRepository(t *testing.T) {
	svc := newTestService(stubExtractor{})
	assert.False(t, svc.Persists())

	_, err := svc.Import(context.Background(), "q.txt", parser.Parse(sampleText))
	assert.ErrorIs(t, err, ErrNoRepository)

	assert.True(t, svc.WithRepository(&fakeRepo{}).Persists())
}

func TestQuoteService_Import_UnknownQuoteNumberUsesSourceName(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(stubExtractor{}).WithRepository(repo)

	text := "750-343   3-pos push-in block   $2.45\n"
	imported, err := svc.Import(context.Background(), "upload.txt", parser.Parse(text))
	require.NoError(t, err)
	assert.Equal(t, "upload.txt", imported.QuoteNumber)
	assert.Nil(t, repo.imports[0].QuoteNumber)
}

func TestQuoteService_Import_KeepsSubCentPrices(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(stubExtractor{}).WithRepository(repo)

	_, err := svc.Import(context.Background(), "q.txt", parser.Parse("750-343   Tiny part   $0.001\n"))
	require.NoError(t, err)
	require.Len(t, repo.items, 1)
	assert.Equal(t, "0.001", repo.items[0].UnitPrice.String())
}

func TestQuoteService_ParseAndImport(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(stubExtractor{}).WithRepository(repo)

	result, imported, err := svc.ParseAndImport(context.Background(), "q.txt", []byte(sampleText))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, imported.RowsImported)
}

// ============================================================================
// XLSX export
// ============================================================================

func TestExportXLSX(t *testing.T) {
	result := parser.Parse(sampleText)

	data, err := ExportXLSX(result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Line Items", "Warnings"}, f.GetSheetList())

	rows, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, rows, 1+len(result.Rows))
	assert.Equal(t, lineItemHeaders, rows[0])
	assert.Equal(t, "750-343", rows[1][0])
	assert.Equal(t, "10%", rows[1][4])

	raw, err := f.GetCellValue("Line Items", "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "2.45", raw)

	warnings, err := f.GetRows("Warnings")
	require.NoError(t, err)
	assert.Len(t, warnings, 1+len(result.Warnings))
}

func TestExportXLSX_FailedResult(t *testing.T) {
	data, err := ExportXLSX(parser.Failed("No text could be extracted from PDF"))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Warnings")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "error", rows[1][0])
	assert.Equal(t, "No text could be extracted from PDF", rows[1][3])
}

func TestXLSXFilename(t *testing.T) {
	q := "Q-2024/001"
	assert.Equal(t, "quote_Q-2024-001_parsed.xlsx", XLSXFilename(parser.QuoteMetadata{QuoteNumber: &q}))
	assert.Equal(t, "quote_unknown_parsed.xlsx", XLSXFilename(parser.QuoteMetadata{}))
}

// ============================================================================
// Inbox
// ============================================================================

func TestInboxSweeper_Sweep(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.txt"), []byte(sampleText), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("Thank you for your business\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte(sampleText), 0o644))

	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	repo := &fakeRepo{}
	svc := newTestService(stubExtractor{}).WithRepository(repo)
	sweeper := NewInboxSweeper(svc, dir, nil).WithArchive(archive)

	results, stats, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	require.Len(t, results, 2)

	byName := map[string]InboxFile{}
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
	}
	assert.True(t, byName["good.txt"].Success)
	assert.Equal(t, 2, byName["good.txt"].RowsImported)
	assert.NotEmpty(t, byName["good.txt"].StoredID)
	assert.False(t, byName["empty.txt"].Success)
	assert.True(t, strings.Contains(byName["empty.txt"].Err, parser.ErrMsgNoProductRows))

	assert.FileExists(t, filepath.Join(dir, InboxProcessedDir, "good.txt"))
	assert.FileExists(t, filepath.Join(dir, InboxFailedDir, "empty.txt"))
	assert.FileExists(t, filepath.Join(dir, "notes.md"))
	assert.NoFileExists(t, filepath.Join(dir, "good.txt"))

	archived, err := archive.List(context.Background(), inboxNamespace)
	require.NoError(t, err)
	assert.Len(t, archived, 2)

	// A second sweep finds nothing new.
	_, stats, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Matched)
}

func TestInboxSweeper_MissingDir(t *testing.T) {
	sweeper := NewInboxSweeper(newTestService(stubExtractor{}), filepath.Join(t.TempDir(), "nope"), nil)
	_, _, err := sweeper.Sweep(context.Background())
	assert.Error(t, err)
}
