// Package service orchestrates quote ingestion: reading the source, extracting
// its text, parsing it and persisting the line items.
package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/extractor"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/parser"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/repository"
)

var (
	// ErrSourceNotFound is returned when the source path does not exist.
	ErrSourceNotFound = errors.New("PDF file not found")
	// ErrSourceUnreadable is returned when the source exists but cannot be read.
	ErrSourceUnreadable = errors.New("failed to read source")
	// ErrNoRepository is returned by Import when no repository is configured.
	ErrNoRepository = errors.New("no quote repository configured")
)

// Result error messages.
const (
	msgNotPDF        = "Not a PDF file"
	msgInvalidSource = "Invalid or corrupted PDF"
	msgNoText        = "No text could be extracted from PDF"
	msgExtraction    = "Text extraction failed"
)

// ImportResult contains the result of persisting a parsed quote.
type ImportResult struct {
	ImportID          uuid.UUID `json:"import_id"`
	QuoteNumber       string    `json:"quote_number"`
	RowsTotal         int       `json:"rows_total"`
	RowsImported      int       `json:"rows_imported"`
	RowsFailed        int       `json:"rows_failed"`
	DiscountsImported int       `json:"discounts_imported"`
	Errors            []string  `json:"errors"`
}

// QuoteService parses vendor quotes and stores their line items. It only holds
// immutable collaborators and is safe for concurrent use.
type QuoteService struct {
	extractor extractor.TextExtractor
	repo      repository.QuoteRepository // Optional: nil disables Import
	metrics   *Metrics                   // Optional
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewQuoteService creates a quote service. pdf extracts text from PDF bytes;
// plain text sources bypass it.
func NewQuoteService(pdf extractor.TextExtractor, logger *slog.Logger) *QuoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteService{
		extractor: pdf,
		tracer:    otel.Tracer("github.com/FACorreiaa/quote-ingest/internal/domain/quote/service"),
		logger:    logger,
	}
}

// WithRepository enables persistence.
func (s *QuoteService) WithRepository(repo repository.QuoteRepository) *QuoteService {
	s.repo = repo
	return s
}

// Persists reports whether a repository is configured.
func (s *QuoteService) Persists() bool {
	return s.repo != nil
}

// WithMetrics enables Prometheus metrics.
func (s *QuoteService) WithMetrics(m *Metrics) *QuoteService {
	s.metrics = m
	return s
}

// ParseFile reads and parses the quote at path. A missing or unreadable file
// is reported both in the result and as the returned error; every other
// failure is reported in the result only.
func (s *QuoteService) ParseFile(ctx context.Context, path string) (*parser.ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("quote source not found", "path", path)
			return parser.Failed(fmt.Sprintf("%s: %s", ErrSourceNotFound.Error(), path)),
				fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		s.logger.Error("failed to read quote source", "path", path, slog.Any("error", err))
		return parser.Failed(fmt.Sprintf("%s: %v", ErrSourceUnreadable.Error(), err)),
			fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}

	return s.ParseBytes(ctx, filepath.Base(path), data)
}

// ParseBytes extracts and parses an in-memory source. name is used for format
// detection and logging. The returned error is non-nil only when ctx ends
// before the parse completes.
func (s *QuoteService) ParseBytes(ctx context.Context, name string, data []byte) (*parser.ParseResult, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.ParseBytes",
		trace.WithAttributes(
			attribute.String("quote.source", name),
			attribute.Int("quote.bytes", len(data)),
		))
	defer span.End()

	start := time.Now()
	ext, failure, err := s.extract(ctx, name, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return parser.Failed(fmt.Sprintf("%s: %v", msgExtraction, err)), err
	}

	var result *parser.ParseResult
	if failure != "" {
		result = parser.Failed(failure)
	} else {
		result = parser.Parse(ext.Text)
	}

	elapsed := time.Since(start)
	s.metrics.recordParse(ext.Method, result, elapsed)

	span.SetAttributes(
		attribute.String("quote.extract_method", ext.Method),
		attribute.Int("quote.pages", ext.Pages),
		attribute.Int("quote.product_rows", result.Summary.ProductRows),
		attribute.Int("quote.warnings", len(result.Warnings)),
	)
	if !result.Success {
		span.SetStatus(codes.Error, "parse failed")
	}

	s.logger.Info("quote parsed",
		"source", name,
		"method", ext.Method,
		"pages", ext.Pages,
		"success", result.Success,
		"product_rows", result.Summary.ProductRows,
		"discount_rows", result.Summary.DiscountRows,
		"skipped_rows", result.Summary.SkippedRows,
		"warnings", len(result.Warnings),
		"duration_ms", elapsed.Milliseconds(),
	)

	return result, nil
}

// extract returns either the extracted text or a user-facing failure message.
// err is reserved for context cancellation.
func (s *QuoteService) extract(ctx context.Context, name string, data []byte) (extractor.Extraction, string, error) {
	format, err := extractor.DetectFormat(name, data)
	if err != nil {
		return extractor.Extraction{}, fmt.Sprintf("%s: %s", msgNotPDF, name), nil
	}

	if format == extractor.FormatText {
		return extractor.PlainText(data), "", nil
	}

	ext, err := s.extractor.Extract(ctx, data)
	switch {
	case err == nil:
		return ext, "", nil
	case ctx.Err() != nil:
		return extractor.Extraction{}, "", ctx.Err()
	case errors.Is(err, extractor.ErrNoText):
		s.logger.Warn("quote has no extractable text", "source", name)
		return extractor.Extraction{}, msgNoText, nil
	case errors.Is(err, extractor.ErrInvalidSource):
		s.logger.Warn("invalid quote source", "source", name, slog.Any("error", err))
		return extractor.Extraction{}, fmt.Sprintf("%s: %v", msgInvalidSource, err), nil
	default:
		s.logger.Error("text extraction failed", "source", name, slog.Any("error", err))
		return extractor.Extraction{}, fmt.Sprintf("%s: %v", msgExtraction, err), nil
	}
}

// Import persists a parse result: the import header, every series discount and
// every product row. Individual row failures are counted and reported without
// aborting; only a failure to create the import header is returned as an error.
func (s *QuoteService) Import(ctx context.Context, sourceName string, result *parser.ParseResult) (*ImportResult, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}

	ctx, span := s.tracer.Start(ctx, "QuoteService.Import",
		trace.WithAttributes(attribute.String("quote.source", sourceName)))
	defer span.End()

	quoteNumber := sourceName
	if result.Metadata.QuoteNumber != nil {
		quoteNumber = *result.Metadata.QuoteNumber
	}

	imp := &repository.QuoteImport{
		SourceName:     sourceName,
		QuoteNumber:    result.Metadata.QuoteNumber,
		QuoteDate:      result.Metadata.QuoteDate,
		ExpirationDate: result.Metadata.ExpirationDate,
		CustomerName:   result.Metadata.CustomerName,
		CustomerNumber: result.Metadata.CustomerNumber,
		Success:        result.Success,
		TotalLines:     result.Summary.TotalLines,
		ProductRows:    result.Summary.ProductRows,
		DiscountRows:   result.Summary.DiscountRows,
		SkippedRows:    result.Summary.SkippedRows,
		Warnings:       len(result.Warnings),
	}
	if err := s.repo.CreateImport(ctx, imp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create import: %w", err)
	}

	out := &ImportResult{
		ImportID:    imp.ID,
		QuoteNumber: quoteNumber,
		Errors:      []string{},
	}

	for _, d := range result.SeriesDiscounts {
		err := s.repo.UpsertSeriesDiscount(ctx, &repository.SeriesDiscount{
			ImportID:    imp.ID,
			QuoteNumber: quoteNumber,
			Series:      d.Series,
			Percent:     d.Percent,
			Description: d.Description,
		})
		if err != nil {
			s.logger.Warn("failed to store series discount",
				"import_id", imp.ID.String(),
				"series", d.Series,
				slog.Any("error", err),
			)
			out.Errors = append(out.Errors, fmt.Sprintf("series %s: %v", d.Series, err))
			continue
		}
		out.DiscountsImported++
	}

	for _, row := range result.ProductRows() {
		out.RowsTotal++
		item := lineItem(imp.ID, quoteNumber, row)
		if err := s.repo.UpsertLineItem(ctx, item); err != nil {
			s.logger.Warn("failed to store line item",
				"import_id", imp.ID.String(),
				"part_number", row.PartNumber,
				"line", row.LineNumber,
				slog.Any("error", err),
			)
			out.RowsFailed++
			out.Errors = append(out.Errors, fmt.Sprintf("line %d (%s): %v", row.LineNumber, row.PartNumber, err))
			continue
		}
		out.RowsImported++
	}

	s.metrics.recordImport(out.RowsImported, out.RowsFailed)
	span.SetAttributes(
		attribute.Int("quote.rows_imported", out.RowsImported),
		attribute.Int("quote.rows_failed", out.RowsFailed),
	)

	s.logger.Info("quote imported",
		"import_id", imp.ID.String(),
		"quote_number", quoteNumber,
		"rows_imported", out.RowsImported,
		"rows_failed", out.RowsFailed,
		"discounts", out.DiscountsImported,
	)

	return out, nil
}

// ParseAndImport parses an in-memory source and persists the result.
func (s *QuoteService) ParseAndImport(ctx context.Context, name string, data []byte) (*parser.ParseResult, *ImportResult, error) {
	result, err := s.ParseBytes(ctx, name, data)
	if err != nil {
		return result, nil, err
	}
	imported, err := s.Import(ctx, name, result)
	if err != nil {
		return result, nil, err
	}
	return result, imported, nil
}

func lineItem(importID uuid.UUID, quoteNumber string, row parser.ParsedRow) *repository.LineItem {
	item := &repository.LineItem{
		ImportID:    importID,
		QuoteNumber: quoteNumber,
		PartNumber:  row.PartNumber,
		Series:      row.Series,
		Description: row.Description,
		MOQ:         row.MOQ,
		LineNumber:  row.LineNumber,
	}
	if row.UnitPrice != nil {
		item.UnitPrice = *row.UnitPrice
	}
	if row.NetUnitPrice != nil {
		item.NetUnitPrice = *row.NetUnitPrice
	}
	if row.DiscountPercent != nil {
		item.DiscountPercent.Decimal = *row.DiscountPercent
		item.DiscountPercent.Valid = true
	}
	return item
}
