package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const (
	// Glyphs closer than this many points vertically share a row.
	rowTolerance = 2.0
	// Gaps wider than this fraction of the font size separate words.
	wordGap = 0.15
	// Gaps wider than this fraction of the font size separate columns; they are
	// written as two spaces so the line classifier sees a column boundary.
	columnGap = 0.9
)

// PDFExtractor reads text from PDF bytes in-process.
type PDFExtractor struct {
	logger   *slog.Logger
	maxPages int
}

// NewPDFExtractor creates a PDF extractor. maxPages <= 0 reads every page.
func NewPDFExtractor(logger *slog.Logger, maxPages int) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger, maxPages: maxPages}
}

// Extract implements TextExtractor.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (Extraction, error) {
	start := time.Now()

	r, err := openPDF(data)
	if err != nil {
		return Extraction{}, err
	}

	total := r.NumPage()
	if e.maxPages > 0 && total > e.maxPages {
		e.logger.Warn("pdf page limit reached", "pages", total, "max_pages", e.maxPages)
		total = e.maxPages
	}

	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return Extraction{}, err
		}
		text, err := pageText(r.Page(i))
		if err != nil {
			e.logger.Warn("skipping unreadable pdf page", "page", i, slog.Any("error", err))
			continue
		}
		pages = append(pages, text)
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return Extraction{}, ErrNoText
	}

	e.logger.Debug("pdf text extracted",
		"pages", total,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Extraction{
		Text:     text,
		Pages:    total,
		Method:   MethodPDF,
		Duration: time.Since(start),
	}, nil
}

// openPDF opens the document, turning parser panics on malformed input into
// ErrInvalidSource.
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("%w: %v", ErrInvalidSource, rec)
		}
	}()

	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return r, nil
}

func pageText(p pdf.Page) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrInvalidSource, rec)
		}
	}()

	if p.V.IsNull() {
		return "", nil
	}

	rows := groupRows(p.Content().Text)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, joinRow(row))
	}
	return strings.Join(lines, "\n"), nil
}

type glyphRow struct {
	y      float64
	glyphs []pdf.Text
}

// groupRows buckets glyphs by baseline and orders rows top to bottom.
func groupRows(texts []pdf.Text) []glyphRow {
	var rows []glyphRow
	for _, t := range texts {
		placed := false
		for i := range rows {
			if math.Abs(rows[i].y-t.Y) < rowTolerance {
				rows[i].glyphs = append(rows[i].glyphs, t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, glyphRow{y: t.Y, glyphs: []pdf.Text{t}})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })
	return rows
}

// joinRow writes a row's glyphs left to right, inserting a space at word gaps
// and two spaces at column gaps.
func joinRow(row glyphRow) string {
	glyphs := make([]pdf.Text, len(row.glyphs))
	copy(glyphs, row.glyphs)
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var b strings.Builder
	var prev *pdf.Text
	for i := range glyphs {
		g := &glyphs[i]
		if strings.TrimSpace(g.S) == "" {
			continue
		}
		if prev != nil {
			gap := g.X - (prev.X + prev.W)
			size := prev.FontSize
			if size <= 0 {
				size = 1
			}
			switch {
			case gap > size*columnGap:
				b.WriteString("  ")
			case gap > size*wordGap:
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		prev = g
	}
	return b.String()
}
