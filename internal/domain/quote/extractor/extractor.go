// Package extractor turns quote source bytes into plain text for the parser.
// PDFs are read in-process with ledongthuc/pdf or through the pdftotext
// binary; plain text dumps pass through unchanged.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrNotPDF is returned for sources that are neither a PDF nor a text dump.
	ErrNotPDF = errors.New("not a PDF file")
	// ErrInvalidSource is returned when a PDF cannot be opened or decoded.
	ErrInvalidSource = errors.New("invalid or corrupted PDF")
	// ErrNoText is returned when a PDF has no extractable text, e.g. a scan.
	ErrNoText = errors.New("no extractable text")
)

// Method names reported in Extraction.Method.
const (
	MethodPDF       = "pdf-text"
	MethodPdftotext = "pdftotext"
	MethodPlainText = "plain-text"
)

// Extraction is the text recovered from a source document.
type Extraction struct {
	Text     string
	Pages    int
	Method   string
	Duration time.Duration
}

// TextExtractor converts document bytes to text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (Extraction, error)
}

// Format is the detected kind of a source document.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatText    Format = "text"
	FormatUnknown Format = "unknown"
)

var pdfMagic = []byte("%PDF-")

// sniffLen is how far into the data the PDF header is searched for.
const sniffLen = 1024

// Sniff detects the format from content. A PDF header anywhere in the first
// kilobyte wins; otherwise valid UTF-8 without control bytes is text.
func Sniff(data []byte) Format {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.Contains(head, pdfMagic) {
		return FormatPDF
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return FormatUnknown
	}
	if !utf8.Valid(data) {
		return FormatUnknown
	}
	for i, r := range string(data) {
		if i >= sniffLen {
			break
		}
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' && r != '\f' {
			return FormatUnknown
		}
	}
	return FormatText
}

// DetectFormat combines the file name with the content. Names ending in .pdf
// or .txt are accepted; any other name is rejected with ErrNotPDF unless the
// bytes themselves are a PDF.
func DetectFormat(name string, data []byte) (Format, error) {
	sniffed := Sniff(data)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".txt":
		if sniffed == FormatPDF {
			return FormatPDF, nil
		}
		return FormatText, nil
	}
	if sniffed == FormatPDF {
		return FormatPDF, nil
	}
	return FormatUnknown, ErrNotPDF
}

// Auto routes text dumps straight through and hands PDFs to the configured
// PDF extractor.
type Auto struct {
	pdf TextExtractor
}

// NewAuto creates an extractor that sniffs its input.
func NewAuto(pdf TextExtractor) *Auto {
	return &Auto{pdf: pdf}
}

// Extract implements TextExtractor.
func (a *Auto) Extract(ctx context.Context, data []byte) (Extraction, error) {
	switch Sniff(data) {
	case FormatPDF:
		return a.pdf.Extract(ctx, data)
	case FormatText:
		return PlainText(data), nil
	default:
		return Extraction{}, ErrNotPDF
	}
}

// PlainText wraps an already extracted text dump.
func PlainText(data []byte) Extraction {
	text := string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	return Extraction{
		Text:   text,
		Pages:  1 + strings.Count(text, "\f"),
		Method: MethodPlainText,
	}
}
