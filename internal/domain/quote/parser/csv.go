package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// ToCSV renders the result rows as CSV with the header
// Part Number,Series,Description,Price,Discount,MOQ,Net Price.
func ToCSV(result *ParseResult) (string, error) {
	rows := []ParsedRow{}
	if result != nil && result.Rows != nil {
		rows = result.Rows
	}
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rows: %w", err)
	}
	return out, nil
}

// WriteCSV streams the result rows as CSV to w.
func WriteCSV(w io.Writer, result *ParseResult) error {
	rows := []ParsedRow{}
	if result != nil && result.Rows != nil {
		rows = result.Rows
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	return nil
}

// ReadCSV parses CSV produced by ToCSV back into rows. Only the exported
// string columns survive the round trip.
func ReadCSV(r io.Reader) ([]ParsedRow, error) {
	var rows []ParsedRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	return rows, nil
}

// OutputFilename names the CSV written for a quote: quote_<number>_parsed.csv,
// with "/" and spaces in the quote number made filesystem safe.
func OutputFilename(meta QuoteMetadata) string {
	return "quote_" + fileSafeQuoteNumber(meta) + "_parsed.csv"
}

func fileSafeQuoteNumber(meta QuoteMetadata) string {
	if meta.QuoteNumber == nil || strings.TrimSpace(*meta.QuoteNumber) == "" {
		return "unknown"
	}
	return strings.NewReplacer("/", "-", " ", "_").Replace(strings.TrimSpace(*meta.QuoteNumber))
}
