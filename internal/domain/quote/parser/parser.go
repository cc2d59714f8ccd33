// Package parser turns the extracted text of a vendor pricing quote into priced
// line items. Parsing runs in two passes over the same lines: the first
// collects series discounts, the second builds product rows, resolves their
// series discount, computes net prices and validates them.
package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/normalizer"
	"github.com/FACorreiaa/quote-ingest/pkg/money"
)

// ErrMsgNoProductRows is reported when no line could be read as a product.
const ErrMsgNoProductRows = "No valid product rows found in PDF"

// Unparsed line diagnostics.
const (
	minDiagnosticLen  = 6
	maxDiagnosticLen  = 500
	diagnosticPreview = 100
)

// Parse runs both passes over the text and assembles the result. It never
// fails: problems are reported through Errors, Warnings and UnparsedRows.
func Parse(text string) *ParseResult {
	text = normalizer.Text(text)
	lines := normalizer.Lines(text)

	result := &ParseResult{
		Rows:            []ParsedRow{},
		SeriesDiscounts: []SeriesDiscount{},
		UnparsedRows:    []string{},
		Errors:          []string{},
		Warnings:        []ValidationWarning{},
		Metadata:        ExtractMetadata(text),
	}
	result.Summary.TotalLines = len(lines)

	discounts, active := collectDiscounts(lines)
	result.SeriesDiscounts = discounts
	resolver := NewResolver(active)
	v := newValidator()

	for i, line := range lines {
		c := Classify(line, i+1)
		switch c.Kind {
		case LineDiscount:
			result.Summary.DiscountRows++
		case LineProduct:
			row := buildRow(c, resolver)
			v.checkRow(row)
			result.Rows = append(result.Rows, row)
			result.Summary.ProductRows++
		default:
			result.Summary.SkippedRows++
			if c.Reason == SkipNoPrice {
				v.missingPrice(c)
			}
			if d, ok := diagnostic(line, c); ok {
				result.UnparsedRows = append(result.UnparsedRows, d)
			}
		}
	}

	for _, d := range discounts {
		pct := d.Percent
		result.Rows = append(result.Rows, ParsedRow{
			Series:          d.Series,
			Description:     d.Description,
			Discount:        money.FormatPercent(pct),
			LineNumber:      d.LineNumber,
			DiscountPercent: &pct,
		})
	}

	result.Warnings = v.finish(len(discounts))

	if result.Summary.ProductRows == 0 {
		result.Errors = append(result.Errors, ErrMsgNoProductRows)
		return result
	}
	result.Success = true
	return result
}

// collectDiscounts is the first pass. Every declaration is kept in document
// order; in the active map a later declaration for a series replaces an
// earlier one.
func collectDiscounts(lines []string) ([]SeriesDiscount, map[string]decimal.Decimal) {
	discounts := []SeriesDiscount{}
	active := make(map[string]decimal.Decimal)

	for i, line := range lines {
		c := Classify(line, i+1)
		if c.Kind != LineDiscount {
			continue
		}
		discounts = append(discounts, SeriesDiscount{
			Series:      c.Discount.Series,
			Percent:     c.Discount.Percent,
			Description: c.Discount.Description,
			LineNumber:  c.LineNumber,
		})
		active[c.Discount.Series] = c.Discount.Percent
	}
	return discounts, active
}

func buildRow(c Classification, resolver *Resolver) ParsedRow {
	p := c.Product
	series, pct := resolver.Resolve(p.PartNumber)
	price := p.Price
	net := money.NetPrice(&price, pct)

	row := ParsedRow{
		PartNumber:      p.PartNumber,
		Series:          series,
		Description:     p.Description,
		Price:           money.FormatUSD(price),
		MOQ:             p.MOQ,
		NetPrice:        money.FormatUSD(*net),
		LineNumber:      c.LineNumber,
		UnitPrice:       &price,
		NetUnitPrice:    net,
		DiscountPercent: pct,
	}
	if pct != nil {
		row.Discount = money.FormatPercent(*pct)
	}
	return row
}

// diagnostic formats a skipped line for UnparsedRows. Blank lines, headers,
// and lines too short or too long to be a product are left out.
func diagnostic(line string, c Classification) (string, bool) {
	if c.Reason == SkipEmpty || c.Reason == SkipHeader {
		return "", false
	}
	trimmed := strings.TrimSpace(line)
	n := utf8.RuneCountInString(trimmed)
	if n < minDiagnosticLen || n > maxDiagnosticLen {
		return "", false
	}
	if n > diagnosticPreview {
		trimmed = string([]rune(trimmed)[:diagnosticPreview])
	}
	return fmt.Sprintf("Line %d (%s): %s", c.LineNumber, c.Reason, trimmed), true
}
