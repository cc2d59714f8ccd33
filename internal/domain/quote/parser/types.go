package parser

import (
	"github.com/shopspring/decimal"
)

// ParsedRow is one line of the structured output. Product rows carry a part
// number; series discount rows leave it empty and carry the series code and
// discount instead. The string fields are already formatted for display.
type ParsedRow struct {
	PartNumber  string `json:"part_number" csv:"Part Number"`
	Series      string `json:"series" csv:"Series"`
	Description string `json:"description" csv:"Description"`
	Price       string `json:"price" csv:"Price"`
	Discount    string `json:"discount" csv:"Discount"`
	MOQ         string `json:"moq" csv:"MOQ"`
	NetPrice    string `json:"net_price" csv:"Net Price"`

	LineNumber      int              `json:"line_number" csv:"-"`
	UnitPrice       *decimal.Decimal `json:"-" csv:"-"`
	NetUnitPrice    *decimal.Decimal `json:"-" csv:"-"`
	DiscountPercent *decimal.Decimal `json:"-" csv:"-"`
}

// IsDiscount reports whether the row is a synthetic series discount row.
func (r ParsedRow) IsDiscount() bool {
	return r.PartNumber == ""
}

// SeriesDiscount is a discount declared in the quote for a whole product series.
type SeriesDiscount struct {
	Series      string          `json:"series"`
	Percent     decimal.Decimal `json:"percent"`
	Description string          `json:"description"`
	LineNumber  int             `json:"line_number"`
}

// QuoteMetadata holds the header fields found anywhere in the document.
type QuoteMetadata struct {
	QuoteNumber    *string `json:"quote_number,omitempty"`
	QuoteDate      *string `json:"quote_date,omitempty"`
	ExpirationDate *string `json:"expiration_date,omitempty"`
	CustomerName   *string `json:"customer_name,omitempty"`
	CustomerNumber *string `json:"customer_number,omitempty"`
}

// WarningType classifies a validation warning.
type WarningType string

const (
	WarningDuplicatePart   WarningType = "duplicate_part"
	WarningMissingPrice    WarningType = "missing_price"
	WarningAnomalousPrice  WarningType = "anomalous_price"
	WarningMissingDiscount WarningType = "missing_discount"
	WarningParseIssue      WarningType = "parse_issue"
)

// ValidationWarning flags a row that parsed but looks suspicious.
type ValidationWarning struct {
	Type       WarningType `json:"type"`
	Message    string      `json:"message"`
	LineNumber *int        `json:"line_number,omitempty"`
	PartNumber string      `json:"part_number,omitempty"`
}

// Summary counts how the document's lines were classified.
type Summary struct {
	TotalLines   int `json:"total_lines"`
	ProductRows  int `json:"product_rows"`
	DiscountRows int `json:"discount_rows"`
	SkippedRows  int `json:"skipped_rows"`
}

// ParseResult is the complete outcome of parsing one quote document.
type ParseResult struct {
	Success         bool                `json:"success"`
	Rows            []ParsedRow         `json:"rows"`
	SeriesDiscounts []SeriesDiscount    `json:"series_discounts"`
	UnparsedRows    []string            `json:"unparsed_rows"`
	Errors          []string            `json:"errors"`
	Warnings        []ValidationWarning `json:"warnings"`
	Metadata        QuoteMetadata       `json:"metadata"`
	Summary         Summary             `json:"summary"`
}

// ProductRows returns the rows that carry a part number.
func (r *ParseResult) ProductRows() []ParsedRow {
	out := make([]ParsedRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		if !row.IsDiscount() {
			out = append(out, row)
		}
	}
	return out
}

// Failed builds an unsuccessful result carrying a single error message.
func Failed(msg string) *ParseResult {
	return &ParseResult{
		Rows:            []ParsedRow{},
		SeriesDiscounts: []SeriesDiscount{},
		UnparsedRows:    []string{},
		Errors:          []string{msg},
		Warnings:        []ValidationWarning{},
	}
}

// LineKind is the outcome of classifying a single line.
type LineKind string

const (
	LineSkip     LineKind = "skip"
	LineDiscount LineKind = "discount"
	LineProduct  LineKind = "product"
)

// SkipReason explains why a line produced no row.
type SkipReason string

const (
	SkipEmpty               SkipReason = "empty"
	SkipHeader              SkipReason = "header"
	SkipInsufficientColumns SkipReason = "insufficient_columns"
	SkipNoPartNumber        SkipReason = "no_part_number"
	SkipInternalPart        SkipReason = "internal_part"
	SkipNoPrice             SkipReason = "no_price"
)

// Classification is the result of classifying one line.
type Classification struct {
	Kind       LineKind
	LineNumber int
	Reason     SkipReason

	// PartNumber is set for product lines and for lines skipped with
	// SkipNoPrice, so that a missing price can be reported.
	PartNumber string

	Discount *DiscountLine
	Product  *ProductLine
}

// DiscountLine is a series discount declaration found on a line.
type DiscountLine struct {
	Series      string
	Percent     decimal.Decimal
	Description string
}

// ProductLine is a product found on a line, before series resolution.
type ProductLine struct {
	PartNumber  string
	Description string
	MOQ         string
	Price       decimal.Decimal
}
