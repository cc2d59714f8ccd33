// Package quotetest generates realistic vendor quote documents for tests and
// benchmarks.
package quotetest

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/quote-ingest/pkg/money"
)

// Series codes the generator draws part numbers from. None of them shares a
// prefix with a sibling series, so a line's discount is always its own.
var series = []string{"221", "222", "2002", "2016", "2273", "750", "787", "857", "281", "279"}

var descriptions = []string{
	"Lever connector 2-conductor",
	"Lever connector 3-conductor",
	"Push-in terminal block grey",
	"Compact splicing connector",
	"Through terminal block blue",
	"Fieldbus coupler",
	"Digital input module",
	"Analog output module",
	"Power supply unit",
	"End plate orange",
	"Jumper bar insulated",
	"Marker card white",
	"Ground terminal green-yellow",
	"Fuse terminal block",
	"Relay module with socket",
}

var discountLabels = []string{
	"Terminal Blocks",
	"Connectors",
	"I/O System",
	"Relays",
	"Power Supplies",
}

// Line is one generated product line.
type Line struct {
	PartNumber  string
	Series      string
	Description string
	Price       decimal.Decimal
	MOQ         string
}

// Discount is one generated series discount declaration.
type Discount struct {
	Series  string
	Label   string
	Percent decimal.Decimal
}

// Document is a generated quote.
type Document struct {
	QuoteNumber  string
	QuoteDate    time.Time
	Customer     string
	Discounts    []Discount
	Lines        []Line
	FooterNotice string
}

// Generator builds quote documents with gofakeit.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a random seed.
func NewGenerator() *Generator {
	return &Generator{faker: gofakeit.New(0)}
}

// NewGeneratorWithSeed creates a generator with a fixed seed for reproducible
// documents.
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Document generates a quote with the given number of product lines. Part
// numbers are unique within the document.
func (g *Generator) Document(lines int) Document {
	doc := Document{
		QuoteNumber:  fmt.Sprintf("Q-%d-%s", g.faker.Number(2020, 2026), g.faker.DigitN(5)),
		QuoteDate:    g.faker.DateRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
		Customer:     g.faker.Company(),
		FooterNotice: "Prices valid for 30 days. Thank you for your business",
	}

	for _, s := range series {
		if g.faker.Bool() {
			continue
		}
		doc.Discounts = append(doc.Discounts, Discount{
			Series:  s,
			Label:   discountLabels[g.faker.Number(0, len(discountLabels)-1)],
			Percent: decimal.NewFromInt(int64(g.faker.Number(1, 45))),
		})
	}

	seen := make(map[string]bool)
	for len(doc.Lines) < lines {
		s := series[g.faker.Number(0, len(series)-1)]
		part := fmt.Sprintf("%s-%d", s, g.faker.Number(1, 9999))
		if seen[part] {
			continue
		}
		seen[part] = true

		line := Line{
			PartNumber:  part,
			Series:      s,
			Description: descriptions[g.faker.Number(0, len(descriptions)-1)],
			Price:       decimal.New(int64(g.faker.Number(5, 2500000)), -2),
		}
		if g.faker.Number(0, 3) == 0 {
			line.MOQ = fmt.Sprintf("%d", g.faker.Number(1, 50)*10)
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc
}

// DiscountFor returns the discount declared for a series, if any.
func (d Document) DiscountFor(series string) (decimal.Decimal, bool) {
	for _, disc := range d.Discounts {
		if disc.Series == series {
			return disc.Percent, true
		}
	}
	return decimal.Decimal{}, false
}

// NetPrice is the price the parser is expected to compute for a line.
func (d Document) NetPrice(l Line) decimal.Decimal {
	if pct, ok := d.DiscountFor(l.Series); ok {
		return money.ApplyDiscount(l.Price, pct)
	}
	return l.Price
}

// Text renders the document the way a PDF text extraction of a quote looks:
// header fields, discount declarations, a table header and column-aligned
// product lines.
func (d Document) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "WAGO Corporation\n")
	fmt.Fprintf(&b, "Quote #: %s\n", d.QuoteNumber)
	fmt.Fprintf(&b, "Quote Date: %s\n", d.QuoteDate.Format("01/02/2006"))
	fmt.Fprintf(&b, "Expiration Date: %s\n", d.QuoteDate.AddDate(0, 0, 30).Format("01/02/2006"))
	fmt.Fprintf(&b, "Customer: %s\n\n", d.Customer)

	for _, disc := range d.Discounts {
		fmt.Fprintf(&b, "%s Series %s Discount %s%%\n", disc.Series, disc.Label, disc.Percent.String())
	}
	b.WriteString("\nWAGO Part # | Description | Price\n")

	for _, l := range d.Lines {
		desc := l.Description
		if l.MOQ != "" {
			desc += " MOQ: " + l.MOQ
		}
		fmt.Fprintf(&b, "%s   %s   %s\n", l.PartNumber, desc, money.FormatUSD(l.Price))
	}

	b.WriteString("\n" + d.FooterNotice + "\n")
	return b.String()
}
