package parser

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/normalizer"
	"github.com/FACorreiaa/quote-ingest/pkg/money"
)

// Header keywords, matched in a single pass over the lowercased line.
const (
	kwDescription = iota
	kwPrice
	kwItem
	kwQty
)

var headerKeywords = ahocorasick.NewStringMatcher([]string{
	kwDescription: "description",
	kwPrice:       "price",
	kwItem:        "item",
	kwQty:         "qty",
})

// Classify decides what a single line of quote text is. The checks run in a
// fixed order: empty, table header, series discount, product. Classify holds
// no state, so pass 1 and pass 2 re-derive the same answer for a line.
func Classify(line string, lineNumber int) Classification {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return skip(lineNumber, SkipEmpty, "")
	}

	if isHeader(trimmed) {
		return skip(lineNumber, SkipHeader, "")
	}

	if d, ok := parseDiscount(trimmed); ok {
		return Classification{Kind: LineDiscount, LineNumber: lineNumber, Discount: d}
	}

	return parseProduct(trimmed, lineNumber)
}

func skip(lineNumber int, reason SkipReason, partNumber string) Classification {
	return Classification{Kind: LineSkip, LineNumber: lineNumber, Reason: reason, PartNumber: partNumber}
}

func isHeader(line string) bool {
	lower := strings.ToLower(line)
	if headerStartPattern.MatchString(lower) {
		return true
	}

	var seen [4]bool
	for _, idx := range headerKeywords.MatchThreadSafe([]byte(lower)) {
		seen[idx] = true
	}
	return (seen[kwDescription] && seen[kwPrice]) || (seen[kwItem] && seen[kwQty])
}

// parseDiscount recognises series discount declarations such as
// "750 Series Terminal Blocks Discount 10%" or "10% off 221 series".
func parseDiscount(line string) (*DiscountLine, bool) {
	var series, pct string

	if m := seriesFirstPattern.FindStringSubmatch(line); m != nil {
		series, pct = m[1], m[2]
	} else if m := seriesLabelPattern.FindStringSubmatch(line); m != nil {
		series, pct = m[1], m[2]
	} else if m := percentFirstPattern.FindStringSubmatch(line); m != nil {
		series, pct = m[2], m[1]
	} else if strings.Contains(strings.ToLower(line), "series") && strings.Contains(line, "%") {
		series, pct = looseSeriesDiscount(line)
	}
	if series == "" || pct == "" {
		return nil, false
	}

	percent, err := money.ParsePercent(pct)
	if err != nil {
		return nil, false
	}

	return &DiscountLine{
		Series:      series,
		Percent:     percent,
		Description: discountDescription(line, series),
	}, true
}

// looseSeriesDiscount takes the first percentage on the line and the first
// three or four digit code that is not part of that percentage.
func looseSeriesDiscount(line string) (series, pct string) {
	loc := percentPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", ""
	}
	pct = line[loc[2]:loc[3]]

	for _, c := range seriesCodePattern.FindAllStringSubmatchIndex(line, -1) {
		if c[0] >= loc[0] && c[1] <= loc[1] {
			continue
		}
		return line[c[2]:c[3]], pct
	}
	return "", ""
}

func discountDescription(line, series string) string {
	desc := seriesTokenPattern.ReplaceAllString(line, " ")
	desc = percentPattern.ReplaceAllString(desc, " ")
	desc = discountWordPattern.ReplaceAllString(desc, " ")
	desc = regexp.MustCompile(`\b`+regexp.QuoteMeta(series)+`\b`).ReplaceAllString(desc, " ")
	return normalizer.Description(desc)
}

// parseProduct splits a line into columns and picks out the part number,
// price, description and MOQ. Any missing required field skips the line.
func parseProduct(line string, lineNumber int) Classification {
	fields := splitFields(line)
	if len(fields) < 2 {
		return skip(lineNumber, SkipInsufficientColumns, "")
	}

	var (
		partIdx     = -1
		priceIdx    = -1
		price       decimal.Decimal
		sawInternal bool
		internal    = make([]bool, len(fields))
	)

	for i, f := range fields {
		if rest, found := splitInternalCodes(f); found {
			sawInternal = true
			if rest == "" {
				internal[i] = true
				continue
			}
			fields[i], f = rest, rest
		}
		if partIdx < 0 && isStrictPartNumber(f) {
			partIdx = i
			continue
		}
		if priceIdx < 0 {
			if p, ok := matchStrictPrice(f); ok {
				priceIdx, price = i, p
			}
		}
	}

	if priceIdx < 0 {
		for i := max(0, len(fields)-2); i < len(fields); i++ {
			if i == partIdx || internal[i] {
				continue
			}
			if p, ok := matchLoosePrice(fields[i]); ok {
				priceIdx, price = i, p
				break
			}
		}
	}

	descParts := make([]string, 0, len(fields))
	for i, f := range fields {
		if i == partIdx || i == priceIdx || internal[i] {
			continue
		}
		descParts = append(descParts, f)
	}
	description := strings.Join(descParts, "; ")

	moq, description := extractMOQ(description)

	var part string
	if partIdx >= 0 {
		part = fields[partIdx]
	} else if loose, rest, ok := findLoosePartNumber(description); ok {
		if internalCodePattern.MatchString(loose) {
			return skip(lineNumber, SkipInternalPart, "")
		}
		part, description = loose, rest
	}

	if part == "" {
		if sawInternal {
			return skip(lineNumber, SkipInternalPart, "")
		}
		return skip(lineNumber, SkipNoPartNumber, "")
	}
	if priceIdx < 0 {
		return skip(lineNumber, SkipNoPrice, part)
	}

	return Classification{
		Kind:       LineProduct,
		LineNumber: lineNumber,
		PartNumber: part,
		Product: &ProductLine{
			PartNumber:  part,
			Description: normalizer.Description(description),
			MOQ:         moq,
			Price:       price,
		},
	}
}
