package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/normalizer"
	"github.com/FACorreiaa/quote-ingest/pkg/money"
)

// splitFields approximates column boundaries: tabs, runs of two or more
// spaces, and pipes. Empty fields are dropped.
func splitFields(line string) []string {
	parts := fieldSeparatorPattern.Split(line, -1)
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

// splitInternalCodes removes article/EAN codes from a column. Codes standing
// as their own word are cut out and the rest of the column is kept. A code
// glued to other characters (e.g. "750-343/12345678") poisons the whole
// column, which comes back empty. found reports whether any code was seen.
func splitInternalCodes(field string) (rest string, found bool) {
	if !internalCodePattern.MatchString(field) || strictPricePattern.MatchString(field) {
		return field, false
	}

	words := strings.Fields(field)
	kept := words[:0]
	for _, w := range words {
		switch {
		case bareInternalCodePattern.MatchString(w):
			found = true
		case internalCodePattern.MatchString(w) && !strictPricePattern.MatchString(w):
			return "", true
		default:
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " "), found
}

func isStrictPartNumber(field string) bool {
	return strictPartPattern.MatchString(field)
}

func matchStrictPrice(field string) (decimal.Decimal, bool) {
	if !strictPricePattern.MatchString(field) {
		return decimal.Decimal{}, false
	}
	d, err := money.ParseUSD(field)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func matchLoosePrice(field string) (decimal.Decimal, bool) {
	m := loosePricePattern.FindStringSubmatch(field)
	if m == nil {
		return decimal.Decimal{}, false
	}
	amount := m[1]
	if amount == "" {
		amount = m[2]
	}
	d, err := money.ParseUSD(amount)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// findLoosePartNumber looks for a part number inside free text and returns it
// together with the text that remains once it is cut out.
func findLoosePartNumber(text string) (part, rest string, ok bool) {
	loc := loosePartPattern.FindStringIndex(text)
	if loc == nil {
		return "", text, false
	}
	return text[loc[0]:loc[1]], text[:loc[0]] + " " + text[loc[1]:], true
}

// extractMOQ pulls the minimum order quantity out of a description. The
// first phrasing that matches wins and is removed from the description.
func extractMOQ(description string) (moq, rest string) {
	for _, p := range []*regexp.Regexp{moqRangePattern, moqMinimumPattern, moqGenericPattern} {
		loc := p.FindStringSubmatchIndex(description)
		if loc == nil {
			continue
		}
		moq = strings.Join(strings.Fields(description[loc[2]:loc[3]]), "")
		return moq, normalizer.Description(description[:loc[0]] + " " + description[loc[1]:])
	}
	return "", description
}
