package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

type seriesEntry struct {
	Series   string
	Prefixes []string
}

// seriesTable maps WAGO product series to the part number prefixes they own.
// Some series share prefixes with a sibling series; the entry whose code
// equals the prefix is listed first so it wins when neither has a discount.
var seriesTable = []seriesEntry{
	{"221", []string{"221-"}},
	{"222", []string{"222-"}},
	{"224", []string{"224-"}},
	{"2273", []string{"2273-"}},
	{"773", []string{"773-"}},

	{"2000", []string{"2000-"}},
	{"2001", []string{"2001-"}},
	{"2002", []string{"2002-"}},
	{"2003", []string{"2003-"}},
	{"2004", []string{"2004-"}},
	{"2006", []string{"2006-"}},
	{"2010", []string{"2010-"}},
	{"2016", []string{"2016-"}},
	{"2020", []string{"2020-"}},
	{"2022", []string{"2022-"}},

	{"279", []string{"279-"}},
	{"280", []string{"280-"}},
	{"281", []string{"281-"}},
	{"282", []string{"282-"}},
	{"283", []string{"283-"}},
	{"284", []string{"284-"}},
	{"285", []string{"285-"}},
	{"870", []string{"870-"}},
	{"880", []string{"880-"}},

	{"209", []string{"209-"}},
	{"210", []string{"210-"}},
	{"249", []string{"249-"}},

	{"232", []string{"232-"}},
	{"231", []string{"231-", "232-"}},
	{"722", []string{"722-"}},
	{"721", []string{"721-", "722-"}},
	{"734", []string{"734-"}},
	{"733", []string{"733-", "734-"}},
	{"770", []string{"770-"}},
	{"769", []string{"769-", "770-"}},
	{"2091", []string{"2091-"}},
	{"2092", []string{"2092-"}},

	{"236", []string{"236-"}},
	{"243", []string{"243-"}},
	{"250", []string{"250-"}},
	{"2059", []string{"2059-"}},
	{"2060", []string{"2060-"}},
	{"2061", []string{"2061-"}},
	{"2086", []string{"2086-"}},

	{"753", []string{"753-"}},
	{"750", []string{"750-", "753-"}},
	{"765", []string{"765-"}},
	{"767", []string{"767-"}},
	{"768", []string{"768-"}},
	{"787", []string{"787-"}},
	{"788", []string{"788-"}},
	{"789", []string{"789-"}},
	{"831", []string{"831-"}},
	{"857", []string{"857-"}},
	{"859", []string{"859-"}},
	{"862", []string{"862-"}},
	{"2857", []string{"2857-"}},
}

// seriesDigits returns the leading digit run of a part number, up to the
// first dash.
func seriesDigits(partNumber string) string {
	head, _, _ := strings.Cut(strings.TrimSpace(partNumber), "-")
	end := 0
	for end < len(head) && head[end] >= '0' && head[end] <= '9' {
		end++
	}
	return head[:end]
}

// SeriesCandidates lists the series that own the part number's prefix, in
// table order. It is empty for prefixes the table does not know.
func SeriesCandidates(partNumber string) []string {
	digits := seriesDigits(partNumber)
	if digits == "" {
		return nil
	}
	prefix := digits + "-"

	var out []string
	for _, e := range seriesTable {
		for _, p := range e.Prefixes {
			if p == prefix {
				out = append(out, e.Series)
				break
			}
		}
	}
	return out
}

// Resolver assigns a series and an applicable discount to part numbers using
// the discounts collected in the first pass.
type Resolver struct {
	discounts map[string]decimal.Decimal
}

// NewResolver creates a resolver over a series to percent map.
func NewResolver(discounts map[string]decimal.Decimal) *Resolver {
	if discounts == nil {
		discounts = map[string]decimal.Decimal{}
	}
	return &Resolver{discounts: discounts}
}

// Resolve returns the part's series and, when one was declared, its discount.
// The series is the first table entry owning the part's prefix, or the raw
// digits for unknown prefixes. Only that series' discount applies; a discount
// declared for a sibling sharing the prefix does not.
func (r *Resolver) Resolve(partNumber string) (string, *decimal.Decimal) {
	series := seriesDigits(partNumber)
	if candidates := SeriesCandidates(partNumber); len(candidates) > 0 {
		series = candidates[0]
	}
	if d, ok := r.discounts[series]; ok {
		return series, &d
	}
	return series, nil
}
