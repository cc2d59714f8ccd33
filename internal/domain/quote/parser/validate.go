package parser

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price bounds outside of which a row is flagged. These are fixed.
var (
	minPlausiblePrice = decimal.RequireFromString("0.01")
	maxPlausiblePrice = decimal.NewFromInt(50000)
)

// validator accumulates warnings over the product rows of a single parse.
type validator struct {
	seen     map[string]int
	warnings []ValidationWarning
}

func newValidator() *validator {
	return &validator{
		seen:     make(map[string]int),
		warnings: []ValidationWarning{},
	}
}

func (v *validator) add(t WarningType, msg string, line int, part string) {
	w := ValidationWarning{Type: t, Message: msg, PartNumber: part}
	if line > 0 {
		w.LineNumber = &line
	}
	v.warnings = append(v.warnings, w)
}

// checkRow runs the per-row checks on an accepted product row.
func (v *validator) checkRow(row ParsedRow) {
	if first, ok := v.seen[row.PartNumber]; ok {
		v.add(WarningDuplicatePart,
			fmt.Sprintf("Duplicate part number %s (first seen on line %d)", row.PartNumber, first),
			row.LineNumber, row.PartNumber)
	} else {
		v.seen[row.PartNumber] = row.LineNumber
	}

	// A discount that leaves the formatted net price unchanged is reported,
	// including a 0% discount or one that rounds away.
	if row.DiscountPercent != nil && row.NetPrice == row.Price {
		v.add(WarningMissingDiscount,
			fmt.Sprintf("Series %s has a %s discount but net price %s equals list price",
				row.Series, row.Discount, row.NetPrice),
			row.LineNumber, row.PartNumber)
	}

	if row.UnitPrice == nil {
		return
	}
	switch price := *row.UnitPrice; {
	case price.LessThan(minPlausiblePrice):
		v.add(WarningAnomalousPrice,
			fmt.Sprintf("Price %s for %s is unusually low", price.String(), row.PartNumber),
			row.LineNumber, row.PartNumber)
	case price.GreaterThan(maxPlausiblePrice):
		v.add(WarningAnomalousPrice,
			fmt.Sprintf("Price %s for %s is unusually high", price.String(), row.PartNumber),
			row.LineNumber, row.PartNumber)
	}
}

// missingPrice reports a line that named a part but carried no price.
func (v *validator) missingPrice(c Classification) {
	v.add(WarningMissingPrice,
		fmt.Sprintf("Part %s on line %d has no price and was skipped", c.PartNumber, c.LineNumber),
		c.LineNumber, c.PartNumber)
}

// finish adds the document-level checks.
func (v *validator) finish(discounts int) []ValidationWarning {
	if discounts == 0 {
		v.add(WarningParseIssue,
			"No series discounts found; prices may be list prices", 0, "")
	}
	return v.warnings
}
