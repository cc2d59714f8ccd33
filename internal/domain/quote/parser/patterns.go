package parser

import "regexp"

// Column and field patterns for product lines.
var (
	fieldSeparatorPattern = regexp.MustCompile(`\t+|\s{2,}|\|`)

	strictPartPattern = regexp.MustCompile(`(?i)^\d{3,4}-\d{1,5}(?:[-/][A-Z0-9]+)*$`)
	loosePartPattern  = regexp.MustCompile(`(?i)\b\d{3,4}-\d{1,5}(?:[-/][A-Z0-9]+)*\b`)

	// Article/EAN style codes that must never be taken for a part number.
	internalCodePattern     = regexp.MustCompile(`\d{8,}`)
	bareInternalCodePattern = regexp.MustCompile(`^[^\w]*\d{8,}[^\w]*$`)

	strictPricePattern = regexp.MustCompile(`^\$?\s?(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}$`)
	loosePricePattern  = regexp.MustCompile(`(?i)^(?:\$\s?(\d[\d,]*(?:\.\d+)?)|(\d[\d,]*\.\d+))\s*(?:usd|ea\.?|each|/\s*(?:ea|pc|pcs))?$`)
)

// Minimum order quantity phrasings, in the order they are tried.
var (
	moqRangePattern   = regexp.MustCompile(`(?i)\(\s*order\s+(\d+\s*-\s*\d+)\s*\)`)
	moqMinimumPattern = regexp.MustCompile(`(?i)\bmin(?:imum)?\.?\s+order\s+(?:qty|quantity)\.?\s*:?\s*(\d+)`)
	moqGenericPattern = regexp.MustCompile(`(?i)\bmoq\s*:?\s*(\d+)`)
)

// Header and series discount detection.
var (
	headerStartPattern = regexp.MustCompile(`^(?:[a-z]+\s+)?part\s*(?:#|number\b|num\b|no\b)`)

	seriesFirstPattern  = regexp.MustCompile(`(?i)\b(\d{3,4})\s*-?\s*series\b.*?\b(\d{1,3}(?:\.\d+)?)\s*%`)
	seriesLabelPattern  = regexp.MustCompile(`(?i)\bseries\s*[:#]?\s*(\d{3,4})\b.*?\b(\d{1,3}(?:\.\d+)?)\s*%`)
	percentFirstPattern = regexp.MustCompile(`(?i)\b(\d{1,3}(?:\.\d+)?)\s*%.*?\b(\d{3,4})\s*-?\s*series\b`)

	percentPattern    = regexp.MustCompile(`\b(\d{1,3}(?:\.\d+)?)\s*%`)
	seriesCodePattern = regexp.MustCompile(`\b(\d{3,4})\b`)

	seriesTokenPattern  = regexp.MustCompile(`(?i)\b\d{3,4}\s*-?\s*series\b|\bseries\s*[:#]?\s*\d{3,4}\b|\bseries\b`)
	discountWordPattern = regexp.MustCompile(`(?i)\bdiscounts?\b`)
)

// Metadata patterns. Dates are numeric (01/15/2024, 2024-01-15) or written out
// (January 15, 2024).
const datePattern = `(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}|\d{4}-\d{1,2}-\d{1,2}|` +
	`(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4})`

var (
	quoteNumberPattern    = regexp.MustCompile(`(?i)\b(?:quotation|quote|q\s*#)\s*(?:number\b|num\b|no\b|#)?\.?\s*:?\s*([A-Z0-9][A-Z0-9\-/]*)`)
	quoteDatePattern      = regexp.MustCompile(`(?i)\b(exp\w*\.?\s+|valid\s+\w+\s+)?(?:quote\s+date|dated|date|issued)\s*:?\s*` + datePattern)
	expirationDatePattern = regexp.MustCompile(`(?i)\b(?:expiration(?:\s+date)?|expiry(?:\s+date)?|expires(?:\s+on)?|exp\.?(?:\s+date)?|valid\s+(?:until|through|thru|to))\s*:?\s*` + datePattern)
	customerNamePattern   = regexp.MustCompile(`(?i)\b(?:customer(?:\s+name)?|sold\s*to|bill\s*to)\s*:\s*([^\n]+)`)
	customerNumberPattern = regexp.MustCompile(`(?i)\b(?:customer|cust\.?|account|acct\.?)\s*(?:#|number\b|num\b|no\b)\.?\s*:?\s*([A-Z0-9][A-Z0-9\-]*)`)
	columnGapPattern      = regexp.MustCompile(`\t|\s{2,}|\|`)
)
