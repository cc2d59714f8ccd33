package parser

import (
	"regexp"
	"strings"
)

// metadataWindow is how much of the document is searched for header fields.
const metadataWindow = 2000

// ExtractMetadata reads the quote header fields from the start of the
// document. Fields that are not found stay nil.
func ExtractMetadata(text string) QuoteMetadata {
	if len(text) > metadataWindow {
		text = text[:metadataWindow]
	}

	var meta QuoteMetadata
	meta.QuoteNumber = firstWithDigit(quoteNumberPattern, text)
	meta.QuoteDate = quoteDate(text)
	meta.ExpirationDate = firstGroup(expirationDatePattern, text, 1)
	meta.CustomerName = customerName(text)
	meta.CustomerNumber = firstWithDigit(customerNumberPattern, text)
	return meta
}

func firstGroup(re *regexp.Regexp, text string, group int) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[group])
	if v == "" {
		return nil
	}
	return &v
}

// firstWithDigit returns the first captured token that contains a digit, so
// that "Quote Date" is not read as a quote number.
func firstWithDigit(re *regexp.Regexp, text string) *string {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v := strings.TrimSpace(m[1])
		if strings.ContainsAny(v, "0123456789") {
			return &v
		}
	}
	return nil
}

// quoteDate skips dates labelled as expiration or validity dates.
func quoteDate(text string) *string {
	for _, m := range quoteDatePattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			continue
		}
		v := strings.TrimSpace(m[2])
		return &v
	}
	return nil
}

func customerName(text string) *string {
	m := customerNamePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := m[1]
	if loc := columnGapPattern.FindStringIndex(v); loc != nil {
		v = v[:loc[0]]
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
