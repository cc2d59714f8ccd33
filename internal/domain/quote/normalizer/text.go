// Package normalizer canonicalizes raw text pulled out of quote PDFs.
// text.go handles line-break styles and the cleanup of free-text description fields.
package normalizer

import (
	"regexp"
	"strings"
)

var (
	// <br>, <br/>, <br /> in any case
	breakTagPattern = regexp.MustCompile(`(?i)<br\s*/?>`)

	// literal backslash escapes left behind by JSON or CSV round trips
	literalBreakPattern = regexp.MustCompile(`\\r\\n|\\n|\\r`)

	spacePattern = regexp.MustCompile(`[ \t]+`)

	// separators left dangling after a token was cut out of a description
	separatorRunPattern = regexp.MustCompile(`(?:\s*;\s*){2,}`)
)

// Text converts every line-break variant found in extracted text (CRLF, bare CR,
// HTML break tags and literal backslash-n sequences) into a single '\n'.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = breakTagPattern.ReplaceAllString(s, "\n")
	s = literalBreakPattern.ReplaceAllString(s, "\n")
	return s
}

// Lines normalizes raw and splits it into lines. Line i of the result is line
// number i+1 of the document.
func Lines(raw string) []string {
	text := Text(raw)
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Description tidies a description after fields were joined with "; " and
// tokens were removed from it: runs of spaces collapse, empty separators
// disappear and leading/trailing punctuation is trimmed.
func Description(s string) string {
	s = spacePattern.ReplaceAllString(s, " ")
	s = separatorRunPattern.ReplaceAllString(s, "; ")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ";,-: ")
	return strings.TrimSpace(s)
}
