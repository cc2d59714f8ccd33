package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"unix newlines untouched", "a\nb", "a\nb"},
		{"crlf", "a\r\nb\r\nc", "a\nb\nc"},
		{"bare cr", "a\rb", "a\nb"},
		{"br tag", "a<br>b", "a\nb"},
		{"self-closing br tag", "a<br/>b<BR />c", "a\nb\nc"},
		{"literal backslash n", `a\nb`, "a\nb"},
		{"literal backslash crlf", `a\r\nb`, "a\nb"},
		{"mixed", "a\r\nb<br>c\\nd\re", "a\nb\nc\nd\ne"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	input := "Quote #123\r\n750-343  Block  $2.45<br>\\n"
	once := Text(input)
	assert.Equal(t, once, Text(once))
}

func TestLines(t *testing.T) {
	assert.Nil(t, Lines(""))
	assert.Equal(t, []string{"a", "", "b"}, Lines("a\r\n\r\nb"))
}

func TestDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses spaces", "Terminal   block  16A", "Terminal block 16A"},
		{"drops empty separators", "Block; ; ; grey", "Block; grey"},
		{"trims leading separator", "; Block", "Block"},
		{"trims trailing separator", "Block;  ", "Block"},
		{"keeps inner hyphen", "3-pos terminal block", "3-pos terminal block"},
		{"only separators", " ; ; ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Description(tt.input))
		})
	}
}
