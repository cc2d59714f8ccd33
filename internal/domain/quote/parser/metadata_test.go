package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestExtractMetadata(t *testing.T) {
	tests := []struct {
		name string
		text string
		want QuoteMetadata
	}{
		{
			name: "labelled header block",
			text: "Quote #: Q-2024-0042\nQuote Date: 01/15/2024\nExpiration Date: 02/15/2024\n" +
				"Customer: Acme Controls Inc    Customer #: C-1001",
			want: QuoteMetadata{
				QuoteNumber:    ptr("Q-2024-0042"),
				QuoteDate:      ptr("01/15/2024"),
				ExpirationDate: ptr("02/15/2024"),
				CustomerName:   ptr("Acme Controls Inc"),
				CustomerNumber: ptr("C-1001"),
			},
		},
		{
			name: "quotation number with no label",
			text: "Quotation No. 12345",
			want: QuoteMetadata{QuoteNumber: ptr("12345")},
		},
		{
			name: "q hash",
			text: "Q# 88812",
			want: QuoteMetadata{QuoteNumber: ptr("88812")},
		},
		{
			name: "quote date is not a quote number",
			text: "Quote Date: 2024-01-15\nQuote Number: WQ-77",
			want: QuoteMetadata{QuoteNumber: ptr("WQ-77"), QuoteDate: ptr("2024-01-15")},
		},
		{
			name: "long date",
			text: "Dated: January 15, 2024",
			want: QuoteMetadata{QuoteDate: ptr("January 15, 2024")},
		},
		{
			name: "valid until",
			text: "Valid until 03/01/2024",
			want: QuoteMetadata{ExpirationDate: ptr("03/01/2024")},
		},
		{
			name: "expiration date listed first",
			text: "Exp. Date: 02/15/2024\nDate: 01/10/2024",
			want: QuoteMetadata{QuoteDate: ptr("01/10/2024"), ExpirationDate: ptr("02/15/2024")},
		},
		{
			name: "sold to",
			text: "Sold To: Midwest Panel Builders | Ship To: Same",
			want: QuoteMetadata{CustomerName: ptr("Midwest Panel Builders")},
		},
		{
			name: "account number",
			text: "Account No: 556677",
			want: QuoteMetadata{CustomerNumber: ptr("556677")},
		},
		{
			name: "nothing found",
			text: "750-343   Block   $2.45",
			want: QuoteMetadata{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMetadata(tt.text))
		})
	}
}

func TestExtractMetadata_OnlyReadsHeaderWindow(t *testing.T) {
	text := strings.Repeat("x\n", metadataWindow/2) + "Quote #: 12345"
	assert.Nil(t, ExtractMetadata(text).QuoteNumber)

	text = strings.Repeat("x\n", 10) + "Quote #: 12345"
	got := ExtractMetadata(text).QuoteNumber
	require.NotNil(t, got)
	assert.Equal(t, "12345", *got)
}
