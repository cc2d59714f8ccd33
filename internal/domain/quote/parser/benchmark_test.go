package parser

import (
	"fmt"
	"testing"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/quotetest"
)

// BenchmarkParse measures both passes over generated quotes of growing size.
func BenchmarkParse(b *testing.B) {
	sizes := []int{50, 500, 5000}

	for _, size := range sizes {
		text := quotetest.NewGeneratorWithSeed(int64(size)).Document(size).Text()

		b.Run(fmt.Sprintf("%d_lines", size), func(b *testing.B) {
			b.SetBytes(int64(len(text)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				result := Parse(text)
				if !result.Success {
					b.Fatal(result.Errors)
				}
			}
		})
	}
}

func BenchmarkClassify(b *testing.B) {
	lines := map[string]string{
		"product":  "750-343   3-pos terminal block 16A   50   $2.45",
		"discount": "750 Series Terminal Blocks Discount 10%",
		"header":   "WAGO Part # | Description | Price",
		"skip":     "Thank you for your business",
	}

	for name, line := range lines {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Classify(line, 1)
			}
		})
	}
}

func BenchmarkToCSV(b *testing.B) {
	result := Parse(quotetest.NewGeneratorWithSeed(1).Document(1000).Text())

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ToCSV(result); err != nil {
			b.Fatal(err)
		}
	}
}
