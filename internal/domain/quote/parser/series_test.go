package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesDigits(t *testing.T) {
	tests := []struct {
		part string
		want string
	}{
		{"750-343", "750"},
		{"2002-1201", "2002"},
		{"221-412/K194-4045", "221"},
		{" 733-101 ", "733"},
		{"ABC-1", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.part, func(t *testing.T) {
			assert.Equal(t, tt.want, seriesDigits(tt.part))
		})
	}
}

func TestSeriesCandidates(t *testing.T) {
	assert.Equal(t, []string{"750"}, SeriesCandidates("750-343"))
	assert.Equal(t, []string{"753", "750"}, SeriesCandidates("753-646"))
	assert.Equal(t, []string{"734", "733"}, SeriesCandidates("734-101"))
	assert.Equal(t, []string{"232", "231"}, SeriesCandidates("232-201"))
	assert.Nil(t, SeriesCandidates("999-1"))
	assert.Nil(t, SeriesCandidates("no-digits"))
}

func TestSeriesTable_IsWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range seriesTable {
		assert.False(t, seen[e.Series], "series %s listed twice", e.Series)
		seen[e.Series] = true
		require.NotEmpty(t, e.Prefixes, e.Series)
		assert.Contains(t, e.Prefixes, e.Series+"-", "series %s must own its own prefix", e.Series)
	}
}

func TestResolver_Resolve(t *testing.T) {
	ten := decimal.NewFromInt(10)
	five := decimal.NewFromInt(5)

	tests := []struct {
		name        string
		discounts   map[string]decimal.Decimal
		part        string
		wantSeries  string
		wantPercent *decimal.Decimal
	}{
		{"no discounts", nil, "750-343", "750", nil},
		{"own series discount", map[string]decimal.Decimal{"750": ten}, "750-343", "750", &ten},
		{"sibling discount does not apply", map[string]decimal.Decimal{"750": ten}, "753-646", "753", nil},
		{"own discount beats sibling", map[string]decimal.Decimal{"750": ten, "753": five}, "753-646", "753", &five},
		{"shared prefix resolves to first table entry", map[string]decimal.Decimal{"733": five}, "734-101", "734", nil},
		{"unknown prefix with discount", map[string]decimal.Decimal{"999": five}, "999-1", "999", &five},
		{"unknown prefix without discount", map[string]decimal.Decimal{"750": ten}, "999-1", "999", nil},
		{"unrelated discount", map[string]decimal.Decimal{"221": ten}, "2002-1201", "2002", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, pct := NewResolver(tt.discounts).Resolve(tt.part)
			assert.Equal(t, tt.wantSeries, series)
			if tt.wantPercent == nil {
				assert.Nil(t, pct)
				return
			}
			require.NotNil(t, pct)
			assert.True(t, tt.wantPercent.Equal(*pct))
		})
	}
}

func TestResolver_ReturnsCopies(t *testing.T) {
	r := NewResolver(map[string]decimal.Decimal{"750": decimal.NewFromInt(10)})

	_, a := r.Resolve("750-1")
	_, b := r.Resolve("750-2")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotSame(t, a, b)
}
