package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocaleNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"swiss apostrophe grouping", "1'234.56", 1234.56},
		{"swiss apostrophe with comma decimal", "1'234,56", 1234.56},
		{"unicode apostrophe", "12’345.00", 12345.00},
		{"comma decimal", "1234,56", 1234.56},
		{"comma decimal short tail", "0,8", 0.8},
		{"single comma three digit tail is decimal", "1,234", 1.234},
		{"multiple commas are thousands", "1,234,567", 1234567},
		{"comma thousands with dot decimal", "1,234.56", 1234.56},
		{"plain integer", "150", 150},
		{"plain decimal", "150.25", 150.25},
		{"negative", "-5", -5},
		{"currency prefix stripped", "CHF 1'500.00", 1500},
		{"whitespace", "  42.5  ", 42.5},
		{"german grouping with comma decimal", "1.234,56", 1234.56},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseLocaleNumber(tt.input), 1e-9)
		})
	}
}

func TestParseLocaleNumber_Unparseable(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "--", "...", "N/A", "—"} {
		assert.Equal(t, 0.0, ParseLocaleNumber(input), "input %q", input)
	}
}

func TestParsePercent(t *testing.T) {
	assert.InDelta(t, 12.5, ParsePercent("12.5%"), 1e-9)
	assert.InDelta(t, 0.8, ParsePercent("0,8 %"), 1e-9)
	assert.InDelta(t, -3.2, ParsePercent("-3.2%"), 1e-9)
	assert.Equal(t, 0.0, ParsePercent("%"))
}
