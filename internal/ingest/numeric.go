// Package ingest turns raw statement text (CSV exports or copy-pasted
// free text) into provisional positions: delimiter detection, locale-aware
// numeric parsing, schema detection, and per-row position extraction.
package ingest

import (
	"strconv"
	"strings"
)

// ParseLocaleNumber parses heterogeneous decimal formats into a float:
// apostrophe-grouped Swiss numbers ("1'234.56"), comma-decimal ("1234,56"),
// comma-thousands ("1,234,567"), and mixed forms. It is deliberately
// permissive: empty or unparseable input yields 0 rather than an error so a
// single bad cell never aborts a document. Callers validate required fields
// (e.g. positive quantity) themselves.
func ParseLocaleNumber(text string) float64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}

	hasApostrophe := strings.ContainsAny(s, "'’")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasApostrophe && hasComma:
		// Apostrophe groups thousands, comma marks the decimal.
		s = stripApostrophes(s)
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		if commaIsDecimal(s) {
			// Any dots left of a decimal comma are grouping marks.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasApostrophe:
		s = stripApostrophes(s)
	}

	cleaned := stripNonNumeric(s)
	if cleaned == "" {
		return 0
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParsePercent parses a percentage string ("12.5%", "0,8 %") into a float.
// Same permissive contract as ParseLocaleNumber.
func ParsePercent(text string) float64 {
	return ParseLocaleNumber(strings.ReplaceAll(text, "%", ""))
}

// commaIsDecimal decides whether the single comma in s is a decimal
// separator: at most 3 all-numeric digits after the last comma. Multiple
// commas are always thousands grouping.
func commaIsDecimal(s string) bool {
	if strings.Count(s, ",") > 1 {
		return false
	}
	tail := s[strings.LastIndex(s, ",")+1:]
	tail = strings.TrimSpace(tail)
	if tail == "" || len(tail) > 3 {
		return false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripApostrophes(s string) string {
	s = strings.ReplaceAll(s, "'", "")
	return strings.ReplaceAll(s, "’", "")
}

// stripNonNumeric removes everything outside [0-9.-], dropping currency
// symbols, spaces, and stray unit markers.
func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
