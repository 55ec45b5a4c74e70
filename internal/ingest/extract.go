package ingest

import (
	"strings"

	"github.com/clearfolio/clearfolio/internal/models"
)

// Result is the outcome of the synchronous extraction phase: provisional
// positions plus whatever portfolio-level figures the statement declared.
type Result struct {
	Positions      []*models.Position
	CashBalance    float64 // sum of rows classified as Cash, in base currency
	StatementTotal float64 // largest total harvested from subtotal rows
	Schema         Schema
	Dropped        int // malformed rows silently skipped
}

// categoryState is the "current category" accumulator threaded through the
// row-processing fold. Category marker rows update it; position rows read it.
type categoryState struct {
	category models.Category
	label    string
}

// ExtractPositions classifies every decoded row and extracts provisional
// positions. Malformed rows (no resolvable symbol, non-positive quantity or
// price) are dropped silently; they are expected in real exports and must
// never abort parsing.
func ExtractPositions(rows [][]string, baseCurrency string) *Result {
	res := &Result{Schema: DetectSchema(rows)}
	state := categoryState{category: models.CategoryUnknown}

	for i, row := range rows {
		if i == res.Schema.HeaderRow {
			continue
		}

		first := firstNonEmpty(row)
		switch {
		case models.IsCategoryLabel(first):
			state = categoryState{category: models.NormalizeCategory(first), label: first}

		case isTotalRow(first):
			if v := largestNumber(row); v > res.StatementTotal {
				res.StatementTotal = v
			}

		default:
			p := extractPosition(row, res.Schema, state, baseCurrency)
			if p == nil {
				if first != "" {
					res.Dropped++
				}
				continue
			}
			if p.Category == models.CategoryCash {
				res.CashBalance += p.TotalValueBase
				continue
			}
			res.Positions = append(res.Positions, p)
		}
	}

	return res
}

// extractPosition builds a provisional Position from a classified data row,
// or nil when the row does not hold a valid position.
func extractPosition(row []string, schema Schema, state categoryState, baseCurrency string) *models.Position {
	cm := schema.Columns

	// shift compensates for the split-price CSV artifact; reads of columns
	// past the price column move one cell to the right once it is detected.
	shift := 0
	get := func(idx int) string {
		if idx < 0 {
			return ""
		}
		if idx > cm.Price && cm.Price >= 0 {
			idx += shift
		}
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rawSymbol := get(cm.Symbol)
	symbol := CleanSymbol(rawSymbol)
	if symbol == "" {
		return nil
	}

	quantity := ParseLocaleNumber(get(cm.Quantity))
	if quantity <= 0 {
		return nil
	}

	price := ParseLocaleNumber(get(cm.Price))
	if frag, ok := splitPriceFragment(row, cm.Price); ok {
		price = ParseLocaleNumber(get(cm.Price) + "." + frag)
		shift = 1
	}

	currency := cleanCurrency(get(cm.Currency))
	if currency == "" {
		currency = baseCurrency
	}

	declaredTotal := ParseLocaleNumber(get(cm.TotalBase))
	if declaredTotal <= 0 {
		declaredTotal = ParseLocaleNumber(get(cm.TotalValue))
	}

	// A missing price can sometimes be recovered from the declared total.
	if price <= 0 && declaredTotal > 0 {
		price = declaredTotal / quantity
	}
	if price <= 0 {
		return nil
	}

	totalBase := declaredTotal
	if totalBase <= 0 {
		totalBase = quantity * price * ApproxRate(currency, baseCurrency)
	}

	p := &models.Position{
		Symbol:          symbol,
		OriginalSymbol:  rawSymbol,
		Name:            get(cm.Name),
		Quantity:        quantity,
		UnitCost:        ParseLocaleNumber(get(cm.UnitCost)),
		Price:           price,
		TradingCurrency: currency,
		Category:        state.category,
		RawCategory:     state.label,
		Domicile:        "Unknown",
		TotalValueBase:  totalBase,
		Gain:            ParseLocaleNumber(get(cm.Gain)),
		GainPct:         ParsePercent(get(cm.GainPct)),
		DailyChangePct:  ParsePercent(get(cm.DailyChangePct)),
	}
	if p.Name == "" {
		p.Name = symbol
	}
	return p
}

// splitPriceFragment detects the export artifact where a decimal price is
// split across two cells: a 1–3 digit fragment in the cell after the price,
// followed by a 3-letter currency code. Returns the fragment when present.
func splitPriceFragment(row []string, priceIdx int) (string, bool) {
	if priceIdx < 0 || priceIdx+2 >= len(row) {
		return "", false
	}
	frag := strings.TrimSpace(row[priceIdx+1])
	next := strings.TrimSpace(row[priceIdx+2])
	if !isDigits(frag) || len(frag) < 1 || len(frag) > 3 {
		return "", false
	}
	if !isCurrencyCode(next) {
		return "", false
	}
	return frag, true
}

// CleanSymbol uppercases a raw ticker and strips everything outside
// [A-Za-z0-9.-]. Tokens without a single letter are not resolvable symbols.
func CleanSymbol(raw string) string {
	var b strings.Builder
	hasLetter := false
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
			b.WriteRune(r)
		case (r >= '0' && r <= '9') || r == '.' || r == '-':
			b.WriteRune(r)
		}
	}
	if !hasLetter {
		return ""
	}
	return b.String()
}

func cleanCurrency(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if isCurrencyCode(s) {
		return s
	}
	return ""
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
