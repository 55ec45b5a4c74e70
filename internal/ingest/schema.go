package ingest

import (
	"strings"

	"github.com/clearfolio/clearfolio/internal/models"
)

// Layout identifies which of the three detection protocols matched.
type Layout int

const (
	// LayoutSwiss is the fixed-position Swiss bank export convention.
	LayoutSwiss Layout = iota
	// LayoutGeneric is a detected header row with fuzzy column mapping.
	LayoutGeneric
	// LayoutPositional is the headerless fallback convention.
	LayoutPositional
)

func (l Layout) String() string {
	switch l {
	case LayoutSwiss:
		return "swiss"
	case LayoutGeneric:
		return "generic"
	default:
		return "positional"
	}
}

// ColumnMap maps canonical fields to cell indices; -1 means absent.
type ColumnMap struct {
	Symbol         int
	Name           int
	Quantity       int
	UnitCost       int
	TotalValue     int
	DailyChange    int
	DailyChangePct int
	Price          int
	Currency       int
	Gain           int
	GainPct        int
	TotalBase      int
	PositionPct    int
}

func emptyColumnMap() ColumnMap {
	return ColumnMap{
		Symbol: -1, Name: -1, Quantity: -1, UnitCost: -1, TotalValue: -1,
		DailyChange: -1, DailyChangePct: -1, Price: -1, Currency: -1,
		Gain: -1, GainPct: -1, TotalBase: -1, PositionPct: -1,
	}
}

// swissColumnMap is the fixed column convention observed in real Swiss bank
// exports: a blank lead cell, then symbol, quantity, unit cost, total value,
// daily change, daily change %, price, currency, gain, gain %, total in base
// currency, position %. This format is rigid; positions are not re-detected.
func swissColumnMap() ColumnMap {
	return ColumnMap{
		Symbol: 1, Name: -1, Quantity: 2, UnitCost: 3, TotalValue: 4,
		DailyChange: 5, DailyChangePct: 6, Price: 7, Currency: 8,
		Gain: 9, GainPct: 10, TotalBase: 11, PositionPct: 12,
	}
}

// positionalColumnMap is the minimal headerless convention:
// symbol, name, quantity, price, [currency], [total].
func positionalColumnMap() ColumnMap {
	cm := emptyColumnMap()
	cm.Symbol = 0
	cm.Name = 1
	cm.Quantity = 2
	cm.Price = 3
	cm.Currency = 4
	cm.TotalValue = 5
	return cm
}

// Schema is the outcome of layout detection for one document.
type Schema struct {
	Layout    Layout
	Columns   ColumnMap
	HeaderRow int // index of the detected header row, -1 when none
}

// headerScanRows bounds how deep the generic header search looks.
const headerScanRows = 20

// fieldSynonyms drives the fuzzy header mapping: per canonical field, an
// ordered multilingual synonym list. The first synonym that matches an
// unclaimed header cell (case-insensitive, either-direction substring
// containment) wins.
type fieldSynonyms struct {
	field    *int // destination in the ColumnMap being built
	synonyms []string
}

var headerSynonyms = map[string][]string{
	"symbol":         {"symbole", "symbol", "ticker", "isin", "valor", "instrument"},
	"name":           {"name", "nom", "bezeichnung", "description", "titre", "libellé", "libelle"},
	"quantity":       {"quantité", "quantite", "quantity", "anzahl", "qty", "nombre", "menge", "stück", "stueck", "units", "shares"},
	"unitcost":       {"prix de revient", "einstand", "coût", "cout", "cost", "average"},
	"price":          {"cours", "kurs", "price", "prix", "last"},
	"currency":       {"devise", "währung", "waehrung", "currency", "monnaie", "ccy"},
	"totalvalue":     {"valeur totale", "total value", "gesamtwert", "market value", "valeur", "montant", "wert", "betrag", "value", "total"},
	"gain":           {"plus-value", "gewinn", "gain", "p&l", "pnl", "profit"},
	"dailychangepct": {"var %", "var. %", "change %", "veränderung %", "daily %"},
}

// mapOrder fixes the claim order so more specific fields (unit cost before
// price, named totals before the bare "total") win contested cells.
var mapOrder = []string{"symbol", "name", "quantity", "unitcost", "price", "currency", "totalvalue", "gain", "dailychangepct"}

// DetectSchema runs the three detection protocols in order: fixed Swiss
// layout, generic multilingual header search, headerless positional fallback.
func DetectSchema(rows [][]string) Schema {
	if swissLayoutDetected(rows) {
		return Schema{Layout: LayoutSwiss, Columns: swissColumnMap(), HeaderRow: swissHeaderRow(rows)}
	}

	if idx, cm, ok := findGenericHeader(rows); ok {
		return Schema{Layout: LayoutGeneric, Columns: cm, HeaderRow: idx}
	}

	return Schema{Layout: LayoutPositional, Columns: positionalColumnMap(), HeaderRow: -1}
}

// swissLayoutDetected triggers on known category tokens in a row's first
// non-empty cell, or on the distinctive multilingual header combination
// (symbol + quantity + total-value terms co-occurring in French or German).
func swissLayoutDetected(rows [][]string) bool {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for _, row := range rows[:limit] {
		if models.IsCategoryLabel(firstNonEmpty(row)) {
			return true
		}
		joined := strings.ToLower(strings.Join(row, " "))
		if strings.Contains(joined, "symbole") && (strings.Contains(joined, "quantité") || strings.Contains(joined, "quantite")) {
			return true
		}
		if strings.Contains(joined, "symbol") && strings.Contains(joined, "anzahl") && strings.Contains(joined, "gesamtwert") {
			return true
		}
	}
	return false
}

// swissHeaderRow locates an explicit header row in a Swiss-layout file so it
// can be skipped; returns -1 when the export starts straight at a category.
func swissHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for i, row := range rows[:limit] {
		joined := strings.ToLower(strings.Join(row, " "))
		if strings.Contains(joined, "symbole") || (strings.Contains(joined, "symbol") && strings.Contains(joined, "anzahl")) {
			return i
		}
	}
	return -1
}

// findGenericHeader scans the first rows for one containing at least two
// matches against the multilingual keyword set, then builds a column map by
// fuzzy synonym matching. A header missing symbol or quantity is rejected.
func findGenericHeader(rows [][]string) (int, ColumnMap, bool) {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i, row := range rows[:limit] {
		cm, matches := mapHeaderRow(row)
		if matches >= 2 && cm.Symbol >= 0 && cm.Quantity >= 0 {
			return i, cm, true
		}
	}
	return -1, ColumnMap{}, false
}

// mapHeaderRow maps header cells to canonical fields, returning how many
// fields found a home.
func mapHeaderRow(row []string) (ColumnMap, int) {
	cm := emptyColumnMap()
	fields := map[string]*int{
		"symbol":         &cm.Symbol,
		"name":           &cm.Name,
		"quantity":       &cm.Quantity,
		"unitcost":       &cm.UnitCost,
		"price":          &cm.Price,
		"currency":       &cm.Currency,
		"totalvalue":     &cm.TotalValue,
		"gain":           &cm.Gain,
		"dailychangepct": &cm.DailyChangePct,
	}

	claimed := make(map[int]bool)
	matches := 0

	for _, field := range mapOrder {
		dest := fields[field]
	synonyms:
		for _, syn := range headerSynonyms[field] {
			for j, cell := range row {
				if claimed[j] {
					continue
				}
				if headerCellMatches(cell, syn) {
					*dest = j
					claimed[j] = true
					matches++
					break synonyms
				}
			}
		}
	}
	return cm, matches
}

// headerCellMatches applies case-insensitive either-direction substring
// containment between a header cell and a synonym.
func headerCellMatches(cell, synonym string) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	if c == "" {
		return false
	}
	return strings.Contains(c, synonym) || strings.Contains(synonym, c)
}

// totalKeywords flag subtotal / grand-total rows in several languages.
var totalKeywords = []string{"sous-total", "subtotal", "zwischensumme", "grand total", "total", "totale", "somme", "summe", "gesamt", "sum"}

// isTotalRow reports whether a row's leading cell marks a subtotal or total.
func isTotalRow(firstCell string) bool {
	c := strings.ToLower(strings.TrimSpace(firstCell))
	if c == "" {
		return false
	}
	for _, kw := range totalKeywords {
		if strings.Contains(c, kw) {
			return true
		}
	}
	return false
}

// firstNonEmpty returns the first non-blank cell of a row.
func firstNonEmpty(row []string) string {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return strings.TrimSpace(c)
		}
	}
	return ""
}

// largestNumber harvests the largest parseable positive number in a row,
// used to read a portfolio-level total off subtotal rows.
func largestNumber(row []string) float64 {
	var max float64
	for _, cell := range row {
		if strings.Contains(cell, "%") {
			continue
		}
		if v := ParseLocaleNumber(cell); v > max {
			max = v
		}
	}
	return max
}
