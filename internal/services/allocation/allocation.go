// Package allocation computes the portfolio breakdown views. All functions
// are pure: they read enriched positions and return bucket lists whose order
// follows first occurrence. Percentages are relative to the securities value,
// cash is not part of any view.
package allocation

import (
	"sort"
	"strings"

	"github.com/clearfolio/clearfolio/internal/models"
)

// accumulator collects weighted values per bucket while preserving the order
// buckets were first seen in.
type accumulator struct {
	order  []string
	values map[string]float64
	tags   map[string]string
}

func newAccumulator() *accumulator {
	return &accumulator{
		values: make(map[string]float64),
		tags:   make(map[string]string),
	}
}

func (a *accumulator) add(name, tag string, value float64) {
	if value <= 0 {
		return
	}
	if _, seen := a.values[name]; !seen {
		a.order = append(a.order, name)
		a.tags[name] = tag
	}
	a.values[name] += value
}

// items finalizes the buckets against the given denominator.
func (a *accumulator) items(total float64) []models.AllocationItem {
	out := make([]models.AllocationItem, 0, len(a.order))
	for _, name := range a.order {
		item := models.AllocationItem{
			Name:  name,
			Value: a.values[name],
			Tag:   a.tags[name],
		}
		if total > 0 {
			item.Percentage = item.Value / total * 100
		}
		out = append(out, item)
	}
	return out
}

// SecuritiesValue sums the base-currency value of all positions.
func SecuritiesValue(positions []*models.Position) float64 {
	var total float64
	for _, p := range positions {
		total += p.TotalValueBase
	}
	return total
}

// ByAsset groups positions by their normalized category.
func ByAsset(positions []*models.Position) []models.AllocationItem {
	acc := newAccumulator()
	for _, p := range positions {
		acc.add(string(p.Category), string(p.Category), p.TotalValueBase)
	}
	return acc.items(SecuritiesValue(positions))
}

// ByCurrency distributes each position over its composition's currency
// weights when available, otherwise the whole value lands on the trading
// currency.
func ByCurrency(positions []*models.Position) []models.AllocationItem {
	acc := newAccumulator()
	for _, p := range positions {
		if distributed := distribute(acc, p, compositionCurrencies(p)); distributed {
			continue
		}
		currency := p.TradingCurrency
		if currency == "" {
			currency = "Unknown"
		}
		acc.add(currency, currency, p.TotalValueBase)
	}
	return acc.items(SecuritiesValue(positions))
}

// ByCountry distributes each position over its composition's country
// weights, falling back to the declared geography.
func ByCountry(positions []*models.Position) []models.AllocationItem {
	acc := newAccumulator()
	for _, p := range positions {
		if distributed := distribute(acc, p, compositionCountries(p)); distributed {
			continue
		}
		country := p.Geography
		if country == "" {
			country = "Unknown"
		}
		acc.add(country, country, p.TotalValueBase)
	}
	return acc.items(SecuritiesValue(positions))
}

// BySector distributes each position over its composition's sector weights,
// falling back to the declared sector.
func BySector(positions []*models.Position) []models.AllocationItem {
	acc := newAccumulator()
	for _, p := range positions {
		if distributed := distribute(acc, p, compositionSectors(p)); distributed {
			continue
		}
		sector := p.Sector
		if sector == "" {
			sector = "Unknown"
		}
		acc.add(sector, sector, p.TotalValueBase)
	}
	return acc.items(SecuritiesValue(positions))
}

// ByDomicile groups positions by fund or issuer domicile, labeled
// "Country (CODE)" so structurally identical codes stay distinguishable.
func ByDomicile(positions []*models.Position) []models.AllocationItem {
	acc := newAccumulator()
	for _, p := range positions {
		code := strings.ToUpper(strings.TrimSpace(p.Domicile))
		if code == "" || code == "UNKNOWN" {
			code = "XX"
		}
		acc.add(domicileLabel(code), code, p.TotalValueBase)
	}
	return acc.items(SecuritiesValue(positions))
}

// distribute spreads a position's value over a weight map. Map iteration
// order is random, so buckets are added heaviest first to keep the output
// deterministic. Returns false when there are no usable weights.
func distribute(acc *accumulator, p *models.Position, weights map[string]float64) bool {
	if len(weights) == 0 {
		return false
	}
	for _, key := range sortedByWeight(weights) {
		w := weights[key]
		if w <= 0 {
			continue
		}
		acc.add(key, key, p.TotalValueBase*w)
	}
	return true
}

// sortedByWeight returns the map keys heaviest first, ties broken
// alphabetically.
func sortedByWeight(weights map[string]float64) []string {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if weights[keys[i]] != weights[keys[j]] {
			return weights[keys[i]] > weights[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func compositionCurrencies(p *models.Position) map[string]float64 {
	if p.Composition == nil {
		return nil
	}
	return p.Composition.Currencies
}

func compositionCountries(p *models.Position) map[string]float64 {
	if p.Composition == nil {
		return nil
	}
	return p.Composition.Countries
}

func compositionSectors(p *models.Position) map[string]float64 {
	if p.Composition == nil {
		return nil
	}
	return p.Composition.Sectors
}

// domicileNames maps ISO-2 codes to display names for the domicile view.
var domicileNames = map[string]string{
	"US": "United States",
	"IE": "Ireland",
	"LU": "Luxembourg",
	"CH": "Switzerland",
	"GB": "United Kingdom",
	"DE": "Germany",
	"FR": "France",
	"NL": "Netherlands",
	"JP": "Japan",
	"CA": "Canada",
	"AU": "Australia",
	"LI": "Liechtenstein",
	"XX": "XX",
}

func domicileLabel(code string) string {
	if name, ok := domicileNames[code]; ok {
		return name + " (" + code + ")"
	}
	return code + " (" + code + ")"
}
