// Package models defines data structures for Clearfolio
package models

import "strings"

// Category is the closed asset taxonomy a statement row normalizes into.
type Category string

const (
	CategoryEquity            Category = "Equity"
	CategoryETF               Category = "ETF"
	CategoryFund              Category = "Fund"
	CategoryBond              Category = "Bond"
	CategoryStructuredProduct Category = "StructuredProduct"
	CategoryCryptocurrency    Category = "Cryptocurrency"
	CategoryCash              Category = "Cash"
	CategoryUnknown           Category = "Unknown"
)

// IsPooled returns true for vehicles whose value is spread across many
// underlying holdings and therefore warrants composition look-through.
func (c Category) IsPooled() bool {
	return c == CategoryETF || c == CategoryFund
}

// categorySynonyms maps statement labels (French, German, English) to the
// closed taxonomy. Lookup is case-insensitive on the trimmed label.
var categorySynonyms = map[string]Category{
	"actions":              CategoryEquity,
	"action":               CategoryEquity,
	"aktien":               CategoryEquity,
	"equities":             CategoryEquity,
	"equity":               CategoryEquity,
	"stocks":               CategoryEquity,
	"shares":               CategoryEquity,
	"etf":                  CategoryETF,
	"etfs":                 CategoryETF,
	"fonds":                CategoryFund,
	"fund":                 CategoryFund,
	"funds":                CategoryFund,
	"anlagefonds":          CategoryFund,
	"obligations":          CategoryBond,
	"anleihen":             CategoryBond,
	"bond":                 CategoryBond,
	"bonds":                CategoryBond,
	"produits structurés":  CategoryStructuredProduct,
	"produits structures":  CategoryStructuredProduct,
	"strukturierte produkte": CategoryStructuredProduct,
	"structured products":  CategoryStructuredProduct,
	"crypto-monnaies":      CategoryCryptocurrency,
	"cryptomonnaies":       CategoryCryptocurrency,
	"kryptowährungen":      CategoryCryptocurrency,
	"kryptowaehrungen":     CategoryCryptocurrency,
	"crypto":               CategoryCryptocurrency,
	"cryptocurrencies":     CategoryCryptocurrency,
	"cryptocurrency":       CategoryCryptocurrency,
	"liquidités":           CategoryCash,
	"liquidites":           CategoryCash,
	"barmittel":            CategoryCash,
	"cash":                 CategoryCash,
}

// NormalizeCategory maps a statement category label to the closed taxonomy.
// Unmapped labels come back as CategoryUnknown; the raw label is preserved
// on the Position so nothing is lost.
func NormalizeCategory(label string) Category {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return CategoryUnknown
	}
	if cat, ok := categorySynonyms[key]; ok {
		return cat
	}
	return CategoryUnknown
}

// IsCategoryLabel reports whether the label maps to a known category.
func IsCategoryLabel(label string) bool {
	_, ok := categorySynonyms[strings.ToLower(strings.TrimSpace(label))]
	return ok
}

// Position represents a single statement holding as it flows through the
// pipeline: created provisionally by extraction, then mutated in place by
// symbol resolution and enrichment, finalized once the portfolio total is
// known.
type Position struct {
	Symbol          string   `json:"symbol"`                    // canonical uppercase ticker
	OriginalSymbol  string   `json:"original_symbol,omitempty"` // as typed by the statement
	Name            string   `json:"name,omitempty"`
	Quantity        float64  `json:"quantity"`
	UnitCost        float64  `json:"unit_cost,omitempty"`
	Price           float64  `json:"price"`
	CurrentPrice    float64  `json:"current_price,omitempty"` // live quote; defaults to Price
	TradingCurrency string   `json:"trading_currency"`
	Category        Category `json:"category"`
	RawCategory     string   `json:"raw_category,omitempty"` // statement label before normalization
	Sector          string   `json:"sector,omitempty"`
	Geography       string   `json:"geography,omitempty"`
	Domicile        string   `json:"domicile"` // ISO-2 code or "Unknown"

	WithholdingTaxRate float64 `json:"withholding_tax_rate"`
	TaxOptimized       bool    `json:"tax_optimized"`

	TotalValueBase  float64 `json:"total_value_base"` // value in the portfolio base currency
	Gain            float64 `json:"gain"`
	GainPct         float64 `json:"gain_pct"`
	PositionPct     float64 `json:"position_pct"` // share of portfolio, set after totals are known
	DailyChangePct  float64 `json:"daily_change_pct,omitempty"`

	Exchange string `json:"exchange,omitempty"`

	Composition *Composition `json:"composition,omitempty"`
}

// EffectivePrice returns the live price when available, the statement price otherwise.
func (p *Position) EffectivePrice() float64 {
	if p.CurrentPrice > 0 {
		return p.CurrentPrice
	}
	return p.Price
}

// RecomputeGain refreshes absolute and percentage gain from unit cost.
func (p *Position) RecomputeGain() {
	if p.UnitCost <= 0 || p.Quantity <= 0 {
		return
	}
	costBasis := p.UnitCost * p.Quantity
	current := p.EffectivePrice() * p.Quantity
	p.Gain = current - costBasis
	p.GainPct = p.Gain / costBasis * 100
}
