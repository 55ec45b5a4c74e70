package models

// Quote is a live price for a single symbol.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	ChangePct float64 `json:"change_pct,omitempty"` // daily change
}

// SearchResult is one candidate returned by the symbol search capability.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
	Type     string `json:"type,omitempty"` // "Common Stock", "ETF", "FUND", ...
}

// Composition is the weighted sector/country/currency breakdown of a pooled
// vehicle's holdings. Weights are fractions that should sum to ≈1; minor
// floating drift is tolerated downstream. A Composition is owned by the
// Position that fetched it and never shared between positions.
type Composition struct {
	Sectors    map[string]float64 `json:"sectors,omitempty"`
	Countries  map[string]float64 `json:"countries,omitempty"`
	Currencies map[string]float64 `json:"currencies,omitempty"`

	Domicile           string  `json:"domicile,omitempty"` // ISO-2 fund registration jurisdiction
	WithholdingTaxRate float64 `json:"withholding_tax_rate,omitempty"`

	Name string `json:"name,omitempty"`
}

// Clone returns a deep copy so cached compositions stay private per position.
func (c *Composition) Clone() *Composition {
	if c == nil {
		return nil
	}
	cp := &Composition{
		Domicile:           c.Domicile,
		WithholdingTaxRate: c.WithholdingTaxRate,
		Name:               c.Name,
	}
	if c.Sectors != nil {
		cp.Sectors = make(map[string]float64, len(c.Sectors))
		for k, v := range c.Sectors {
			cp.Sectors[k] = v
		}
	}
	if c.Countries != nil {
		cp.Countries = make(map[string]float64, len(c.Countries))
		for k, v := range c.Countries {
			cp.Countries[k] = v
		}
	}
	if c.Currencies != nil {
		cp.Currencies = make(map[string]float64, len(c.Currencies))
		for k, v := range c.Currencies {
			cp.Currencies[k] = v
		}
	}
	return cp
}

// Resolution is the outcome of resolving a raw statement ticker to an
// exchange-qualified symbol.
type Resolution struct {
	ResolvedSymbol string `json:"resolved_symbol"`
	Exchange       string `json:"exchange"` // "Unknown" when no variant matched
	Type           string `json:"type,omitempty"`
	Currency       string `json:"currency,omitempty"`
	Name           string `json:"name,omitempty"`
}
