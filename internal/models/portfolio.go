package models

// AllocationItem is one bucket of an allocation view. Lists preserve the
// insertion order of first occurrence; they are not sorted.
type AllocationItem struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Tag        string  `json:"tag,omitempty"` // currency code / country / sector / domicile
}

// AccountOverview summarizes the parsed statement.
type AccountOverview struct {
	TotalValue      float64 `json:"total_value"`
	SecuritiesValue float64 `json:"securities_value"`
	CashBalance     float64 `json:"cash_balance"`
}

// PortfolioResult is the normalized output of the ingestion pipeline: the
// account overview, the finalized positions, and the five allocation views.
type PortfolioResult struct {
	Overview  AccountOverview `json:"overview"`
	Positions []*Position     `json:"positions"`

	AssetAllocation    []AllocationItem `json:"asset_allocation"`
	CurrencyAllocation []AllocationItem `json:"currency_allocation"`
	CountryAllocation  []AllocationItem `json:"country_allocation"`
	SectorAllocation   []AllocationItem `json:"sector_allocation"`
	DomicileAllocation []AllocationItem `json:"domicile_allocation"`

	BaseCurrency string `json:"base_currency"`
}

// Empty returns a valid zero-position result, the neutral outcome for
// empty input.
func Empty(baseCurrency string) *PortfolioResult {
	return &PortfolioResult{
		Positions:    []*Position{},
		BaseCurrency: baseCurrency,
	}
}
