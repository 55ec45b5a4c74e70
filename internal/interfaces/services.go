package interfaces

import (
	"context"

	"github.com/clearfolio/clearfolio/internal/models"
)

// SymbolResolver maps raw statement tickers to exchange-qualified symbols.
type SymbolResolver interface {
	// Resolve proposes exchange-suffixed variants for a raw ticker and
	// confirms one through the search capability. It never fails: network
	// errors degrade to the identity fallback with Exchange "Unknown".
	Resolve(ctx context.Context, rawSymbol, tradingCurrency string) *models.Resolution
}

// Enricher attaches live quotes and composition data to positions.
type Enricher interface {
	// Enrich processes positions in bounded-concurrency batches, mutating
	// them in place. Failed positions keep their provisional values.
	Enrich(ctx context.Context, positions []*models.Position)
}

// PortfolioService is the single entry point the presentation layer depends on.
type PortfolioService interface {
	// ParsePortfolio ingests raw statement text (CSV or copy-pasted free
	// text) and returns the normalized, enriched, aggregated result.
	ParsePortfolio(ctx context.Context, input string) (*models.PortfolioResult, error)
}
