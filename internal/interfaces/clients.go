// Package interfaces defines service contracts for Clearfolio
package interfaces

import (
	"context"

	"github.com/clearfolio/clearfolio/internal/models"
)

// MarketDataClient provides access to the external market-data capabilities.
// Every method may fail; callers treat failures as absence and fall back,
// they never propagate them to the pipeline caller.
type MarketDataClient interface {
	// GetQuote retrieves a live quote for a symbol.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// SearchSymbol looks up a ticker/name query and returns the best match,
	// or nil when nothing matched.
	SearchSymbol(ctx context.Context, query string) (*models.SearchResult, error)

	// GetComposition retrieves the look-through breakdown for a pooled
	// vehicle, or nil when the provider has none.
	GetComposition(ctx context.Context, symbol string) (*models.Composition, error)
}
