// Package portfolio wires the ingestion pipeline together: decode, extract,
// resolve, enrich, aggregate. It is the only service the presentation layer
// talks to.
package portfolio

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/ingest"
	"github.com/clearfolio/clearfolio/internal/interfaces"
	"github.com/clearfolio/clearfolio/internal/models"
	"github.com/clearfolio/clearfolio/internal/services/allocation"
)

// ErrNoPositions is returned when the input contains text but no row could
// be turned into a position. Distinct from empty input, which parses to an
// empty result.
var ErrNoPositions = errors.New("no positions found in statement")

// Service implements PortfolioService.
type Service struct {
	resolver     interfaces.SymbolResolver
	enricher     interfaces.Enricher
	baseCurrency string
	logger       *common.Logger
}

// NewService creates the pipeline service.
func NewService(resolver interfaces.SymbolResolver, enricher interfaces.Enricher, baseCurrency string, logger *common.Logger) *Service {
	if baseCurrency == "" {
		baseCurrency = "CHF"
	}
	return &Service{
		resolver:     resolver,
		enricher:     enricher,
		baseCurrency: baseCurrency,
		logger:       logger,
	}
}

var _ interfaces.PortfolioService = (*Service)(nil)

// ParsePortfolio runs the full pipeline over raw statement text. Blank input
// yields a valid empty result; non-blank input that produces no positions is
// an error, everything past extraction degrades instead of failing.
func (s *Service) ParsePortfolio(ctx context.Context, input string) (*models.PortfolioResult, error) {
	if strings.TrimSpace(input) == "" {
		return models.Empty(s.baseCurrency), nil
	}

	rows := ingest.Decode(input)
	extraction := ingest.ExtractPositions(rows, s.baseCurrency)

	s.logger.Info().
		Int("rows", len(rows)).
		Int("positions", len(extraction.Positions)).
		Int("dropped", extraction.Dropped).
		Stringer("layout", extraction.Schema.Layout).
		Msg("Statement decoded")

	if len(extraction.Positions) == 0 {
		return nil, ErrNoPositions
	}

	s.resolveSymbols(ctx, extraction.Positions)
	s.enricher.Enrich(ctx, extraction.Positions)

	return s.aggregate(extraction), nil
}

// resolveSymbols rewrites each position's ticker to its exchange-qualified
// form. Resolution never fails; the fallback keeps the original symbol.
func (s *Service) resolveSymbols(ctx context.Context, positions []*models.Position) {
	for _, p := range positions {
		res := s.resolver.Resolve(ctx, p.Symbol, p.TradingCurrency)
		if res == nil {
			continue
		}
		if res.ResolvedSymbol != "" {
			p.Symbol = res.ResolvedSymbol
		}
		p.Exchange = res.Exchange
		if p.Name == p.OriginalSymbol && res.Name != "" {
			p.Name = res.Name
		}
	}
}

// aggregate finalizes position percentages, builds the overview, and
// computes the five allocation views.
func (s *Service) aggregate(extraction *ingest.Result) *models.PortfolioResult {
	positions := extraction.Positions
	securities := allocation.SecuritiesValue(positions)

	for _, p := range positions {
		if securities > 0 {
			p.PositionPct = p.TotalValueBase / securities * 100
		}
	}

	total := securities + extraction.CashBalance
	if extraction.StatementTotal > 0 && total > 0 {
		drift := math.Abs(extraction.StatementTotal-total) / total
		if drift > 0.05 {
			s.logger.Warn().
				Float64("statement_total", extraction.StatementTotal).
				Float64("computed_total", total).
				Msg("Computed total deviates from statement total")
		}
	}

	return &models.PortfolioResult{
		Overview: models.AccountOverview{
			TotalValue:      total,
			SecuritiesValue: securities,
			CashBalance:     extraction.CashBalance,
		},
		Positions:          positions,
		AssetAllocation:    allocation.ByAsset(positions),
		CurrencyAllocation: allocation.ByCurrency(positions),
		CountryAllocation:  allocation.ByCountry(positions),
		SectorAllocation:   allocation.BySector(positions),
		DomicileAllocation: allocation.ByDomicile(positions),
		BaseCurrency:       s.baseCurrency,
	}
}
