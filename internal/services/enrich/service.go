// Package enrich attaches live quotes and composition data to extracted
// positions, degrading to static fund tables and finally to the statement's
// own values when the market data provider cannot help.
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/clearfolio/clearfolio/internal/cache"
	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/ingest"
	"github.com/clearfolio/clearfolio/internal/interfaces"
	"github.com/clearfolio/clearfolio/internal/models"
)

const (
	DefaultBatchSize       = 3
	DefaultPositionTimeout = 30 * time.Second
	DefaultQuoteTTL        = 5 * time.Minute
	DefaultCompositionTTL  = 24 * time.Hour
)

// taxFavorableDomiciles are treaty jurisdictions where a Swiss investor can
// reclaim withholding down to 15 percent.
var taxFavorableDomiciles = map[string]bool{
	"US": true,
	"IE": true,
	"LU": true,
}

// Options configures the enricher. Zero values fall back to the defaults.
type Options struct {
	BaseCurrency    string
	BatchSize       int
	PositionTimeout time.Duration
	QuoteTTL        time.Duration
	CompositionTTL  time.Duration
}

// Service implements Enricher with batched, time-boxed provider calls and
// per-process TTL caches for quotes and compositions.
type Service struct {
	client       interfaces.MarketDataClient
	quotes       *cache.TTL[*models.Quote]
	compositions *cache.TTL[*models.Composition]
	baseCurrency string
	batchSize    int
	timeout      time.Duration
	logger       *common.Logger
}

// NewService creates an enricher backed by the given market data client.
func NewService(client interfaces.MarketDataClient, opts Options, logger *common.Logger) *Service {
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = "CHF"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.PositionTimeout <= 0 {
		opts.PositionTimeout = DefaultPositionTimeout
	}
	if opts.QuoteTTL <= 0 {
		opts.QuoteTTL = DefaultQuoteTTL
	}
	if opts.CompositionTTL <= 0 {
		opts.CompositionTTL = DefaultCompositionTTL
	}
	return &Service{
		client:       client,
		quotes:       cache.NewTTL[*models.Quote](opts.QuoteTTL),
		compositions: cache.NewTTL[*models.Composition](opts.CompositionTTL),
		baseCurrency: opts.BaseCurrency,
		batchSize:    opts.BatchSize,
		timeout:      opts.PositionTimeout,
		logger:       logger,
	}
}

var _ interfaces.Enricher = (*Service)(nil)

// outcome is what a worker goroutine computed for one position. Workers never
// touch the position itself; results are applied on the calling goroutine so
// a timed-out worker cannot race a later aggregation pass.
type outcome struct {
	quote       *models.Quote
	composition *models.Composition
}

// Enrich processes positions in fixed-size batches. Batches run sequentially;
// positions inside a batch run concurrently, each with its own deadline. A
// position whose lookup fails or times out keeps its statement values.
func (s *Service) Enrich(ctx context.Context, positions []*models.Position) {
	for start := 0; start < len(positions); start += s.batchSize {
		end := start + s.batchSize
		if end > len(positions) {
			end = len(positions)
		}
		s.enrichBatch(ctx, positions[start:end])
	}
}

func (s *Service) enrichBatch(ctx context.Context, batch []*models.Position) {
	type pending struct {
		done   chan outcome
		cancel context.CancelFunc
		ctx    context.Context
	}

	work := make([]pending, len(batch))
	for i, pos := range batch {
		posCtx, cancel := context.WithTimeout(ctx, s.timeout)
		done := make(chan outcome, 1)
		work[i] = pending{done: done, cancel: cancel, ctx: posCtx}

		go func(p *models.Position) {
			done <- s.lookup(posCtx, p)
		}(pos)
	}

	// Deadlines are absolute, so waiting on workers in order does not
	// extend any position's budget.
	for i, pos := range batch {
		select {
		case out := <-work[i].done:
			s.apply(pos, out)
		case <-work[i].ctx.Done():
			s.logger.Warn().
				Str("symbol", pos.Symbol).
				Dur("timeout", s.timeout).
				Msg("Enrichment timed out, keeping statement values")
			s.applyDefaults(pos)
			s.applyTax(pos)
		}
		work[i].cancel()
	}
}

// lookup fetches the quote and composition for a position, consulting the
// caches first. It reads the position but never writes it.
func (s *Service) lookup(ctx context.Context, p *models.Position) outcome {
	var out outcome

	if quote, ok := s.quotes.Get(p.Symbol); ok {
		out.quote = quote
	} else {
		quote, err := s.client.GetQuote(ctx, p.Symbol)
		if err != nil {
			s.logger.Debug().Err(err).Str("symbol", p.Symbol).Msg("Quote lookup failed")
		} else if quote != nil {
			s.quotes.Set(p.Symbol, quote)
			out.quote = quote
		}
	}

	out.composition = s.lookupComposition(ctx, p)
	return out
}

// lookupComposition resolves the composition tiers: cache, live provider,
// and for pooled vehicles the static fund table. Absent stays absent.
func (s *Service) lookupComposition(ctx context.Context, p *models.Position) *models.Composition {
	if comp, ok := s.compositions.Get(p.Symbol); ok {
		return comp.Clone()
	}

	comp, err := s.client.GetComposition(ctx, p.Symbol)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", p.Symbol).Msg("Composition lookup failed")
	} else if comp != nil {
		s.compositions.Set(p.Symbol, comp)
		return comp.Clone()
	}

	if p.Category.IsPooled() {
		if known := lookupKnownFund(p.Symbol); known != nil {
			s.logger.Debug().Str("symbol", p.Symbol).Msg("Using built-in fund composition")
			return known
		}
	}
	return nil
}

// apply merges a lookup outcome into the position.
func (s *Service) apply(p *models.Position, out outcome) {
	if out.quote != nil && out.quote.Price > 0 {
		p.CurrentPrice = out.quote.Price
		p.DailyChangePct = out.quote.ChangePct

		currency := out.quote.Currency
		if currency == "" {
			currency = p.TradingCurrency
		}
		if p.Quantity > 0 {
			p.TotalValueBase = p.Quantity * p.CurrentPrice * ingest.ApproxRate(currency, s.baseCurrency)
		}
		p.RecomputeGain()
	}

	if comp := out.composition; comp != nil {
		p.Composition = comp
		if p.Name == "" && comp.Name != "" {
			p.Name = comp.Name
		}
		if comp.Domicile != "" {
			p.Domicile = comp.Domicile
		}
		if p.Sector == "" {
			p.Sector = dominantKey(comp.Sectors)
		}
		if p.Geography == "" {
			p.Geography = dominantKey(comp.Countries)
		}
	}

	s.applyDefaults(p)
	s.applyTax(p)
}

// applyDefaults fills the fields downstream aggregation relies on.
func (s *Service) applyDefaults(p *models.Position) {
	if p.CurrentPrice <= 0 {
		p.CurrentPrice = p.Price
	}
	if p.Domicile == "" {
		p.Domicile = "Unknown"
	}
}

// applyTax derives the withholding rate: an explicit composition rate wins,
// treaty domiciles reclaim down to 15 percent, everything else assumes the
// conservative 30.
func (s *Service) applyTax(p *models.Position) {
	if p.Composition != nil && p.Composition.WithholdingTaxRate > 0 {
		p.WithholdingTaxRate = p.Composition.WithholdingTaxRate
		p.TaxOptimized = p.WithholdingTaxRate <= 15
		return
	}
	if taxFavorableDomiciles[strings.ToUpper(p.Domicile)] {
		p.WithholdingTaxRate = 15
		p.TaxOptimized = true
		return
	}
	p.WithholdingTaxRate = 30
	p.TaxOptimized = false
}

// dominantKey returns the heaviest bucket of a weight map, or "" when empty.
func dominantKey(weights map[string]float64) string {
	var best string
	var bestWeight float64
	for k, w := range weights {
		if w > bestWeight {
			best, bestWeight = k, w
		}
	}
	return best
}

// QuoteCache exposes the quote cache for clock injection in tests.
func (s *Service) QuoteCache() *cache.TTL[*models.Quote] { return s.quotes }

// CompositionCache exposes the composition cache for clock injection in tests.
func (s *Service) CompositionCache() *cache.TTL[*models.Composition] { return s.compositions }
