// Package resolver maps raw statement tickers to exchange-qualified symbols
// by probing suffix variants through the external search capability.
package resolver

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/clearfolio/clearfolio/internal/cache"
	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/interfaces"
	"github.com/clearfolio/clearfolio/internal/models"
)

// ucitsSuffixes is the ordered list of exchange suffixes tried for tickers
// that look like pooled UCITS vehicles.
var ucitsSuffixes = []string{".SW", ".L", ".DE", ".AS", ".PA", ".MI", ".VX"}

// currencySuffix maps a trading currency to the exchange suffix tried first.
var currencySuffix = map[string]string{
	"CHF": ".SW",
	"GBP": ".L",
	"EUR": ".DE",
}

// fundPattern matches ticker shapes used by the large UCITS ETF issuers
// (Vanguard V***, iShares IWDA/EIMI/ISxx/CSPX-style, Xtrackers X***). Best
// effort by nature; a false positive only costs a few search calls.
var fundPattern = regexp.MustCompile(`^(V[A-Z]{2,3}|IWDA|EIMI|EMIM|SWDA|CSPX|CHSPI|AGGH|IS[0-9A-Z]{1,2}|X[A-Z]{3})$`)

// Service implements SymbolResolver with a time-boxed memoization cache.
type Service struct {
	client interfaces.MarketDataClient
	cache  *cache.TTL[*models.Resolution]
	logger *common.Logger
}

// NewService creates a resolver backed by the given search capability.
func NewService(client interfaces.MarketDataClient, ttl time.Duration, logger *common.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache.NewTTL[*models.Resolution](ttl),
		logger: logger,
	}
}

// Cache exposes the resolution cache for clock injection in tests.
func (s *Service) Cache() *cache.TTL[*models.Resolution] { return s.cache }

// Resolve proposes exchange-suffixed variants for a raw ticker and confirms
// one through the search capability. Every outcome — success, no-match
// fallback, and degraded network error — is cached under the raw
// symbol/currency pair. Resolve never fails.
func (s *Service) Resolve(ctx context.Context, rawSymbol, tradingCurrency string) *models.Resolution {
	symbol := strings.ToUpper(strings.TrimSpace(rawSymbol))
	currency := strings.ToUpper(strings.TrimSpace(tradingCurrency))
	key := symbol + "|" + currency

	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	res := s.resolve(ctx, symbol, currency)
	s.cache.Set(key, res)
	return res
}

func (s *Service) resolve(ctx context.Context, symbol, currency string) *models.Resolution {
	// Already exchange-qualified, or clearly a domestic listing: no lookup.
	if strings.Contains(symbol, ".") {
		return &models.Resolution{
			ResolvedSymbol: symbol,
			Exchange:       symbol[strings.LastIndex(symbol, ".")+1:],
			Currency:       currency,
		}
	}
	if looksDomestic(symbol, currency) {
		return &models.Resolution{
			ResolvedSymbol: symbol,
			Exchange:       "US",
			Currency:       currency,
		}
	}

	for _, variant := range s.variants(symbol, currency) {
		result, err := s.client.SearchSymbol(ctx, variant)
		if err != nil {
			s.logger.Warn().Err(err).Str("variant", variant).Msg("Symbol search failed")
			continue // degrade to the next variant, never propagate
		}
		if result != nil && strings.EqualFold(result.Symbol, variant) {
			return &models.Resolution{
				ResolvedSymbol: result.Symbol,
				Exchange:       result.Exchange,
				Type:           result.Type,
				Currency:       result.Currency,
				Name:           result.Name,
			}
		}
	}

	// No variant confirmed: fall back to the original symbol.
	return &models.Resolution{
		ResolvedSymbol: symbol,
		Exchange:       "Unknown",
		Currency:       currency,
	}
}

// variants builds the ordered suffix candidates for a bare symbol: the
// currency-suggested exchange first, then — for fund-shaped tickers — the
// remaining common UCITS exchanges.
func (s *Service) variants(symbol, currency string) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(suffix string) {
		v := symbol + suffix
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	if suffix, ok := currencySuffix[currency]; ok {
		add(suffix)
	}
	if fundPattern.MatchString(symbol) {
		for _, suffix := range ucitsSuffixes {
			add(suffix)
		}
	}
	return out
}

// looksDomestic flags plain US listings that need no exchange suffix:
// short all-letter tickers trading in USD that don't look like UCITS funds.
func looksDomestic(symbol, currency string) bool {
	if currency != "USD" || len(symbol) == 0 || len(symbol) > 5 {
		return false
	}
	if fundPattern.MatchString(symbol) {
		return false
	}
	for _, r := range symbol {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Ensure Service implements SymbolResolver
var _ interfaces.SymbolResolver = (*Service)(nil)
