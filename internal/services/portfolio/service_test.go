package portfolio

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/models"
)

// stubResolver appends ".US" to everything not already qualified.
type stubResolver struct {
	calls []string
}

func (r *stubResolver) Resolve(ctx context.Context, rawSymbol, tradingCurrency string) *models.Resolution {
	r.calls = append(r.calls, rawSymbol)
	if strings.Contains(rawSymbol, ".") {
		return &models.Resolution{ResolvedSymbol: rawSymbol, Exchange: rawSymbol[strings.LastIndex(rawSymbol, ".")+1:]}
	}
	return &models.Resolution{ResolvedSymbol: rawSymbol + ".US", Exchange: "US"}
}

// stubEnricher attaches canned compositions by base symbol and leaves
// everything else alone.
type stubEnricher struct {
	compositions map[string]*models.Composition
	enriched     int
}

func (e *stubEnricher) Enrich(ctx context.Context, positions []*models.Position) {
	for _, p := range positions {
		e.enriched++
		base := p.Symbol
		if i := strings.Index(base, "."); i > 0 {
			base = base[:i]
		}
		if comp, ok := e.compositions[base]; ok {
			p.Composition = comp.Clone()
			p.Domicile = comp.Domicile
		}
		if p.Domicile == "" {
			p.Domicile = "Unknown"
		}
	}
}

func newTestService(resolver *stubResolver, enricher *stubEnricher) *Service {
	return NewService(resolver, enricher, "CHF", common.NewSilentLogger())
}

func TestParsePortfolio_BlankInputIsEmptyResult(t *testing.T) {
	svc := newTestService(&stubResolver{}, &stubEnricher{})

	for _, input := range []string{"", "   ", "\n\n\t"} {
		result, err := svc.ParsePortfolio(context.Background(), input)
		require.NoError(t, err)
		assert.Empty(t, result.Positions)
		assert.Equal(t, "CHF", result.BaseCurrency)
		assert.Zero(t, result.Overview.TotalValue)
	}
}

func TestParsePortfolio_NoPositionsIsAnError(t *testing.T) {
	svc := newTestService(&stubResolver{}, &stubEnricher{})

	result, err := svc.ParsePortfolio(context.Background(), "quarterly newsletter\nno holdings in here\n")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoPositions)
}

func TestParsePortfolio_SwissStatementEndToEnd(t *testing.T) {
	input := "Actions, , , , , , , , , , , , , \n" +
		" ,AAPL,100,150.00,13200.00,,,150.00,USD,0,0%,13200.00,,\n" +
		"ETF, , , , , , , , , , , , , \n" +
		" ,VWRL.SW,42,95.00,4422.60,,,105.30,CHF,432,10.8%,4422.60,,\n" +
		"Cash, , , , , , , , , , , , , \n" +
		" ,CHF,1,2500.00,2500.00,,,2500.00,CHF,0,0%,2500.00,,\n"

	resolver := &stubResolver{}
	enricher := &stubEnricher{
		compositions: map[string]*models.Composition{
			"VWRL": {
				Domicile:   "IE",
				Sectors:    map[string]float64{"Technology": 0.6, "Healthcare": 0.4},
				Countries:  map[string]float64{"United States": 1.0},
				Currencies: map[string]float64{"USD": 1.0},
			},
		},
	}
	svc := newTestService(resolver, enricher)

	result, err := svc.ParsePortfolio(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, result.Positions, 2)

	assert.Equal(t, []string{"AAPL", "VWRL.SW"}, resolver.calls)
	assert.Equal(t, 2, enricher.enriched)

	aapl, vwrl := result.Positions[0], result.Positions[1]
	assert.Equal(t, "AAPL.US", aapl.Symbol)
	assert.Equal(t, "AAPL", aapl.OriginalSymbol)
	assert.Equal(t, models.CategoryEquity, aapl.Category)
	assert.Equal(t, "Actions", aapl.RawCategory)
	assert.Equal(t, "VWRL.SW", vwrl.Symbol)
	assert.Equal(t, models.CategoryETF, vwrl.Category)

	securities := 13200.0 + 4422.60
	assert.InDelta(t, securities, result.Overview.SecuritiesValue, 0.001)
	assert.InDelta(t, 2500.0, result.Overview.CashBalance, 0.001)
	assert.InDelta(t, securities+2500.0, result.Overview.TotalValue, 0.001)

	assert.InDelta(t, 13200.0/securities*100, aapl.PositionPct, 0.001)
	assert.InDelta(t, 4422.60/securities*100, vwrl.PositionPct, 0.001)

	require.Len(t, result.AssetAllocation, 2)
	assert.Equal(t, "Equity", result.AssetAllocation[0].Name)
	assert.Equal(t, "ETF", result.AssetAllocation[1].Name)

	// look-through: the fund's 60/40 sectors plus the unclassified equity
	var sectors []string
	for _, it := range result.SectorAllocation {
		sectors = append(sectors, it.Name)
	}
	assert.Contains(t, sectors, "Technology")
	assert.Contains(t, sectors, "Healthcare")

	require.Len(t, result.DomicileAllocation, 2)
	assert.Equal(t, "XX (XX)", result.DomicileAllocation[0].Name)
	assert.Equal(t, "Ireland (IE)", result.DomicileAllocation[1].Name)

	assert.Equal(t, "CHF", result.BaseCurrency)
}

func TestParsePortfolio_GenericHeaderStatement(t *testing.T) {
	input := "Symbol,Name,Quantity,Price,Currency\n" +
		"AAPL,Apple,100,150.00,USD\n" +
		"NESN,Nestlé,10,95.50,CHF\n"

	svc := newTestService(&stubResolver{}, &stubEnricher{})

	result, err := svc.ParsePortfolio(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, result.Positions, 2)

	// 100*150*0.88 + 10*95.50
	assert.InDelta(t, 13200.0+955.0, result.Overview.SecuritiesValue, 0.001)
	assert.Zero(t, result.Overview.CashBalance)

	require.Len(t, result.CurrencyAllocation, 2)
	assert.Equal(t, "USD", result.CurrencyAllocation[0].Name)
	assert.Equal(t, "CHF", result.CurrencyAllocation[1].Name)
}

func TestParsePortfolio_ResolverNameFillsPlaceholder(t *testing.T) {
	input := "Symbol,Quantity,Price,Currency\nAAPL,100,150.00,USD\n"

	resolver := &namedResolver{}
	svc := NewService(resolver, &stubEnricher{}, "CHF", common.NewSilentLogger())

	result, err := svc.ParsePortfolio(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, result.Positions, 1)
	assert.Equal(t, "Apple Inc", result.Positions[0].Name)
}

type namedResolver struct{}

func (r *namedResolver) Resolve(ctx context.Context, rawSymbol, tradingCurrency string) *models.Resolution {
	return &models.Resolution{ResolvedSymbol: rawSymbol + ".US", Exchange: "US", Name: "Apple Inc"}
}
