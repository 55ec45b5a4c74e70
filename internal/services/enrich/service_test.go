package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/models"
)

// mockClient implements interfaces.MarketDataClient with canned responses
// and call accounting.
type mockClient struct {
	mu sync.Mutex

	quotes       map[string]*models.Quote
	compositions map[string]*models.Composition
	quoteErr     error
	compErr      error
	delay        time.Duration

	quoteCalls  int
	compCalls   int
	inFlight    int
	maxInFlight int
}

func (m *mockClient) enter() {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()
}

func (m *mockClient) leave() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}

func (m *mockClient) wait(ctx context.Context) error {
	if m.delay == 0 {
		return nil
	}
	select {
	case <-time.After(m.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	m.enter()
	defer m.leave()
	m.mu.Lock()
	m.quoteCalls++
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	return m.quotes[symbol], nil
}

func (m *mockClient) SearchSymbol(ctx context.Context, query string) (*models.SearchResult, error) {
	return nil, nil
}

func (m *mockClient) GetComposition(ctx context.Context, symbol string) (*models.Composition, error) {
	m.enter()
	defer m.leave()
	m.mu.Lock()
	m.compCalls++
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.compErr != nil {
		return nil, m.compErr
	}
	return m.compositions[symbol], nil
}

func newTestService(client *mockClient, opts Options) *Service {
	return NewService(client, opts, common.NewSilentLogger())
}

func TestEnrich_QuoteUpdatesValueAndGain(t *testing.T) {
	client := &mockClient{
		quotes: map[string]*models.Quote{
			"AAPL.US": {Symbol: "AAPL.US", Price: 150, Currency: "USD", ChangePct: 1.2},
		},
	}
	svc := newTestService(client, Options{BaseCurrency: "CHF"})

	pos := &models.Position{
		Symbol:          "AAPL.US",
		Quantity:        100,
		UnitCost:        120,
		Price:           140,
		TradingCurrency: "USD",
		Category:        models.CategoryEquity,
	}
	svc.Enrich(context.Background(), []*models.Position{pos})

	assert.Equal(t, 150.0, pos.CurrentPrice)
	assert.Equal(t, 1.2, pos.DailyChangePct)
	assert.InDelta(t, 100*150*0.88, pos.TotalValueBase, 0.01)
	assert.InDelta(t, (150-120)*100, pos.Gain, 0.01)
	assert.InDelta(t, 25.0, pos.GainPct, 0.01)
}

func TestEnrich_FailedLookupKeepsStatementValues(t *testing.T) {
	client := &mockClient{
		quoteErr: errors.New("provider down"),
		compErr:  errors.New("provider down"),
	}
	svc := newTestService(client, Options{BaseCurrency: "CHF"})

	pos := &models.Position{
		Symbol:          "NESN.SW",
		Quantity:        10,
		Price:           100,
		TradingCurrency: "CHF",
		Category:        models.CategoryEquity,
		TotalValueBase:  1000,
	}
	svc.Enrich(context.Background(), []*models.Position{pos})

	assert.Equal(t, 100.0, pos.CurrentPrice, "falls back to statement price")
	assert.Equal(t, 1000.0, pos.TotalValueBase)
	assert.Equal(t, "Unknown", pos.Domicile)
	assert.Equal(t, 30.0, pos.WithholdingTaxRate)
	assert.False(t, pos.TaxOptimized)
}

func TestEnrich_LiveCompositionAttached(t *testing.T) {
	client := &mockClient{
		compositions: map[string]*models.Composition{
			"VT.US": {
				Name:     "Vanguard Total World Stock ETF",
				Domicile: "US",
				Sectors:  map[string]float64{"Technology": 0.6, "Healthcare": 0.4},
				Countries: map[string]float64{
					"United States": 0.7, "Japan": 0.3,
				},
				Currencies: map[string]float64{"USD": 1.0},
			},
		},
	}
	svc := newTestService(client, Options{BaseCurrency: "CHF"})

	pos := &models.Position{
		Symbol:          "VT.US",
		Quantity:        5,
		Price:           100,
		TradingCurrency: "USD",
		Category:        models.CategoryETF,
	}
	svc.Enrich(context.Background(), []*models.Position{pos})

	require.NotNil(t, pos.Composition)
	assert.Equal(t, "Vanguard Total World Stock ETF", pos.Name)
	assert.Equal(t, "US", pos.Domicile)
	assert.Equal(t, "Technology", pos.Sector)
	assert.Equal(t, "United States", pos.Geography)
	assert.Equal(t, 15.0, pos.WithholdingTaxRate)
	assert.True(t, pos.TaxOptimized)
}

func TestEnrich_StaticFundTableFallback(t *testing.T) {
	client := &mockClient{
		compErr: errors.New("fundamentals unavailable"),
	}
	svc := newTestService(client, Options{BaseCurrency: "CHF"})

	pos := &models.Position{
		Symbol:          "VWRL.SW",
		Quantity:        20,
		Price:           110,
		TradingCurrency: "CHF",
		Category:        models.CategoryETF,
	}
	svc.Enrich(context.Background(), []*models.Position{pos})

	require.NotNil(t, pos.Composition)
	assert.Equal(t, "IE", pos.Domicile)
	assert.Equal(t, "Vanguard FTSE All-World UCITS ETF", pos.Name)
	assert.Equal(t, 15.0, pos.WithholdingTaxRate)
	assert.True(t, pos.TaxOptimized)
}

func TestEnrich_StaticTableNotUsedForSingleSecurities(t *testing.T) {
	client := &mockClient{
		compErr: errors.New("fundamentals unavailable"),
	}
	svc := newTestService(client, Options{BaseCurrency: "CHF"})

	// SPY is in the fund table, but an equity-classified row must not
	// borrow a fund breakdown.
	pos := &models.Position{
		Symbol:          "SPY.US",
		Quantity:        1,
		Price:           500,
		TradingCurrency: "USD",
		Category:        models.CategoryEquity,
	}
	svc.Enrich(context.Background(), []*models.Position{pos})

	assert.Nil(t, pos.Composition)
}

func TestEnrich_CompositionRateOverridesDomicileRule(t *testing.T) {
	client := &mockClient{
		compositions: map[string]*models.Composition{
			"NESN.SW": {
				Name:               "Nestlé SA",
				Domicile:           "CH",
				WithholdingTaxRate: 35,
				Sectors:            map[string]float64{"Consumer Defensive": 1.0},
				Countries:          map[string]float64{"Switzerland": 1.0},
				Currencies:         map[string]float64{"CHF": 1.0},
			},
		},
	}
	svc := newTestService(client, Options{BaseCurrency: "CHF"})

	pos := &models.Position{
		Symbol:          "NESN.SW",
		Quantity:        10,
		Price:           100,
		TradingCurrency: "CHF",
		Category:        models.CategoryEquity,
	}
	svc.Enrich(context.Background(), []*models.Position{pos})

	assert.Equal(t, 35.0, pos.WithholdingTaxRate)
	assert.False(t, pos.TaxOptimized)
}

func TestEnrich_QuoteCacheAvoidsRepeatCalls(t *testing.T) {
	client := &mockClient{
		quotes: map[string]*models.Quote{
			"AAPL.US": {Symbol: "AAPL.US", Price: 150, Currency: "USD"},
		},
	}
	svc := newTestService(client, Options{BaseCurrency: "CHF"})

	pos := func() *models.Position {
		return &models.Position{
			Symbol: "AAPL.US", Quantity: 1, Price: 140,
			TradingCurrency: "USD", Category: models.CategoryEquity,
		}
	}
	svc.Enrich(context.Background(), []*models.Position{pos()})
	svc.Enrich(context.Background(), []*models.Position{pos()})

	assert.Equal(t, 1, client.quoteCalls)
}

func TestEnrich_CachedCompositionIsCopied(t *testing.T) {
	client := &mockClient{
		compositions: map[string]*models.Composition{
			"VWRL.SW": {
				Name:      "Vanguard FTSE All-World UCITS ETF",
				Domicile:  "IE",
				Sectors:   map[string]float64{"Technology": 0.5, "Healthcare": 0.5},
				Countries: map[string]float64{"United States": 1.0},
			},
		},
	}
	svc := newTestService(client, Options{BaseCurrency: "CHF"})

	first := &models.Position{Symbol: "VWRL.SW", Quantity: 1, Price: 100, TradingCurrency: "CHF", Category: models.CategoryETF}
	svc.Enrich(context.Background(), []*models.Position{first})
	require.NotNil(t, first.Composition)
	first.Composition.Sectors["Technology"] = 0.99

	second := &models.Position{Symbol: "VWRL.SW", Quantity: 1, Price: 100, TradingCurrency: "CHF", Category: models.CategoryETF}
	svc.Enrich(context.Background(), []*models.Position{second})
	require.NotNil(t, second.Composition)
	assert.Equal(t, 0.5, second.Composition.Sectors["Technology"], "cache hit must hand out an independent copy")
	assert.Equal(t, 1, client.compCalls)
}

func TestEnrich_TimeoutKeepsStatementValues(t *testing.T) {
	client := &mockClient{
		delay: 500 * time.Millisecond,
		quotes: map[string]*models.Quote{
			"SLOW.US": {Symbol: "SLOW.US", Price: 999, Currency: "USD"},
		},
	}
	svc := newTestService(client, Options{
		BaseCurrency:    "CHF",
		PositionTimeout: 30 * time.Millisecond,
	})

	pos := &models.Position{
		Symbol: "SLOW.US", Quantity: 10, Price: 50,
		TradingCurrency: "USD", Category: models.CategoryEquity,
		TotalValueBase: 440,
	}
	svc.Enrich(context.Background(), []*models.Position{pos})

	assert.Equal(t, 50.0, pos.CurrentPrice)
	assert.Equal(t, 440.0, pos.TotalValueBase)
	assert.Equal(t, 30.0, pos.WithholdingTaxRate)
}

func TestEnrich_BatchBoundsConcurrency(t *testing.T) {
	client := &mockClient{delay: 20 * time.Millisecond}
	svc := newTestService(client, Options{BaseCurrency: "CHF", BatchSize: 3})

	positions := make([]*models.Position, 8)
	for i := range positions {
		positions[i] = &models.Position{
			Symbol:          string(rune('A'+i)) + ".US",
			Quantity:        1,
			Price:           10,
			TradingCurrency: "USD",
			Category:        models.CategoryEquity,
		}
	}
	svc.Enrich(context.Background(), positions)

	assert.LessOrEqual(t, client.maxInFlight, 3)
	assert.Equal(t, 8, client.quoteCalls)
}

func TestEnrich_QuoteCacheExpiryTriggersRefetch(t *testing.T) {
	client := &mockClient{
		quotes: map[string]*models.Quote{
			"AAPL.US": {Symbol: "AAPL.US", Price: 150, Currency: "USD"},
		},
	}
	svc := newTestService(client, Options{BaseCurrency: "CHF", QuoteTTL: 5 * time.Minute})

	now := time.Now()
	svc.QuoteCache().SetClock(func() time.Time { return now })

	pos := func() *models.Position {
		return &models.Position{
			Symbol: "AAPL.US", Quantity: 1, Price: 140,
			TradingCurrency: "USD", Category: models.CategoryEquity,
		}
	}
	svc.Enrich(context.Background(), []*models.Position{pos()})
	require.Equal(t, 1, client.quoteCalls)

	now = now.Add(6 * time.Minute)
	svc.Enrich(context.Background(), []*models.Position{pos()})
	assert.Equal(t, 2, client.quoteCalls)
}

func TestBaseSymbol(t *testing.T) {
	assert.Equal(t, "VWRL", BaseSymbol("VWRL.SW"))
	assert.Equal(t, "AAPL", BaseSymbol("AAPL"))
	assert.Equal(t, ".SW", BaseSymbol(".SW"))
}
