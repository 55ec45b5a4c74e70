// Package app wires configuration, the market data client, and the pipeline
// services into a single application object both binaries start from.
package app

import (
	"fmt"

	"github.com/clearfolio/clearfolio/internal/clients/eodhd"
	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/interfaces"
	"github.com/clearfolio/clearfolio/internal/services/enrich"
	"github.com/clearfolio/clearfolio/internal/services/portfolio"
	"github.com/clearfolio/clearfolio/internal/services/resolver"
)

// App holds the wired dependency graph.
type App struct {
	Config *common.Config
	Logger *common.Logger

	Client    interfaces.MarketDataClient
	Resolver  interfaces.SymbolResolver
	Enricher  interfaces.Enricher
	Portfolio interfaces.PortfolioService
}

// NewApp loads configuration and builds the service graph. An empty
// configPath falls back to the default search locations.
func NewApp(configPath string) (*App, error) {
	paths := []string{"clearfolio.toml", "config/clearfolio.toml"}
	if configPath != "" {
		paths = []string{configPath}
	}

	config, err := common.LoadConfig(paths...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	client := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		eodhd.WithLogger(logger),
	)

	res := resolver.NewService(client, config.Cache.GetResolutionTTL(), logger)
	enr := enrich.NewService(client, enrich.Options{
		BaseCurrency:    config.BaseCurrency,
		BatchSize:       config.Enrich.GetBatchSize(),
		PositionTimeout: config.Enrich.GetPositionTimeout(),
		QuoteTTL:        config.Cache.GetQuoteTTL(),
		CompositionTTL:  config.Cache.GetCompositionTTL(),
	}, logger)

	return &App{
		Config:    config,
		Logger:    logger,
		Client:    client,
		Resolver:  res,
		Enricher:  enr,
		Portfolio: portfolio.NewService(res, enr, config.BaseCurrency, logger),
	}, nil
}
