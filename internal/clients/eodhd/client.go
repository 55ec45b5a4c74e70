// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/interfaces"
	"github.com/clearfolio/clearfolio/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	// Add API key
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetQuote retrieves a live quote. A payload without a positive price is
// treated as absent rather than passed downstream.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	path := fmt.Sprintf("/real-time/%s", symbol)

	var resp quoteResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	if float64(resp.Close) <= 0 {
		return nil, nil
	}

	return &models.Quote{
		Symbol:    symbol,
		Price:     float64(resp.Close),
		Currency:  resp.Currency,
		ChangePct: float64(resp.ChangePct),
	}, nil
}

type quoteResponse struct {
	Code      string      `json:"code"`
	Close     flexFloat64 `json:"close"`
	ChangePct flexFloat64 `json:"change_p"`
	Currency  string      `json:"currency"`
}

// SearchSymbol looks up a ticker or name and returns the best match, or nil
// when the search produced nothing usable.
func (c *Client) SearchSymbol(ctx context.Context, query string) (*models.SearchResult, error) {
	path := fmt.Sprintf("/search/%s", url.PathEscape(query))

	params := url.Values{}
	params.Set("limit", "5")

	var results []searchResponse
	if err := c.get(ctx, path, params, &results); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.Code == "" {
			continue
		}
		symbol := r.Code
		if r.Exchange != "" && !strings.Contains(symbol, ".") {
			symbol = symbol + "." + r.Exchange
		}
		return &models.SearchResult{
			Symbol:   symbol,
			Name:     r.Name,
			Exchange: r.Exchange,
			Currency: r.Currency,
			Type:     r.Type,
		}, nil
	}
	return nil, nil
}

type searchResponse struct {
	Code     string `json:"Code"`
	Exchange string `json:"Exchange"`
	Name     string `json:"Name"`
	Type     string `json:"Type"`
	Currency string `json:"Currency"`
}

// GetComposition retrieves the look-through breakdown for a symbol. For
// pooled vehicles the ETF data block supplies weighted distributions; for
// single securities a one-asset composition is synthesized from the general
// metadata so look-through logic stays uniform downstream. Returns nil when
// the provider has nothing usable for the symbol.
func (c *Client) GetComposition(ctx context.Context, symbol string) (*models.Composition, error) {
	path := fmt.Sprintf("/fundamentals/%s", symbol)

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	isETF := resp.General.Type == "ETF" || resp.General.Type == "FUND" ||
		len(resp.ETFData.SectorWeights) > 0

	if isETF {
		comp := &models.Composition{
			Name:     resp.General.Name,
			Domicile: domicileFromCountry(resp.General.CountryISO, resp.General.CountryName),
		}
		comp.Sectors = weightsToFractions(resp.ETFData.SectorWeights)
		comp.Countries = weightsToFractions(resp.ETFData.WorldRegions)
		comp.Currencies = weightsToFractions(resp.ETFData.CurrencyWeights)
		if len(comp.Sectors) == 0 && len(comp.Countries) == 0 && len(comp.Currencies) == 0 {
			return nil, nil
		}
		return comp, nil
	}

	// Single security: 100% weight on its own sector and country.
	if resp.General.Sector == "" && resp.General.CountryISO == "" {
		return nil, nil
	}
	comp := &models.Composition{
		Name:     resp.General.Name,
		Domicile: domicileFromCountry(resp.General.CountryISO, resp.General.CountryName),
	}
	if resp.General.Sector != "" {
		comp.Sectors = map[string]float64{resp.General.Sector: 1}
	}
	if resp.General.CountryISO != "" {
		comp.Countries = map[string]float64{strings.ToUpper(resp.General.CountryISO): 1}
	}
	if resp.General.CurrencyCode != "" {
		comp.Currencies = map[string]float64{strings.ToUpper(resp.General.CurrencyCode): 1}
	}
	return comp, nil
}

// weightsToFractions converts the provider's percent-valued weight maps into
// fractions summing to ≈1, dropping zero entries.
func weightsToFractions(weights map[string]weightEntry) map[string]float64 {
	if len(weights) == 0 {
		return nil
	}
	out := make(map[string]float64, len(weights))
	for name, w := range weights {
		if float64(w.EquityPercent) > 0 {
			out[name] = float64(w.EquityPercent) / 100
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func domicileFromCountry(iso, name string) string {
	iso = strings.ToUpper(strings.TrimSpace(iso))
	if len(iso) == 2 {
		return iso
	}
	// some payloads carry only the long name
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ireland":
		return "IE"
	case "luxembourg":
		return "LU"
	case "united states", "usa":
		return "US"
	case "switzerland":
		return "CH"
	}
	return ""
}

type weightEntry struct {
	EquityPercent flexFloat64 `json:"Equity_%"`
}

// fundamentalsResponse represents the API response structure
type fundamentalsResponse struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		Type         string `json:"Type"` // "Common Stock", "ETF", "FUND", ...
		Sector       string `json:"Sector"`
		Industry     string `json:"Industry"`
		CountryISO   string `json:"CountryISO"`
		CountryName  string `json:"CountryName"`
		CurrencyCode string `json:"CurrencyCode"`
	} `json:"General"`
	// ETF-specific data from EODHD
	ETFData struct {
		SectorWeights   map[string]weightEntry `json:"Sector_Weights"`
		WorldRegions    map[string]weightEntry `json:"World_Regions"`
		CurrencyWeights map[string]weightEntry `json:"Currency_Weights"`
	} `json:"ETF_Data"`
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
