// Package common provides shared utilities for Clearfolio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Clearfolio
type Config struct {
	Environment  string       `toml:"environment"`
	BaseCurrency string       `toml:"base_currency"` // reporting currency all position values are converted to
	Server       ServerConfig `toml:"server"`
	Clients      ClientsConfig `toml:"clients"`
	Enrich       EnrichConfig  `toml:"enrich"`
	Cache        CacheConfig   `toml:"cache"`
	Logging      LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EnrichConfig holds enrichment orchestration settings
type EnrichConfig struct {
	BatchSize       int    `toml:"batch_size"`       // positions enriched concurrently per batch
	PositionTimeout string `toml:"position_timeout"` // outer bound for a single position's enrichment
}

// GetPositionTimeout parses and returns the per-position timeout
func (c *EnrichConfig) GetPositionTimeout() time.Duration {
	d, err := time.ParseDuration(c.PositionTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetBatchSize returns the batch size, defaulting when unset
func (c *EnrichConfig) GetBatchSize() int {
	if c.BatchSize <= 0 {
		return 3
	}
	return c.BatchSize
}

// CacheConfig holds TTLs for the in-memory caches
type CacheConfig struct {
	ResolutionTTL  string `toml:"resolution_ttl"`
	QuoteTTL       string `toml:"quote_ttl"`
	CompositionTTL string `toml:"composition_ttl"`
}

func parseTTL(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// GetResolutionTTL returns the symbol resolution cache TTL
func (c *CacheConfig) GetResolutionTTL() time.Duration { return parseTTL(c.ResolutionTTL, 24*time.Hour) }

// GetQuoteTTL returns the quote cache TTL
func (c *CacheConfig) GetQuoteTTL() time.Duration { return parseTTL(c.QuoteTTL, 5*time.Minute) }

// GetCompositionTTL returns the composition cache TTL
func (c *CacheConfig) GetCompositionTTL() time.Duration {
	return parseTTL(c.CompositionTTL, 24*time.Hour)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment:  "development",
		BaseCurrency: "CHF",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Enrich: EnrichConfig{
			BatchSize:       3,
			PositionTimeout: "30s",
		},
		Cache: CacheConfig{
			ResolutionTTL:  "24h",
			QuoteTTL:       "5m",
			CompositionTTL: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateBaseCurrency(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CLEARFOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("CLEARFOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("CLEARFOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("CLEARFOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if bc := os.Getenv("CLEARFOLIO_BASE_CURRENCY"); bc != "" {
		config.BaseCurrency = strings.ToUpper(bc)
	}

	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
	if key := os.Getenv("CLEARFOLIO_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// validateBaseCurrency ensures BaseCurrency is a plausible ISO code, defaulting to CHF.
func validateBaseCurrency(config *Config) {
	bc := strings.ToUpper(strings.TrimSpace(config.BaseCurrency))
	if len(bc) != 3 {
		bc = "CHF"
	}
	config.BaseCurrency = bc
}
