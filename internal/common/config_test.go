package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "CHF", cfg.BaseCurrency)
	assert.Equal(t, 3, cfg.Enrich.GetBatchSize())
	assert.Equal(t, 30*time.Second, cfg.Enrich.GetPositionTimeout())
	assert.Equal(t, 24*time.Hour, cfg.Cache.GetResolutionTTL())
	assert.Equal(t, 5*time.Minute, cfg.Cache.GetQuoteTTL())
	assert.Equal(t, 24*time.Hour, cfg.Cache.GetCompositionTTL())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clearfolio.toml")
	content := `
base_currency = "eur"

[server]
port = 9090

[enrich]
batch_size = 5
position_timeout = "10s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "EUR", cfg.BaseCurrency) // normalized to upper case
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Enrich.GetBatchSize())
	assert.Equal(t, 10*time.Second, cfg.Enrich.GetPositionTimeout())
	// untouched sections keep defaults
	assert.Equal(t, "https://eodhd.com/api", cfg.Clients.EODHD.BaseURL)
}

func TestLoadConfig_MissingFileIsSkipped(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/clearfolio.toml")
	require.NoError(t, err)
	assert.Equal(t, "CHF", cfg.BaseCurrency)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CLEARFOLIO_BASE_CURRENCY", "usd")
	t.Setenv("CLEARFOLIO_PORT", "7070")
	t.Setenv("CLEARFOLIO_EODHD_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.Clients.EODHD.APIKey)
}

func TestValidateBaseCurrency_InvalidFallsBack(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.BaseCurrency = "SWISSFRANC"
	validateBaseCurrency(cfg)
	assert.Equal(t, "CHF", cfg.BaseCurrency)
}
