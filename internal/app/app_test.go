package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_Defaults(t *testing.T) {
	a, err := NewApp("")
	require.NoError(t, err)

	assert.Equal(t, "CHF", a.Config.BaseCurrency)
	assert.NotNil(t, a.Client)
	assert.NotNil(t, a.Resolver)
	assert.NotNil(t, a.Enricher)
	assert.NotNil(t, a.Portfolio)
}

func TestNewApp_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clearfolio.toml")
	content := "base_currency = \"EUR\"\n\n[server]\nport = 9999\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	a, err := NewApp(path)
	require.NoError(t, err)

	assert.Equal(t, "EUR", a.Config.BaseCurrency)
	assert.Equal(t, 9999, a.Config.Server.Port)
}
