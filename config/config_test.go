package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fega/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pcs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, `
db: /tmp/p.db
reporting_currency: usd
commission_currency: EUR
source: eodhd
eodhd_api_key: demo
cache_dir: /tmp/cache
log_pretty: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/p.db", cfg.DB)
	assert.Equal(t, "USD", cfg.ReportingCurrency)
	assert.Equal(t, "EUR", cfg.CommissionCurrency)
	assert.Equal(t, SourceEODHD, cfg.Source)
	assert.Equal(t, "/tmp/cache", cfg.CacheDir)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, "db: file.db\nreporting_currency: USD\n")
	t.Setenv("PORTFOLIO_DB", "env.db")
	t.Setenv("PORTFOLIO_LOG_LEVEL", "debug")
	t.Setenv("PORTFOLIO_LOG_PRETTY", "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DB)
	assert.Equal(t, "USD", cfg.ReportingCurrency)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORTFOLIO_COMMISSION_CURRENCY=GBP\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PORTFOLIO_COMMISSION_CURRENCY") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "GBP", cfg.CommissionCurrency)
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "db: [unclosed"))
	assert.Error(t, err)

	t.Setenv("PORTFOLIO_LOG_PRETTY", "maybe")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadDefault_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "portfolio.db", cfg.DB)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"default", func(*Config) {}, true},
		{"unknown reporting currency", func(c *Config) { c.ReportingCurrency = "XYZ" }, false},
		{"unknown commission currency", func(c *Config) { c.CommissionCurrency = "" }, false},
		{"unknown source", func(c *Config) { c.Source = "bloomberg" }, false},
		{"eodhd without key", func(c *Config) { c.Source = SourceEODHD }, false},
		{"eodhd with key", func(c *Config) { c.Source, c.EODHDAPIKey = "EODHD", "k" }, true},
		{"no db", func(c *Config) { c.DB = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
	err := (&Config{DB: "x", ReportingCurrency: "XYZ", CommissionCurrency: "EUR", Source: SourceYahoo}).Validate()
	assert.ErrorIs(t, err, portfolio.ErrInvalid)
}
