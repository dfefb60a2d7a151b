// Package config loads the settings of the command line tools.
//
// Values come from an optional YAML file, then from the environment, which
// may itself be populated from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/fega/portfolio"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Price sources.
const (
	SourceYahoo = "yahoo"
	SourceEODHD = "eodhd"
)

// Config holds the application configuration.
type Config struct {
	DB                 string `yaml:"db"`
	ReportingCurrency  string `yaml:"reporting_currency"`
	CommissionCurrency string `yaml:"commission_currency"`
	Source             string `yaml:"source"`
	SourceURL          string `yaml:"source_url"` // empty for the provider default
	EODHDAPIKey        string `yaml:"eodhd_api_key"`
	CacheDir           string `yaml:"cache_dir"` // empty disables the http cache
	LogLevel           string `yaml:"log_level"`
	LogPretty          bool   `yaml:"log_pretty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DB:                 "portfolio.db",
		ReportingCurrency:  "EUR",
		CommissionCurrency: "CHF",
		Source:             SourceYahoo,
		LogLevel:           "info",
	}
}

// Load reads the YAML file at path, if any, then applies the environment.
//
// A missing file is only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads path if the file exists, the environment only otherwise.
func LoadDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		path = ""
	}
	return Load(path)
}

func (c *Config) applyEnv() error {
	for key, dst := range map[string]*string{
		"PORTFOLIO_DB":                  &c.DB,
		"PORTFOLIO_REPORTING_CURRENCY":  &c.ReportingCurrency,
		"PORTFOLIO_COMMISSION_CURRENCY": &c.CommissionCurrency,
		"PORTFOLIO_SOURCE":              &c.Source,
		"PORTFOLIO_SOURCE_URL":          &c.SourceURL,
		"EODHD_API_KEY":                 &c.EODHDAPIKey,
		"PORTFOLIO_CACHE_DIR":           &c.CacheDir,
		"PORTFOLIO_LOG_LEVEL":           &c.LogLevel,
	} {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("PORTFOLIO_LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PORTFOLIO_LOG_PRETTY: %w", err)
		}
		c.LogPretty = b
	}
	return nil
}

// Validate checks currencies and the price source.
func (c *Config) Validate() error {
	c.ReportingCurrency = strings.ToUpper(c.ReportingCurrency)
	c.CommissionCurrency = strings.ToUpper(c.CommissionCurrency)
	c.Source = strings.ToLower(c.Source)

	var errs []error
	if c.DB == "" {
		errs = append(errs, errors.New("db is required"))
	}
	if err := portfolio.ValidateCurrency(c.ReportingCurrency); err != nil {
		errs = append(errs, fmt.Errorf("reporting_currency: %w", err))
	}
	if err := portfolio.ValidateCurrency(c.CommissionCurrency); err != nil {
		errs = append(errs, fmt.Errorf("commission_currency: %w", err))
	}
	switch c.Source {
	case SourceYahoo:
	case SourceEODHD:
		if c.EODHDAPIKey == "" {
			errs = append(errs, errors.New("eodhd source requires EODHD_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q, want %s or %s", c.Source, SourceYahoo, SourceEODHD))
	}
	return errors.Join(errs...)
}
