// Package cmd implements the CLI application to manage a portfolio.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fega/portfolio"
	"github.com/fega/portfolio/config"
	"github.com/fega/portfolio/eodhd"
	"github.com/fega/portfolio/logger"
	"github.com/fega/portfolio/sqlstore"
	"github.com/fega/portfolio/webutil"
	"github.com/fega/portfolio/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&addInstrumentCmd{}, "instruments")
	c.Register(&instrumentsCmd{}, "instruments")
	c.Register(&searchCmd{}, "instruments")

	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&dividendCmd{}, "transactions")
	c.Register(&removeDividendCmd{}, "transactions")
	c.Register(&removeTxCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")
	c.Register(&fetchDividendsCmd{}, "transactions")

	c.Register(&updateCmd{}, "prices")
	c.Register(&priceCmd{}, "prices")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&seriesCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configPath = flag.String("config", "portfolio.yaml", "Path to the YAML configuration file, ignored when missing")
	dbPath     = flag.String("db", "", "Path to the SQLite database, overrides the configuration")
	asOfFlag   = flag.String("asof", "", "Valuation date, today by default. See the user manual for supported date formats.")
)

// stdout receives the reports.
var stdout io.Writer = os.Stdout

// asOf returns the global valuation date.
func asOf() (portfolio.Date, error) {
	if *asOfFlag == "" {
		return portfolio.Today(), nil
	}
	return portfolio.ParseDate(*asOfFlag)
}

// dateOr parses s, or returns the global valuation date when s is empty.
func dateOr(s string) (portfolio.Date, error) {
	if s == "" {
		return asOf()
	}
	return portfolio.ParseDate(s)
}

// app bundles the services a command works with.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *http.Client
	store   *sqlstore.Store
	db      *portfolio.Database
	ledger  *portfolio.Ledger
	val     *portfolio.Valuation
	updater *portfolio.Updater
}

// loadConfig loads the configuration file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadDefault(*configPath)
	if err != nil {
		return nil, err
	}
	if *dbPath != "" {
		cfg.DB = *dbPath
	}
	return cfg, nil
}

// openApp loads the configuration and opens the database.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	store, err := sqlstore.Open(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:    cfg,
		log:    log,
		client: webutil.NewClient(cfg.CacheDir, log),
		store:  store,
		db:     portfolio.NewDatabase(store),
	}
	a.ledger = portfolio.NewLedger(a.db, log)
	a.val = portfolio.NewValuation(a.db, cfg.ReportingCurrency, cfg.CommissionCurrency, log)
	a.updater = portfolio.NewUpdater(a.db, a.source(), cfg.ReportingCurrency, log)
	return a, nil
}

// Close closes the database.
func (a *app) Close() error { return a.store.Close() }

// source returns the configured price source.
func (a *app) source() portfolio.PriceSource {
	if a.cfg.Source == config.SourceEODHD {
		return a.eodhd()
	}
	return yahoo.New(a.client, a.cfg.SourceURL, a.log)
}

var errNoEODHDKey = errors.New("EODHD API key is not set, use the EODHD_API_KEY environment variable or eodhd_api_key in the configuration")

// eodhd returns a client of the EODHD API.
func (a *app) eodhd() *eodhd.Client {
	baseURL := ""
	if a.cfg.Source == config.SourceEODHD {
		baseURL = a.cfg.SourceURL
	}
	return eodhd.New(a.client, baseURL, a.cfg.EODHDAPIKey, a.log)
}

// run opens the app, runs f and closes the app.
//
// Errors are reported on stderr and turned into a failure exit status.
func run(ctx context.Context, f func(*app) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	err = f(a)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// usageError reports a command line misuse.
func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}
