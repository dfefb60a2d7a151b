package cmd

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/fega/portfolio"
	"github.com/fega/portfolio/renderer"
	"github.com/google/subcommands"
)

// tickersOrAll returns args, or every declared ticker when args is empty.
func tickersOrAll(ctx context.Context, a *app, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	instruments, err := a.db.Instruments(ctx)
	if err != nil {
		return nil, err
	}
	tickers := make([]string, 0, len(instruments))
	for _, i := range instruments {
		tickers = append(tickers, i.Ticker)
	}
	return tickers, nil
}

// history returns the transactions involving tickers and their dividends within r, by date.
func history(ctx context.Context, a *app, tickers []string, r portfolio.Range) ([]portfolio.Transaction, []portfolio.DividendPayment, error) {
	var txs []portfolio.Transaction
	var divs []portfolio.DividendPayment
	for _, ticker := range tickers {
		for _, dir := range []portfolio.Direction{portfolio.Bought, portfolio.Sold} {
			found, err := a.db.Transactions(ctx, ticker, dir, r)
			if err != nil {
				return nil, nil, err
			}
			txs = append(txs, found...)
		}
		found, err := a.db.Dividends(ctx, ticker, r)
		if err != nil {
			return nil, nil, err
		}
		divs = append(divs, found...)
	}
	slices.SortFunc(txs, func(x, y portfolio.Transaction) int {
		return cmp.Or(x.Date.Compare(y.Date), cmp.Compare(x.ID, y.ID))
	})
	// a transaction between two listed tickers is found twice
	txs = slices.CompactFunc(txs, func(x, y portfolio.Transaction) bool { return x.ID == y.ID })
	slices.SortStableFunc(divs, func(x, y portfolio.DividendPayment) int { return x.Date.Compare(y.Date) })
	return txs, divs, nil
}

// rangeTo returns the range ending on end, starting at the start of period or on start.
func rangeTo(end portfolio.Date, start, period string) (portfolio.Range, error) {
	if period != "" {
		p, err := portfolio.ParsePeriod(period)
		if err != nil {
			return portfolio.Range{}, err
		}
		return p.ToDate(end), nil
	}
	if start == "" {
		return portfolio.Until(end), nil
	}
	from, err := portfolio.ParseDate(start)
	if err != nil {
		return portfolio.Range{}, err
	}
	return portfolio.NewRange(from, end), nil
}

type updateCmd struct{}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch missing prices from the price source" }
func (*updateCmd) Usage() string {
	return `pcs update [<ticker>...]

  Fetches the prices missing up to the valuation date, of the given tickers or
  of every instrument. Instruments without a symbol are skipped. Failures of
  the price source are logged and do not stop the update.
`
}
func (*updateCmd) SetFlags(f *flag.FlagSet) {}

func (*updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := asOf()
	if err != nil {
		return usageError("%v", err)
	}
	return run(ctx, func(a *app) error {
		if f.NArg() == 0 {
			return a.updater.UpdateAll(ctx, on)
		}
		var errs []error
		for _, ticker := range f.Args() {
			n, err := a.updater.EnsureCoverage(ctx, ticker, on)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			fmt.Fprintf(stdout, "%s: %d prices stored\n", ticker, n)
		}
		return errors.Join(errs...)
	})
}

type priceCmd struct {
	start string
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "display the price of an instrument" }
func (*priceCmd) Usage() string {
	return `pcs price [-s <start_date>] <ticker>

  Displays the last known price of ticker on the valuation date, or the daily
  prices from the start date when -s is set. A currency is priced in the
  reporting currency, a security in its own currency.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "The start date of a daily price table.")
}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError("a single ticker is required")
	}
	ticker := f.Arg(0)
	on, err := asOf()
	if err != nil {
		return usageError("%v", err)
	}
	var start portfolio.Date
	if c.start != "" {
		if start, err = portfolio.ParseDate(c.start); err != nil {
			return usageError("%v", err)
		}
	}

	return run(ctx, func(a *app) error {
		inst, err := a.db.Instrument(ctx, ticker)
		if err != nil {
			return err
		}
		currency := inst.Currency
		if inst.IsCurrency() {
			currency = a.val.Reporting()
		}
		if start.IsZero() {
			price, err := a.val.Price(ctx, ticker, on)
			if errors.Is(err, portfolio.ErrNotFound) {
				fmt.Fprintf(stdout, "No price for %s on %s, try 'pcs update %s'.\n", ticker, on, ticker)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s on %s: %s\n", ticker, on, portfolio.M(price, currency))
			return nil
		}
		prices, err := a.val.PriceRange(ctx, ticker, portfolio.NewRange(start, on))
		if err != nil {
			return err
		}
		printMarkdown(renderer.Series(ticker, []renderer.Column{{Name: "Price", Currency: currency, Series: prices}}, false))
		return nil
	})
}

type summaryCmd struct {
	update bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the valuation of instruments" }
func (*summaryCmd) Usage() string {
	return `pcs summary [-update] [<ticker>...]

  Displays what is owned, spent, received and worth on the valuation date, of
  the given tickers or of every instrument ever traded.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.update, "update", false, "Fetch missing prices first.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := asOf()
	if err != nil {
		return usageError("%v", err)
	}
	return run(ctx, func(a *app) error {
		tickers, err := tickersOrAll(ctx, a, f.Args())
		if err != nil {
			return err
		}
		var b strings.Builder
		for _, ticker := range tickers {
			if c.update {
				if _, err := a.updater.EnsureCoverage(ctx, ticker, on); err != nil {
					return err
				}
			}
			s, err := a.val.Summary(ctx, ticker, on)
			if err != nil {
				return err
			}
			if f.NArg() == 0 && s.Bought.IsZero() && s.Sold.IsZero() {
				continue
			}
			b.WriteString(renderer.Summary(s))
			b.WriteString("\n")
		}
		if b.Len() == 0 {
			b.WriteString("Nothing traded yet.\n")
		}
		printMarkdown(b.String())
		return nil
	})
}

type seriesCmd struct {
	start  string
	period string
	all    bool
	update bool
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "display the daily valuation of an instrument" }
func (*seriesCmd) Usage() string {
	return `pcs series [-p <period> | -s <start_date>] [-all] [-update] <ticker>

  Displays a table of the daily quantity owned, price, value, spending,
  dividends and profit and loss of ticker up to the valuation date. Days
  without any change are skipped unless -all is set.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "-1m", "The start date of the table.")
	f.StringVar(&c.period, "p", "", "Predefined period to date (day, week, month, quarter, year). Overrides -s.")
	f.BoolVar(&c.all, "all", false, "Show every day.")
	f.BoolVar(&c.update, "update", false, "Fetch missing prices first.")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError("a single ticker is required")
	}
	ticker := f.Arg(0)
	on, err := asOf()
	if err != nil {
		return usageError("%v", err)
	}
	r, err := rangeTo(on, c.start, c.period)
	if err != nil {
		return usageError("%v", err)
	}

	return run(ctx, func(a *app) error {
		inst, err := a.db.Instrument(ctx, ticker)
		if err != nil {
			return err
		}
		if c.update {
			if _, err := a.updater.EnsureCoverage(ctx, ticker, on); err != nil {
				return err
			}
		}
		native := inst.Currency
		if inst.IsCurrency() {
			native = a.val.Reporting()
		}
		reporting := a.val.Reporting()

		columns := []struct {
			name, currency string
			f              func(context.Context, string, portfolio.Range) (portfolio.Series, error)
		}{
			{"Owned", "", a.val.OwnedRange},
			{"Price", native, a.val.PriceRange},
			{"Value", reporting, a.val.ValueRange},
			{"Spent", reporting, a.val.SpentRange},
			{"Dividends", native, a.val.DividendRange},
			{"P&L", reporting, a.val.ProfitLossRange},
		}
		var cols []renderer.Column
		for _, col := range columns {
			s, err := col.f(ctx, ticker, r)
			if err != nil {
				return err
			}
			if s.IsEmpty() {
				// no price yet
				continue
			}
			cols = append(cols, renderer.Column{Name: col.name, Currency: col.currency, Series: s})
		}
		printMarkdown(renderer.Series(ticker, cols, c.all))
		return nil
	})
}
