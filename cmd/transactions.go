package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/fega/portfolio"
	"github.com/fega/portfolio/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// parseDecimals parses the named decimal arguments.
func parseDecimals(args map[string]string) (map[string]decimal.Decimal, error) {
	res := make(map[string]decimal.Decimal, len(args))
	for name, s := range args {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", name, s, err)
		}
		res[name] = v
	}
	return res, nil
}

// tradeCmd holds the flags shared by buy and sell.
type tradeCmd struct {
	date       string
	commission string
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Transaction date, the valuation date by default.")
	f.StringVar(&c.commission, "commission", "0", "Commission paid, in the commission currency.")
}

// parse reads "<ticker> <quantity> <currency> <amount>" arguments.
func (c *tradeCmd) parse(f *flag.FlagSet) (on portfolio.Date, ticker string, quantity decimal.Decimal, other string, amount, commission decimal.Decimal, err error) {
	if f.NArg() != 4 {
		err = fmt.Errorf("expected <ticker> <quantity> <instrument> <amount>, got %d arguments", f.NArg())
		return
	}
	if on, err = dateOr(c.date); err != nil {
		return
	}
	values, err := parseDecimals(map[string]string{"quantity": f.Arg(1), "amount": f.Arg(3), "commission": c.commission})
	if err != nil {
		return
	}
	return on, f.Arg(0), values["quantity"], f.Arg(2), values["amount"], values["commission"], nil
}

type buyCmd struct{ tradeCmd }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase" }
func (*buyCmd) Usage() string {
	return `pcs buy [-d <date>] [-commission <amount>] <ticker> <quantity> <paid with> <amount paid>

  Records the purchase of quantity units of ticker, paid with an amount of
  another instrument, usually a currency.

Usage Examples:
$ pcs buy -d 2020-01-06 -commission 2 EIMI 10 EUR 500
`
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, ticker, quantity, paidWith, paid, commission, err := c.parse(f)
	if err != nil {
		return usageError("%v", err)
	}
	return run(ctx, func(a *app) error {
		tx, err := a.ledger.Buy(ctx, on, ticker, quantity, paidWith, paid, commission)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Transactions([]portfolio.Transaction{tx}, a.cfg.CommissionCurrency))
		return nil
	})
}

type sellCmd struct{ tradeCmd }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale" }
func (*sellCmd) Usage() string {
	return `pcs sell [-d <date>] [-commission <amount>] <ticker> <quantity> <received in> <amount received>

  Records the sale of quantity units of ticker, in exchange for an amount of
  another instrument, usually a currency.

Usage Examples:
$ pcs sell -d 2021-03-01 EIMI 3 EUR 160
`
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, ticker, quantity, receivedIn, received, commission, err := c.parse(f)
	if err != nil {
		return usageError("%v", err)
	}
	return run(ctx, func(a *app) error {
		tx, err := a.ledger.Sell(ctx, on, ticker, quantity, receivedIn, received, commission)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Transactions([]portfolio.Transaction{tx}, a.cfg.CommissionCurrency))
		return nil
	})
}

type removeTxCmd struct {
	tradeCmd
	id int64
}

func (*removeTxCmd) Name() string     { return "remove-tx" }
func (*removeTxCmd) Synopsis() string { return "remove a transaction" }
func (*removeTxCmd) Usage() string {
	return `pcs remove-tx [-id <id>] [-d <date>] [-commission <amount>] <bought> <quantity> <sold> <quantity>

  Removes one transaction matching every field exactly. When -id is not set,
  any transaction with those fields matches. See 'pcs tx' for the IDs.

Usage Examples:
$ pcs remove-tx -id 7 -d 2020-01-06 -commission 2 EIMI 10 EUR 500
`
}

func (c *removeTxCmd) SetFlags(f *flag.FlagSet) {
	c.tradeCmd.SetFlags(f)
	f.Int64Var(&c.id, "id", 0, "ID of the transaction.")
}

func (c *removeTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, bought, qtyBought, sold, qtySold, commission, err := c.parse(f)
	if err != nil {
		return usageError("%v", err)
	}
	tx := portfolio.Transaction{
		ID:               c.id,
		Date:             on,
		InstrumentBought: bought,
		QuantityBought:   qtyBought,
		InstrumentSold:   sold,
		QuantitySold:     qtySold,
		Commission:       commission,
	}
	return run(ctx, func(a *app) error {
		if err := a.ledger.RemoveTransaction(ctx, tx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Transaction removed.")
		return nil
	})
}

// dividendFlags holds the flags shared by dividend and remove-dividend.
type dividendFlags struct {
	date string
}

func (c *dividendFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Payment date, the valuation date by default.")
}

// parse reads "<ticker> <amount>" arguments.
func (c *dividendFlags) parse(f *flag.FlagSet) (portfolio.Date, string, decimal.Decimal, error) {
	if f.NArg() != 2 {
		return portfolio.Date{}, "", decimal.Zero, fmt.Errorf("expected <ticker> <amount>, got %d arguments", f.NArg())
	}
	on, err := dateOr(c.date)
	if err != nil {
		return portfolio.Date{}, "", decimal.Zero, err
	}
	amount, err := decimal.NewFromString(f.Arg(1))
	if err != nil {
		return portfolio.Date{}, "", decimal.Zero, fmt.Errorf("invalid amount %q: %w", f.Arg(1), err)
	}
	return on, f.Arg(0), amount, nil
}

type dividendCmd struct{ dividendFlags }

func (*dividendCmd) Name() string     { return "dividend" }
func (*dividendCmd) Synopsis() string { return "record a dividend payment" }
func (*dividendCmd) Usage() string {
	return `pcs dividend [-d <date>] <ticker> <amount>

  Records a dividend paid by ticker, in the currency of ticker.
`
}

func (c *dividendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, ticker, amount, err := c.parse(f)
	if err != nil {
		return usageError("%v", err)
	}
	return run(ctx, func(a *app) error {
		d, err := a.ledger.AddDividend(ctx, on, ticker, amount)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Dividends([]portfolio.DividendPayment{d}))
		return nil
	})
}

type removeDividendCmd struct{ dividendFlags }

func (*removeDividendCmd) Name() string     { return "remove-dividend" }
func (*removeDividendCmd) Synopsis() string { return "remove a dividend payment" }
func (*removeDividendCmd) Usage() string {
	return `pcs remove-dividend [-d <date>] <ticker> <amount>

  Removes one dividend payment matching the date, ticker and amount exactly.
`
}

func (c *removeDividendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, ticker, amount, err := c.parse(f)
	if err != nil {
		return usageError("%v", err)
	}
	return run(ctx, func(a *app) error {
		if err := a.ledger.RemoveDividend(ctx, on, ticker, amount); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Dividend removed.")
		return nil
	})
}

type txCmd struct {
	start  string
	period string
	head   int
	tail   int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions and dividends" }
func (*txCmd) Usage() string {
	return `pcs tx [-p <period> | -s <start_date>] [-head <n>] [-tail <n>] [<ticker>...]

  Lists the transactions and dividends up to the valuation date, of the given
  tickers or of every instrument.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "The start date of the listing, all history by default.")
	f.StringVar(&c.period, "p", "", "Predefined period to date (day, week, month, quarter, year). Overrides -s.")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		return usageError("-head and -tail flags cannot be used together")
	}
	end, err := asOf()
	if err != nil {
		return usageError("%v", err)
	}
	r, err := rangeTo(end, c.start, c.period)
	if err != nil {
		return usageError("%v", err)
	}

	return run(ctx, func(a *app) error {
		tickers, err := tickersOrAll(ctx, a, f.Args())
		if err != nil {
			return err
		}
		txs, divs, err := history(ctx, a, tickers, r)
		if err != nil {
			return err
		}
		if c.head > 0 && len(txs) > c.head {
			txs = txs[:c.head]
		}
		if c.tail > 0 && len(txs) > c.tail {
			txs = txs[len(txs)-c.tail:]
		}
		printMarkdown(renderer.Transactions(txs, a.cfg.CommissionCurrency) + "\n" + renderer.Dividends(divs))
		return nil
	})
}

type fetchDividendsCmd struct {
	start  string
	symbol string
}

func (*fetchDividendsCmd) Name() string     { return "fetch-dividends" }
func (*fetchDividendsCmd) Synopsis() string { return "import dividends from EODHD" }
func (*fetchDividendsCmd) Usage() string {
	return `pcs fetch-dividends [-s <start_date>] [-symbol <eodhd symbol>] <ticker>

  Fetches the dividends per share of ticker from EOD Historical Data and
  records the payments for the units held the day before each ex-date.
  Dividends already recorded on the same date are skipped.

  Requires the EODHD_API_KEY environment variable to be set.
`
}

func (c *fetchDividendsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Fetch ex-dates from this date, all history by default.")
	f.StringVar(&c.symbol, "symbol", "", "EODHD symbol, the instrument symbol by default.")
}

func (c *fetchDividendsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError("a single ticker is required")
	}
	ticker := f.Arg(0)
	end, err := asOf()
	if err != nil {
		return usageError("%v", err)
	}
	start := portfolio.Epoch
	if c.start != "" {
		if start, err = portfolio.ParseDate(c.start); err != nil {
			return usageError("%v", err)
		}
	}

	return run(ctx, func(a *app) error {
		if a.cfg.EODHDAPIKey == "" {
			return errNoEODHDKey
		}
		symbol := c.symbol
		if symbol == "" {
			inst, err := a.db.Instrument(ctx, ticker)
			if err != nil {
				return err
			}
			symbol = inst.Symbol
		}
		divs, err := a.eodhd().Dividends(ctx, symbol, start, end)
		if err != nil {
			return err
		}
		perShare := make([]portfolio.PerShareDividend, 0, len(divs))
		for _, d := range divs {
			perShare = append(perShare, portfolio.PerShareDividend{ExDate: d.Date, Amount: d.Value})
		}
		payments, err := a.ledger.ImportDividends(ctx, a.val, ticker, perShare)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Dividends(payments))
		return nil
	})
}
