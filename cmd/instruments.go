package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/fega/portfolio"
	"github.com/fega/portfolio/renderer"
	"github.com/google/subcommands"
)

type addInstrumentCmd struct {
	kind     string
	currency string
	symbol   string
	name     string
}

func (*addInstrumentCmd) Name() string     { return "add-instrument" }
func (*addInstrumentCmd) Synopsis() string { return "declare a security or a currency" }
func (*addInstrumentCmd) Usage() string {
	return `pcs add-instrument [-kind security|currency] [-c <currency>] [-symbol <symbol>] [-name <name>] <ticker>

  Declares an instrument before it can be traded. A currency ticker is its ISO
  code and is priced in the reporting currency. A security is priced in its
  currency. The symbol is the identifier at the price source.

  Declaring an instrument again redefines it, unless transactions already use it.

Usage Examples:
$ pcs add-instrument -kind currency -symbol CHFEUR=X CHF
$ pcs add-instrument -c USD -symbol EIMI.L -name "iShares Core MSCI EM IMI" EIMI
`
}

func (c *addInstrumentCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "security", "Kind of instrument: security or currency.")
	f.StringVar(&c.currency, "c", "", "Currency a security is priced in.")
	f.StringVar(&c.symbol, "symbol", "", "Symbol of the instrument at the price source.")
	f.StringVar(&c.name, "name", "", "Display name.")
}

func (c *addInstrumentCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError("a single ticker is required")
	}
	kind, err := portfolio.ParseKind(c.kind)
	if err != nil {
		return usageError("%v", err)
	}
	ticker := f.Arg(0)

	var inst portfolio.Instrument
	if kind == portfolio.KindCurrency {
		inst = portfolio.NewCurrency(ticker, c.symbol)
	} else {
		inst = portfolio.NewSecurity(ticker, c.currency, c.symbol)
	}
	if c.name != "" {
		inst.Name = c.name
	}

	return run(ctx, func(a *app) error {
		if err := a.db.AddInstrument(ctx, inst); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Declared %s %s\n", inst.Kind, inst.Ticker)
		return nil
	})
}

type instrumentsCmd struct{}

func (*instrumentsCmd) Name() string             { return "instruments" }
func (*instrumentsCmd) Synopsis() string         { return "list the declared instruments" }
func (*instrumentsCmd) Usage() string            { return "pcs instruments\n" }
func (*instrumentsCmd) SetFlags(f *flag.FlagSet) {}
func (*instrumentsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		return usageError("no arguments expected")
	}
	return run(ctx, func(a *app) error {
		instruments, err := a.db.Instruments(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Instruments(instruments))
		return nil
	})
}

// searchCmd looks up symbols on EODHD.
type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search for securities on EODHD" }
func (*searchCmd) Usage() string {
	return `pcs search <search term>

  Searches for securities via EOD Historical Data API and prints
  ready-to-use 'pcs add-instrument' commands for the results.

  Requires the EODHD_API_KEY environment variable to be set.
`
}

func (*searchCmd) SetFlags(f *flag.FlagSet) {}

func (*searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usageError("a search term is required")
	}
	term := strings.Join(f.Args(), " ")

	return run(ctx, func(a *app) error {
		if a.cfg.EODHDAPIKey == "" {
			return errNoEODHDKey
		}
		results, err := a.eodhd().Search(ctx, term)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintf(stdout, "No results found for '%s'.\n", term)
			return nil
		}
		fmt.Fprintf(stdout, "Found %d results for '%s':\n\n", len(results), term)
		for _, item := range results {
			fmt.Fprintf(stdout, "  Name     : %s (%s)\n", item.Name, item.Code)
			fmt.Fprintf(stdout, "  Type     : %s, Country: %s, Currency: %s\n", item.Type, item.Country, item.Currency)
			fmt.Fprintf(stdout, "  ISIN     : %s\n", item.ISIN)
			fmt.Fprintf(stdout, "  $ pcs add-instrument -c %s -symbol %s %s\n\n", item.Currency, item.Symbol(), item.Code)
		}
		return nil
	})
}
