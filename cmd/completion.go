package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/fega/portfolio"
	"github.com/fega/portfolio/docs"
	"github.com/fega/portfolio/sqlstore"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
)

// takesTicker lists the commands whose arguments are tickers.
var takesTicker = map[string]bool{
	"buy": true, "sell": true, "dividend": true, "remove-dividend": true, "remove-tx": true,
	"tx": true, "update": true, "price": true, "summary": true, "series": true, "fetch-dividends": true,
}

// Completion describes the commands of c and their flags for shell completion.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{Flags: flagPredictors(fs), Args: predict.Nothing}
		switch {
		case takesTicker[cmd.Name()]:
			sub.Args = complete.PredictFunc(predictTickers)
		case cmd.Name() == "topic":
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(topics)
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

// flagPredictors returns a predictor for each flag of fs.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch f.Name {
		case "config":
			flags[f.Name] = predict.Files("*.yaml")
		case "db":
			flags[f.Name] = predict.Files("*.db")
		case "kind":
			flags[f.Name] = predict.Set{"security", "currency"}
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}

// predictTickers lists the tickers of the configured database, if it exists.
func predictTickers(prefix string) []string {
	cfg, err := loadConfig()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(cfg.DB); err != nil {
		return nil
	}
	ctx := context.Background()
	store, err := sqlstore.Open(ctx, cfg.DB, zerolog.Nop())
	if err != nil {
		return nil
	}
	defer store.Close()
	instruments, err := portfolio.NewDatabase(store).Instruments(ctx)
	if err != nil {
		return nil
	}
	tickers := make([]string, 0, len(instruments))
	for _, i := range instruments {
		tickers = append(tickers, i.Ticker)
	}
	return tickers
}
