package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// This file contains functions to update the database with latest prices.

// Updater keeps the price history of instruments contiguous up to a date.
type Updater struct {
	db        *Database
	source    PriceSource
	reporting string
	log       zerolog.Logger
}

// NewUpdater returns an Updater fetching from source. The reporting currency
// is never fetched, it is priced 1 every day.
func NewUpdater(db *Database, source PriceSource, reporting string, log zerolog.Logger) *Updater {
	return &Updater{
		db:        db,
		source:    source,
		reporting: reporting,
		log:       log.With().Str("component", "updater").Logger(),
	}
}

// EnsureCoverage fetches the prices of ticker missing up to asOf and returns how many were stored.
//
// Without any price, everything since Epoch is fetched. Otherwise only the days
// after the latest known price are. A failure to reach the price source is logged
// and leaves the prices untouched, only storage errors are returned.
func (u *Updater) EnsureCoverage(ctx context.Context, ticker string, asOf Date) (int, error) {
	latest, found, err := u.db.LatestPriceDate(ctx, ticker)
	if err != nil {
		return 0, err
	}
	log := u.log.With().Str("ticker", ticker).Str("as_of", asOf.String()).Logger()

	if ticker == u.reporting {
		from := Epoch
		if found {
			from = latest.Add(1)
		}
		return u.insert(ctx, log, ticker, constantQuotes(NewRange(from, asOf), decimal.NewFromInt(1)), from, asOf)
	}

	from := Epoch
	if found {
		from = latest.NextBusinessDay()
	}
	if from.After(asOf) {
		log.Debug().Str("latest", latest.String()).Msg("prices are up to date")
		return 0, nil
	}

	inst, err := u.db.Instrument(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Msg("cannot update prices of an unknown instrument")
		return 0, nil
	}
	if inst.Symbol == "" {
		log.Warn().Msg("instrument has no source symbol")
		return 0, nil
	}

	if found {
		log.Info().Str("from", from.String()).Msg("incremental scrape")
	} else {
		log.Info().Msg("full scrape")
	}
	quotes, err := u.source.FetchDailyCloses(ctx, inst.Symbol, from, asOf)
	if err != nil {
		log.Error().Err(err).Str("symbol", inst.Symbol).Msg("failed to fetch prices, keeping stale data")
		return 0, nil
	}
	return u.insert(ctx, log, ticker, quotes, from, asOf)
}

// insert stores the quotes within [from, to] in a single batch.
func (u *Updater) insert(ctx context.Context, log zerolog.Logger, ticker string, quotes []Quote, from, to Date) (int, error) {
	if from.After(to) {
		return 0, nil
	}
	r := NewRange(from, to)
	prices := make([]PricePoint, 0, len(quotes))
	for _, q := range quotes {
		if !r.Contains(q.Date) {
			continue
		}
		prices = append(prices, PricePoint{Date: q.Date, Ticker: ticker, Price: q.Close})
	}
	if len(prices) == 0 {
		log.Info().Msg("no new prices")
		return 0, nil
	}
	if err := u.db.InsertPrices(ctx, prices); err != nil {
		return 0, err
	}
	log.Info().Int("count", len(prices)).Str("from", prices[0].Date.String()).Str("to", prices[len(prices)-1].Date.String()).Msg("prices stored")
	return len(prices), nil
}

// constantQuotes returns one quote of value for every calendar day of r.
func constantQuotes(r Range, value decimal.Decimal) []Quote {
	quotes := make([]Quote, 0, r.Len())
	for day := range r.Days() {
		quotes = append(quotes, Quote{Date: day, Close: value})
	}
	return quotes
}

// UpdateAll ensures the coverage of the reporting currency and of every declared instrument.
// It returns a joined error of every storage failure.
func (u *Updater) UpdateAll(ctx context.Context, asOf Date) error {
	instruments, err := u.db.Instruments(ctx)
	if err != nil {
		return err
	}
	tickers := []string{u.reporting}
	for _, i := range instruments {
		if i.Ticker != u.reporting {
			tickers = append(tickers, i.Ticker)
		}
	}

	var errs error
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, err)
		}
		if _, err := u.EnsureCoverage(ctx, t, asOf); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to update %q: %w", t, err))
		}
	}
	return errs
}
