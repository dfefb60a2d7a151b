// Package yahoo fetches daily closes from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/fega/portfolio"
	"github.com/fega/portfolio/webutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public chart API endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Source is a portfolio.PriceSource over the chart API.
type Source struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

var _ portfolio.PriceSource = (*Source)(nil)

// New returns a Source querying baseURL, DefaultBaseURL if empty.
func New(client *http.Client, baseURL string, log zerolog.Logger) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{client: client, baseURL: baseURL, log: log.With().Str("component", "yahoo").Logger()}
}

// FetchDailyCloses returns the daily closes of symbol between from and to included.
func (s *Source) FetchDailyCloses(ctx context.Context, symbol string, from, to portfolio.Date) ([]portfolio.Quote, error) {
	// period2 is exclusive.
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		s.baseURL, url.PathEscape(symbol), from.Unix(), to.Add(1).Unix())

	var doc any
	if err := webutil.GetJSON(ctx, s.client, addr, &doc); err != nil {
		return nil, fmt.Errorf("cannot fetch chart of %q: %w", symbol, err)
	}
	quotes, err := parseChart(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid chart of %q: %w", symbol, err)
	}

	r := portfolio.NewRange(from, to)
	res := quotes[:0]
	for _, q := range quotes {
		if r.Contains(q.Date) {
			res = append(res, q)
		}
	}
	s.log.Debug().Str("symbol", symbol).Int("count", len(res)).Msg("chart fetched")
	return res, nil
}

// get returns the first answer of path in doc.
func get(path string, doc any) (any, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// parseChart extracts the dated closes of a chart response.
//
// Timestamps are the session open in UTC, they are shifted by the exchange
// gmtoffset to get the trading day. Days without a close are skipped.
func parseChart(doc any) ([]portfolio.Quote, error) {
	if e, err := get("$.chart.error.description", doc); err == nil {
		if msg, ok := e.(string); ok && msg != "" {
			return nil, fmt.Errorf("%w: %s", portfolio.ErrUnavailable, msg)
		}
	}

	var offset int64
	if v, err := get("$.chart.result[0].meta.gmtoffset", doc); err == nil {
		if f, ok := v.(float64); ok {
			offset = int64(f)
		}
	}

	// a range without trading day has no timestamp at all.
	v, err := get("$.chart.result[0].timestamp", doc)
	if err != nil {
		if _, rerr := get("$.chart.result[0].meta", doc); rerr == nil {
			return nil, nil
		}
		return nil, err
	}
	timestamps, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("timestamp is not a list: %T", v)
	}
	v, err = get("$.chart.result[0].indicators.quote[0].close", doc)
	if err != nil {
		return nil, err
	}
	closes, ok := v.([]any)
	if !ok || len(closes) != len(timestamps) {
		return nil, fmt.Errorf("close does not match timestamp")
	}

	quotes := make([]portfolio.Quote, 0, len(closes))
	for i, c := range closes {
		price, ok := c.(float64)
		if !ok {
			continue // null
		}
		ts, ok := timestamps[i].(float64)
		if !ok {
			return nil, fmt.Errorf("invalid timestamp %v", timestamps[i])
		}
		on := portfolio.DateOf(time.Unix(int64(ts)+offset, 0).UTC())
		// chart prices are float32 values
		q := portfolio.Quote{Date: on, Close: decimal.NewFromFloat32(float32(price))}
		if n := len(quotes); n > 0 && quotes[n-1].Date == on {
			quotes[n-1] = q // live quote repeats the last session
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
