// Package eodhd fetches prices, dividends and symbols from EOD Historical Data.
package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fega/portfolio"
	"github.com/fega/portfolio/webutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the EODHD API endpoint.
const DefaultBaseURL = "https://eodhd.com"

// Client queries the EODHD API with an API key.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     zerolog.Logger
}

var _ portfolio.PriceSource = (*Client)(nil)

// New returns a Client querying baseURL, DefaultBaseURL if empty.
func New(client *http.Client, baseURL, apiKey string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{client: client, baseURL: baseURL, apiKey: apiKey, log: log.With().Str("component", "eodhd").Logger()}
}

// addr returns the url of an API path with the key and json format set.
func (c *Client) addr(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_token", c.apiKey)
	query.Set("fmt", "json")
	return c.baseURL + path + "?" + query.Encode()
}

// IsForex reports whether symbol is a currency pair, like "CHFEUR.FOREX".
func IsForex(symbol string) bool { return strings.HasSuffix(symbol, ".FOREX") }

type eod struct {
	Date  portfolio.Date  `json:"date"`
	Open  decimal.Decimal `json:"open"`
	Close decimal.Decimal `json:"close"`
}

// fetchEOD returns the end of day records of symbol, bounds included.
func (c *Client) fetchEOD(ctx context.Context, symbol string, from, to portfolio.Date) ([]eod, error) {
	// https://eodhd.com/api/eod/NVD.F?api_token=demo&fmt=json&from=2024-01-01&to=2024-02-01
	addr := c.addr("/api/eod/"+url.PathEscape(symbol), url.Values{"from": {from.String()}, "to": {to.String()}})
	var content []eod
	if err := webutil.GetJSON(ctx, c.client, addr, &content); err != nil {
		return nil, fmt.Errorf("cannot fetch prices of %q: %w", symbol, err)
	}
	return content, nil
}

// FetchDailyCloses returns the daily closes of symbol between from and to included.
//
// Forex closes are unreliable on EODHD, they mostly equal the open. For currency
// pairs the open of the next day is used as the close of the day.
func (c *Client) FetchDailyCloses(ctx context.Context, symbol string, from, to portfolio.Date) ([]portfolio.Quote, error) {
	forex := IsForex(symbol)
	if forex {
		from, to = from.Add(1), to.Add(1)
	}
	records, err := c.fetchEOD(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	quotes := make([]portfolio.Quote, 0, len(records))
	for _, r := range records {
		q := portfolio.Quote{Date: r.Date, Close: r.Close}
		if forex {
			q = portfolio.Quote{Date: r.Date.Add(-1), Close: r.Open}
		}
		quotes = append(quotes, q)
	}
	c.log.Debug().Str("symbol", symbol).Bool("forex", forex).Int("count", len(quotes)).Msg("prices fetched")
	return quotes, nil
}

// Dividend is a per share distribution.
type Dividend struct {
	Date     portfolio.Date  `json:"date"` // ex-dividend date
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// Dividends returns the per share dividends of symbol with an ex-date between from and to.
func (c *Client) Dividends(ctx context.Context, symbol string, from, to portfolio.Date) ([]Dividend, error) {
	addr := c.addr("/api/div/"+url.PathEscape(symbol), url.Values{"from": {from.String()}, "to": {to.String()}})
	var content []Dividend
	if err := webutil.GetJSON(ctx, c.client, addr, &content); err != nil {
		return nil, fmt.Errorf("cannot fetch dividends of %q: %w", symbol, err)
	}
	return content, nil
}

// SearchResult is a single item of the search API response.
type SearchResult struct {
	Code     string `json:"Code"`
	Exchange string `json:"Exchange"`
	Name     string `json:"Name"`
	Type     string `json:"Type"`
	Country  string `json:"Country"`
	Currency string `json:"Currency"`
	ISIN     string `json:"ISIN"`
}

// Symbol returns the EODHD symbol of the result, like "EIMI.LSE".
func (r SearchResult) Symbol() string { return r.Code + "." + r.Exchange }

// Search searches for securities by name, ticker or ISIN.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	var results []SearchResult
	if err := webutil.GetJSON(ctx, c.client, c.addr("/api/search/"+url.PathEscape(term), nil), &results); err != nil {
		return nil, fmt.Errorf("cannot search %q: %w", term, err)
	}
	return results, nil
}
