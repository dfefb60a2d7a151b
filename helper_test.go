package portfolio

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// D is a helper for tests to write decimals from const.
func D(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// testPortfolio bundles the services over an in-memory store.
type testPortfolio struct {
	ctx   context.Context
	store *memStore
	db    *Database
	l     *Ledger
	v     *Valuation
}

// newTestPortfolio declares EUR (reporting), CHF (commissions), USD and the EIMI fund priced in USD.
func newTestPortfolio(t *testing.T) *testPortfolio {
	t.Helper()
	p := &testPortfolio{ctx: context.Background(), store: newMemStore()}
	p.db = NewDatabase(p.store)
	p.l = NewLedger(p.db, zerolog.Nop())
	p.v = NewValuation(p.db, "EUR", "CHF", zerolog.Nop())

	for _, i := range []Instrument{
		NewCurrency("EUR", ""),
		NewCurrency("CHF", "CHFEUR=X"),
		NewCurrency("USD", "USDEUR=X"),
		NewSecurity("EIMI", "USD", "EIMI.L"),
	} {
		if err := p.db.AddInstrument(p.ctx, i); err != nil {
			t.Fatalf("AddInstrument(%v) unexpected error: %v", i.Ticker, err)
		}
	}
	return p
}

// price stores a price for ticker.
func (p *testPortfolio) price(t *testing.T, ticker string, on Date, v string) {
	t.Helper()
	if err := p.db.InsertPrices(p.ctx, []PricePoint{{Date: on, Ticker: ticker, Price: D(v)}}); err != nil {
		t.Fatalf("InsertPrices() unexpected error: %v", err)
	}
}

// euro prices the reporting currency at 1 every day of r.
func (p *testPortfolio) euro(t *testing.T, r Range) {
	t.Helper()
	for day := range r.Days() {
		p.price(t, "EUR", day, "1")
	}
}

// buy records a purchase of ticker.
func (p *testPortfolio) buy(t *testing.T, on Date, ticker, quantity, paidWith, paid, commission string) Transaction {
	t.Helper()
	tx, err := p.l.Buy(p.ctx, on, ticker, D(quantity), paidWith, D(paid), D(commission))
	if err != nil {
		t.Fatalf("Buy() unexpected error: %v", err)
	}
	return tx
}

// sell records a sale of ticker.
func (p *testPortfolio) sell(t *testing.T, on Date, ticker, quantity, receivedIn, received, commission string) Transaction {
	t.Helper()
	tx, err := p.l.Sell(p.ctx, on, ticker, D(quantity), receivedIn, D(received), D(commission))
	if err != nil {
		t.Fatalf("Sell() unexpected error: %v", err)
	}
	return tx
}

// values returns the values of s as strings, for readable diffs.
func values(s Series) []string {
	var res []string
	for _, v := range s.All() {
		res = append(res, v.String())
	}
	return res
}
