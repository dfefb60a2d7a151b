package portfolio

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddInstrument(t *testing.T) {
	p := newTestPortfolio(t)

	// same definition twice is a no-op
	if err := p.db.AddInstrument(p.ctx, NewSecurity("EIMI", "USD", "EIMI.L")); err != nil {
		t.Errorf("AddInstrument(same) unexpected error: %v", err)
	}
	// unused instruments can be redefined
	if err := p.db.AddInstrument(p.ctx, NewSecurity("EIMI", "GBP", "EIMI.L")); err != nil {
		t.Errorf("AddInstrument(redefine) unexpected error: %v", err)
	}
	got, err := p.db.Instrument(p.ctx, "EIMI")
	if err != nil {
		t.Fatal(err)
	}
	if got.Currency != "GBP" {
		t.Errorf("Instrument().Currency = %q, want GBP", got.Currency)
	}

	p.buy(t, jan5, "EIMI", "1", "EUR", "50", "0")
	if err := p.db.AddInstrument(p.ctx, NewSecurity("EIMI", "USD", "EIMI.L")); !errors.Is(err, ErrImmutable) {
		t.Errorf("AddInstrument(used) error = %v, want ErrImmutable", err)
	}
	if err := p.db.AddInstrument(p.ctx, NewSecurity("EUR", "USD", "X")); !errors.Is(err, ErrImmutable) {
		t.Errorf("AddInstrument(used as payment) error = %v, want ErrImmutable", err)
	}
}

func TestAddInstrumentValidates(t *testing.T) {
	p := newTestPortfolio(t)
	for name, i := range map[string]Instrument{
		"no ticker":        {Kind: KindSecurity, Currency: "USD", Symbol: "X"},
		"unknown currency": NewSecurity("X", "ZZZ", "X"),
		"no symbol":        NewSecurity("X", "USD", ""),
		"currency ticker":  {Ticker: "DOLLAR", Kind: KindCurrency, Currency: "USD"},
	} {
		if err := p.db.AddInstrument(p.ctx, i); !errors.Is(err, ErrInvalid) {
			t.Errorf("AddInstrument(%s) error = %v, want ErrInvalid", name, err)
		}
	}
}

func TestInstruments(t *testing.T) {
	p := newTestPortfolio(t)
	got, err := p.db.Instruments(p.ctx)
	if err != nil {
		t.Fatalf("Instruments() unexpected error: %v", err)
	}
	var tickers []string
	for _, i := range got {
		tickers = append(tickers, i.Ticker)
	}
	if diff := cmp.Diff([]string{"CHF", "EIMI", "EUR", "USD"}, tickers); diff != "" {
		t.Errorf("Instruments() mismatch (-want +got):\n%s", diff)
	}
	if _, err := p.db.Instrument(p.ctx, "VT"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Instrument(VT) error = %v, want ErrNotFound", err)
	}
}

func TestPrices(t *testing.T) {
	p := newTestPortfolio(t)
	if _, found, err := p.db.LatestPriceDate(p.ctx, "CHF"); err != nil || found {
		t.Errorf("LatestPriceDate() = %v, %v, want not found", found, err)
	}
	p.price(t, "CHF", jan6, "0.93")
	p.price(t, "CHF", jan3, "0.92")
	p.price(t, "CHF", jan6, "0.94") // replaces

	prices, err := p.db.Prices(p.ctx, "CHF", Until(jan10))
	if err != nil {
		t.Fatalf("Prices() unexpected error: %v", err)
	}
	if len(prices) != 2 || prices[0].Date != jan3 || !prices[1].Price.Equal(D("0.94")) {
		t.Errorf("Prices() = %v", prices)
	}
	latest, found, err := p.db.LatestPriceDate(p.ctx, "CHF")
	if err != nil || !found || latest != jan6 {
		t.Errorf("LatestPriceDate() = %v, %v, %v, want %v", latest, found, err, jan6)
	}
	if _, err := p.db.PriceAsOf(p.ctx, "CHF", NewDate(2020, 1, 2)); !errors.Is(err, ErrNotFound) {
		t.Errorf("PriceAsOf() error = %v, want ErrNotFound", err)
	}
}
