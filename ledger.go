package portfolio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Ledger records the user actions on the portfolio: trades and dividends.
//
// Entries are appended, never edited. A wrong entry is removed by an exact match and recorded again.
type Ledger struct {
	db  *Database
	log zerolog.Logger
}

// NewLedger returns a Ledger writing into db.
func NewLedger(db *Database, log zerolog.Logger) *Ledger {
	return &Ledger{db: db, log: log.With().Str("component", "ledger").Logger()}
}

// Buy records the purchase of quantity units of ticker paid with 'paid' units of 'paidWith'.
func (l *Ledger) Buy(ctx context.Context, on Date, ticker string, quantity decimal.Decimal, paidWith string, paid, commission decimal.Decimal) (Transaction, error) {
	return l.Record(ctx, Transaction{
		Date:             on,
		InstrumentBought: ticker,
		QuantityBought:   quantity,
		InstrumentSold:   paidWith,
		QuantitySold:     paid,
		Commission:       commission,
	})
}

// Sell records the sale of quantity units of ticker for 'received' units of 'receivedIn'.
func (l *Ledger) Sell(ctx context.Context, on Date, ticker string, quantity decimal.Decimal, receivedIn string, received, commission decimal.Decimal) (Transaction, error) {
	return l.Record(ctx, Transaction{
		Date:             on,
		InstrumentBought: receivedIn,
		QuantityBought:   received,
		InstrumentSold:   ticker,
		QuantitySold:     quantity,
		Commission:       commission,
	})
}

// Record validates and appends a transaction. Both instruments must be declared.
func (l *Ledger) Record(ctx context.Context, t Transaction) (Transaction, error) {
	if err := t.Validate(); err != nil {
		return t, err
	}
	if t.Date.Before(Epoch) {
		return t, fmt.Errorf("%w transaction: date %s is before %s", ErrInvalid, t.Date, Epoch)
	}
	for _, ticker := range []string{t.InstrumentBought, t.InstrumentSold} {
		if _, err := l.db.Instrument(ctx, ticker); err != nil {
			return t, fmt.Errorf("cannot record transaction: %w", err)
		}
	}
	t, err := l.db.InsertTransaction(ctx, t)
	if err != nil {
		return t, err
	}
	l.log.Info().
		Int64("id", t.ID).
		Str("date", t.Date.String()).
		Str("bought", t.InstrumentBought).
		Str("quantity_bought", t.QuantityBought.String()).
		Str("sold", t.InstrumentSold).
		Str("quantity_sold", t.QuantitySold.String()).
		Msg("transaction recorded")
	return t, nil
}

// RemoveTransaction removes one transaction with exactly the fields of t.
func (l *Ledger) RemoveTransaction(ctx context.Context, t Transaction) error {
	if err := l.db.RemoveTransaction(ctx, t); err != nil {
		return err
	}
	l.log.Info().Int64("id", t.ID).Str("date", t.Date.String()).Msg("transaction removed")
	return nil
}

// AddDividend records a dividend payment for a declared instrument.
func (l *Ledger) AddDividend(ctx context.Context, on Date, ticker string, amount decimal.Decimal) (DividendPayment, error) {
	d := DividendPayment{Date: on, Ticker: ticker, Amount: amount}
	if err := d.Validate(); err != nil {
		return d, err
	}
	if _, err := l.db.Instrument(ctx, ticker); err != nil {
		return d, fmt.Errorf("cannot record dividend: %w", err)
	}
	if err := l.db.InsertDividend(ctx, d); err != nil {
		return d, err
	}
	l.log.Info().Str("ticker", ticker).Str("date", on.String()).Str("amount", amount.String()).Msg("dividend recorded")
	return d, nil
}

// RemoveDividend removes one dividend payment of amount for ticker on that date.
func (l *Ledger) RemoveDividend(ctx context.Context, on Date, ticker string, amount decimal.Decimal) error {
	d := DividendPayment{Date: on, Ticker: ticker, Amount: amount}
	if err := l.db.RemoveDividend(ctx, d); err != nil {
		return err
	}
	l.log.Info().Str("ticker", ticker).Str("date", on.String()).Str("amount", amount.String()).Msg("dividend removed")
	return nil
}
