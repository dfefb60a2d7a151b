package portfolio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Direction selects a side of a transaction.
type Direction int

const (
	Bought Direction = iota + 1 // the instrument was acquired
	Sold                        // the instrument was given away
)

func (d Direction) String() string {
	switch d {
	case Bought:
		return "bought"
	case Sold:
		return "sold"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// column returns the transaction column holding the instrument on that side.
func (d Direction) column() Column {
	if d == Sold {
		return ColSold
	}
	return ColBought
}

// Transaction exchanges QuantitySold of InstrumentSold plus a Commission,
// expressed in the commission currency, for QuantityBought of InstrumentBought.
//
// Selling X is a Transaction whose InstrumentSold is X.
type Transaction struct {
	ID               int64 // assigned on insert, orders same day transactions
	Date             Date
	InstrumentBought string
	QuantityBought   decimal.Decimal
	InstrumentSold   string
	QuantitySold     decimal.Decimal
	Commission       decimal.Decimal
}

// Validate checks the transaction is well formed.
func (t Transaction) Validate() error {
	var errs []error
	if t.Date.IsZero() {
		errs = append(errs, errors.New("date is required"))
	}
	if t.InstrumentBought == "" || t.InstrumentSold == "" {
		errs = append(errs, errors.New("both instruments are required"))
	}
	if t.InstrumentBought == t.InstrumentSold {
		errs = append(errs, fmt.Errorf("cannot exchange %q for itself", t.InstrumentBought))
	}
	if t.QuantityBought.IsNegative() {
		errs = append(errs, fmt.Errorf("quantity bought %v is negative", t.QuantityBought))
	}
	if t.QuantitySold.IsNegative() {
		errs = append(errs, fmt.Errorf("quantity sold %v is negative", t.QuantitySold))
	}
	if t.Commission.IsNegative() {
		errs = append(errs, fmt.Errorf("commission %v is negative", t.Commission))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w transaction: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Matches reports whether t and x hold the same fields. A zero ID matches any ID.
func (t Transaction) Matches(x Transaction) bool {
	if t.ID != 0 && x.ID != 0 && t.ID != x.ID {
		return false
	}
	return t.Date == x.Date &&
		t.InstrumentBought == x.InstrumentBought &&
		t.QuantityBought.Equal(x.QuantityBought) &&
		t.InstrumentSold == x.InstrumentSold &&
		t.QuantitySold.Equal(x.QuantitySold) &&
		t.Commission.Equal(x.Commission)
}

// DividendPayment is cash received in the instrument native currency for holding it.
type DividendPayment struct {
	Date   Date
	Ticker string
	Amount decimal.Decimal
}

// Validate checks the payment is well formed.
func (d DividendPayment) Validate() error {
	switch {
	case d.Date.IsZero():
		return fmt.Errorf("%w dividend: date is required", ErrInvalid)
	case d.Ticker == "":
		return fmt.Errorf("%w dividend: ticker is required", ErrInvalid)
	case d.Amount.IsNegative():
		return fmt.Errorf("%w dividend: amount %v is negative", ErrInvalid, d.Amount)
	}
	return nil
}

// PricePoint is the closing price of an instrument on a day.
type PricePoint struct {
	Date   Date
	Ticker string
	Price  decimal.Decimal
}
