package portfolio

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Valuation derives holdings, cost and value series from the ledger and the price history.
//
// Every range function returns one value per calendar day of the requested range.
// Quantities and amounts dated before the range are carried as the opening balance,
// so that the value on a day never depends on where the range starts.
// Amounts are in the reporting currency, except quantities and dividends.
type Valuation struct {
	db         *Database
	reporting  string
	commission string
	log        zerolog.Logger
}

// NewValuation returns a Valuation in the reporting currency, with commissions expressed in the commission currency.
func NewValuation(db *Database, reporting, commission string, log zerolog.Logger) *Valuation {
	return &Valuation{
		db:         db,
		reporting:  reporting,
		commission: commission,
		log:        log.With().Str("component", "valuation").Logger(),
	}
}

// Reporting returns the currency of valuation amounts.
func (v *Valuation) Reporting() string { return v.reporting }

// history loads the prices of ticker up to 'to'.
func (v *Valuation) history(ctx context.Context, ticker string, to Date) (*History, error) {
	prices, err := v.db.Prices(ctx, ticker, Until(to))
	if err != nil {
		return nil, err
	}
	h := new(History)
	for _, p := range prices {
		h.Append(p.Date, p.Price)
	}
	return h, nil
}

// conversion values one unit of an instrument in reporting currency.
type conversion struct {
	price *History
	fx    *History // nil when price is already in reporting currency
}

// at returns the as-of rate on a day, false when a price or an exchange rate is missing.
func (c conversion) at(on Date) (decimal.Decimal, bool) {
	if c.price == nil {
		return decimal.Zero, false
	}
	p, ok := c.price.ValueAsOf(on)
	if !ok {
		return decimal.Zero, false
	}
	if c.fx == nil {
		return p, true
	}
	fx, ok := c.fx.ValueAsOf(on)
	if !ok {
		return decimal.Zero, false
	}
	return p.Mul(fx), true
}

// conversionOf returns the conversion of ticker into reporting currency using prices up to 'to'.
//
// Currencies are priced in reporting currency. Securities are priced in their
// native currency, then converted with that currency price.
func (v *Valuation) conversionOf(ctx context.Context, ticker string, to Date) (conversion, error) {
	price, err := v.history(ctx, ticker, to)
	if err != nil {
		return conversion{}, err
	}
	c := conversion{price: price}
	inst, err := v.db.Instrument(ctx, ticker)
	if errors.Is(err, ErrNotFound) {
		if ticker != v.reporting {
			v.log.Warn().Str("ticker", ticker).Msg("undeclared instrument valued as a currency")
		}
		return c, nil
	}
	if err != nil {
		return conversion{}, err
	}
	if inst.IsCurrency() || inst.Currency == v.reporting {
		return c, nil
	}
	c.fx, err = v.history(ctx, inst.Currency, to)
	return c, err
}

// quantities returns the cumulative quantity of ticker exchanged on side dir.
func (v *Valuation) quantities(ctx context.Context, ticker string, dir Direction, r Range) (Series, error) {
	txs, err := v.db.Transactions(ctx, ticker, dir, Until(r.To))
	if err != nil {
		return Series{}, err
	}
	events := make([]dated, 0, len(txs))
	for _, t := range txs {
		q := t.QuantityBought
		if dir == Sold {
			q = t.QuantitySold
		}
		events = append(events, dated{t.Date, q})
	}
	if len(events) == 0 {
		v.log.Debug().Str("ticker", ticker).Stringer("direction", dir).Stringer("range", r).Msg("no transaction")
	}
	return cumulative(r, events), nil
}

// BoughtRange returns the cumulative quantity of ticker acquired.
func (v *Valuation) BoughtRange(ctx context.Context, ticker string, r Range) (Series, error) {
	return v.quantities(ctx, ticker, Bought, r)
}

// SoldRange returns the cumulative quantity of ticker given away.
func (v *Valuation) SoldRange(ctx context.Context, ticker string, r Range) (Series, error) {
	return v.quantities(ctx, ticker, Sold, r)
}

// OwnedRange returns the quantity of ticker held each day.
func (v *Valuation) OwnedRange(ctx context.Context, ticker string, r Range) (Series, error) {
	bought, err := v.BoughtRange(ctx, ticker, r)
	if err != nil {
		return Series{}, err
	}
	sold, err := v.SoldRange(ctx, ticker, r)
	if err != nil {
		return Series{}, err
	}
	return bought.Sub(sold), nil
}

// PricePaidRange returns the cumulative cost of the purchases of ticker.
//
// A purchase costs the quantity sold times the as-of price of the instrument sold
// on the trade date, converted into reporting currency. A purchase paid with an
// instrument without any price on or before the trade date is counted as free.
func (v *Valuation) PricePaidRange(ctx context.Context, ticker string, r Range) (Series, error) {
	txs, err := v.db.Transactions(ctx, ticker, Bought, Until(r.To))
	if err != nil {
		return Series{}, err
	}
	convs := make(map[string]conversion)
	events := make([]dated, 0, len(txs))
	for _, t := range txs {
		conv, ok := convs[t.InstrumentSold]
		if !ok {
			if conv, err = v.conversionOf(ctx, t.InstrumentSold, r.To); err != nil {
				return Series{}, err
			}
			convs[t.InstrumentSold] = conv
		}
		rate, ok := conv.at(t.Date)
		if !ok {
			v.log.Warn().Str("ticker", ticker).Str("paid_with", t.InstrumentSold).Str("date", t.Date.String()).Msg("no price as of trade date, purchase counted as free")
		}
		events = append(events, dated{t.Date, t.QuantitySold.Mul(rate)})
	}
	return cumulative(r, events), nil
}

// CommissionsRange returns the cumulative commissions paid to buy ticker.
func (v *Valuation) CommissionsRange(ctx context.Context, ticker string, r Range) (Series, error) {
	txs, err := v.db.Transactions(ctx, ticker, Bought, Until(r.To))
	if err != nil {
		return Series{}, err
	}
	var conv conversion
	events := make([]dated, 0, len(txs))
	for _, t := range txs {
		if t.Commission.IsZero() {
			continue
		}
		if conv.price == nil {
			if conv, err = v.conversionOf(ctx, v.commission, r.To); err != nil {
				return Series{}, err
			}
		}
		rate, ok := conv.at(t.Date)
		if !ok {
			v.log.Warn().Str("ticker", ticker).Str("currency", v.commission).Str("date", t.Date.String()).Msg("no exchange rate as of trade date, commission ignored")
		}
		events = append(events, dated{t.Date, t.Commission.Mul(rate)})
	}
	return cumulative(r, events), nil
}

// SpentRange returns the cumulative price paid plus commissions for ticker.
func (v *Valuation) SpentRange(ctx context.Context, ticker string, r Range) (Series, error) {
	paid, err := v.PricePaidRange(ctx, ticker, r)
	if err != nil {
		return Series{}, err
	}
	commissions, err := v.CommissionsRange(ctx, ticker, r)
	if err != nil {
		return Series{}, err
	}
	return paid.Add(commissions), nil
}

// DividendRange returns the cumulative dividends received for ticker, in its native currency.
func (v *Valuation) DividendRange(ctx context.Context, ticker string, r Range) (Series, error) {
	divs, err := v.db.Dividends(ctx, ticker, Until(r.To))
	if err != nil {
		return Series{}, err
	}
	events := make([]dated, 0, len(divs))
	for _, d := range divs {
		events = append(events, dated{d.Date, d.Amount})
	}
	return cumulative(r, events), nil
}

// PriceRange returns the as-of price of ticker each day, in its own quotation.
// Days before the first known price are zero. Without any price up to r.To, the
// result is empty.
func (v *Valuation) PriceRange(ctx context.Context, ticker string, r Range) (Series, error) {
	h, err := v.history(ctx, ticker, r.To)
	if err != nil {
		return Series{}, err
	}
	if h.Len() == 0 {
		v.log.Info().Str("ticker", ticker).Stringer("range", r).Msg("no price data")
		return Series{}, nil
	}
	s := newSeries(r)
	i := 0
	for day := range r.Days() {
		s.values[i], _ = h.ValueAsOf(day)
		i++
	}
	return s, nil
}

// ValueRange returns the market value of the ticker holdings each day.
func (v *Valuation) ValueRange(ctx context.Context, ticker string, r Range) (Series, error) {
	owned, err := v.OwnedRange(ctx, ticker, r)
	if err != nil {
		return Series{}, err
	}
	conv, err := v.conversionOf(ctx, ticker, r.To)
	if err != nil {
		return Series{}, err
	}
	s := newSeries(r)
	var missing Date
	i := 0
	for day, q := range owned.All() {
		if !q.IsZero() {
			rate, ok := conv.at(day)
			if !ok && missing.IsZero() {
				missing = day
			}
			s.values[i] = q.Mul(rate)
		}
		i++
	}
	if !missing.IsZero() {
		v.log.Warn().Str("ticker", ticker).Str("date", missing.String()).Msg("no price or exchange rate as of date, holding valued at 0")
	}
	return s, nil
}

// ProfitLossRange returns value minus spent each day. Dividends are not included.
func (v *Valuation) ProfitLossRange(ctx context.Context, ticker string, r Range) (Series, error) {
	value, err := v.ValueRange(ctx, ticker, r)
	if err != nil {
		return Series{}, err
	}
	spent, err := v.SpentRange(ctx, ticker, r)
	if err != nil {
		return Series{}, err
	}
	return value.Sub(spent), nil
}

// at evaluates a range function on a single day.
func at(ctx context.Context, f func(context.Context, string, Range) (Series, error), ticker string, on Date) (decimal.Decimal, error) {
	s, err := f(ctx, ticker, NewRange(on, on))
	if err != nil {
		return decimal.Zero, err
	}
	_, x := s.Last()
	return x, nil
}

// Owned returns the quantity of ticker held on a day.
func (v *Valuation) Owned(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	return at(ctx, v.OwnedRange, ticker, on)
}

// BoughtQuantity returns the total quantity of ticker acquired up to a day.
func (v *Valuation) BoughtQuantity(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	return at(ctx, v.BoughtRange, ticker, on)
}

// SoldQuantity returns the total quantity of ticker given away up to a day.
func (v *Valuation) SoldQuantity(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	return at(ctx, v.SoldRange, ticker, on)
}

// PricePaid returns the cost of the purchases of ticker up to a day.
func (v *Valuation) PricePaid(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	return at(ctx, v.PricePaidRange, ticker, on)
}

// Commissions returns the commissions paid to buy ticker up to a day.
func (v *Valuation) Commissions(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	return at(ctx, v.CommissionsRange, ticker, on)
}

// Spent returns price paid plus commissions up to a day.
func (v *Valuation) Spent(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	return at(ctx, v.SpentRange, ticker, on)
}

// Dividend returns the dividends received for ticker up to a day.
func (v *Valuation) Dividend(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	return at(ctx, v.DividendRange, ticker, on)
}

// Value returns the market value of the ticker holdings on a day.
func (v *Valuation) Value(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	return at(ctx, v.ValueRange, ticker, on)
}

// ProfitLoss returns value minus spent on a day.
func (v *Valuation) ProfitLoss(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	return at(ctx, v.ProfitLossRange, ticker, on)
}

// Price returns the as-of price of ticker on a day. It fails with ErrNotFound
// when there is no price on or before that day.
func (v *Valuation) Price(ctx context.Context, ticker string, on Date) (decimal.Decimal, error) {
	p, err := v.db.PriceAsOf(ctx, ticker, on)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Price, nil
}

// Summary gathers the valuation of an instrument on a day.
type Summary struct {
	Ticker      string
	Date        Date
	Currency    string // native currency of Price and Dividends
	Reporting   string // currency of the other amounts
	Owned       decimal.Decimal
	Bought      decimal.Decimal
	Sold        decimal.Decimal
	Price       decimal.Decimal
	HasPrice    bool
	PricePaid   decimal.Decimal
	Commissions decimal.Decimal
	Spent       decimal.Decimal
	Dividends   decimal.Decimal
	Value       decimal.Decimal
	ProfitLoss  decimal.Decimal
}

// Summary computes every point value of ticker on a day.
func (v *Valuation) Summary(ctx context.Context, ticker string, on Date) (Summary, error) {
	inst, err := v.db.Instrument(ctx, ticker)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Ticker: ticker, Date: on, Currency: inst.Currency, Reporting: v.reporting}
	if inst.IsCurrency() {
		s.Currency = v.reporting
	}
	fields := []struct {
		dst *decimal.Decimal
		f   func(context.Context, string, Range) (Series, error)
	}{
		{&s.Owned, v.OwnedRange},
		{&s.Bought, v.BoughtRange},
		{&s.Sold, v.SoldRange},
		{&s.PricePaid, v.PricePaidRange},
		{&s.Commissions, v.CommissionsRange},
		{&s.Dividends, v.DividendRange},
		{&s.Value, v.ValueRange},
	}
	for _, field := range fields {
		if *field.dst, err = at(ctx, field.f, ticker, on); err != nil {
			return Summary{}, err
		}
	}
	s.Spent = s.PricePaid.Add(s.Commissions)
	s.ProfitLoss = s.Value.Sub(s.Spent)

	s.Price, err = v.Price(ctx, ticker, on)
	switch {
	case err == nil:
		s.HasPrice = true
	case !errors.Is(err, ErrNotFound):
		return Summary{}, err
	}
	return s, nil
}
