package portfolio

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Database gives typed access to the instruments, prices, transactions and
// dividends kept by a Persistence.
type Database struct {
	p Persistence
}

// NewDatabase returns a Database over p.
func NewDatabase(p Persistence) *Database { return &Database{p: p} }

// --- instruments ---

func instrumentRow(i Instrument) Row {
	return Row{
		ColTicker:   i.Ticker,
		ColKind:     i.Kind.String(),
		ColCurrency: i.Currency,
		ColSymbol:   i.Symbol,
		ColName:     i.Name,
	}
}

func instrumentOf(r Row) (Instrument, error) {
	kind, err := ParseKind(r.Text(ColKind))
	if err != nil {
		return Instrument{}, fmt.Errorf("instrument %q: %w", r.Text(ColTicker), err)
	}
	return Instrument{
		Ticker:   r.Text(ColTicker),
		Kind:     kind,
		Currency: r.Text(ColCurrency),
		Symbol:   r.Text(ColSymbol),
		Name:     r.Text(ColName),
	}, nil
}

// AddInstrument declares or redefines an instrument.
//
// Redefining an instrument already used by a transaction fails with ErrImmutable.
func (db *Database) AddInstrument(ctx context.Context, i Instrument) error {
	if err := i.Validate(); err != nil {
		return err
	}
	old, err := db.Instrument(ctx, i.Ticker)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	case old == i:
		return nil
	default:
		used, err := db.referenced(ctx, i.Ticker)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("cannot redefine %q: %w", i.Ticker, ErrImmutable)
		}
	}
	if _, err := db.p.InsertRows(ctx, InstrumentTable, []Row{instrumentRow(i)}); err != nil {
		return fmt.Errorf("failed to insert instrument %q: %w", i.Ticker, err)
	}
	return nil
}

// referenced reports whether any transaction uses ticker on either side.
func (db *Database) referenced(ctx context.Context, ticker string) (bool, error) {
	for _, dir := range []Direction{Bought, Sold} {
		txs, err := db.Transactions(ctx, ticker, dir, Until(maxDate))
		if err != nil {
			return false, err
		}
		if len(txs) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Instrument returns the instrument declared for ticker, or ErrNotFound.
func (db *Database) Instrument(ctx context.Context, ticker string) (Instrument, error) {
	row, err := db.p.Lookup(ctx, InstrumentTable, By(ColTicker, ticker))
	if err != nil {
		return Instrument{}, fmt.Errorf("instrument %q: %w", ticker, err)
	}
	return instrumentOf(row)
}

// Instruments returns all declared instruments sorted by ticker.
func (db *Database) Instruments(ctx context.Context) ([]Instrument, error) {
	tickers, err := db.p.Keys(ctx, InstrumentTable)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	slices.Sort(tickers)
	res := make([]Instrument, 0, len(tickers))
	for _, t := range tickers {
		i, err := db.Instrument(ctx, t)
		if err != nil {
			return nil, err
		}
		res = append(res, i)
	}
	return res, nil
}

// --- prices ---

// maxDate is later than any real data.
var maxDate = NewDate(9999, 12, 31)

// InsertPrices stores prices all or nothing. A price replaces the previous one for the same day and ticker.
func (db *Database) InsertPrices(ctx context.Context, prices []PricePoint) error {
	if len(prices) == 0 {
		return nil
	}
	rows := make([]Row, 0, len(prices))
	for _, p := range prices {
		rows = append(rows, Row{ColDate: p.Date, ColTicker: p.Ticker, ColPrice: p.Price})
	}
	if _, err := db.p.InsertRows(ctx, PriceTable, rows); err != nil {
		return fmt.Errorf("failed to insert %d prices: %w", len(prices), err)
	}
	return nil
}

func pricePointOf(r Row) PricePoint {
	return PricePoint{Date: r.Date(ColDate), Ticker: r.Text(ColTicker), Price: r.Decimal(ColPrice)}
}

// Prices returns the prices of ticker within r, sorted by date.
func (db *Database) Prices(ctx context.Context, ticker string, r Range) ([]PricePoint, error) {
	rows, err := db.p.QueryRange(ctx, PriceTable, By(ColTicker, ticker), r)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices of %q: %w", ticker, err)
	}
	res := make([]PricePoint, 0, len(rows))
	for _, row := range rows {
		res = append(res, pricePointOf(row))
	}
	return res, nil
}

// PriceAsOf returns the latest price of ticker on or before 'on', or ErrNotFound.
func (db *Database) PriceAsOf(ctx context.Context, ticker string, on Date) (PricePoint, error) {
	row, err := db.p.QueryAsOf(ctx, PriceTable, By(ColTicker, ticker), on)
	if err != nil {
		return PricePoint{}, fmt.Errorf("price of %q on %s: %w", ticker, on, err)
	}
	return pricePointOf(row), nil
}

// LatestPriceDate returns the date of the most recent price of ticker, false if there is none.
func (db *Database) LatestPriceDate(ctx context.Context, ticker string) (Date, bool, error) {
	p, err := db.PriceAsOf(ctx, ticker, maxDate)
	if errors.Is(err, ErrNotFound) {
		return Date{}, false, nil
	}
	if err != nil {
		return Date{}, false, err
	}
	return p.Date, true, nil
}

// --- transactions ---

func transactionRow(t Transaction) Row {
	row := Row{
		ColDate:           t.Date,
		ColBought:         t.InstrumentBought,
		ColQuantityBought: t.QuantityBought,
		ColSold:           t.InstrumentSold,
		ColQuantitySold:   t.QuantitySold,
		ColCommission:     t.Commission,
	}
	if t.ID != 0 {
		row[ColID] = t.ID
	}
	return row
}

func transactionOf(r Row) Transaction {
	return Transaction{
		ID:               r.Int(ColID),
		Date:             r.Date(ColDate),
		InstrumentBought: r.Text(ColBought),
		QuantityBought:   r.Decimal(ColQuantityBought),
		InstrumentSold:   r.Text(ColSold),
		QuantitySold:     r.Decimal(ColQuantitySold),
		Commission:       r.Decimal(ColCommission),
	}
}

// InsertTransaction appends t and returns it with its assigned ID.
func (db *Database) InsertTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	t.ID = 0
	ids, err := db.p.InsertRows(ctx, TransactionTable, []Row{transactionRow(t)})
	if err != nil {
		return t, fmt.Errorf("failed to insert transaction: %w", err)
	}
	if len(ids) == 1 {
		t.ID = ids[0]
	}
	return t, nil
}

// Transactions returns transactions where ticker is on side dir, dated within r,
// in settlement order.
func (db *Database) Transactions(ctx context.Context, ticker string, dir Direction, r Range) ([]Transaction, error) {
	rows, err := db.p.QueryRange(ctx, TransactionTable, By(dir.column(), ticker), r)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions where %q was %v: %w", ticker, dir, err)
	}
	res := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		res = append(res, transactionOf(row))
	}
	return res, nil
}

// RemoveTransaction deletes one transaction equal to t, ErrInvalidRemoval if none.
func (db *Database) RemoveTransaction(ctx context.Context, t Transaction) error {
	n, err := db.p.DeleteMatch(ctx, TransactionTable, transactionRow(t))
	if err != nil {
		return fmt.Errorf("failed to remove transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s %v %s for %v %s: %w", t.Date, t.QuantityBought, t.InstrumentBought, t.QuantitySold, t.InstrumentSold, ErrInvalidRemoval)
	}
	return nil
}

// --- dividends ---

func dividendRow(d DividendPayment) Row {
	return Row{ColDate: d.Date, ColTicker: d.Ticker, ColAmount: d.Amount}
}

// InsertDividend appends a dividend payment.
func (db *Database) InsertDividend(ctx context.Context, d DividendPayment) error {
	if _, err := db.p.InsertRows(ctx, DividendTable, []Row{dividendRow(d)}); err != nil {
		return fmt.Errorf("failed to insert dividend: %w", err)
	}
	return nil
}

// Dividends returns the dividends paid by ticker within r, sorted by date.
func (db *Database) Dividends(ctx context.Context, ticker string, r Range) ([]DividendPayment, error) {
	rows, err := db.p.QueryRange(ctx, DividendTable, By(ColTicker, ticker), r)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividends of %q: %w", ticker, err)
	}
	res := make([]DividendPayment, 0, len(rows))
	for _, row := range rows {
		res = append(res, DividendPayment{Date: row.Date(ColDate), Ticker: row.Text(ColTicker), Amount: row.Decimal(ColAmount)})
	}
	return res, nil
}

// RemoveDividend deletes one payment equal to d, ErrInvalidRemoval if none.
func (db *Database) RemoveDividend(ctx context.Context, d DividendPayment) error {
	n, err := db.p.DeleteMatch(ctx, DividendTable, dividendRow(d))
	if err != nil {
		return fmt.Errorf("failed to remove dividend: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("dividend of %v for %s on %s: %w", d.Amount, d.Ticker, d.Date, ErrInvalidRemoval)
	}
	return nil
}
