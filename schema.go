package portfolio

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Table identifies a persisted table.
type Table int

const (
	PriceTable Table = iota + 1
	TransactionTable
	DividendTable
	InstrumentTable
)

// Tables lists every table of the schema.
var Tables = []Table{InstrumentTable, PriceTable, TransactionTable, DividendTable}

func (t Table) String() string {
	switch t {
	case PriceTable:
		return "prices"
	case TransactionTable:
		return "transactions"
	case DividendTable:
		return "dividends"
	case InstrumentTable:
		return "instruments"
	default:
		return fmt.Sprintf("Table(%d)", int(t))
	}
}

// Columns returns the columns of t in storage order.
func (t Table) Columns() []Column {
	switch t {
	case PriceTable:
		return []Column{ColDate, ColTicker, ColPrice}
	case TransactionTable:
		return []Column{ColID, ColDate, ColBought, ColQuantityBought, ColSold, ColQuantitySold, ColCommission}
	case DividendTable:
		return []Column{ColDate, ColTicker, ColAmount}
	case InstrumentTable:
		return []Column{ColTicker, ColKind, ColCurrency, ColSymbol, ColName}
	default:
		return nil
	}
}

// Dated reports whether rows of t carry a date column.
func (t Table) Dated() bool { return t != InstrumentTable }

// Column identifies a persisted column.
type Column int

const (
	ColDate Column = iota + 1
	ColTicker
	ColPrice
	ColID
	ColBought
	ColQuantityBought
	ColSold
	ColQuantitySold
	ColCommission
	ColAmount
	ColKind
	ColCurrency
	ColSymbol
	ColName
)

var columnNames = map[Column]string{
	ColDate:           "date",
	ColTicker:         "ticker",
	ColPrice:          "price",
	ColID:             "id",
	ColBought:         "instrument_bought",
	ColQuantityBought: "quantity_bought",
	ColSold:           "instrument_sold",
	ColQuantitySold:   "quantity_sold",
	ColCommission:     "commission",
	ColAmount:         "amount",
	ColKind:           "kind",
	ColCurrency:       "currency",
	ColSymbol:         "symbol",
	ColName:           "name",
}

func (c Column) String() string {
	if n, ok := columnNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Column(%d)", int(c))
}

// ColumnType is the Go type of values stored in a column.
type ColumnType int

const (
	TypeText    ColumnType = iota + 1 // string
	TypeDate                          // Date
	TypeDecimal                       // decimal.Decimal
	TypeInt                           // int64
)

// Type returns the type of values held by c.
func (c Column) Type() ColumnType {
	switch c {
	case ColDate:
		return TypeDate
	case ColPrice, ColQuantityBought, ColQuantitySold, ColCommission, ColAmount:
		return TypeDecimal
	case ColID:
		return TypeInt
	default:
		return TypeText
	}
}

// Row is a persisted record. Values have the Go type given by their column Type.
type Row map[Column]any

// Text returns the string value of c, or "".
func (r Row) Text(c Column) string {
	s, _ := r[c].(string)
	return s
}

// Date returns the Date value of c, or the zero Date.
func (r Row) Date(c Column) Date {
	d, _ := r[c].(Date)
	return d
}

// Decimal returns the decimal value of c, or zero.
func (r Row) Decimal(c Column) decimal.Decimal {
	d, _ := r[c].(decimal.Decimal)
	return d
}

// Int returns the integer value of c, or zero.
func (r Row) Int(c Column) int64 {
	i, _ := r[c].(int64)
	return i
}

// Key selects rows whose column equals value.
type Key struct {
	Column Column
	Value  string
}

// By returns the key matching rows where column c equals v.
func By(c Column, v string) Key { return Key{Column: c, Value: v} }

// Persistence stores rows of the typed schema.
//
// Dated tables are returned sorted by date, then by insertion order.
type Persistence interface {
	// InsertRows appends rows to t all or nothing, it returns the row ids.
	// Price and instrument rows replace existing rows with the same key.
	InsertRows(ctx context.Context, t Table, rows []Row) ([]int64, error)
	// QueryAsOf returns the latest row matching key dated on or before 'on', or ErrNotFound.
	QueryAsOf(ctx context.Context, t Table, key Key, on Date) (Row, error)
	// QueryRange returns the rows matching key dated within r.
	QueryRange(ctx context.Context, t Table, key Key, r Range) ([]Row, error)
	// Lookup returns the row matching key in an undated table, or ErrNotFound.
	Lookup(ctx context.Context, t Table, key Key) (Row, error)
	// DeleteMatch removes one row equal to match on every column it sets, and returns the number removed.
	DeleteMatch(ctx context.Context, t Table, match Row) (int64, error)
	// Keys returns the distinct tickers in t.
	Keys(ctx context.Context, t Table) ([]string, error)
}
