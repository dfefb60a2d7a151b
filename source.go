package portfolio

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a daily closing price as returned by a PriceSource.
type Quote struct {
	Date  Date
	Close decimal.Decimal
}

// PriceSource fetches daily closing prices from a market data provider.
//
// Implementations wrap transport failures with ErrUnavailable.
type PriceSource interface {
	// FetchDailyCloses returns the closes of symbol between from and to, boundaries included, sorted by date.
	FetchDailyCloses(ctx context.Context, symbol string, from, to Date) ([]Quote, error)
}
