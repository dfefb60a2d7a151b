package portfolio

import (
	"context"

	"github.com/shopspring/decimal"
)

// PerShareDividend is a distribution announced per unit held, as market data providers publish it.
type PerShareDividend struct {
	ExDate Date
	Amount decimal.Decimal
}

// ImportDividends records the dividends of ticker paid for the units held.
//
// Units held at the close of the day before the ex-date qualify. Distributions
// with nothing held, or already recorded on that date, are skipped. It returns
// the payments recorded.
func (l *Ledger) ImportDividends(ctx context.Context, v *Valuation, ticker string, divs []PerShareDividend) ([]DividendPayment, error) {
	var recorded []DividendPayment
	for _, d := range divs {
		log := l.log.With().Str("ticker", ticker).Str("ex_date", d.ExDate.String()).Logger()
		owned, err := v.Owned(ctx, ticker, d.ExDate.Add(-1))
		if err != nil {
			return recorded, err
		}
		if !owned.IsPositive() {
			log.Debug().Msg("nothing held, dividend skipped")
			continue
		}
		known, err := l.db.Dividends(ctx, ticker, NewRange(d.ExDate, d.ExDate))
		if err != nil {
			return recorded, err
		}
		if len(known) > 0 {
			log.Debug().Msg("dividend already recorded")
			continue
		}
		p, err := l.AddDividend(ctx, d.ExDate, ticker, owned.Mul(d.Amount))
		if err != nil {
			return recorded, err
		}
		recorded = append(recorded, p)
	}
	return recorded, nil
}
