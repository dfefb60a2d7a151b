package renderer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fega/portfolio"
	"github.com/fega/portfolio/sqlstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type seriesFixture struct {
	owned, value portfolio.Series
}

// newSeriesFixture values 10 EIMI bought on 2020-01-05 over the first 10 days of 2020.
func newSeriesFixture(t *testing.T) seriesFixture {
	t.Helper()
	ctx := context.Background()
	store, err := sqlstore.Open(ctx, filepath.Join(t.TempDir(), "p.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	db := portfolio.NewDatabase(store)
	for _, i := range []portfolio.Instrument{
		portfolio.NewCurrency("EUR", ""),
		portfolio.NewSecurity("EIMI", "EUR", "EIMI.L"),
	} {
		require.NoError(t, db.AddInstrument(ctx, i))
	}
	require.NoError(t, db.InsertPrices(ctx, []portfolio.PricePoint{
		{Date: portfolio.NewDate(2020, 1, 1), Ticker: "EUR", Price: d("1")},
		{Date: portfolio.NewDate(2020, 1, 1), Ticker: "EIMI", Price: d("45")},
	}))
	l := portfolio.NewLedger(db, zerolog.Nop())
	_, err = l.Buy(ctx, portfolio.NewDate(2020, 1, 5), "EIMI", d("10"), "EUR", d("450"), d("0"))
	require.NoError(t, err)

	v := portfolio.NewValuation(db, "EUR", "CHF", zerolog.Nop())
	r := portfolio.NewRange(portfolio.NewDate(2020, 1, 1), portfolio.NewDate(2020, 1, 10))
	var f seriesFixture
	f.owned, err = v.OwnedRange(ctx, "EIMI", r)
	require.NoError(t, err)
	f.value, err = v.ValueRange(ctx, "EIMI", r)
	require.NoError(t, err)
	return f
}
