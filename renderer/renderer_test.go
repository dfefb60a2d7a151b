package renderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fega/portfolio"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// toHTML converts md the way a markdown viewer would, so that broken tables show up.
func toHTML(t *testing.T, md string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, goldmark.New(goldmark.WithExtensions(extension.GFM)).Convert([]byte(md), &buf))
	return buf.String()
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTemplatesParse(t *testing.T) {
	out := renderTemplate("missing.md", nil, nil)
	assert.Contains(t, out, "error reading main template")

	for _, md := range []string{
		Transactions(nil, "CHF"),
		Dividends(nil),
		Instruments(nil),
		Series("Empty", nil, false),
		Summary(portfolio.Summary{Ticker: "EIMI", Currency: "USD", Reporting: "EUR"}),
	} {
		assert.NotContains(t, md, "error")
	}
}

func TestTransactions(t *testing.T) {
	txs := []portfolio.Transaction{{
		ID:               7,
		Date:             portfolio.NewDate(2020, 1, 5),
		InstrumentBought: "EIMI",
		QuantityBought:   d("10"),
		InstrumentSold:   "EUR",
		QuantitySold:     d("500"),
		Commission:       d("2"),
	}}
	md := Transactions(txs, "CHF")
	html := toHTML(t, md)

	assert.Equal(t, 1, strings.Count(html, "<table>"))
	assert.Equal(t, 2, strings.Count(html, "<tr>"), "header and one row")
	assert.Contains(t, html, ">EIMI</td>")
	assert.Contains(t, html, ">2020-01-05</td>")
	assert.Contains(t, html, ">"+portfolio.M(d("2"), "CHF").String()+"</td>")

	assert.Contains(t, Transactions(nil, "CHF"), "No transactions.")
}

func TestInstruments(t *testing.T) {
	html := toHTML(t, Instruments([]portfolio.Instrument{
		portfolio.NewCurrency("CHF", "CHFEUR=X"),
		portfolio.NewSecurity("EIMI", "USD", "EIMI.L"),
	}))
	assert.Equal(t, 3, strings.Count(html, "<tr>"))
	assert.Contains(t, html, ">currency</td>")
	assert.Contains(t, html, ">EIMI.L</td>")
}

func TestDividends(t *testing.T) {
	html := toHTML(t, Dividends([]portfolio.DividendPayment{
		{Date: portfolio.NewDate(2020, 6, 1), Ticker: "EIMI", Amount: d("2.5")},
	}))
	assert.Contains(t, html, ">2.5</td>")
}

func TestSeries(t *testing.T) {
	p := newSeriesFixture(t)
	columns := []Column{
		{Name: "Owned", Series: p.owned},
		{Name: "Value", Currency: "EUR", Series: p.value},
	}

	t.Run("changes only", func(t *testing.T) {
		html := toHTML(t, Series("EIMI", columns, false))
		// first day, the purchase, and the last day
		assert.Equal(t, 4, strings.Count(html, "<tr>"), html)
		assert.Contains(t, html, "<h1>EIMI</h1>")
		assert.Contains(t, html, ">"+portfolio.M(d("450"), "EUR").String()+"</td>")
	})

	t.Run("all days", func(t *testing.T) {
		html := toHTML(t, Series("EIMI", columns, true))
		assert.Equal(t, 1+p.owned.Len(), strings.Count(html, "<tr>"))
	})

	t.Run("empty", func(t *testing.T) {
		md := Series("EIMI", []Column{{Name: "Price"}}, false)
		assert.Contains(t, md, "No data.")
		assert.NotContains(t, toHTML(t, md), "<table>")
	})
}

func TestSummary(t *testing.T) {
	s := portfolio.Summary{
		Ticker:      "EIMI",
		Date:        portfolio.NewDate(2020, 1, 10),
		Currency:    "USD",
		Reporting:   "EUR",
		Owned:       d("10"),
		Bought:      d("10"),
		Price:       d("50"),
		HasPrice:    true,
		PricePaid:   d("500"),
		Commissions: d("1.84"),
		Spent:       d("501.84"),
		Dividends:   d("3"),
		Value:       d("450"),
		ProfitLoss:  d("-51.84"),
	}
	md := Summary(s)
	html := toHTML(t, md)

	assert.Contains(t, html, "<h1>EIMI on 2020-01-10</h1>")
	assert.Equal(t, 2, strings.Count(html, "<table>"))
	assert.Contains(t, html, ">"+portfolio.M(d("50"), "USD").String()+"</td>")
	assert.Contains(t, html, ">"+portfolio.M(d("501.84"), "EUR").String()+"</td>")
	assert.Contains(t, html, ">"+portfolio.M(d("-51.84"), "EUR").SignedString()+"</td>")

	s.HasPrice = false
	assert.Contains(t, Summary(s), "| Price | n/a |")
}
