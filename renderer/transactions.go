package renderer

import "github.com/fega/portfolio"

// Transactions renders a table of transactions.
func Transactions(txs []portfolio.Transaction, commission string) string {
	return renderTemplate("transactions.md", nil, struct {
		Transactions []portfolio.Transaction
		Commission   string
	}{txs, commission})
}

// Dividends renders a table of dividend payments.
func Dividends(divs []portfolio.DividendPayment) string {
	return renderTemplate("dividends.md", nil, divs)
}

// Instruments renders a table of instruments.
func Instruments(instruments []portfolio.Instrument) string {
	return renderTemplate("instruments.md", nil, instruments)
}
