package renderer

import "github.com/fega/portfolio"

// Summary renders the valuation of one instrument.
//
// Price and dividends are in the instrument currency, other amounts in the reporting currency.
func Summary(s portfolio.Summary) string {
	return renderTemplate("summary.md", []string{"summary_cost.md"}, s)
}
