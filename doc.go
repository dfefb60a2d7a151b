// Package portfolio reconstructs the history of a personal investment portfolio.
//
// The portfolio is made of three append-only logs kept by a [Persistence]:
//   - a transaction ledger, where each [Transaction] exchanges a quantity of an
//     instrument (usually a currency) for a quantity of another one,
//   - a dividend ledger of [DividendPayment],
//   - a price history of daily [PricePoint], maintained by an [Updater] from a
//     [PriceSource].
//
// A [Valuation] derives from them, for any instrument and any date range, the
// owned quantity, the amount spent, the dividends received, the market value
// and the profit or loss, converting amounts into a single reporting currency.
// Every computation receives its as-of date explicitly.
//
// This package serves as the foundational logic for the `pcs` command-line tool.
package portfolio
