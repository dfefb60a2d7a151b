package sqlstore

// Schema creates the tables of the portfolio if they do not exist.
//
// Dates are ISO text so that they sort chronologically, decimals are text to stay exact.
const Schema = `
CREATE TABLE IF NOT EXISTS instruments (
	ticker   TEXT PRIMARY KEY,
	kind     TEXT NOT NULL,
	currency TEXT NOT NULL,
	symbol   TEXT NOT NULL DEFAULT '',
	name     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS prices (
	date   TEXT NOT NULL,
	ticker TEXT NOT NULL,
	price  TEXT NOT NULL,
	PRIMARY KEY (ticker, date)
);

CREATE TABLE IF NOT EXISTS transactions (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	date              TEXT NOT NULL,
	instrument_bought TEXT NOT NULL,
	quantity_bought   TEXT NOT NULL,
	instrument_sold   TEXT NOT NULL,
	quantity_sold     TEXT NOT NULL,
	commission        TEXT NOT NULL DEFAULT '0'
);
CREATE INDEX IF NOT EXISTS idx_transactions_bought ON transactions (instrument_bought, date);
CREATE INDEX IF NOT EXISTS idx_transactions_sold ON transactions (instrument_sold, date);

CREATE TABLE IF NOT EXISTS dividends (
	date   TEXT NOT NULL,
	ticker TEXT NOT NULL,
	amount TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dividends_ticker ON dividends (ticker, date);
`
