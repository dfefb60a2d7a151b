// Package sqlstore persists the portfolio tables in a SQLite database.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fega/portfolio"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store implements portfolio.Persistence on SQLite.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ portfolio.Persistence = (*Store)(nil)

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := absPath + "?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", absPath, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", absPath, err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{db: db, log: log.With().Str("component", "sqlstore").Logger()}
	s.log.Debug().Str("path", absPath).Msg("database opened")
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// columnList joins the column names of cols.
func columnList(cols []portfolio.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

// checkKey fails when key does not belong to t.
func checkKey(t portfolio.Table, key portfolio.Key) error {
	if !slices.Contains(t.Columns(), key.Column) {
		return fmt.Errorf("%w key %v for table %v", portfolio.ErrInvalid, key.Column, t)
	}
	return nil
}

// InsertRows inserts rows in a single SQL transaction.
func (s *Store) InsertRows(ctx context.Context, t portfolio.Table, rows []portfolio.Row) ([]int64, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := slices.DeleteFunc(slices.Clone(t.Columns()), func(c portfolio.Column) bool { return c == portfolio.ColID })
	verb := "INSERT"
	if t == portfolio.PriceTable || t == portfolio.InstrumentTable {
		verb = "INSERT OR REPLACE"
	}
	query := fmt.Sprintf("%s INTO %s (%s) VALUES (%s)", verb, t, columnList(cols), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert into %v: %w", t, err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		args := make([]any, len(cols))
		for i, c := range cols {
			if args[i], err = encode(c, row[c]); err != nil {
				return nil, fmt.Errorf("invalid row for %v: %w", t, err)
			}
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to insert into %v: %w", t, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read inserted id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit insert into %v: %w", t, err)
	}
	s.log.Debug().Stringer("table", t).Int("count", len(rows)).Msg("rows inserted")
	return ids, nil
}

// QueryAsOf returns the latest row of key dated on or before 'on'.
func (s *Store) QueryAsOf(ctx context.Context, t portfolio.Table, key portfolio.Key, on portfolio.Date) (portfolio.Row, error) {
	if err := checkKey(t, key); err != nil {
		return nil, err
	}
	if !t.Dated() {
		return nil, fmt.Errorf("%w as-of query on undated table %v", portfolio.ErrInvalid, t)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND date <= ? ORDER BY date DESC, rowid DESC LIMIT 1",
		columnList(t.Columns()), t, key.Column)
	rows, err := s.query(ctx, t, query, key.Value, on.String())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, portfolio.ErrNotFound
	}
	return rows[0], nil
}

// QueryRange returns the rows of key dated within r, by date then insertion order.
func (s *Store) QueryRange(ctx context.Context, t portfolio.Table, key portfolio.Key, r portfolio.Range) ([]portfolio.Row, error) {
	if err := checkKey(t, key); err != nil {
		return nil, err
	}
	if !t.Dated() {
		return nil, fmt.Errorf("%w range query on undated table %v", portfolio.ErrInvalid, t)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND date BETWEEN ? AND ? ORDER BY date, rowid",
		columnList(t.Columns()), t, key.Column)
	return s.query(ctx, t, query, key.Value, r.From.String(), r.To.String())
}

// Lookup returns the row of key.
func (s *Store) Lookup(ctx context.Context, t portfolio.Table, key portfolio.Key) (portfolio.Row, error) {
	if err := checkKey(t, key); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1", columnList(t.Columns()), t, key.Column)
	rows, err := s.query(ctx, t, query, key.Value)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, portfolio.ErrNotFound
	}
	return rows[0], nil
}

// DeleteMatch removes the first inserted row equal to match on every column match sets.
func (s *Store) DeleteMatch(ctx context.Context, t portfolio.Table, match portfolio.Row) (int64, error) {
	var conds []string
	var args []any
	for _, c := range t.Columns() {
		v, ok := match[c]
		if !ok {
			continue
		}
		arg, err := encode(c, v)
		if err != nil {
			return 0, fmt.Errorf("invalid match for %v: %w", t, err)
		}
		conds = append(conds, c.String()+" = ?")
		args = append(args, arg)
	}
	if len(conds) == 0 {
		return 0, fmt.Errorf("%w empty match on %v", portfolio.ErrInvalid, t)
	}
	query := fmt.Sprintf("DELETE FROM %[1]s WHERE rowid = (SELECT rowid FROM %[1]s WHERE %[2]s ORDER BY rowid LIMIT 1)",
		t, strings.Join(conds, " AND "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %v: %w", t, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	s.log.Debug().Stringer("table", t).Int64("count", n).Msg("rows deleted")
	return n, nil
}

// Keys returns the distinct tickers of t.
func (s *Store) Keys(ctx context.Context, t portfolio.Table) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT ticker FROM %s ORDER BY ticker", t)
	if t == portfolio.TransactionTable {
		query = "SELECT instrument_bought FROM transactions UNION SELECT instrument_sold FROM transactions ORDER BY 1"
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys of %v: %w", t, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// query runs a select of all the columns of t and decodes the rows.
func (s *Store) query(ctx context.Context, t portfolio.Table, query string, args ...any) ([]portfolio.Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %v: %w", t, err)
	}
	defer rows.Close()

	cols := t.Columns()
	var res []portfolio.Row
	for rows.Next() {
		dest := make([]any, len(cols))
		for i, c := range cols {
			if c.Type() == portfolio.TypeInt {
				dest[i] = new(int64)
			} else {
				dest[i] = new(string)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %v: %w", t, err)
		}
		row := make(portfolio.Row, len(cols))
		for i, c := range cols {
			if row[c], err = decode(c, dest[i]); err != nil {
				return nil, fmt.Errorf("corrupted %v row: %w", t, err)
			}
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %v: %w", t, err)
	}
	return res, nil
}

// encode converts a row value into its SQL representation.
func encode(c portfolio.Column, v any) (any, error) {
	switch c.Type() {
	case portfolio.TypeDate:
		d, ok := v.(portfolio.Date)
		if !ok || d.IsZero() {
			return nil, fmt.Errorf("column %v wants a date, got %v", c, v)
		}
		return d.String(), nil
	case portfolio.TypeDecimal:
		switch d := v.(type) {
		case decimal.Decimal:
			return d.String(), nil
		case nil:
			return "0", nil
		}
	case portfolio.TypeInt:
		if i, ok := v.(int64); ok {
			return i, nil
		}
	default:
		switch s := v.(type) {
		case string:
			return s, nil
		case nil:
			return "", nil
		}
	}
	return nil, fmt.Errorf("column %v cannot hold %T", c, v)
}

// decode converts a scanned value into its row representation.
func decode(c portfolio.Column, v any) (any, error) {
	switch c.Type() {
	case portfolio.TypeInt:
		return *v.(*int64), nil
	case portfolio.TypeDate:
		on, err := time.Parse(portfolio.DateFormat, *v.(*string))
		if err != nil {
			return nil, fmt.Errorf("column %v: %w", c, err)
		}
		return portfolio.DateOf(on), nil
	case portfolio.TypeDecimal:
		d, err := decimal.NewFromString(*v.(*string))
		if err != nil {
			return nil, fmt.Errorf("column %v: %w", c, err)
		}
		return d, nil
	default:
		return *v.(*string), nil
	}
}
