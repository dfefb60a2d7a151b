package portfolio

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory Persistence for tests.
type memStore struct {
	rows      map[Table][]Row
	index     map[string]int // position of replaceable rows by key
	next      int64
	insertErr error // returned by InsertRows when set
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[Table][]Row), index: make(map[string]int)}
}

// replaceKey returns the identity of rows that replace each other, "" if none.
func replaceKey(t Table, r Row) string {
	switch t {
	case PriceTable:
		return fmt.Sprintf("%v/%s/%s", t, r.Text(ColTicker), r.Date(ColDate))
	case InstrumentTable:
		return fmt.Sprintf("%v/%s", t, r.Text(ColTicker))
	}
	return ""
}

func (m *memStore) InsertRows(_ context.Context, t Table, rows []Row) ([]int64, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	for _, r := range rows {
		if t.Dated() && r.Date(ColDate).IsZero() {
			return nil, fmt.Errorf("missing date in %v row", t)
		}
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		m.next++
		row := make(Row, len(r)+1)
		for c, v := range r {
			row[c] = v
		}
		if t == TransactionTable {
			row[ColID] = m.next
		}
		if k := replaceKey(t, row); k != "" {
			if i, ok := m.index[k]; ok {
				m.rows[t][i] = row
				ids = append(ids, m.next)
				continue
			}
			m.index[k] = len(m.rows[t])
		}
		m.rows[t] = append(m.rows[t], row)
		ids = append(ids, m.next)
	}
	return ids, nil
}

func (m *memStore) matching(t Table, key Key, keep func(Row) bool) []Row {
	var res []Row
	for _, r := range m.rows[t] {
		if r.Text(key.Column) == key.Value && keep(r) {
			res = append(res, r)
		}
	}
	slices.SortStableFunc(res, func(a, b Row) int { return a.Date(ColDate).Compare(b.Date(ColDate)) })
	return res
}

func (m *memStore) QueryAsOf(_ context.Context, t Table, key Key, on Date) (Row, error) {
	rows := m.matching(t, key, func(r Row) bool { return !r.Date(ColDate).After(on) })
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[len(rows)-1], nil
}

func (m *memStore) QueryRange(_ context.Context, t Table, key Key, r Range) ([]Row, error) {
	return m.matching(t, key, func(row Row) bool { return r.Contains(row.Date(ColDate)) }), nil
}

func (m *memStore) Lookup(_ context.Context, t Table, key Key) (Row, error) {
	rows := m.matching(t, key, func(Row) bool { return true })
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func sameValue(a, b any) bool {
	if da, ok := a.(decimal.Decimal); ok {
		db, ok := b.(decimal.Decimal)
		return ok && da.Equal(db)
	}
	return a == b
}

func (m *memStore) DeleteMatch(_ context.Context, t Table, match Row) (int64, error) {
	rows := m.rows[t]
	for i, r := range rows {
		equal := true
		for c, v := range match {
			if !sameValue(r[c], v) {
				equal = false
				break
			}
		}
		if equal {
			m.rows[t] = slices.Delete(rows, i, i+1)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) Keys(_ context.Context, t Table) ([]string, error) {
	var keys []string
	for _, r := range m.rows[t] {
		if t == TransactionTable {
			keys = append(keys, r.Text(ColBought), r.Text(ColSold))
			continue
		}
		keys = append(keys, r.Text(ColTicker))
	}
	slices.SortFunc(keys, cmp.Compare[string])
	return slices.Compact(keys), nil
}
