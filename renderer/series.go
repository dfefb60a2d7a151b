package renderer

import (
	"github.com/fega/portfolio"
	"github.com/shopspring/decimal"
)

// Column is a named series rendered as a table column.
type Column struct {
	Name     string
	Currency string // empty for quantities
	Series   portfolio.Series
}

type seriesRow struct {
	Date  portfolio.Date
	Cells []string
}

type seriesView struct {
	Title   string
	Columns []Column
	Rows    []seriesRow
}

// Series renders columns side by side, one row per day of the first column range.
//
// Days where every column is unchanged from the previous row are skipped
// unless all is set. The last day is always shown.
func Series(title string, columns []Column, all bool) string {
	v := seriesView{Title: title, Columns: columns}
	if len(columns) == 0 || columns[0].Series.IsEmpty() {
		return renderTemplate("series.md", nil, v)
	}
	last, _ := columns[0].Series.Last()
	var prev []decimal.Decimal
	for day := range columns[0].Series.All() {
		values := make([]decimal.Decimal, len(columns))
		changed := prev == nil
		for i, c := range columns {
			values[i], _ = c.Series.At(day)
			if prev != nil && !values[i].Equal(prev[i]) {
				changed = true
			}
		}
		prev = values
		if !all && !changed && day != last {
			continue
		}
		row := seriesRow{Date: day, Cells: make([]string, len(columns))}
		for i, c := range columns {
			if c.Currency == "" {
				row.Cells[i] = values[i].String()
			} else {
				row.Cells[i] = portfolio.M(values[i], c.Currency).String()
			}
		}
		v.Rows = append(v.Rows, row)
	}
	return renderTemplate("series.md", nil, v)
}
