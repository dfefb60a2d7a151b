package portfolio

import (
	"iter"
	"slices"

	"github.com/shopspring/decimal"
)

// History stores a chronological series of values, each associated with a specific date.
// Dates are unique and always sorted, so that lookups can binary search.
type History struct {
	days   []Date
	values []decimal.Decimal
}

// search returns the position of day in h, and whether it was found.
func (h *History) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}

// Append adds a point to the history.
//
// Existing value at that date is overwritten.
func (h *History) Append(on Date, v decimal.Decimal) *History {
	i, found := h.search(on)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Len returns the number of items in the history.
func (h *History) Len() int { return len(h.days) }

// Latest returns the latest date and value in the history.
// If the history is empty, it returns zero values.
func (h *History) Latest() (Date, decimal.Decimal) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, decimal.Zero
	}
	return h.days[last], h.values[last]
}

// Get returns the value at 'day' and true or zero value and false.
func (h *History) Get(day Date) (decimal.Decimal, bool) {
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	return decimal.Zero, false
}

// ValueAsOf returns the value on a given day, or the most recent value before it.
// It returns the value and true if found, otherwise zero and false.
func (h *History) ValueAsOf(day Date) (decimal.Decimal, bool) {
	i, found := h.search(day)
	if found {
		return h.values[i], true
	}
	// i is where day would be inserted, the last entry before it is at i-1.
	if i == 0 {
		return decimal.Zero, false
	}
	return h.values[i-1], true
}

// Values returns an iterator over all date/value pairs in the history, in chronological order.
func (h *History) Values() iter.Seq2[Date, decimal.Decimal] {
	return func(yield func(Date, decimal.Decimal) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}
