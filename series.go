package portfolio

import (
	"iter"

	"github.com/shopspring/decimal"
)

// Series is a dense daily series: one value for every calendar day of its range.
//
// The zero Series is empty, it is returned when there is no data at all.
type Series struct {
	r      Range
	values []decimal.Decimal
}

// newSeries returns a zero-filled series over r.
func newSeries(r Range) Series {
	return Series{r: r, values: make([]decimal.Decimal, r.Len())}
}

// Range returns the dates covered by the series.
func (s Series) Range() Range { return s.r }

// Len returns the number of days in the series.
func (s Series) Len() int { return len(s.values) }

// IsEmpty reports whether the series holds no day at all.
func (s Series) IsEmpty() bool { return len(s.values) == 0 }

// index returns the position of day in the series.
func (s Series) index(day Date) (int, bool) {
	if s.IsEmpty() || !s.r.Contains(day) {
		return 0, false
	}
	return NewRange(s.r.From, day).Len() - 1, true
}

// At returns the value on day, and false if day is out of the series.
func (s Series) At(day Date) (decimal.Decimal, bool) {
	i, ok := s.index(day)
	if !ok {
		return decimal.Zero, false
	}
	return s.values[i], true
}

// Last returns the last day of the series and its value.
func (s Series) Last() (Date, decimal.Decimal) {
	if s.IsEmpty() {
		return Date{}, decimal.Zero
	}
	return s.r.To, s.values[len(s.values)-1]
}

// All iterates over every day of the series in chronological order.
func (s Series) All() iter.Seq2[Date, decimal.Decimal] {
	return func(yield func(Date, decimal.Decimal) bool) {
		day := s.r.From
		for _, v := range s.values {
			if !yield(day, v) {
				return
			}
			day = day.Add(1)
		}
	}
}

// Add returns the day by day sum of s and x.
func (s Series) Add(x Series) Series { return s.zip(x, decimal.Decimal.Add) }

// Sub returns the day by day difference of s and x.
func (s Series) Sub(x Series) Series { return s.zip(x, decimal.Decimal.Sub) }

func (s Series) zip(x Series, op func(a, b decimal.Decimal) decimal.Decimal) Series {
	if s.r != x.r || len(s.values) != len(x.values) {
		panic("series range mismatch " + s.r.String() + "!=" + x.r.String())
	}
	res := newSeries(s.r)
	for i := range s.values {
		res.values[i] = op(s.values[i], x.values[i])
	}
	return res
}

// dated is an amount happening on a given day.
type dated struct {
	on     Date
	amount decimal.Decimal
}

// cumulative returns the running sum of events over the calendar days of r.
//
// events must be sorted by date. Events before r.From are folded into the
// opening balance, events after r.To are ignored.
func cumulative(r Range, events []dated) Series {
	s := newSeries(r)
	total := decimal.Zero
	j := 0
	for ; j < len(events) && events[j].on.Before(r.From); j++ {
		total = total.Add(events[j].amount)
	}
	i := 0
	for day := range r.Days() {
		for ; j < len(events) && !events[j].on.After(day); j++ {
			total = total.Add(events[j].amount)
		}
		s.values[i] = total
		i++
	}
	return s
}
