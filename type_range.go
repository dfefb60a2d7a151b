package portfolio

import (
	"fmt"
	"iter"
)

const secondsPerDay = 24 * 60 * 60

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Until returns the range from Epoch up to 'to', empty when 'to' is before Epoch.
func Until(to Date) Range { return Range{From: Epoch, To: to} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Len returns the number of calendar days in the range.
func (r Range) Len() int {
	if r.To.Before(r.From) {
		return 0
	}
	// a time.Duration saturates after 292 years
	return int((r.To.Unix()-r.From.Unix())/secondsPerDay) + 1
}

// Days returns an iterator that yields each date within the range, inclusive.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
