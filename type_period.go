package portfolio

import (
	"fmt"
	"strings"
	"time"
)

// Period is a calendar period reports can be restricted to.
type Period int

const (
	Daily Period = iota + 1
	Weekly
	Monthly
	Quarterly
	Yearly
)

// periodNames holds the noun and the adjective of each period, by value.
var periodNames = [...][2]string{
	Daily:     {"day", "daily"},
	Weekly:    {"week", "weekly"},
	Monthly:   {"month", "monthly"},
	Quarterly: {"quarter", "quarterly"},
	Yearly:    {"year", "yearly"},
}

// Name returns the noun of the period, "month" for Monthly.
func (p Period) Name() string {
	if p < Daily || p > Yearly {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return periodNames[p][0]
}

func (p Period) String() string { return p.Name() }

// ParsePeriod accepts the noun or the adjective of a period, in any case.
func ParsePeriod(s string) (Period, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p := Daily; p <= Yearly; p++ {
		if name == periodNames[p][0] || name == periodNames[p][1] {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w period %q, want day, week, month, quarter or year", ErrInvalid, s)
}

// StartOf returns the first day of the period containing d. Weeks start on Monday.
func (d Date) StartOf(p Period) Date {
	switch p {
	case Weekly:
		return d.Add(-((int(d.Weekday()) + 6) % 7)) // back to Monday
	case Monthly:
		return NewDate(d.Year(), d.Month(), 1)
	case Quarterly:
		return NewDate(d.Year(), (d.Month()-1)/3*3+1, 1)
	case Yearly:
		return NewDate(d.Year(), time.January, 1)
	default:
		return d
	}
}

// ToDate returns the range from the start of the period containing d to d, like month-to-date.
func (p Period) ToDate(d Date) Range { return NewRange(d.StartOf(p), d) }
