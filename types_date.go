package portfolio

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// readDateFormat also accepts single digit months and days.
const readDateFormat = "2006-1-2"

// DateFormat is the ISO-8601 layout dates are printed and stored with.
const DateFormat = "2006-01-02"

// legacyDateFormats are accepted on read, they are produced by spreadsheet and dataframe exports.
var legacyDateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000-0700",
}

// Date is a calendar day, without time or location.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// Epoch is the first day a full scrape of prices starts from.
var Epoch = NewDate(1975, time.January, 1)

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day of the month.
func (d Date) Day() int { return d.d }

// String format the date as YYYY-MM-DD.
func (d Date) String() string { return d.time().Format(DateFormat) }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Weekday of the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// time is the canonical instant of d, midnight UTC, so equal dates give equal times.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Unix returns the unix timestamp of midnight UTC that day.
func (d Date) Unix() int64 { return d.time().Unix() }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.Compare(x) > 0 }

// Compare returns -1, 0 or +1 if d is before, equal or after x.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmpInt(d.y, x.y)
	case d.m != x.m:
		return cmpInt(int(d.m), int(x.m))
	default:
		return cmpInt(d.d, x.d)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Today returns the current date.
//
// Domain functions never call it, they receive an explicit as-of date instead.
func Today() Date { return NewDate(time.Now().Date()) }

// Add returns the date i days after d, before it when i is negative.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// NextBusinessDay returns the first weekday after d assuming d is a trading day:
// Friday jumps to Monday, any other day moves by one.
func (d Date) NextBusinessDay() Date {
	if d.Weekday() == time.Friday {
		return d.Add(3)
	}
	return d.Add(1)
}

// DateOf returns the Date of t in t's location.
func DateOf(t time.Time) Date { return NewDate(t.Date()) }

var relativeDateRE = regexp.MustCompile(`^([+-])(\d+)([dwmy])$`)

// ParseDate parses a Date from a string.
//
// It accepts ISO dates, lenient ones like "2025-7-1", datetime exports like
// "2020-01-05 00:00:00", and dates relative to today like "-1d", "-2w", "-1m", "-1y".
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)
	if str == "0d" {
		return Today(), nil
	}

	if match := relativeDateRE.FindStringSubmatch(str); match != nil {
		num, err := strconv.Atoi(match[2])
		if err != nil {
			return Date{}, fmt.Errorf("invalid number in relative date %q: %w", str, err)
		}
		if match[1] == "-" {
			num = -num
		}
		today := Today()
		switch match[3] {
		case "d":
			return today.Add(num), nil
		case "w":
			return today.Add(num * 7), nil
		case "m":
			return NewDate(today.Year(), today.Month()+time.Month(num), today.Day()), nil
		case "y":
			return NewDate(today.Year()+num, today.Month(), today.Day()), nil
		}
	}

	on, err := time.Parse(readDateFormat, str)
	if err == nil {
		return DateOf(on), nil
	}
	for _, layout := range legacyDateFormats {
		if on, lerr := time.Parse(layout, str); lerr == nil {
			return DateOf(on), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, DateFormat, err)
}

// UnmarshalJSON reads a date from a provider payload, "" being the zero Date.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	if str == "" {
		*d = Date{}
		return nil
	}
	// payloads never hold relative dates
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return fmt.Errorf("invalid date %q in payload, want format %q: %w", str, DateFormat, err)
	}
	*d = DateOf(on)
	return nil
}

var _ json.Unmarshaler = (*Date)(nil)
