// ABOUTME: Calendar date type without a time-of-day component.
// ABOUTME: Used for first-seen stamps in the bookmark index and for --since/--until bounds.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout.
const DateLayout = "2006-01-02"

// Date is a calendar date in the local time zone of whoever created it.
// The zero value is the earliest representable date (0001-01-01).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// MinDate is the earliest representable date, used as an open lower bound.
var MinDate = Date{Year: 1, Month: time.January, Day: 1}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local date according to now.
func Today(now func() time.Time) Date {
	return DateOf(now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) time() time.Time {
	year, month, day := d.Year, d.Month, d.Day
	if year == 0 && month == 0 && day == 0 {
		year, month, day = MinDate.Year, MinDate.Month, MinDate.Day
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.time().Before(other.time())
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.time().After(other.time())
}

// Equal reports whether d and other denote the same day.
func (d Date) Equal(other Date) bool {
	return d.time().Equal(other.time())
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.time().Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
