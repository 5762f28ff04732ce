// Package calendar provides the service date value used by schedule records.
package calendar

import (
	"fmt"
	"time"
)

// Date is a local calendar day without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date for year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Parse reads a date in the YYYYMMDD form.
func Parse(s string) (Date, error) {
	if len(s) != 8 {
		return Date{}, fmt.Errorf("invalid date %q: want YYYYMMDD", s)
	}

	t, err := time.Parse("20060102", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}

	return FromTime(t), nil
}

// FromTime returns the calendar day of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()

	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as YYYYMMDD.
func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time(time.UTC).AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 ordering d against other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
