// Package calendar defines the monthly time axis shared by every series.
package calendar

import (
	"fmt"
	"time"
)

// ISOLayout is the date layout used for every date rendered by this package.
const ISOLayout = "2006-01-02"

// Date is a date truncated to the first day of its month, in UTC.
// The zero value is not a valid month; use NewDate, FromTime or Parse.
type Date struct {
	t time.Time
}

// NewDate returns the first day of the given month.
func NewDate(year int, month time.Month) Date {
	return Date{t: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to the first day of its month.
func FromTime(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month())
}

// Parse reads an ISO date that must fall on the first day of a month.
func Parse(s string) (Date, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	if t.Day() != 1 {
		return Date{}, fmt.Errorf("%w: %s", ErrNotMonthStart, s)
	}
	return FromTime(t), nil
}

// MustParse is Parse for package-level constants; it panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the month start as a UTC time.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether d was never set.
func (d Date) IsZero() bool { return d.t.IsZero() }

// AddMonths shifts d by n months (n may be negative).
func (d Date) AddMonths(n int) Date {
	return Date{t: d.t.AddDate(0, n, 0)}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether both dates are the same month.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// String renders d as YYYY-MM-DD.
func (d Date) String() string { return d.t.Format(ISOLayout) }

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Generate returns every month start from epoch to today inclusive.
// The result is empty when today precedes epoch.
func Generate(epoch, today Date) []Date {
	if today.Before(epoch) {
		return []Date{}
	}
	months := (today.t.Year()-epoch.t.Year())*12 + int(today.t.Month()-epoch.t.Month()) + 1
	out := make([]Date, 0, months)
	for i := 0; i < months; i++ {
		out = append(out, epoch.AddMonths(i))
	}
	return out
}

// Index returns the position of d in a sorted axis, or -1.
func Index(axis []Date, d Date) int {
	lo, hi := 0, len(axis)
	for lo < hi {
		mid := (lo + hi) / 2
		if axis[mid].Before(d) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(axis) && axis[lo].Equal(d) {
		return lo
	}
	return -1
}
