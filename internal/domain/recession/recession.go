// Package recession holds the historical recession table and the
// date-relative queries used to label monthly data.
package recession

import (
	"fmt"
	"time"

	"github.com/okian/recessionwatch/internal/domain/types"
)

const (
	hoursPerDay = 24
	daysPerYear = 365
)

// Interval is a recession period, inclusive on both ends.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls within the interval.
func (iv Interval) Contains(d time.Time) bool {
	d = day(d)
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Option applies a configuration option to the Calendar.
type Option func(*Calendar)

// WithClock sets the source of "today" used by WithinNextYear.
func WithClock(now func() time.Time) Option {
	return func(c *Calendar) {
		if now != nil {
			c.now = now
		}
	}
}

// Calendar is an immutable, ordered table of non-overlapping intervals.
type Calendar struct {
	intervals []Interval
	now       func() time.Time
}

// New validates intervals and builds a Calendar. Intervals must be
// chronologically sorted, each with start <= end, and each ending strictly
// before the next one starts.
func New(intervals []Interval, opts ...Option) (*Calendar, error) {
	if len(intervals) == 0 {
		return nil, ErrEmptyCalendar
	}
	c := &Calendar{
		intervals: make([]Interval, len(intervals)),
		now:       time.Now,
	}
	for i, iv := range intervals {
		iv = Interval{Start: day(iv.Start), End: day(iv.End)}
		if iv.End.Before(iv.Start) {
			return nil, fmt.Errorf("%w: interval %d ends %s before it starts %s",
				ErrInvalidInterval, i, iv.End.Format(time.DateOnly), iv.Start.Format(time.DateOnly))
		}
		if i > 0 && !c.intervals[i-1].End.Before(iv.Start) {
			return nil, fmt.Errorf("%w: interval %d starts %s, previous ends %s",
				ErrUnorderedIntervals, i, iv.Start.Format(time.DateOnly), c.intervals[i-1].End.Format(time.DateOnly))
		}
		c.intervals[i] = iv
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Intervals returns a copy of the recession table.
func (c *Calendar) Intervals() []Interval {
	out := make([]Interval, len(c.intervals))
	copy(out, c.intervals)
	return out
}

// InRecession reports whether d falls within any interval.
func (c *Calendar) InRecession(d time.Time) bool {
	for _, iv := range c.intervals {
		if iv.Contains(d) {
			return true
		}
	}
	return false
}

// YearsSinceEnd returns the years elapsed since the most recent recession
// ended. It is zero while a recession is in progress and unknown for dates
// before the first recorded recession.
func (c *Calendar) YearsSinceEnd(d time.Time) types.Optional {
	d = day(d)
	if d.Before(c.intervals[0].Start) {
		return types.Unknown()
	}

	best := -1
	bestDays := 0
	for i, iv := range c.intervals {
		days := daysBetween(iv.End, d)
		if days > 0 && (best < 0 || days < bestDays) {
			best, bestDays = i, days
		}
	}
	if best < 0 {
		// inside (or on the last day of) the first recession
		return types.Known(0)
	}
	if best < len(c.intervals)-1 && !d.Before(c.intervals[best+1].Start) {
		return types.Known(0)
	}
	return types.Known(float64(bestDays) / daysPerYear)
}

// YearsUntilStart returns the years until the next recession starts. It is
// zero during a recession and unknown once d is past the end of the last
// recorded recession.
func (c *Calendar) YearsUntilStart(d time.Time) types.Optional {
	d = day(d)

	best := -1
	bestDays := 0
	for i, iv := range c.intervals {
		days := daysBetween(d, iv.Start)
		if days >= 0 && (best < 0 || days < bestDays) {
			best, bestDays = i, days
		}
	}
	if best < 0 {
		if !d.After(c.intervals[len(c.intervals)-1].End) {
			return types.Known(0)
		}
		return types.Unknown()
	}
	if best > 0 && !d.After(c.intervals[best-1].End) {
		return types.Known(0)
	}
	return types.Known(float64(bestDays) / daysPerYear)
}

// WithinNextYear is 1 when d is in a recession or a recession starts within
// one year of d, 0 when none does, and unknown when that year has not fully
// elapsed yet.
func (c *Calendar) WithinNextYear(d time.Time) types.Optional {
	d = day(d)
	if c.InRecession(d) {
		return types.Known(1)
	}
	horizon := d.AddDate(1, 0, 0)
	if horizon.After(day(c.now())) {
		return types.Unknown()
	}
	for _, iv := range c.intervals {
		if !iv.Start.Before(d) && !iv.Start.After(horizon) {
			return types.Known(1)
		}
	}
	return types.Known(0)
}

// day truncates t to midnight UTC.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole days from a to b (negative when b is earlier).
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / hoursPerDay)
}
