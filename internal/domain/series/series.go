// Package series aligns raw source observations onto the monthly calendar.
package series

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/types"
)

// Observation is one raw (date, value) pair reported by a source.
type Observation struct {
	Date  time.Time
	Value float64
}

// Fetcher retrieves the raw observations of a single series.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Observation, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]Observation, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) ([]Observation, error) { return f(ctx) }

// Validate rejects observations that would silently corrupt alignment:
// missing dates, non-finite values and repeated dates.
func Validate(obs []Observation) error {
	seen := make(map[time.Time]struct{}, len(obs))
	for i, o := range obs {
		if o.Date.IsZero() {
			return fmt.Errorf("%w: observation %d has no date", ErrMalformedObservation, i)
		}
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return fmt.Errorf("%w: observation %d (%s) has non-finite value",
				ErrMalformedObservation, i, o.Date.Format(calendar.ISOLayout))
		}
		key := dayOf(o.Date)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate date %s", ErrMalformedObservation, key.Format(calendar.ISOLayout))
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Aligned is a single variable indexed by the monthly calendar.
type Aligned struct {
	Name   string
	Dates  []calendar.Date
	Values []types.Optional

	observed []bool
}

// Len returns the number of calendar rows.
func (a Aligned) Len() int { return len(a.Dates) }

// Floats returns the values as a plain slice. It fails with ErrGaps when
// any value is unknown, so window computations never see a gap.
func (a Aligned) Floats() ([]float64, error) {
	out := make([]float64, len(a.Values))
	for i, v := range a.Values {
		f, ok := v.Get()
		if !ok {
			return nil, fmt.Errorf("%w: %s at %s", ErrGaps, a.Name, a.Dates[i])
		}
		out[i] = f
	}
	return out, nil
}

// Complete reports whether every value is known.
func (a Aligned) Complete() bool {
	for _, v := range a.Values {
		if !v.IsKnown() {
			return false
		}
	}
	return true
}

// LastObserved returns the latest calendar date that carried a raw value
// (as opposed to a filled one).
func (a Aligned) LastObserved() (calendar.Date, bool) {
	for i := len(a.observed) - 1; i >= 0; i-- {
		if a.observed[i] {
			return a.Dates[i], true
		}
	}
	return calendar.Date{}, false
}

// Truncate drops every row before start.
func (a Aligned) Truncate(start calendar.Date) Aligned {
	i := sort.Search(len(a.Dates), func(i int) bool { return !a.Dates[i].Before(start) })
	out := Aligned{Name: a.Name, Dates: a.Dates[i:], Values: a.Values[i:]}
	if a.observed != nil {
		out.observed = a.observed[i:]
	}
	return out
}

// FromFloats builds an Aligned whose values are all known.
func FromFloats(name string, dates []calendar.Date, values []float64) Aligned {
	out := Aligned{Name: name, Dates: dates, Values: make([]types.Optional, len(values))}
	for i, v := range values {
		out.Values[i] = types.Known(v)
	}
	return out
}
