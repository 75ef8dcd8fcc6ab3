// Package fusion joins per-source frames into the canonical monthly table.
package fusion

import (
	"fmt"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/series"
	"github.com/okian/recessionwatch/internal/domain/types"
)

// Frame is a date-indexed set of named columns built by one source.
type Frame struct {
	name  string
	dates []calendar.Date
	names []string
	cols  map[string][]types.Optional
}

// NewFrame creates an empty frame over dates, which must be strictly
// ascending.
func NewFrame(name string, dates []calendar.Date) (*Frame, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			return nil, fmt.Errorf("%w: %s at %s", ErrUnsortedDates, name, dates[i])
		}
	}
	return &Frame{
		name:  name,
		dates: dates,
		cols:  make(map[string][]types.Optional),
	}, nil
}

// FromSeries builds a frame from aligned series sharing one calendar.
func FromSeries(name string, cols ...series.Aligned) (*Frame, error) {
	if len(cols) == 0 {
		return NewFrame(name, nil)
	}
	f, err := NewFrame(name, cols[0].Dates)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if err := f.AddSeries(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Name returns the frame label, usually the source name.
func (f *Frame) Name() string { return f.name }

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.dates) }

// Dates returns the row dates.
func (f *Frame) Dates() []calendar.Date { return f.dates }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string { return f.names }

// Column returns the values of one column.
func (f *Frame) Column(name string) ([]types.Optional, bool) {
	v, ok := f.cols[name]
	return v, ok
}

// Add appends a column. values must have one entry per date.
func (f *Frame) Add(name string, values []types.Optional) error {
	if _, dup := f.cols[name]; dup {
		return fmt.Errorf("%w: %s in %s", ErrDuplicateColumn, name, f.name)
	}
	if len(values) != len(f.dates) {
		return fmt.Errorf("%w: %s has %d values for %d dates", ErrShapeMismatch, name, len(values), len(f.dates))
	}
	f.names = append(f.names, name)
	f.cols[name] = values
	return nil
}

// AddFloats appends a column of known values.
func (f *Frame) AddFloats(name string, values []float64) error {
	opt := make([]types.Optional, len(values))
	for i, v := range values {
		opt[i] = types.Known(v)
	}
	return f.Add(name, opt)
}

// AddSeries appends an aligned series, which must share the frame's dates.
func (f *Frame) AddSeries(a series.Aligned) error {
	if len(a.Dates) != len(f.dates) {
		return fmt.Errorf("%w: %s has %d dates, frame has %d", ErrShapeMismatch, a.Name, len(a.Dates), len(f.dates))
	}
	for i := range a.Dates {
		if !a.Dates[i].Equal(f.dates[i]) {
			return fmt.Errorf("%w: %s is on a different calendar", ErrShapeMismatch, a.Name)
		}
	}
	return f.Add(a.Name, a.Values)
}

// DropMissing returns a frame holding only rows where every column is known.
func (f *Frame) DropMissing() *Frame {
	keep := make([]int, 0, len(f.dates))
	for i := range f.dates {
		complete := true
		for _, n := range f.names {
			if !f.cols[n][i].IsKnown() {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	return f.subset(keep)
}

func (f *Frame) subset(rows []int) *Frame {
	out := &Frame{
		name:  f.name,
		dates: make([]calendar.Date, len(rows)),
		names: append([]string(nil), f.names...),
		cols:  make(map[string][]types.Optional, len(f.names)),
	}
	for j, i := range rows {
		out.dates[j] = f.dates[i]
	}
	for _, n := range f.names {
		src := f.cols[n]
		dst := make([]types.Optional, len(rows))
		for j, i := range rows {
			dst[j] = src[i]
		}
		out.cols[n] = dst
	}
	return out
}

func (f *Frame) index() map[int64]int {
	idx := make(map[int64]int, len(f.dates))
	for i, d := range f.dates {
		idx[d.Time().Unix()] = i
	}
	return idx
}
