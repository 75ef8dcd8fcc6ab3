package fusion

import (
	"encoding/json"
	"fmt"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/types"
)

// Record is one row of a Table.
type Record struct {
	Date   calendar.Date
	Values map[string]types.Optional
}

// Get returns the value of column name, unknown when absent.
func (r Record) Get(name string) types.Optional {
	return r.Values[name]
}

// MarshalJSON flattens the record into {"date": ..., "<column>": value}.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		flat[k] = v
	}
	flat["date"] = r.Date
	return json.Marshal(flat)
}

// Table is the immutable fused monthly table. Every accessor returns copies;
// derive new tables with WithColumn.
type Table struct {
	dates []calendar.Date
	names []string
	cols  map[string][]types.Optional
	index map[int64]int
}

// NewTable freezes a frame into a table.
func NewTable(f *Frame) *Table {
	t := &Table{
		dates: append([]calendar.Date(nil), f.dates...),
		names: append([]string(nil), f.names...),
		cols:  make(map[string][]types.Optional, len(f.names)),
	}
	for _, n := range f.names {
		t.cols[n] = append([]types.Optional(nil), f.cols[n]...)
	}
	t.index = (&Frame{dates: t.dates}).index()
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.dates) }

// Dates returns a copy of the row dates.
func (t *Table) Dates() []calendar.Date {
	return append([]calendar.Date(nil), t.dates...)
}

// Columns returns a copy of the column names in join order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

// HasColumn reports whether name is a column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns a copy of one column.
func (t *Table) Column(name string) ([]types.Optional, bool) {
	v, ok := t.cols[name]
	if !ok {
		return nil, false
	}
	return append([]types.Optional(nil), v...), true
}

// Value returns the cell at row i, column name.
func (t *Table) Value(i int, name string) types.Optional {
	v, ok := t.cols[name]
	if !ok || i < 0 || i >= len(v) {
		return types.Unknown()
	}
	return v[i]
}

// Row returns row i.
func (t *Table) Row(i int) Record {
	r := Record{Date: t.dates[i], Values: make(map[string]types.Optional, len(t.names))}
	for _, n := range t.names {
		r.Values[n] = t.cols[n][i]
	}
	return r
}

// Records returns every row in date order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.dates))
	for i := range t.dates {
		out[i] = t.Row(i)
	}
	return out
}

// Lookup returns the row for date d.
func (t *Table) Lookup(d calendar.Date) (Record, bool) {
	i, ok := t.index[d.Time().Unix()]
	if !ok {
		return Record{}, false
	}
	return t.Row(i), true
}

// First returns the earliest date.
func (t *Table) First() (calendar.Date, bool) {
	if len(t.dates) == 0 {
		return calendar.Date{}, false
	}
	return t.dates[0], true
}

// Last returns the latest date.
func (t *Table) Last() (calendar.Date, bool) {
	if len(t.dates) == 0 {
		return calendar.Date{}, false
	}
	return t.dates[len(t.dates)-1], true
}

// WithColumn returns a new table with an extra column. The receiver is
// left unchanged.
func (t *Table) WithColumn(name string, values []types.Optional) (*Table, error) {
	if _, dup := t.cols[name]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}
	if len(values) != len(t.dates) {
		return nil, fmt.Errorf("%w: %s has %d values for %d rows", ErrShapeMismatch, name, len(values), len(t.dates))
	}
	out := t.Clone()
	out.names = append(out.names, name)
	out.cols[name] = append([]types.Optional(nil), values...)
	return out, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		dates: append([]calendar.Date(nil), t.dates...),
		names: append([]string(nil), t.names...),
		cols:  make(map[string][]types.Optional, len(t.names)+1),
		index: make(map[int64]int, len(t.index)),
	}
	for _, n := range t.names {
		out.cols[n] = append([]types.Optional(nil), t.cols[n]...)
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}

// Frame returns a mutable copy of the table as a frame.
func (t *Table) Frame(name string) *Frame {
	c := t.Clone()
	return &Frame{name: name, dates: c.dates, names: c.names, cols: c.cols}
}
