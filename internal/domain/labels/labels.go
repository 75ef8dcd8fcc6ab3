// Package labels stamps recession-relative target columns onto a fused
// table. Label values are never filled: unknown means the answer cannot be
// known yet.
package labels

import (
	"fmt"
	"time"

	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/recession"
	"github.com/okian/recessionwatch/internal/domain/types"
)

// Label column names.
const (
	InRecession         = "in_recession"
	YearsSinceRecession = "years_since_recession"
	YearsUntilRecession = "years_until_recession"
	RecessionInNextYear = "recession_in_next_year"
)

// Columns lists the label columns in the order Stamp appends them.
func Columns() []string {
	return []string{InRecession, YearsSinceRecession, YearsUntilRecession, RecessionInNextYear}
}

// IsLabel reports whether name is one of the label columns.
func IsLabel(name string) bool {
	for _, c := range Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// Set holds the four labels for one date.
type Set struct {
	Date                time.Time      `json:"date"`
	InRecession         bool           `json:"in_recession"`
	YearsSinceRecession types.Optional `json:"years_since_recession"`
	YearsUntilRecession types.Optional `json:"years_until_recession"`
	RecessionInNextYear types.Optional `json:"recession_in_next_year"`
}

// At evaluates every label for t against cal.
func At(cal *recession.Calendar, t time.Time) Set {
	return Set{
		Date:                t,
		InRecession:         cal.InRecession(t),
		YearsSinceRecession: cal.YearsSinceEnd(t),
		YearsUntilRecession: cal.YearsUntilStart(t),
		RecessionInNextYear: cal.WithinNextYear(t),
	}
}

// Stamp returns a new table with the four label columns appended.
func Stamp(table *fusion.Table, cal *recession.Calendar) (*fusion.Table, error) {
	dates := table.Dates()
	in := make([]types.Optional, len(dates))
	since := make([]types.Optional, len(dates))
	until := make([]types.Optional, len(dates))
	next := make([]types.Optional, len(dates))
	for i, d := range dates {
		set := At(cal, d.Time())
		in[i] = types.Bool(set.InRecession)
		since[i] = set.YearsSinceRecession
		until[i] = set.YearsUntilRecession
		next[i] = set.RecessionInNextYear
	}

	out := table
	for _, c := range []struct {
		name   string
		values []types.Optional
	}{
		{InRecession, in},
		{YearsSinceRecession, since},
		{YearsUntilRecession, until},
		{RecessionInNextYear, next},
	} {
		var err error
		if out, err = out.WithColumn(c.name, c.values); err != nil {
			return nil, fmt.Errorf("stamp %s: %w", c.name, err)
		}
	}
	return out, nil
}

// Counts summarizes how many values of each label column are unknown.
func Counts(table *fusion.Table) map[string]int {
	out := make(map[string]int, 4)
	for _, name := range Columns() {
		col, ok := table.Column(name)
		if !ok {
			continue
		}
		n := 0
		for _, v := range col {
			if !v.IsKnown() {
				n++
			}
		}
		out[name] = n
	}
	return out
}
