package fusion

import (
	"fmt"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/types"
)

// Fuse inner-joins the required frames on date, then left-joins the
// optional frames onto the result. Optional columns hold unknown values on
// dates their frame lacks. Dates come out ascending and unique.
func Fuse(required, optional []*Frame) (*Table, error) {
	if len(required) == 0 {
		return nil, ErrNoRequiredSources
	}

	seen := make(map[string]string)
	for _, f := range append(append([]*Frame(nil), required...), optional...) {
		for _, n := range f.names {
			if owner, dup := seen[n]; dup {
				return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateColumn, n, owner, f.name)
			}
			seen[n] = f.name
		}
	}

	indexes := make([]map[int64]int, len(required))
	for i, f := range required {
		indexes[i] = f.index()
	}

	// dates of the first frame that every other required frame also has
	base := required[0]
	var dates []calendar.Date
	rows := make([][]int, 0, base.Len())
	for _, d := range base.dates {
		key := d.Time().Unix()
		row := make([]int, len(required))
		ok := true
		for i, idx := range indexes {
			j, found := idx[key]
			if !found {
				ok = false
				break
			}
			row[i] = j
		}
		if ok {
			dates = append(dates, d)
			rows = append(rows, row)
		}
	}
	if len(dates) == 0 {
		return nil, ErrJoinCoverageGap
	}

	out := &Frame{name: "fused", dates: dates, cols: make(map[string][]types.Optional)}
	for i, f := range required {
		for _, n := range f.names {
			src := f.cols[n]
			dst := make([]types.Optional, len(dates))
			for r, row := range rows {
				dst[r] = src[row[i]]
			}
			out.names = append(out.names, n)
			out.cols[n] = dst
		}
	}

	for _, f := range optional {
		idx := f.index()
		for _, n := range f.names {
			src := f.cols[n]
			dst := make([]types.Optional, len(dates))
			for r, d := range dates {
				if j, ok := idx[d.Time().Unix()]; ok {
					dst[r] = src[j]
				}
			}
			out.names = append(out.names, n)
			out.cols[n] = dst
		}
	}
	return NewTable(out), nil
}
