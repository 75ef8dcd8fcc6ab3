// Package features computes fixed-window derived columns from gap-free
// monthly series. Rows before a window is complete default to zero; they
// fall outside the analysis window once the series is truncated.
package features

import "fmt"

// MonthsPerYear is the window used by year-over-year features.
const MonthsPerYear = 12

// Change returns v[t]-v[t-n].
func Change(v []float64, n int) []float64 {
	out := make([]float64, len(v))
	for t := n; t < len(v); t++ {
		out[t] = v[t] - v[t-n]
	}
	return out
}

// PctChange returns the percentage change over n periods. A zero base
// yields zero.
func PctChange(v []float64, n int) []float64 {
	out := make([]float64, len(v))
	for t := n; t < len(v); t++ {
		base := v[t-n]
		if base == 0 {
			continue
		}
		out[t] = (v[t] - base) / base * 100
	}
	return out
}

// YearOverYear is PctChange over twelve months.
func YearOverYear(v []float64) []float64 {
	return PctChange(v, MonthsPerYear)
}

// Climb is the change of an already computed percentage change series,
// measuring acceleration rather than level.
func Climb(pct []float64, n int) []float64 {
	return Change(pct, n)
}

// Spread returns a[t]-b[t].
func Spread(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out, nil
}

// BelowZero returns 1 where d is negative and 0 elsewhere.
func BelowZero(d []float64) []float64 {
	out := make([]float64, len(d))
	for i, x := range d {
		if x < 0 {
			out[i] = 1
		}
	}
	return out
}
