package recession

import "time"

// nberPeriods are the US business cycle contractions, peak month to trough
// month, since 1960.
var nberPeriods = [][2]string{ //nolint:gochecknoglobals // fixed reference table
	{"1960-04-01", "1961-02-01"},
	{"1969-12-01", "1970-11-01"},
	{"1973-11-01", "1975-03-01"},
	{"1980-01-01", "1980-07-01"},
	{"1981-07-01", "1982-11-01"},
	{"1990-07-01", "1991-03-01"},
	{"2001-03-01", "2001-11-01"},
	{"2007-12-01", "2009-06-01"},
	{"2020-02-01", "2020-04-01"},
}

// DefaultIntervals returns the built-in recession table.
func DefaultIntervals() []Interval {
	out := make([]Interval, len(nberPeriods))
	for i, p := range nberPeriods {
		out[i] = Interval{Start: mustDate(p[0]), End: mustDate(p[1])}
	}
	return out
}

// Default returns a Calendar over DefaultIntervals.
func Default(opts ...Option) *Calendar {
	c, err := New(DefaultIntervals(), opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func mustDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}
