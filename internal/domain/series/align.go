package series

import (
	"sort"
	"time"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/types"
)

// FillPolicy decides how gaps left by the calendar join are imputed.
type FillPolicy int

const (
	// FillBackThenForward fills a gap with the next known value, then fills
	// any trailing gap with the last known value.
	FillBackThenForward FillPolicy = iota
	// FillForwardThenBack carries the previous known value forward, then
	// fills any leading gap with the first known value.
	FillForwardThenBack
	// FillNone leaves gaps unknown.
	FillNone
)

type alignConfig struct {
	policy   FillPolicy
	interior bool
}

// AlignOption configures Align.
type AlignOption func(*alignConfig)

// WithFill selects the gap fill policy. The default is FillBackThenForward.
func WithFill(p FillPolicy) AlignOption {
	return func(c *alignConfig) { c.policy = p }
}

// WithInteriorFill makes observations that fall between calendar dates take
// part in the fill before the result is sampled on the calendar. Daily
// series use it so a month start that is not a trading day still takes the
// nearest following reading.
func WithInteriorFill() AlignOption {
	return func(c *alignConfig) { c.interior = true }
}

// Align joins obs onto axis by date and fills the gaps according to the
// configured policy. The result always has exactly one value per axis date.
// Without WithInteriorFill, observations whose date is not on the axis are
// ignored.
func Align(name string, obs []Observation, axis []calendar.Date, opts ...AlignOption) Aligned {
	cfg := alignConfig{policy: FillBackThenForward}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.interior {
		return alignInterior(name, obs, axis, cfg.policy)
	}

	out := Aligned{
		Name:     name,
		Dates:    axis,
		Values:   make([]types.Optional, len(axis)),
		observed: make([]bool, len(axis)),
	}
	for _, o := range obs {
		t := dayOf(o.Date)
		if t.Day() != 1 {
			continue
		}
		if i := calendar.Index(axis, calendar.FromTime(t)); i >= 0 {
			out.Values[i] = types.Known(o.Value)
			out.observed[i] = true
		}
	}
	fill(out.Values, cfg.policy)
	return out
}

func alignInterior(name string, obs []Observation, axis []calendar.Date, policy FillPolicy) Aligned {
	byDay := make(map[time.Time]float64, len(obs))
	for _, o := range obs {
		byDay[dayOf(o.Date)] = o.Value
	}
	keys := make([]time.Time, 0, len(byDay)+len(axis))
	for t := range byDay {
		keys = append(keys, t)
	}
	for _, d := range axis {
		if _, ok := byDay[d.Time()]; !ok {
			keys = append(keys, d.Time())
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	merged := make([]types.Optional, len(keys))
	for i, t := range keys {
		if v, ok := byDay[t]; ok {
			merged[i] = types.Known(v)
		}
	}
	fill(merged, policy)

	out := Aligned{
		Name:     name,
		Dates:    axis,
		Values:   make([]types.Optional, len(axis)),
		observed: make([]bool, len(axis)),
	}
	j := 0
	for i, d := range axis {
		for j < len(keys) && keys[j].Before(d.Time()) {
			j++
		}
		if j < len(keys) && keys[j].Equal(d.Time()) {
			out.Values[i] = merged[j]
			_, out.observed[i] = byDay[keys[j]]
		}
	}
	return out
}

func fill(vals []types.Optional, policy FillPolicy) {
	switch policy {
	case FillBackThenForward:
		backFill(vals)
		forwardFill(vals)
	case FillForwardThenBack:
		forwardFill(vals)
		backFill(vals)
	}
}

func backFill(vals []types.Optional) {
	next := types.Unknown()
	for i := len(vals) - 1; i >= 0; i-- {
		if vals[i].IsKnown() {
			next = vals[i]
			continue
		}
		vals[i] = next
	}
}

func forwardFill(vals []types.Optional) {
	prev := types.Unknown()
	for i := range vals {
		if vals[i].IsKnown() {
			prev = vals[i]
			continue
		}
		vals[i] = prev
	}
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
