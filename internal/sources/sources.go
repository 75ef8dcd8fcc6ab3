// Package sources turns raw economic series into date-indexed frames, one
// adapter per upstream source.
package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/series"
	"github.com/okian/recessionwatch/pkg/logger"
	"github.com/okian/recessionwatch/pkg/metrics"
)

// Column names produced by the adapters.
const (
	ColUnRate          = "un_rate"
	ColUnempChange12   = "12_mo_unemp_change"
	ColMedianHouse     = "median_household_price"
	ColHouseChangeYear = "pct_house_change_year"
	ColHousingClimb    = "housing_climb_change"
	ColCPIAll          = "cpi_change_all"
	ColCPICore         = "cpi_change_less_food_and_energy"
	ColCPIChange36     = "36_mo_cpi_change_all"
	ColSPPrice         = "average_sp_price"
	ColSPMonthly       = "pct_monthly_sp_change"
	ColSPBimonthly     = "pct_bimonthly_sp_change"
	ColTenYear         = "ten_yr_yield"
	ColOneYear         = "one_yr_yield"
	ColYieldDiff       = "yield_diff"
	ColYieldBelowZero  = "yield_below_zero"
)

// Adapter builds one source's frame on the monthly calendar.
type Adapter interface {
	Name() string
	Required() bool
	Build(ctx context.Context, axis []calendar.Date, start calendar.Date) (*fusion.Frame, error)
}

// Option applies a configuration option to an adapter.
type Option func(*base)

// WithLogger sets the logger used to report fetches.
func WithLogger(l logger.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.log = l
		}
	}
}

var errNoObservations = errors.New("no observations")

// base carries what every adapter shares.
type base struct {
	name     string
	required bool
	log      logger.Logger
}

func newBase(name string, required bool, opts []Option) base {
	b := base{name: name, required: required, log: logger.Nop()}
	for _, opt := range opts {
		opt(&b)
	}
	b.log = b.log.Named(name)
	return b
}

// Name returns the source name.
func (b base) Name() string { return b.name }

// Required reports whether the source is inner-joined.
func (b base) Required() bool { return b.required }

// fetch retrieves and validates one raw series. Every failure wraps
// ErrSourceFetch.
func (b base) fetch(ctx context.Context, seriesName string, f series.Fetcher) ([]series.Observation, error) {
	started := time.Now()
	obs, err := f.Fetch(ctx)
	metrics.RecordSourceFetch(b.name, float64(time.Since(started).Milliseconds()))
	if err == nil {
		err = series.Validate(obs)
	}
	if err == nil && len(obs) == 0 {
		err = errNoObservations
	}
	if err != nil {
		metrics.RecordSourceError(b.name)
		b.log.Error(ctx, "source fetch failed", logger.String("series", seriesName), logger.Error(err))
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrSourceFetch, b.name, seriesName, err)
	}

	latest := obs[0].Date
	for _, o := range obs[1:] {
		if o.Date.After(latest) {
			latest = o.Date
		}
	}
	metrics.UpdateSourceObservations(b.name, len(obs))
	metrics.UpdateSourceLastObservation(b.name, latest.Unix())
	b.log.Info(ctx, "source fetched",
		logger.String("series", seriesName),
		logger.Int("observations", len(obs)),
		logger.String("most_recent", latest.Format(calendar.ISOLayout)),
		logger.Duration("took", time.Since(started)),
	)
	return obs, nil
}

// floats aligns obs and returns its gap-free values.
func (b base) floats(name string, obs []series.Observation, axis []calendar.Date, opts ...series.AlignOption) ([]float64, error) {
	v, err := series.Align(name, obs, axis, opts...).Floats()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceFetch, b.name, err)
	}
	return v, nil
}

// column is a named derived value vector on the full calendar.
type column struct {
	name   string
	values []float64
}

// frame truncates every column to start and packs them into a frame.
func (b base) frame(axis []calendar.Date, start calendar.Date, cols ...column) (*fusion.Frame, error) {
	aligned := make([]series.Aligned, len(cols))
	for i, c := range cols {
		aligned[i] = series.FromFloats(c.name, axis, c.values).Truncate(start)
	}
	f, err := fusion.FromSeries(b.name, aligned...)
	if err != nil {
		return nil, fmt.Errorf("build %s frame: %w", b.name, err)
	}
	return f, nil
}
