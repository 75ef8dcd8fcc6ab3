package sources

import (
	"context"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/features"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/series"
)

// cpiWindow is the span of the long inflation change, in months.
const cpiWindow = 36

// Inflation is the year-over-year CPI change, headline (CPIAUCSL) and core
// (CPILFESL). Both fetchers already report percent change from a year ago.
type Inflation struct {
	base
	all  series.Fetcher
	core series.Fetcher
}

// NewInflation builds the inflation adapter.
func NewInflation(all, core series.Fetcher, opts ...Option) *Inflation {
	return &Inflation{base: newBase("inflation", true, opts), all: all, core: core}
}

// Build emits both inflation rates and the 36 month change of the headline rate.
func (i *Inflation) Build(ctx context.Context, axis []calendar.Date, start calendar.Date) (*fusion.Frame, error) {
	allObs, err := i.fetch(ctx, "CPIAUCSL", i.all)
	if err != nil {
		return nil, err
	}
	coreObs, err := i.fetch(ctx, "CPILFESL", i.core)
	if err != nil {
		return nil, err
	}
	all, err := i.floats(ColCPIAll, allObs, axis)
	if err != nil {
		return nil, err
	}
	core, err := i.floats(ColCPICore, coreObs, axis)
	if err != nil {
		return nil, err
	}
	return i.frame(axis, start,
		column{ColCPIAll, all},
		column{ColCPICore, core},
		column{ColCPIChange36, features.Change(all, cpiWindow)},
	)
}
