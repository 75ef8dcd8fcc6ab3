package sources

import (
	"context"
	"fmt"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/features"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/series"
)

// Yields are the daily 10 year and 1 year Treasury constant maturity rates
// (FRED DGS10 and DGS1), sampled on the first of each month. When the first
// is not a trading day the next reading is used.
type Yields struct {
	base
	ten series.Fetcher
	one series.Fetcher
}

// NewYields builds the yields adapter.
func NewYields(ten, one series.Fetcher, opts ...Option) *Yields {
	return &Yields{base: newBase("yields", true, opts), ten: ten, one: one}
}

// Build emits both yields, their spread and the inversion flag.
func (y *Yields) Build(ctx context.Context, axis []calendar.Date, start calendar.Date) (*fusion.Frame, error) {
	tenObs, err := y.fetch(ctx, "DGS10", y.ten)
	if err != nil {
		return nil, err
	}
	oneObs, err := y.fetch(ctx, "DGS1", y.one)
	if err != nil {
		return nil, err
	}
	ten, err := y.floats(ColTenYear, tenObs, axis, series.WithInteriorFill())
	if err != nil {
		return nil, err
	}
	one, err := y.floats(ColOneYear, oneObs, axis, series.WithInteriorFill())
	if err != nil {
		return nil, err
	}
	diff, err := features.Spread(ten, one)
	if err != nil {
		return nil, fmt.Errorf("yield spread: %w", err)
	}
	return y.frame(axis, start,
		column{ColTenYear, ten},
		column{ColOneYear, one},
		column{ColYieldDiff, diff},
		column{ColYieldBelowZero, features.BelowZero(diff)},
	)
}
