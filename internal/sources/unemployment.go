package sources

import (
	"context"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/features"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/series"
)

// Unemployment is the civilian unemployment rate (FRED UNRATE).
type Unemployment struct {
	base
	rate series.Fetcher
}

// NewUnemployment builds the unemployment adapter.
func NewUnemployment(rate series.Fetcher, opts ...Option) *Unemployment {
	return &Unemployment{base: newBase("unemployment", true, opts), rate: rate}
}

// Build emits the rate and its twelve month change.
func (u *Unemployment) Build(ctx context.Context, axis []calendar.Date, start calendar.Date) (*fusion.Frame, error) {
	obs, err := u.fetch(ctx, "UNRATE", u.rate)
	if err != nil {
		return nil, err
	}
	rate, err := u.floats(ColUnRate, obs, axis)
	if err != nil {
		return nil, err
	}
	return u.frame(axis, start,
		column{ColUnRate, rate},
		column{ColUnempChange12, features.Change(rate, features.MonthsPerYear)},
	)
}
