package sources

import (
	"context"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/features"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/series"
)

// Housing is the quarterly median sales price of houses (FRED MSPUS).
// A quarter's price is carried forward through the following months.
type Housing struct {
	base
	price series.Fetcher
}

// NewHousing builds the housing adapter.
func NewHousing(price series.Fetcher, opts ...Option) *Housing {
	return &Housing{base: newBase("housing", true, opts), price: price}
}

// Build emits the price, its yearly change and the yearly climb of that change.
func (h *Housing) Build(ctx context.Context, axis []calendar.Date, start calendar.Date) (*fusion.Frame, error) {
	obs, err := h.fetch(ctx, "MSPUS", h.price)
	if err != nil {
		return nil, err
	}
	price, err := h.floats(ColMedianHouse, obs, axis, series.WithFill(series.FillForwardThenBack))
	if err != nil {
		return nil, err
	}
	yoy := features.YearOverYear(price)
	return h.frame(axis, start,
		column{ColMedianHouse, price},
		column{ColHouseChangeYear, yoy},
		column{ColHousingClimb, features.Climb(yoy, features.MonthsPerYear)},
	)
}
