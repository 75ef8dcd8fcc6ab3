package sources

import (
	"context"
	"fmt"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/features"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/series"
)

// Equity is the monthly average S&P 500 price. It is supplementary: months
// the source lacks are not imputed and stay unknown after the join.
type Equity struct {
	base
	price series.Fetcher
}

// NewEquity builds the equity adapter.
func NewEquity(price series.Fetcher, opts ...Option) *Equity {
	return &Equity{base: newBase("equity", false, opts), price: price}
}

// Build emits the price with its one and two month changes, computed over
// the months the source actually reports.
func (e *Equity) Build(ctx context.Context, axis []calendar.Date, start calendar.Date) (*fusion.Frame, error) {
	obs, err := e.fetch(ctx, "SP500", e.price)
	if err != nil {
		return nil, err
	}
	aligned := series.Align(ColSPPrice, obs, axis, series.WithFill(series.FillNone))

	var dates []calendar.Date
	var price []float64
	for i, v := range aligned.Values {
		if p, ok := v.Get(); ok {
			dates = append(dates, aligned.Dates[i])
			price = append(price, p)
		}
	}
	monthly := features.PctChange(price, 1)
	bimonthly := features.PctChange(price, 2)

	keep := 0
	for keep < len(dates) && dates[keep].Before(start) {
		keep++
	}
	f, err := fusion.NewFrame(e.name, dates[keep:])
	if err != nil {
		return nil, fmt.Errorf("build %s frame: %w", e.name, err)
	}
	for _, c := range []column{
		{ColSPPrice, price[keep:]},
		{ColSPMonthly, monthly[keep:]},
		{ColSPBimonthly, bimonthly[keep:]},
	} {
		if err := f.AddFloats(c.name, c.values); err != nil {
			return nil, fmt.Errorf("build %s frame: %w", e.name, err)
		}
	}
	return f, nil
}
