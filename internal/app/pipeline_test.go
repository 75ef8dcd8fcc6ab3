package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/recessionwatch/internal/app"
	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/labels"
	"github.com/okian/recessionwatch/internal/domain/series"
	"github.com/okian/recessionwatch/internal/sources"
	. "github.com/smartystreets/goconvey/convey"
)

func fixedClock() time.Time { return time.Date(1972, time.December, 18, 0, 0, 0, 0, time.UTC) }

// monthlyFetcher reports one value per month from 1965 through 1972,
// starting at from.
func monthlyFetcher(from string, f func(i int) float64) series.Fetcher {
	dates := calendar.Generate(calendar.MustParse(from), calendar.MustParse("1972-12-01"))
	obs := make([]series.Observation, len(dates))
	for i, d := range dates {
		obs[i] = series.Observation{Date: d.Time(), Value: f(i)}
	}
	return series.FetcherFunc(func(context.Context) ([]series.Observation, error) { return obs, nil })
}

func constant(v float64) series.Fetcher {
	return monthlyFetcher("1965-01-01", func(int) float64 { return v })
}

func fakeAdapters(equity series.Fetcher) []sources.Adapter {
	return []sources.Adapter{
		sources.NewUnemployment(monthlyFetcher("1965-01-01", func(i int) float64 { return 4 + float64(i%12)/10 })),
		sources.NewHousing(constant(20000)),
		sources.NewInflation(constant(3), constant(2)),
		sources.NewYields(constant(5), constant(4)),
		sources.NewEquity(equity),
	}
}

func TestPipeline_Run(t *testing.T) {
	Convey("Given a pipeline over fake sources", t, func() {
		p := service.NewPipeline(
			service.WithAdapters(fakeAdapters(monthlyFetcher("1968-06-01", func(i int) float64 { return 100 + float64(i) }))...),
			service.WithClock(fixedClock),
		)

		Convey("When running it", func() {
			table, err := p.Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the table should start at the analysis start and end today", func() {
				first, _ := table.First()
				last, _ := table.Last()
				So(first.String(), ShouldEqual, "1968-01-01")
				So(last.String(), ShouldEqual, "1972-12-01")
				So(table.Len(), ShouldEqual, 60)
			})

			Convey("Then every label column should be present", func() {
				for _, name := range labels.Columns() {
					So(table.HasColumn(name), ShouldBeTrue)
				}
				So(table.HasColumn(sources.ColYieldDiff), ShouldBeTrue)
			})

			Convey("Then the optional source should not narrow the table", func() {
				r, ok := table.Lookup(calendar.MustParse("1968-02-01"))
				So(ok, ShouldBeTrue)
				So(r.Get(sources.ColSPPrice).IsKnown(), ShouldBeFalse)
				So(r.Get(sources.ColUnRate).IsKnown(), ShouldBeTrue)
			})

			Convey("Then months inside the 1969 recession should be labelled", func() {
				r, _ := table.Lookup(calendar.MustParse("1970-03-01"))
				So(r.Get(labels.InRecession).Or(-1), ShouldEqual, 1)
			})

			Convey("Then the last twelve months should have an unknown outlook", func() {
				So(labels.Counts(table)[labels.RecessionInNextYear], ShouldEqual, 12)
			})
		})
	})

	Convey("Given a pipeline with a failing source", t, func() {
		cause := errors.New("service unavailable")
		broken := series.FetcherFunc(func(context.Context) ([]series.Observation, error) { return nil, cause })
		p := service.NewPipeline(service.WithAdapters(fakeAdapters(broken)...), service.WithClock(fixedClock))

		Convey("When running it", func() {
			_, err := p.Run(context.Background())

			Convey("Then the run should fail with a source fetch error", func() {
				So(errors.Is(err, sources.ErrSourceFetch), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
			})
		})
	})

	Convey("Given misconfigured pipelines", t, func() {
		Convey("When no adapter is set", func() {
			_, err := service.NewPipeline(service.WithClock(fixedClock)).Run(context.Background())
			So(errors.Is(err, service.ErrNoAdapters), ShouldBeTrue)
		})

		Convey("When the epoch lies in the future", func() {
			p := service.NewPipeline(
				service.WithAdapters(fakeAdapters(constant(1))...),
				service.WithClock(fixedClock),
				service.WithEpoch(calendar.MustParse("1990-01-01")),
			)
			_, err := p.Run(context.Background())
			So(errors.Is(err, service.ErrEmptyAxis), ShouldBeTrue)
		})

		Convey("When the analysis start precedes the epoch", func() {
			p := service.NewPipeline(
				service.WithAdapters(fakeAdapters(constant(1))...),
				service.WithClock(fixedClock),
				service.WithAnalysisStart(calendar.MustParse("1960-01-01")),
			)
			_, err := p.Run(context.Background())
			So(errors.Is(err, service.ErrStartOffAxis), ShouldBeTrue)
		})
	})
}
