package recession_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/recessionwatch/internal/domain/recession"
	. "github.com/smartystreets/goconvey/convey"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedClock(s string) func() time.Time {
	return func() time.Time { return date(s) }
}

func TestNew(t *testing.T) {
	Convey("Given recession intervals", t, func() {
		Convey("When the table is empty", func() {
			_, err := recession.New(nil)
			So(errors.Is(err, recession.ErrEmptyCalendar), ShouldBeTrue)
		})

		Convey("When an interval ends before it starts", func() {
			_, err := recession.New([]recession.Interval{{Start: date("2009-06-01"), End: date("2007-12-01")}})
			So(errors.Is(err, recession.ErrInvalidInterval), ShouldBeTrue)
		})

		Convey("When intervals overlap", func() {
			_, err := recession.New([]recession.Interval{
				{Start: date("2000-01-01"), End: date("2001-01-01")},
				{Start: date("2001-01-01"), End: date("2002-01-01")},
			})
			So(errors.Is(err, recession.ErrUnorderedIntervals), ShouldBeTrue)
		})

		Convey("When intervals are out of order", func() {
			_, err := recession.New([]recession.Interval{
				{Start: date("2007-12-01"), End: date("2009-06-01")},
				{Start: date("2001-03-01"), End: date("2001-11-01")},
			})
			So(errors.Is(err, recession.ErrUnorderedIntervals), ShouldBeTrue)
		})

		Convey("When reading back the default table", func() {
			cal := recession.Default()
			ivs := cal.Intervals()

			Convey("Then it should hold the nine post-1960 recessions in order", func() {
				So(ivs, ShouldHaveLength, 9)
				So(ivs[0].Start, ShouldEqual, date("1960-04-01"))
				So(ivs[8].End, ShouldEqual, date("2020-04-01"))
			})

			Convey("And mutating the copy should not affect the calendar", func() {
				ivs[0].Start = date("1900-01-01")
				So(cal.Intervals()[0].Start, ShouldEqual, date("1960-04-01"))
			})
		})
	})
}

func TestSingleIntervalRoundTrip(t *testing.T) {
	Convey("Given a calendar with only the 2007-2009 recession", t, func() {
		cal, err := recession.New([]recession.Interval{
			{Start: date("2007-12-01"), End: date("2009-06-01")},
		}, recession.WithClock(fixedClock("2026-10-18")))
		So(err, ShouldBeNil)

		Convey("Then membership should be inclusive on both ends", func() {
			So(cal.InRecession(date("2008-06-01")), ShouldBeTrue)
			So(cal.InRecession(date("2007-12-01")), ShouldBeTrue)
			So(cal.InRecession(date("2009-06-01")), ShouldBeTrue)
			So(cal.InRecession(date("2009-07-01")), ShouldBeFalse)
			So(cal.InRecession(date("2007-11-01")), ShouldBeFalse)
		})

		Convey("Then years since the end should count from the trough", func() {
			v, ok := cal.YearsSinceEnd(date("2009-06-01")).Get()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 0)

			v, ok = cal.YearsSinceEnd(date("2010-06-01")).Get()
			So(ok, ShouldBeTrue)
			So(v, ShouldAlmostEqual, 1.0, 1e-9)

			So(cal.YearsSinceEnd(date("2007-11-01")).IsKnown(), ShouldBeFalse)
		})

		Convey("Then years until the start should be unknown after the last recession", func() {
			So(cal.YearsUntilStart(date("2010-01-01")).IsKnown(), ShouldBeFalse)

			v, ok := cal.YearsUntilStart(date("2009-01-01")).Get()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 0)

			v, ok = cal.YearsUntilStart(date("2006-12-01")).Get()
			So(ok, ShouldBeTrue)
			So(v, ShouldAlmostEqual, 1.0, 1e-9)
		})
	})
}

func TestDefaultCalendarQueries(t *testing.T) {
	Convey("Given the default recession calendar", t, func() {
		cal := recession.Default(recession.WithClock(fixedClock("2026-10-18")))

		Convey("When the date precedes the first recession", func() {
			d := date("1959-01-01")

			Convey("Then years since the last recession should be unknown, not zero", func() {
				So(cal.YearsSinceEnd(d).IsKnown(), ShouldBeFalse)
			})

			Convey("And years until the next one should be known", func() {
				v, ok := cal.YearsUntilStart(d).Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldBeGreaterThan, 1)
			})
		})

		Convey("When walking every month of every recession", func() {
			for _, iv := range cal.Intervals() {
				for d := iv.Start; !d.After(iv.End); d = d.AddDate(0, 1, 0) {
					So(cal.InRecession(d), ShouldBeTrue)

					since, ok := cal.YearsSinceEnd(d).Get()
					So(ok, ShouldBeTrue)
					So(since, ShouldEqual, 0)

					until, ok := cal.YearsUntilStart(d).Get()
					So(ok, ShouldBeTrue)
					So(until, ShouldEqual, 0)

					next, ok := cal.WithinNextYear(d).Get()
					So(ok, ShouldBeTrue)
					So(next, ShouldEqual, 1)
				}
			}
		})

		Convey("When the date is shortly after a trough", func() {
			d := date("1961-03-01")

			Convey("Then years since should count days from the end", func() {
				v, ok := cal.YearsSinceEnd(d).Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 28.0/365, 1e-9)
			})

			Convey("And years until should point at the 1969 recession", func() {
				v, ok := cal.YearsUntilStart(d).Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldBeBetween, 8.7, 8.8)
			})
		})

		Convey("When the date is after the last recession", func() {
			d := date("2022-01-01")

			Convey("Then years since should be measured from April 2020", func() {
				v, ok := cal.YearsSinceEnd(d).Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 640.0/365, 1e-9)
			})

			Convey("And years until should be unknown", func() {
				So(cal.YearsUntilStart(d).IsKnown(), ShouldBeFalse)
			})
		})

		Convey("When asking about recessions within the next year", func() {
			Convey("Then a start inside the window should count", func() {
				v, ok := cal.WithinNextYear(date("2019-03-01")).Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1)
			})

			Convey("And a start exactly one year out should count", func() {
				v, ok := cal.WithinNextYear(date("2019-02-01")).Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1)
			})

			Convey("And a quiet year should be zero", func() {
				v, ok := cal.WithinNextYear(date("2015-06-01")).Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0)
			})

			Convey("And a year that has fully elapsed should be known", func() {
				v, ok := cal.WithinNextYear(date("2025-10-01")).Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0)
			})

			Convey("And a year that has not elapsed yet should be unknown", func() {
				So(cal.WithinNextYear(date("2025-11-01")).IsKnown(), ShouldBeFalse)
				So(cal.WithinNextYear(date("2026-10-01")).IsKnown(), ShouldBeFalse)
			})
		})
	})
}
