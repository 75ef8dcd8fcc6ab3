package calendar_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDate(t *testing.T) {
	Convey("Given month dates", t, func() {
		Convey("When truncating an arbitrary time", func() {
			d := calendar.FromTime(time.Date(2024, time.March, 17, 15, 4, 5, 0, time.UTC))

			Convey("Then it should land on the first of the month", func() {
				So(d.String(), ShouldEqual, "2024-03-01")
				So(d.Equal(calendar.NewDate(2024, time.March)), ShouldBeTrue)
			})
		})

		Convey("When parsing a mid-month date", func() {
			_, err := calendar.Parse("2024-03-15")

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, calendar.ErrNotMonthStart), ShouldBeTrue)
			})
		})

		Convey("When parsing garbage", func() {
			_, err := calendar.Parse("March 2024")
			So(err, ShouldNotBeNil)
		})

		Convey("When shifting across a year boundary", func() {
			d := calendar.MustParse("2023-11-01").AddMonths(3)
			So(d.String(), ShouldEqual, "2024-02-01")
			So(d.AddMonths(-14).String(), ShouldEqual, "2022-12-01")
		})

		Convey("When round-tripping through JSON", func() {
			data, err := json.Marshal(calendar.MustParse("1968-01-01"))
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `"1968-01-01"`)

			var back calendar.Date
			So(json.Unmarshal(data, &back), ShouldBeNil)
			So(back.Equal(calendar.MustParse("1968-01-01")), ShouldBeTrue)
		})
	})
}

func TestGenerate(t *testing.T) {
	Convey("Given an epoch and a current month", t, func() {
		epoch := calendar.MustParse("1965-01-01")

		Convey("When generating the monthly calendar", func() {
			axis := calendar.Generate(epoch, calendar.MustParse("1966-03-01"))

			Convey("Then it should be gapless and inclusive on both ends", func() {
				So(axis, ShouldHaveLength, 15)
				So(axis[0].String(), ShouldEqual, "1965-01-01")
				So(axis[14].String(), ShouldEqual, "1966-03-01")
				for i := 1; i < len(axis); i++ {
					So(axis[i].Equal(axis[i-1].AddMonths(1)), ShouldBeTrue)
				}
			})

			Convey("And Index should find every member", func() {
				So(calendar.Index(axis, calendar.MustParse("1965-06-01")), ShouldEqual, 5)
				So(calendar.Index(axis, calendar.MustParse("1970-01-01")), ShouldEqual, -1)
			})
		})

		Convey("When today equals the epoch", func() {
			So(calendar.Generate(epoch, epoch), ShouldHaveLength, 1)
		})

		Convey("When today precedes the epoch", func() {
			axis := calendar.Generate(epoch, calendar.MustParse("1964-12-01"))
			So(axis, ShouldNotBeNil)
			So(axis, ShouldBeEmpty)
		})
	})
}
