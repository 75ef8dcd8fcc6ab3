package fusion_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/series"
	"github.com/okian/recessionwatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func months(from, to string) []calendar.Date {
	return calendar.Generate(calendar.MustParse(from), calendar.MustParse(to))
}

func constFrame(name, column string, dates []calendar.Date, v float64) *fusion.Frame {
	vals := make([]float64, len(dates))
	for i := range vals {
		vals[i] = v
	}
	f, err := fusion.FromSeries(name, series.FromFloats(column, dates, vals))
	if err != nil {
		panic(err)
	}
	return f
}

func TestFuse(t *testing.T) {
	Convey("Given required frames with different native ranges", t, func() {
		a := constFrame("a", "a_col", months("1965-01-01", "1970-12-01"), 1)
		b := constFrame("b", "b_col", months("1966-06-01", "1971-12-01"), 2)
		c := constFrame("c", "c_col", months("1964-01-01", "1970-03-01"), 3)

		Convey("When fusing them", func() {
			table, err := fusion.Fuse([]*fusion.Frame{a, b, c}, nil)
			So(err, ShouldBeNil)

			Convey("Then the date range should be the intersection", func() {
				first, _ := table.First()
				last, _ := table.Last()
				So(first.String(), ShouldEqual, "1966-06-01")
				So(last.String(), ShouldEqual, "1970-03-01")
				So(table.Len(), ShouldEqual, len(months("1966-06-01", "1970-03-01")))
			})

			Convey("Then dates should be strictly ascending", func() {
				dates := table.Dates()
				for i := 1; i < len(dates); i++ {
					So(dates[i-1].Before(dates[i]), ShouldBeTrue)
				}
			})

			Convey("Then columns should follow join order", func() {
				So(table.Columns(), ShouldResemble, []string{"a_col", "b_col", "c_col"})
			})
		})

		Convey("When a sparse optional frame is left-joined", func() {
			opt := constFrame("opt", "opt_col", months("1968-01-01", "1968-06-01"), 9)
			table, err := fusion.Fuse([]*fusion.Frame{a, b}, []*fusion.Frame{opt})
			So(err, ShouldBeNil)

			Convey("Then it should not narrow the table", func() {
				So(table.Len(), ShouldEqual, len(months("1966-06-01", "1970-12-01")))
			})

			Convey("Then rows without optional data hold unknown for its columns only", func() {
				r, ok := table.Lookup(calendar.MustParse("1967-01-01"))
				So(ok, ShouldBeTrue)
				So(r.Get("opt_col").IsKnown(), ShouldBeFalse)
				So(r.Get("a_col").Equal(types.Known(1)), ShouldBeTrue)

				r, ok = table.Lookup(calendar.MustParse("1968-03-01"))
				So(ok, ShouldBeTrue)
				So(r.Get("opt_col").Equal(types.Known(9)), ShouldBeTrue)
			})
		})

		Convey("When the required frames do not overlap", func() {
			late := constFrame("late", "late_col", months("1980-01-01", "1981-01-01"), 4)
			_, err := fusion.Fuse([]*fusion.Frame{a, late}, nil)
			So(errors.Is(err, fusion.ErrJoinCoverageGap), ShouldBeTrue)
		})

		Convey("When no required frame is given", func() {
			_, err := fusion.Fuse(nil, []*fusion.Frame{a})
			So(errors.Is(err, fusion.ErrNoRequiredSources), ShouldBeTrue)
		})

		Convey("When two frames share a column name", func() {
			dup := constFrame("dup", "a_col", months("1965-01-01", "1970-12-01"), 5)
			_, err := fusion.Fuse([]*fusion.Frame{a}, []*fusion.Frame{dup})
			So(errors.Is(err, fusion.ErrDuplicateColumn), ShouldBeTrue)
		})
	})
}

func TestFrame(t *testing.T) {
	Convey("Given a frame", t, func() {
		dates := months("2000-01-01", "2000-04-01")
		f, err := fusion.NewFrame("f", dates)
		So(err, ShouldBeNil)
		So(f.AddFloats("x", []float64{1, 2, 3, 4}), ShouldBeNil)
		So(f.Add("y", []types.Optional{types.Known(1), types.Unknown(), types.Known(3), types.Known(4)}), ShouldBeNil)

		Convey("When dropping rows with missing values", func() {
			kept := f.DropMissing()

			Convey("Then only complete rows remain", func() {
				So(kept.Len(), ShouldEqual, 3)
				So(kept.Dates()[1].String(), ShouldEqual, "2000-03-01")
				So(f.Len(), ShouldEqual, 4)
			})
		})

		Convey("When a column has the wrong length", func() {
			err := f.AddFloats("z", []float64{1})
			So(errors.Is(err, fusion.ErrShapeMismatch), ShouldBeTrue)
		})

		Convey("When dates are not ascending", func() {
			_, err := fusion.NewFrame("bad", []calendar.Date{dates[1], dates[0]})
			So(errors.Is(err, fusion.ErrUnsortedDates), ShouldBeTrue)
		})
	})
}

func TestTable(t *testing.T) {
	Convey("Given a fused table", t, func() {
		table, err := fusion.Fuse([]*fusion.Frame{constFrame("a", "x", months("2000-01-01", "2000-03-01"), 1)}, nil)
		So(err, ShouldBeNil)

		Convey("When deriving a table with an extra column", func() {
			derived, err := table.WithColumn("pred", []types.Optional{types.Known(0.1), types.Known(0.2), types.Unknown()})
			So(err, ShouldBeNil)

			Convey("Then the original should be unchanged", func() {
				So(table.Columns(), ShouldResemble, []string{"x"})
				So(table.HasColumn("pred"), ShouldBeFalse)
				So(derived.Columns(), ShouldResemble, []string{"x", "pred"})
			})
		})

		Convey("When adding a column that exists", func() {
			_, err := table.WithColumn("x", make([]types.Optional, 3))
			So(errors.Is(err, fusion.ErrDuplicateColumn), ShouldBeTrue)
		})

		Convey("When mutating returned slices", func() {
			col, _ := table.Column("x")
			col[0] = types.Known(99)
			dates := table.Dates()
			dates[0] = calendar.MustParse("1900-01-01")

			Convey("Then the table should not see the change", func() {
				So(table.Value(0, "x").Equal(types.Known(1)), ShouldBeTrue)
				first, _ := table.First()
				So(first.String(), ShouldEqual, "2000-01-01")
			})
		})

		Convey("When encoding a record as JSON", func() {
			derived, err := table.WithColumn("label", []types.Optional{types.Unknown(), types.Known(1), types.Known(0)})
			So(err, ShouldBeNil)
			data, err := json.Marshal(derived.Row(0))
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"date":"2000-01-01","label":null,"x":1}`)
		})

		Convey("When looking up a date outside the table", func() {
			_, ok := table.Lookup(calendar.MustParse("2001-01-01"))
			So(ok, ShouldBeFalse)
		})
	})
}
