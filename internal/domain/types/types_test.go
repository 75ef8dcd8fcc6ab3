package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/recessionwatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOptional(t *testing.T) {
	Convey("Given an Optional value", t, func() {
		Convey("When it is known", func() {
			o := types.Known(2.5)

			Convey("Then it should expose the value", func() {
				v, ok := o.Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 2.5)
				So(o.IsKnown(), ShouldBeTrue)
				So(o.Or(-1), ShouldEqual, 2.5)
				So(o.String(), ShouldEqual, "2.5")
			})
		})

		Convey("When it is unknown", func() {
			o := types.Unknown()

			Convey("Then it should not be confused with zero", func() {
				So(o.IsKnown(), ShouldBeFalse)
				So(o.Equal(types.Known(0)), ShouldBeFalse)
				So(o.Or(-1), ShouldEqual, -1)
				So(o.String(), ShouldEqual, "")
			})
		})

		Convey("When comparing values", func() {
			So(types.Known(1).Equal(types.Known(1)), ShouldBeTrue)
			So(types.Known(1).Equal(types.Known(2)), ShouldBeFalse)
			So(types.Unknown().Equal(types.Unknown()), ShouldBeTrue)
			So(types.Bool(true).Equal(types.Known(1)), ShouldBeTrue)
			So(types.Bool(false).Equal(types.Known(0)), ShouldBeTrue)
		})

		Convey("When encoding to JSON", func() {
			data, err := json.Marshal([]types.Optional{types.Known(1.5), types.Unknown()})

			Convey("Then unknown values should become null", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "[1.5,null]")
			})

			Convey("And decoding should restore them", func() {
				var out []types.Optional
				So(json.Unmarshal(data, &out), ShouldBeNil)
				So(out, ShouldHaveLength, 2)
				So(out[0].Equal(types.Known(1.5)), ShouldBeTrue)
				So(out[1].IsKnown(), ShouldBeFalse)
			})
		})

		Convey("When decoding an invalid value", func() {
			var o types.Optional
			err := json.Unmarshal([]byte(`"abc"`), &o)

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
