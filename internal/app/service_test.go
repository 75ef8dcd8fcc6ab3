package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/recessionwatch/internal/adapters/repository"
	service "github.com/okian/recessionwatch/internal/app"
	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/series"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeRunner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRunner) Run(context.Context) (*fusion.Table, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	dates := calendar.Generate(calendar.MustParse("2020-01-01"), calendar.MustParse("2020-06-01"))
	vals := make([]float64, len(dates))
	for i := range vals {
		vals[i] = float64(n)
	}
	fr, err := fusion.FromSeries("fake", series.FromFloats("un_rate", dates, vals))
	if err != nil {
		return nil, err
	}
	return fusion.NewTable(fr), nil
}

func TestService_Refresh(t *testing.T) {
	Convey("Given a service over a working runner", t, func() {
		runner := &fakeRunner{}
		store := repository.NewMemoryStore()
		svc := service.New(runner, service.WithStore(store))

		Convey("When no refresh has happened", func() {
			_, err := svc.Latest()
			So(errors.Is(err, service.ErrNoTable), ShouldBeTrue)
		})

		Convey("When refreshing", func() {
			snap, err := svc.Refresh(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the snapshot should be served and persisted", func() {
				latest, err := svc.Latest()
				So(err, ShouldBeNil)
				So(latest.ID, ShouldEqual, snap.ID)
				So(latest.Table.Len(), ShouldEqual, 6)

				stored, err := store.Latest(context.Background())
				So(err, ShouldBeNil)
				So(stored.ID, ShouldEqual, snap.ID)
			})

			Convey("Then stats should describe the table", func() {
				stats := svc.GetStats()
				So(stats["refreshes"], ShouldEqual, 1)
				So(stats["rows"], ShouldEqual, 6)
				So(stats["firstDate"], ShouldEqual, "2020-01-01")
			})

			Convey("And a later refresh fails", func() {
				runner.err = errors.New("upstream down")
				_, err := svc.Refresh(context.Background())
				So(err, ShouldNotBeNil)

				Convey("Then the previous table should be kept", func() {
					latest, err := svc.Latest()
					So(err, ShouldBeNil)
					So(latest.ID, ShouldEqual, snap.ID)
					stats := svc.GetStats()
					So(stats["failures"], ShouldEqual, 1)
					So(stats["lastError"], ShouldEqual, "upstream down")
				})
			})
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a store holding an earlier table", t, func() {
		store := repository.NewMemoryStore()
		table, err := (&fakeRunner{}).Run(context.Background())
		So(err, ShouldBeNil)
		So(store.Save(context.Background(), repository.Snapshot{Table: table}), ShouldBeNil)

		Convey("When a scheduled service starts", func() {
			svc := service.New(&fakeRunner{}, service.WithStore(store), service.WithSchedule("0 6 * * *"))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the persisted table should be served", func() {
				latest, err := svc.Latest()
				So(err, ShouldBeNil)
				So(latest.Table.Len(), ShouldEqual, 6)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("Then stopping should mark it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When the schedule is not a cron expression", func() {
			svc := service.New(&fakeRunner{}, service.WithStore(store), service.WithSchedule("whenever"))
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrInvalidSchedule), ShouldBeTrue)
		})
	})
}

func TestService_Calendar(t *testing.T) {
	Convey("Given a service with the default calendar", t, func() {
		svc := service.New(service.NewPipeline(service.WithClock(fixedClock)))

		Convey("When listing recessions", func() {
			So(len(svc.Recessions()), ShouldBeGreaterThan, 5)
		})

		Convey("When asking for labels on a recession month", func() {
			set := svc.Labels(time.Date(1970, time.March, 15, 0, 0, 0, 0, time.UTC))
			So(set.InRecession, ShouldBeTrue)
			So(set.RecessionInNextYear.Or(-1), ShouldEqual, 1)
		})
	})
}
