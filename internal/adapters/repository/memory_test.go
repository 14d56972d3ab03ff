package repository

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/testcalls"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store built from unordered calls", t, func() {
		b := testcalls.NewBuilder()
		b.Call(2, "2025-01-09", 80)
		b.Call(1, "2025-01-06", 60)
		b.Call(0, "2025-01-07", 70)
		b.Call(1, "2025-01-12", 90)
		store := NewMemoryStore(b.Calls())

		Convey("All calls come back in date order", func() {
			calls, err := store.LoadCalls(ctx, model.CallQuery{})
			So(err, ShouldBeNil)
			So(len(calls), ShouldEqual, 4)
			So(calls[0].FinalPercent, ShouldEqual, 60.0)
			So(calls[3].FinalPercent, ShouldEqual, 90.0)
		})

		Convey("A manager filter skips unassigned calls", func() {
			calls, err := store.LoadCalls(ctx, model.CallQuery{ManagerID: 1})
			So(err, ShouldBeNil)
			So(len(calls), ShouldEqual, 2)
		})

		Convey("The date range is inclusive", func() {
			calls, err := store.LoadCalls(ctx, model.CallQuery{Range: model.DateRange{
				From: testcalls.Day("2025-01-07"),
				To:   testcalls.Day("2025-01-09"),
			}})
			So(err, ShouldBeNil)
			So(len(calls), ShouldEqual, 2)
		})

		Convey("An inverted range is rejected", func() {
			_, err := store.LoadCalls(ctx, model.CallQuery{Range: model.DateRange{
				From: testcalls.Day("2025-01-09"),
				To:   testcalls.Day("2025-01-07"),
			}})
			So(err, ShouldEqual, ErrInvalidQuery)
		})

		Convey("A closed store refuses reads", func() {
			So(store.Close(), ShouldBeNil)
			_, err := store.LoadCalls(ctx, model.CallQuery{})
			So(err, ShouldEqual, ErrClosed)
		})
	})

	Convey("A seeded store holds the generated calls", t, func() {
		cfg := testcalls.DefaultConfig()
		cfg.Calls = 50
		store := NewSeededMemoryStore(cfg)
		n, err := store.Count(ctx)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 50)
	})
}
