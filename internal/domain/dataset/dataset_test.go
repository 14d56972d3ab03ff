package dataset_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/testcalls"
)

func TestDataset(t *testing.T) {
	Convey("Given calls from two managers and one unassigned call", t, func() {
		b := testcalls.NewBuilder().Manager(1, "Anna").Manager(2, "Boris")
		b.Call(2, "2025-01-08", 70).Score(testcalls.Greeting, 60).Tag(testcalls.Outcome, "won")
		b.Call(1, "2025-01-06", 80).Score(testcalls.Greeting, 90).Missing(testcalls.Budget).GroupAverage(testcalls.GroupOpening, 90)
		b.Call(0, "2025-01-07", 50).Score(testcalls.Greeting, 40)
		ds, err := dataset.New(b.Calls())
		So(err, ShouldBeNil)

		Convey("Lookups are resolved once", func() {
			So(ds.ManagerName(1), ShouldEqual, "Anna")
			So(ds.ManagerName(99), ShouldEqual, "Manager 99")
			So(ds.ManagerIDs(), ShouldResemble, []int64{2, 1})
			So(ds.CriteriaName(testcalls.Greeting.ID), ShouldEqual, testcalls.Greeting.Name)
			So(ds.GroupName(testcalls.GroupOpening.ID), ShouldEqual, "Opening")
		})

		Convey("Subsets share lookups", func() {
			sub := ds.ForManager(1)
			So(sub.Len(), ShouldEqual, 1)
			So(sub.ManagerName(2), ShouldEqual, "Boris")
			So(sub.ManagerIDs(), ShouldResemble, []int64{1})
			So(ds.Assigned().Len(), ShouldEqual, 2)
		})

		Convey("Date filters are inclusive", func() {
			r := model.DateRange{From: testcalls.Day("2025-01-07"), To: testcalls.Day("2025-01-08")}
			So(ds.Filter(r).Len(), ShouldEqual, 2)
		})

		Convey("Chronological order does not touch the input", func() {
			chrono := ds.Chronological()
			So(chrono[0].FinalPercent, ShouldEqual, 80.0)
			So(ds.Calls()[0].FinalPercent, ShouldEqual, 70.0)
		})

		Convey("Only numeric scores are observed", func() {
			obs := ds.NumericScores()
			So(len(obs), ShouldEqual, 3)
			values, order := ds.ScoresByCriteria()
			So(order, ShouldResemble, []int64{testcalls.Greeting.ID})
			So(values[testcalls.Greeting.ID], ShouldResemble, []float64{60, 90, 40})
		})

		Convey("Date span covers all calls", func() {
			first, last, ok := ds.DateSpan()
			So(ok, ShouldBeTrue)
			So(first.Day(), ShouldEqual, 6)
			So(last.Day(), ShouldEqual, 8)
		})
	})

	Convey("A call without a date is rejected", t, func() {
		_, err := dataset.New([]model.Call{{ID: 5, FinalPercent: 50}})
		So(errors.Is(err, dataset.ErrMissingCallDate), ShouldBeTrue)
	})

	Convey("An empty list is valid", t, func() {
		ds, err := dataset.New(nil)
		So(err, ShouldBeNil)
		So(ds.Empty(), ShouldBeTrue)
		_, _, ok := ds.DateSpan()
		So(ok, ShouldBeFalse)
	})
}
