package aggregation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
	"github.com/eugene-kuroles/nakama-proj/internal/testcalls"
)

func fixture() *dataset.Dataset {
	b := testcalls.NewBuilder().Manager(1, "Anna").Manager(2, "Boris")
	b.Call(1, "2025-01-06", 80).Duration(125).Score(testcalls.Greeting, 100).Score(testcalls.Needs, 40).GroupAverage(testcalls.GroupOpening, 100)
	b.Call(2, "2025-01-07", 90).Duration(60).Score(testcalls.Greeting, 19.9).Tag(testcalls.Outcome, "won").GroupAverage(testcalls.GroupOpening, 20)
	b.Call(1, "2025-01-13", 60).Duration(60).Score(testcalls.Greeting, 20).Missing(testcalls.Needs)
	b.Call(0, "2025-02-01", 10).Duration(600)
	return dataset.MustNew(b.Calls())
}

func TestByManager(t *testing.T) {
	Convey("Given calls from two managers and one unassigned call", t, func() {
		rows := ByManager(fixture())

		Convey("Unassigned calls are dropped and rows are sorted by average", func() {
			So(len(rows), ShouldEqual, 2)
			So(rows[0].ManagerName, ShouldEqual, "Boris")
			So(rows[1].AverageScore, ShouldEqual, 70.0)
			So(rows[1].TotalCalls, ShouldEqual, 2)
			So(rows[1].TotalDurationMinutes, ShouldEqual, 3) // 185s
			So(rows[1].FirstCallDate, ShouldEqual, "2025-01-06")
			So(rows[1].LastCallDate, ShouldEqual, "2025-01-13")
		})
	})

	Convey("Empty input yields an empty slice", t, func() {
		So(ByManager(dataset.MustNew(nil)), ShouldBeEmpty)
	})
}

func TestByCriteria(t *testing.T) {
	Convey("Given numeric, tag and missing scores", t, func() {
		rows := ByCriteria(fixture())

		Convey("Only numeric values are aggregated", func() {
			So(len(rows), ShouldEqual, 2)
			greeting := rows[0]
			So(greeting.CriteriaID, ShouldEqual, testcalls.Greeting.ID)
			So(greeting.TotalCalls, ShouldEqual, 3)
			So(greeting.GroupName, ShouldEqual, "Opening")
		})

		Convey("The distribution closes the last bucket at 100", func() {
			d := rows[0].Distribution
			So(len(d), ShouldEqual, 5)
			So(d[0].Range, ShouldEqual, "0-20")
			So(d[0].Count, ShouldEqual, 1) // 19.9
			So(d[1].Count, ShouldEqual, 1) // 20
			So(d[4].Count, ShouldEqual, 1) // 100
		})
	})
}

func TestByGroup(t *testing.T) {
	Convey("Group averages are aggregated per group", t, func() {
		rows := ByGroup(fixture())
		So(len(rows), ShouldEqual, 1)
		So(rows[0].AverageScore, ShouldEqual, 60.0)
		So(rows[0].CallsEvaluated, ShouldEqual, 2)
		So(rows[0].CriteriaCount, ShouldEqual, 1)
	})
}

func TestByPeriod(t *testing.T) {
	Convey("Given calls on 2025-01-06 and 2025-01-13", t, func() {
		b := testcalls.NewBuilder()
		b.Call(1, "2025-01-06", 70)
		b.Call(1, "2025-01-13", 90)
		rows := ByPeriod(dataset.MustNew(b.Calls()), types.Week)

		Convey("Weekly buckets hold one call each", func() {
			So(len(rows), ShouldEqual, 2)
			So(rows[0].Period, ShouldEqual, "2025-W02")
			So(rows[0].TotalCalls, ShouldEqual, 1)
			So(rows[1].Period, ShouldEqual, "2025-W03")
			So(rows[1].TotalCalls, ShouldEqual, 1)
			So(rows[1].Label, ShouldEqual, "Week 3")
		})
	})

	Convey("Monthly buckets are sorted ascending", t, func() {
		rows := ByPeriod(fixture(), types.Month)
		So(len(rows), ShouldEqual, 2)
		So(rows[0].Period, ShouldEqual, "2025-01")
		So(rows[0].TotalCalls, ShouldEqual, 3)
		So(rows[1].Label, ShouldEqual, "February 2025")
	})
}

func TestPercentiles(t *testing.T) {
	Convey("Percentiles are monotonic", t, func() {
		p := Percentiles([]float64{55, 10, 90, 70, 30, 85})
		So(p.Min, ShouldEqual, 10.0)
		So(p.Max, ShouldEqual, 90.0)
		So(p.P10, ShouldBeLessThanOrEqualTo, p.P25)
		So(p.P25, ShouldBeLessThanOrEqualTo, p.P50)
		So(p.P50, ShouldBeLessThanOrEqualTo, p.P75)
		So(p.P75, ShouldBeLessThanOrEqualTo, p.P90)
		So(p.P50, ShouldEqual, 62.5)
	})

	Convey("Empty input yields zeros", t, func() {
		So(Percentiles(nil), ShouldResemble, types.PercentilesResult{})
	})
}

func TestManagerComparisons(t *testing.T) {
	Convey("Given the fixture", t, func() {
		ds := fixture()

		Convey("CompareManagers keeps only the requested managers", func() {
			rows := CompareManagers(ds, []int64{1})
			So(len(rows), ShouldEqual, 1)
			So(rows[0].ManagerID, ShouldEqual, int64(1))
			So(CompareManagers(ds, nil), ShouldBeEmpty)
		})

		Convey("CompareManagers ignores repeated and unknown ids", func() {
			rows := CompareManagers(ds, []int64{1, 1, 99})
			So(len(rows), ShouldEqual, 1)
			So(rows[0].ManagerID, ShouldEqual, int64(1))
		})

		Convey("ByManagerAndGroup nests group means under managers", func() {
			rows := ByManagerAndGroup(ds)
			So(len(rows), ShouldEqual, 2)
			So(rows[0].ManagerID, ShouldEqual, int64(1))
			So(rows[0].Groups["Opening"], ShouldEqual, 100.0)
		})
	})
}
