package trends

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
	"github.com/eugene-kuroles/nakama-proj/internal/testcalls"
)

func TestTrend(t *testing.T) {
	Convey("Given degenerate series", t, func() {
		Convey("An empty series is stable with an empty moving average", func() {
			r := Trend(nil, DefaultPeriod)
			So(r.Direction, ShouldEqual, types.DirectionStable)
			So(r.Slope, ShouldEqual, 0.0)
			So(r.MovingAverage, ShouldBeEmpty)
		})

		Convey("A single value is stable and echoed as the moving average", func() {
			r := Trend([]float64{42}, DefaultPeriod)
			So(r.Direction, ShouldEqual, types.DirectionStable)
			So(r.MovingAverage, ShouldResemble, []float64{42})
		})
	})

	Convey("Given a perfectly linear rising series", t, func() {
		r := Trend([]float64{10, 20, 30, 40, 50}, DefaultPeriod)

		Convey("It is up with slope 10 and full confidence", func() {
			So(r.Direction, ShouldEqual, types.DirectionUp)
			So(r.Slope, ShouldAlmostEqual, 10.0, 1e-9)
			So(r.Confidence, ShouldAlmostEqual, 1.0, 1e-9)
			So(r.ChangePercent, ShouldEqual, 400.0)
		})

		Convey("The moving average runs over the available points", func() {
			So(r.MovingAverage, ShouldResemble, []float64{10, 15, 20, 25, 30})
		})
	})

	Convey("Given a falling series", t, func() {
		r := Trend([]float64{90, 80, 71, 60, 50, 41}, 3)
		So(r.Direction, ShouldEqual, types.DirectionDown)
		So(r.Slope, ShouldBeLessThan, 0)
	})

	Convey("Given a noisy flat series", t, func() {
		r := Trend([]float64{70, 72, 69, 71, 70, 72}, DefaultPeriod)
		So(r.Direction, ShouldEqual, types.DirectionStable)
	})

	Convey("Given a series starting at zero", t, func() {
		So(Trend([]float64{0, 5}, DefaultPeriod).ChangePercent, ShouldEqual, 100.0)
		So(Trend([]float64{0, 0}, DefaultPeriod).ChangePercent, ShouldEqual, 0.0)
	})
}

func TestMovingAverage(t *testing.T) {
	Convey("A window of two averages adjacent points", t, func() {
		So(MovingAverage([]float64{2, 4, 6, 8}, 2), ShouldResemble, []float64{2, 3, 5, 7})
	})
}

func TestWeekOverWeek(t *testing.T) {
	Convey("Given no calls in either week", t, func() {
		empty := dataset.MustNew(nil)
		w := WeekOverWeek(empty, empty)
		So(w.CurrentWeekAvg, ShouldEqual, 0.0)
		So(w.PreviousWeekAvg, ShouldEqual, 0.0)
		So(w.ChangePercent, ShouldEqual, 0.0)
		So(w.Direction, ShouldEqual, types.DirectionStable)
	})

	Convey("Given an improving week", t, func() {
		prev := testcalls.NewBuilder()
		prev.Call(1, "2025-01-06", 60)
		prev.Call(1, "2025-01-07", 80)
		cur := testcalls.NewBuilder()
		cur.Call(1, "2025-01-13", 77)

		w := WeekOverWeek(dataset.MustNew(cur.Calls()), dataset.MustNew(prev.Calls()))
		So(w.CurrentWeekAvg, ShouldEqual, 77.0)
		So(w.PreviousWeekAvg, ShouldEqual, 70.0)
		So(w.ChangePercent, ShouldEqual, 10.0)
		So(w.Direction, ShouldEqual, types.DirectionUp)
		So(w.CurrentWeekCalls, ShouldEqual, 1)
		So(w.PreviousWeekCalls, ShouldEqual, 2)
	})

	Convey("A change within two percent is stable", t, func() {
		prev := testcalls.NewBuilder()
		prev.Call(1, "2025-01-06", 80)
		cur := testcalls.NewBuilder()
		cur.Call(1, "2025-01-13", 81)
		w := WeekOverWeek(dataset.MustNew(cur.Calls()), dataset.MustNew(prev.Calls()))
		So(w.Direction, ShouldEqual, types.DirectionStable)
	})
}

func TestTimeSeries(t *testing.T) {
	Convey("Given calls over two ISO weeks", t, func() {
		b := testcalls.NewBuilder()
		b.Call(1, "2025-01-13", 90).Duration(600)
		b.Call(1, "2025-01-06", 60).Duration(120)
		b.Call(2, "2025-01-07", 80).Duration(60)
		ds := dataset.MustNew(b.Calls())

		Convey("Weekly scores are means in ascending order", func() {
			pts := TimeSeries(ds, MetricScore, types.Week)
			So(len(pts), ShouldEqual, 2)
			So(pts[0].Period, ShouldEqual, "2025-W02")
			So(pts[0].Label, ShouldEqual, "Week 2")
			So(pts[0].Value, ShouldEqual, 70.0)
			So(pts[0].Count, ShouldEqual, 2)
			So(pts[1].Period, ShouldEqual, "2025-W03")
		})

		Convey("Counts and durations are measured per bucket", func() {
			counts := TimeSeries(ds, MetricCount, types.Week)
			So(counts[0].Value, ShouldEqual, 2.0)
			durations := TimeSeries(ds, MetricDuration, types.Week)
			So(durations[0].Value, ShouldEqual, 3.0)
			So(durations[1].Value, ShouldEqual, 10.0)
		})

		Convey("Daily labels name the weekday", func() {
			pts := TimeSeries(ds, MetricScore, types.Day)
			So(pts[0].Label, ShouldEqual, "Mon 06 Jan")
		})
	})

	Convey("Metric names are validated", t, func() {
		m, err := ParseMetric("")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, MetricScore)
		_, err = ParseMetric("revenue")
		So(errors.Is(err, ErrUnknownMetric), ShouldBeTrue)
	})
}

func TestDetectAnomalies(t *testing.T) {
	Convey("A constant series has no anomalies", t, func() {
		So(DetectAnomalies([]float64{5, 5, 5, 5}, DefaultAnomalyThreshold, nil), ShouldBeEmpty)
	})

	Convey("Fewer than three values have no anomalies", t, func() {
		So(DetectAnomalies([]float64{1, 100}, 0.1, nil), ShouldBeEmpty)
	})

	Convey("Given one outlier among steady values", t, func() {
		values := []float64{70, 70, 70, 70, 70, 70, 70, 70, 70, 10}
		dates := []string{"d0", "d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9"}
		got := DetectAnomalies(values, DefaultAnomalyThreshold, dates)

		So(len(got), ShouldEqual, 1)
		So(got[0].Index, ShouldEqual, 9)
		So(got[0].Value, ShouldEqual, 10.0)
		So(got[0].Expected, ShouldEqual, 64.0)
		So(got[0].Deviation, ShouldEqual, -3.0)
		So(got[0].Date, ShouldEqual, "d9")
	})
}

func TestScoreDistribution(t *testing.T) {
	Convey("Given scores including both ends of the scale", t, func() {
		b := testcalls.NewBuilder()
		for _, v := range []float64{0, 9.9, 10, 55, 100} {
			b.Call(1, "2025-01-06", v)
		}
		bins := ScoreDistribution(dataset.MustNew(b.Calls()), DefaultBins)

		So(len(bins), ShouldEqual, 10)
		So(bins[0].Range, ShouldEqual, "0-10")
		So(bins[0].Count, ShouldEqual, 2)
		So(bins[1].Count, ShouldEqual, 1)
		So(bins[5].Count, ShouldEqual, 1)
		So(bins[9].Range, ShouldEqual, "90-100")
		So(bins[9].Count, ShouldEqual, 1)
	})

	Convey("No calls yield no bins", t, func() {
		So(ScoreDistribution(dataset.MustNew(nil), DefaultBins), ShouldBeEmpty)
	})
}

func TestRollingStatistics(t *testing.T) {
	Convey("Given three daily means", t, func() {
		b := testcalls.NewBuilder()
		b.Call(1, "2025-01-06", 60)
		b.Call(1, "2025-01-07", 80)
		b.Call(1, "2025-01-08", 70)
		pts := RollingStatistics(dataset.MustNew(b.Calls()), 2, types.Day)

		So(len(pts), ShouldEqual, 3)
		So(pts[0].Std, ShouldEqual, 0.0)
		So(pts[0].Mean, ShouldEqual, 60.0)
		So(pts[1].Mean, ShouldEqual, 70.0)
		So(pts[1].Std, ShouldEqual, 14.14)
		So(pts[2].Min, ShouldEqual, 70.0)
		So(pts[2].Max, ShouldEqual, 80.0)
	})
}
