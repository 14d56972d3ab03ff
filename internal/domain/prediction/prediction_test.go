package prediction

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
	"github.com/eugene-kuroles/nakama-proj/internal/testcalls"
)

func series(keys []string, values []float64) []types.TimeSeriesPoint {
	out := make([]types.TimeSeriesPoint, len(keys))
	for i := range keys {
		out[i] = types.TimeSeriesPoint{Period: keys[i], Value: values[i]}
	}
	return out
}

func TestForecastNextPeriods(t *testing.T) {
	Convey("Given fewer than three points", t, func() {
		s := series([]string{"2025-W01", "2025-W02"}, []float64{10, 20})
		So(ForecastNextPeriods(s, 4, true), ShouldBeEmpty)
	})

	Convey("Given a linear weekly series", t, func() {
		s := series([]string{"2025-W01", "2025-W02", "2025-W03"}, []float64{10, 20, 30})
		got := ForecastNextPeriods(s, 2, true)

		So(len(got), ShouldEqual, 2)
		So(got[0].Period, ShouldEqual, "2025-W04")
		So(got[0].Predicted, ShouldEqual, 40.0)
		So(got[0].LowerBound, ShouldEqual, 40.0)
		So(got[0].UpperBound, ShouldEqual, 40.0)
		So(got[1].Period, ShouldEqual, "2025-W05")
		So(got[1].Predicted, ShouldEqual, 50.0)
	})

	Convey("Percent forecasts are clamped to the scale", t, func() {
		s := series([]string{"2025-01", "2025-02", "2025-03"}, []float64{80, 90, 100})
		got := ForecastNextPeriods(s, 1, true)
		So(got[0].Period, ShouldEqual, "2025-04")
		So(got[0].Predicted, ShouldEqual, 100.0)

		unclamped := ForecastNextPeriods(s, 1, false)
		So(unclamped[0].Predicted, ShouldEqual, 110.0)
	})

	Convey("Unknown keys are labelled by offset", t, func() {
		s := series([]string{"a", "b", "c"}, []float64{1, 2, 3})
		So(ForecastNextPeriods(s, 1, false)[0].Period, ShouldEqual, "Period +1")
	})
}

func TestPredictIfNoImprovement(t *testing.T) {
	Convey("Given a manager without calls", t, func() {
		p := PredictIfNoImprovement(dataset.MustNew(nil), 7)
		So(p.RiskLevel, ShouldEqual, types.LevelUnknown)
		So(p.AtRiskCriteria, ShouldBeEmpty)
	})

	Convey("Given a steadily declining manager", t, func() {
		b := testcalls.NewBuilder()
		dates := []string{"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10"}
		for i, v := range []float64{90, 85, 80, 75, 70} {
			b.Call(1, dates[i], v)
		}
		b.Call(1, "2025-01-11", 65).Score(testcalls.Budget, 50).Score(testcalls.Greeting, 90).Tag(testcalls.Outcome, "lost")
		b.Call(2, "2025-01-11", 100)
		p := PredictIfNoImprovement(dataset.MustNew(b.Calls()), 1)

		So(p.CallsAnalyzed, ShouldEqual, 6)
		So(p.CurrentAverage, ShouldEqual, 77.5)
		So(p.Slope, ShouldEqual, -5.0)
		So(p.RiskLevel, ShouldEqual, types.LevelHigh)
		So(p.Predicted30, ShouldEqual, 0.0)

		Convey("Low scores on the latest call are at risk", func() {
			So(p.AtRiskCriteria, ShouldResemble, []types.AtRiskCriterion{
				{CriteriaID: testcalls.Budget.ID, CriteriaName: testcalls.Budget.Name, Score: 50},
			})
		})
	})

	Convey("Given fewer than five calls the projection is flat", t, func() {
		b := testcalls.NewBuilder()
		b.Call(1, "2025-01-06", 60)
		b.Call(1, "2025-01-07", 80)
		p := PredictIfNoImprovement(dataset.MustNew(b.Calls()), 1)
		So(p.Predicted30, ShouldEqual, 70.0)
		So(p.Predicted90, ShouldEqual, 70.0)
		So(p.RiskLevel, ShouldEqual, types.LevelLow)
	})
}

func TestPredictScoreImprovement(t *testing.T) {
	Convey("Given final percent twice the criterion score", t, func() {
		b := testcalls.NewBuilder()
		dates := []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04"}
		for i, v := range []float64{10, 20, 30, 40} {
			b.Call(1, dates[i], 2*v).Score(testcalls.Budget, v)
		}

		Convey("Four pairs are not enough", func() {
			So(PredictScoreImprovement(dataset.MustNew(b.Calls()), testcalls.Budget.ID, 10), ShouldEqual, 0.0)
		})

		Convey("Five pairs give the slope times the points", func() {
			b.Call(1, "2025-01-05", 100).Score(testcalls.Budget, 50)
			So(PredictScoreImprovement(dataset.MustNew(b.Calls()), testcalls.Budget.ID, 10), ShouldEqual, 20.0)
		})
	})
}

func TestIdentifyImprovementPriority(t *testing.T) {
	Convey("Given a manager weak on one criterion", t, func() {
		b := testcalls.NewBuilder()
		b.Call(1, "2025-01-06", 60).Score(testcalls.Budget, 40).Score(testcalls.Greeting, 90)
		b.Call(1, "2025-01-07", 60).Score(testcalls.Budget, 40).Score(testcalls.Greeting, 90)
		b.Call(2, "2025-01-06", 90).Score(testcalls.Budget, 80).Score(testcalls.Greeting, 90)
		b.Call(2, "2025-01-07", 90).Score(testcalls.Budget, 80).Score(testcalls.Greeting, 90)
		got := IdentifyImprovementPriority(dataset.MustNew(b.Calls()), 1)

		So(len(got), ShouldEqual, 2)
		So(got[0].Rank, ShouldEqual, 1)
		So(got[0].CriteriaID, ShouldEqual, testcalls.Budget.ID)
		So(got[0].CurrentScore, ShouldEqual, 40.0)
		So(got[0].TeamAverage, ShouldEqual, 60.0)
		So(got[0].Gap, ShouldEqual, 20.0)
		So(got[0].Priority, ShouldAlmostEqual, 0.3, 1e-9)
		So(got[0].Reason, ShouldEqual, "Low score (40%); Below team by 20%")
		So(got[1].Rank, ShouldEqual, 2)
		So(got[1].Reason, ShouldEqual, "Room for improvement")
	})

	Convey("Given more than ten criteria", t, func() {
		b := testcalls.NewBuilder()
		cb := b.Call(1, "2025-01-06", 50)
		for i := 0; i < 12; i++ {
			cr := model.Criteria{ID: int64(100 + i), Name: "C", ScoreType: model.ScoreTypeNumeric, Order: i, InFinalScore: true}
			cb.Score(cr, float64(10+5*i))
		}
		got := IdentifyImprovementPriority(dataset.MustNew(b.Calls()), 1)

		Convey("At most ten suggestions come back with contiguous ranks", func() {
			So(len(got), ShouldEqual, 10)
			for i, s := range got {
				So(s.Rank, ShouldEqual, i+1)
			}
			So(got[0].CriteriaID, ShouldEqual, int64(100))
		})
	})

	Convey("An unknown manager gets no suggestions", t, func() {
		So(IdentifyImprovementPriority(dataset.MustNew(nil), 1), ShouldBeEmpty)
	})
}

func TestPredictManagerTrajectory(t *testing.T) {
	Convey("Given calls over three consecutive weeks", t, func() {
		b := testcalls.NewBuilder()
		b.Call(1, "2025-01-06", 60)
		b.Call(1, "2025-01-07", 60)
		b.Call(1, "2025-01-13", 70)
		b.Call(1, "2025-01-20", 80)
		b.Call(1, "2025-01-21", 80)
		tr := PredictManagerTrajectory(dataset.MustNew(b.Calls()), 1, 14)

		So(tr.HasEnoughData, ShouldBeTrue)
		So(tr.WeeksAnalyzed, ShouldEqual, 3)
		So(tr.CurrentAverage, ShouldEqual, 80.0)
		So(tr.TrendSlope, ShouldEqual, 6.6667)
		So(len(tr.Predictions), ShouldEqual, 2)
		So(tr.Predictions[0].Period, ShouldEqual, "2025-02-02")
		So(tr.Predictions[0].Predicted, ShouldEqual, 83.33)
		So(tr.Predictions[0].LowerBound, ShouldBeLessThan, 83.33)
		So(tr.Predictions[1].Period, ShouldEqual, "2025-02-09")
		So(tr.Predictions[1].Predicted, ShouldEqual, 90.0)
	})

	Convey("Given too few calls", t, func() {
		b := testcalls.NewBuilder()
		b.Call(1, "2025-01-06", 60)
		tr := PredictManagerTrajectory(dataset.MustNew(b.Calls()), 1, 30)
		So(tr.HasEnoughData, ShouldBeFalse)
		So(tr.Message, ShouldContainSubstring, "at least 5 calls")
		So(tr.Predictions, ShouldBeEmpty)
	})

	Convey("Given enough calls in only two weeks", t, func() {
		b := testcalls.NewBuilder()
		for _, d := range []string{"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-13", "2025-01-14"} {
			b.Call(1, d, 70)
		}
		tr := PredictManagerTrajectory(dataset.MustNew(b.Calls()), 1, 30)
		So(tr.HasEnoughData, ShouldBeFalse)
		So(tr.Message, ShouldEqual, "Not enough weekly data for prediction")
	})
}

func TestBuildFeatureImportance(t *testing.T) {
	build := func(n int) *dataset.Dataset {
		b := testcalls.NewBuilder()
		for i := 0; i < n; i++ {
			budget := float64(i * 3)
			b.Call(1, "2025-01-06", budget).
				Score(testcalls.Budget, budget).
				Score(testcalls.Greeting, float64((i*7)%11))
		}
		return dataset.MustNew(b.Calls())
	}

	Convey("Fewer than twenty calls give nothing", t, func() {
		So(BuildFeatureImportance(build(19)), ShouldBeEmpty)
	})

	Convey("Given a criterion that fully determines the final percent", t, func() {
		ds := build(30)
		got := BuildFeatureImportance(ds, WithTrees(20))

		So(len(got), ShouldEqual, 2)
		So(got[0].CriteriaID, ShouldEqual, testcalls.Budget.ID)
		So(got[0].Importance, ShouldBeGreaterThan, got[1].Importance)
		So(got[0].Importance+got[1].Importance, ShouldAlmostEqual, 1.0, 1e-3)

		Convey("The same seed reproduces the result", func() {
			So(BuildFeatureImportance(ds, WithTrees(20)), ShouldResemble, got)
		})
	})

	Convey("A depth of one credits a single split per tree", t, func() {
		got := BuildFeatureImportance(build(30), WithTrees(20), WithMaxDepth(1))
		So(got[0].CriteriaID, ShouldEqual, testcalls.Budget.ID)
		So(got[0].Importance, ShouldEqual, 1.0)
		So(got[1].Importance, ShouldEqual, 0.0)
	})

	Convey("A cancelled context stops the ensemble", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		got, err := FeatureImportance(ctx, build(30))
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
		So(got, ShouldBeNil)
	})
}

func TestFeatureImportanceScales(t *testing.T) {
	Convey("Given 3000 calls scored on 30 criteria", t, func() {
		group := model.CriteriaGroup{ID: 1, Name: "Rubric", Order: 1}
		criteria := make([]model.Criteria, 30)
		for i := range criteria {
			criteria[i] = model.Criteria{
				ID:           int64(100 + i),
				Number:       i + 1,
				Name:         "Criterion",
				Group:        group,
				InFinalScore: true,
				ScoreType:    model.ScoreTypeNumeric,
				Order:        i + 1,
			}
		}
		rng := rand.New(rand.NewSource(1))
		b := testcalls.NewBuilder()
		for i := 0; i < 3000; i++ {
			scores := make([]float64, len(criteria))
			for j := range scores {
				scores[j] = float64(rng.Intn(101))
			}
			final := 0.6*scores[0] + 0.3*scores[1] + 0.1*scores[2]
			cb := b.Call(int64(1+i%5), "2025-01-06", final)
			for j, cr := range criteria {
				cb.Score(cr, scores[j])
			}
		}
		ds := dataset.MustNew(b.Calls())

		Convey("The default ensemble finishes in a few seconds", func() {
			start := time.Now()
			got := BuildFeatureImportance(ds)
			So(time.Since(start), ShouldBeLessThan, 10*time.Second)

			So(len(got), ShouldEqual, 30)
			So(got[0].CriteriaID, ShouldEqual, int64(100))
			So(got[1].CriteriaID, ShouldEqual, int64(101))
		})
	})
}
