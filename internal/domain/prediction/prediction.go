// Package prediction extrapolates scores and ranks coaching priorities.
// Every model is fitted inside the call that needs it and then discarded.
package prediction

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/period"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/stats"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	// z95 is the two-sided 95% normal quantile used for prediction bands.
	z95 = 1.96

	minForecastPoints  = 3
	minTrendCalls      = 5
	currentWindow      = 10
	atRiskScore        = 70.0
	maxAtRisk          = 5
	highRiskSlope      = -0.5
	mediumRiskSlope    = -0.2
	minImpactPairs     = 5
	impactPoints       = 10.0
	maxSuggestions     = 10
	lowScore           = 70.0
	teamGap            = 10.0
	highImpactReason   = 0.5
	minTrajectoryCalls = 5
	minTrajectoryWeeks = 3
	trajectoryRidge    = 1.0
	daysPerWeek        = 7

	// DefaultTrajectoryDays is the horizon used by progress reports.
	DefaultTrajectoryDays = 30
)

// ForecastNextPeriods extends series by periodsAhead points using a least
// squares line over the point index. The band is 1.96 residual standard
// deviations wide on each side. With clampPercent all values are bounded to
// [0,100]; otherwise only the lower bound is floored at 0. Fewer than three
// points give no forecast.
func ForecastNextPeriods(series []types.TimeSeriesPoint, periodsAhead int, clampPercent bool) []types.PredictionPoint {
	out := make([]types.PredictionPoint, 0)
	if len(series) < minForecastPoints || periodsAhead < 1 {
		return out
	}
	values := lo.Map(series, func(p types.TimeSeriesPoint, _ int) float64 { return p.Value })
	fit := stats.LinearFit(stats.Index(len(values)), values)
	band := z95 * fit.ResidualStd
	last := series[len(series)-1].Period

	for i := 1; i <= periodsAhead; i++ {
		pred := fit.Predict(float64(len(values) + i - 1))
		lower, upper := pred-band, pred+band
		if clampPercent {
			pred = stats.Clamp(pred, 0, 100)
			lower = stats.Clamp(lower, 0, 100)
			upper = stats.Clamp(upper, 0, 100)
		} else if lower < 0 {
			lower = 0
		}
		out = append(out, types.PredictionPoint{
			Period:     period.Next(last, i),
			Predicted:  stats.Round(pred, 2),
			LowerBound: stats.Round(lower, 2),
			UpperBound: stats.Round(upper, 2),
		})
	}
	return out
}

// PredictIfNoImprovement projects a manager's score 30 and 90 calls ahead
// from the slope of their chronological scores, starting at the mean of the
// last ten calls. Fewer than five calls project a flat line.
func PredictIfNoImprovement(ds *dataset.Dataset, managerID int64) types.ImprovementPrediction {
	calls := ds.ForManager(managerID).Chronological()
	out := types.ImprovementPrediction{
		ManagerID:      managerID,
		RiskLevel:      types.LevelUnknown,
		AtRiskCriteria: []types.AtRiskCriterion{},
	}
	if len(calls) == 0 {
		return out
	}

	scores := lo.Map(calls, func(c model.Call, _ int) float64 { return c.FinalPercent })
	current := stats.Mean(scores[max(0, len(scores)-currentWindow):])
	var slope float64
	if len(scores) >= minTrendCalls {
		slope = stats.LinearFit(stats.Index(len(scores)), scores).Slope
	}

	out.CurrentAverage = stats.Round(current, 2)
	out.Predicted30 = stats.Round(stats.Clamp(current+slope*30, 0, 100), 2)
	out.Predicted90 = stats.Round(stats.Clamp(current+slope*90, 0, 100), 2)
	out.Slope = stats.Round(slope, 4)
	out.CallsAnalyzed = len(scores)
	switch {
	case slope < highRiskSlope:
		out.RiskLevel = types.LevelHigh
	case slope < mediumRiskSlope:
		out.RiskLevel = types.LevelMedium
	default:
		out.RiskLevel = types.LevelLow
	}

	latest := calls[len(calls)-1]
	for _, s := range latest.Scores {
		if len(out.AtRiskCriteria) == maxAtRisk {
			break
		}
		v, ok := s.Score.Numeric()
		if !ok || !s.Criteria.IsNumeric() || v >= atRiskScore {
			continue
		}
		out.AtRiskCriteria = append(out.AtRiskCriteria, types.AtRiskCriterion{
			CriteriaID:   s.CriteriaID,
			CriteriaName: ds.CriteriaName(s.CriteriaID),
			Score:        v,
		})
	}
	return out
}

// PredictScoreImprovement estimates the change in final percent if the
// criterion improved by points, from a least squares fit of final percent on
// the criterion score. Fewer than five scored calls give 0.
func PredictScoreImprovement(ds *dataset.Dataset, criteriaID int64, points float64) float64 {
	scores, finals := ds.PairedWithFinal(criteriaID)
	if len(scores) < minImpactPairs {
		return 0
	}
	return stats.Round(stats.LinearFit(scores, finals).Slope*points, 2)
}

type candidate struct {
	s        types.ImprovementSuggestion
	priority float64
}

// IdentifyImprovementPriority ranks the criteria a manager should work on.
// Priority weighs a low own score (0.3), the criterion's impact on the final
// percent (0.4) and the gap to the team average (0.3). At most ten
// suggestions are returned, ranked 1..N.
func IdentifyImprovementPriority(ds *dataset.Dataset, managerID int64) []types.ImprovementSuggestion {
	mine := ds.ForManager(managerID)
	if mine.Empty() {
		return []types.ImprovementSuggestion{}
	}
	team, _ := ds.ScoresByCriteria()
	own, order := mine.ScoresByCriteria()

	cands := make([]candidate, 0, len(order))
	for _, id := range order {
		m := stats.Mean(own[id])
		t := stats.Mean(team[id])
		gap := t - m
		impact := PredictScoreImprovement(ds, id, impactPoints)

		priority := 0.3*max(0, (100-m)/100) + 0.4*math.Abs(impact)/10 + 0.3*max(0, gap)/50
		cr, _ := ds.Criteria(id)
		cands = append(cands, candidate{
			priority: priority,
			s: types.ImprovementSuggestion{
				CriteriaID:   id,
				CriteriaName: ds.CriteriaName(id),
				GroupName:    cr.Group.Name,
				CurrentScore: stats.Round(m, 1),
				TeamAverage:  stats.Round(t, 1),
				Gap:          stats.Round(gap, 1),
				Impact:       stats.Round(impact, 2),
				Priority:     stats.Round(priority, 4),
				Reason:       reason(m, gap, impact),
			},
		})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].priority > cands[j].priority })
	if len(cands) > maxSuggestions {
		cands = cands[:maxSuggestions]
	}
	return lo.Map(cands, func(c candidate, i int) types.ImprovementSuggestion {
		c.s.Rank = i + 1
		return c.s
	})
}

func reason(score, gap, impact float64) string {
	var parts []string
	if score < lowScore {
		parts = append(parts, fmt.Sprintf("Low score (%.0f%%)", score))
	}
	if gap > teamGap {
		parts = append(parts, fmt.Sprintf("Below team by %.0f%%", gap))
	}
	if impact > highImpactReason {
		parts = append(parts, "High impact on results")
	}
	if len(parts) == 0 {
		return "Room for improvement"
	}
	return strings.Join(parts, "; ")
}

// PredictManagerTrajectory fits a ridge line through a manager's weekly mean
// scores and projects it daysAhead/7 weeks forward. Weeks end on Sunday and
// weeks without calls are skipped; the x axis keeps real week distances.
// At least five calls spread over three weeks are required.
func PredictManagerTrajectory(ds *dataset.Dataset, managerID int64, daysAhead int) types.Trajectory {
	out := types.Trajectory{ManagerID: managerID, Predictions: []types.PredictionPoint{}}
	calls := ds.ForManager(managerID).Chronological()
	if len(calls) < minTrajectoryCalls {
		out.Message = fmt.Sprintf("Not enough data for prediction (need at least %d calls)", minTrajectoryCalls)
		return out
	}

	weeks, means := weeklyMeans(calls)
	if len(weeks) < minTrajectoryWeeks {
		out.Message = "Not enough weekly data for prediction"
		return out
	}
	x := lo.Map(weeks, func(w time.Time, _ int) float64 {
		return math.Round(w.Sub(weeks[0]).Hours()/24) / daysPerWeek
	})
	fit := stats.RidgeFit(x, means, trajectoryRidge)
	band := z95 * fit.ResidualStd
	lastWeek := weeks[len(weeks)-1]
	lastX := x[len(x)-1]

	for i := 0; i < daysAhead/daysPerWeek; i++ {
		pred := fit.Predict(lastX + float64(i+1))
		out.Predictions = append(out.Predictions, types.PredictionPoint{
			Period:     period.Date(lastWeek.AddDate(0, 0, daysPerWeek*(i+1))),
			Predicted:  stats.Round(stats.Clamp(pred, 0, 100), 2),
			LowerBound: stats.Round(max(0, pred-band), 2),
			UpperBound: stats.Round(min(100, pred+band), 2),
		})
	}
	out.HasEnoughData = true
	out.CurrentAverage = stats.Round(means[len(means)-1], 2)
	out.TrendSlope = stats.Round(fit.Slope, 4)
	out.WeeksAnalyzed = len(weeks)
	return out
}

// weeklyMeans averages chronologically sorted calls per Sunday-ending week.
func weeklyMeans(calls []model.Call) ([]time.Time, []float64) {
	var weeks []time.Time
	var sums, counts []float64
	for _, c := range calls {
		w := period.WeekEnding(c.CallDate)
		if n := len(weeks); n == 0 || !weeks[n-1].Equal(w) {
			weeks = append(weeks, w)
			sums = append(sums, 0)
			counts = append(counts, 0)
		}
		sums[len(sums)-1] += c.FinalPercent
		counts[len(counts)-1]++
	}
	means := make([]float64, len(weeks))
	for i := range weeks {
		means[i] = sums[i] / counts[i]
	}
	return weeks, means
}
