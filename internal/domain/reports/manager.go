package reports

import (
	"sort"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/aggregation"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/kpi"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/period"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/prediction"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/stats"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/trends"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	summaryRunes      = 100
	progressWindow    = 10
	noManagerCalls    = "No calls found for this manager"
	defaultPercentile = 50.0
)

// Manager builds the personal report of one manager for calls inside rng.
// The radar and growth areas compare the manager with everybody in rng.
func (b *Builder) Manager(ds *dataset.Dataset, managerID int64, rng model.DateRange) (types.ManagerReport, error) {
	if err := requireManager(ds, managerID); err != nil {
		return types.ManagerReport{}, err
	}
	f := ds.Filter(rng)
	mine := f.ForManager(managerID)
	summary := kpi.Summary(mine, rng, b.now())
	daily := trends.TimeSeries(mine, trends.MetricScore, types.Day)

	return types.ManagerReport{
		ManagerID:   managerID,
		ManagerName: ds.ManagerName(managerID),
		Period:      types.Period{From: summary.PeriodStart, To: summary.PeriodEnd},
		KPI:         summary,
		Radar:       radar(f, mine),
		Trend:       trends.Trend(seriesValues(daily), b.settings.MovingAveragePeriod),
		DailyTrends: daily,
		GrowthAreas: prediction.IdentifyImprovementPriority(f, managerID),
		RecentCalls: b.recentCalls(mine),
	}, nil
}

// radar compares group averages of mine with the whole team, one dimension
// per group the team was scored on, in group display order.
func radar(team, mine *dataset.Dataset) types.RadarChartData {
	teamVals, _ := team.GroupAverages()
	myVals, _ := mine.GroupAverages()
	dims := make([]types.RadarDimension, 0, len(teamVals))
	for _, g := range team.Groups() {
		tv, ok := teamVals[g.ID]
		if !ok {
			continue
		}
		mv := myVals[g.ID]
		dims = append(dims, types.RadarDimension{
			GroupID:        g.ID,
			GroupName:      team.GroupName(g.ID),
			TeamValue:      stats.Round(stats.Mean(tv), 1),
			ManagerValue:   stats.Round(stats.Mean(mv), 1),
			TeamHasData:    true,
			ManagerHasData: len(mv) > 0,
		})
	}
	return types.RadarChartData{Dimensions: dims}
}

func (b *Builder) recentCalls(ds *dataset.Dataset) []types.RecentCall {
	calls := ds.Chronological()
	sort.SliceStable(calls, func(i, j int) bool { return calls[i].CallDate.After(calls[j].CallDate) })
	return lo.Map(lo.Slice(calls, 0, b.settings.RecentCallsLimit), func(c model.Call, _ int) types.RecentCall {
		summary := []rune(c.Summary)
		if len(summary) > summaryRunes {
			summary = summary[:summaryRunes]
		}
		return types.RecentCall{
			CallID:          c.ID,
			Date:            period.Date(c.CallDate),
			Score:           c.FinalPercent,
			DurationMinutes: c.DurationSeconds / 60,
			Summary:         string(summary),
		}
	})
}

// Progress tracks a manager's improvement: the last ten calls against the
// first ten (or the later half against the earlier one when there are fewer),
// consistency as 100 minus the score spread, and the weekly trajectory.
func (b *Builder) Progress(ds *dataset.Dataset, managerID int64) types.ProgressReport {
	calls := ds.ForManager(managerID).Chronological()
	if len(calls) == 0 {
		return types.ProgressReport{Message: noManagerCalls}
	}
	scores := lo.Map(calls, func(c model.Call, _ int) float64 { return c.FinalPercent })
	n := len(scores)

	var first, last []float64
	switch {
	case n >= progressWindow:
		first, last = scores[:progressWindow], scores[n-progressWindow:]
	case n > 1:
		first, last = scores[:n/2], scores[n/2:]
	default:
		first, last = scores, scores
	}
	current := scores
	if n >= progressWindow {
		current = scores[n-progressWindow:]
	}
	low, high := stats.MinMax(scores)
	trajectory := prediction.PredictManagerTrajectory(ds, managerID, prediction.DefaultTrajectoryDays)

	return types.ProgressReport{
		HasData:        true,
		TotalCalls:     n,
		CurrentAverage: stats.Round(stats.Mean(current), 1),
		OverallAverage: stats.Round(stats.Mean(scores), 1),
		BestScore:      stats.Round(high, 1),
		WorstScore:     stats.Round(low, 1),
		Improvement:    stats.Round(stats.Mean(last)-stats.Mean(first), 1),
		Consistency:    stats.Round(max(0, 100-stats.PopStdDev(scores)), 1),
		Trajectory:     &trajectory,
	}
}

// ComparisonWithTeam places a manager against every other call, unassigned
// ones included. Percentile is the share of other calls scoring below the
// manager's average; rank comes from the per-manager averages.
func (b *Builder) ComparisonWithTeam(ds *dataset.Dataset, managerID int64) types.TeamComparison {
	mine := ds.ForManager(managerID)
	if mine.Empty() {
		return types.TeamComparison{Message: noManagerCalls}
	}
	others := ds.Where(func(c *model.Call) bool {
		id, ok := c.ManagerID()
		return !ok || id != managerID
	}).FinalPercents()

	myAvg := stats.Mean(mine.FinalPercents())
	teamAvg, percentile := myAvg, defaultPercentile
	if len(others) > 0 {
		teamAvg = stats.Mean(others)
		percentile = stats.PercentileRank(others, myAvg)
	}

	aggs := aggregation.ByManager(ds)
	rank := lo.IndexOf(lo.Map(aggs, func(a types.ManagerAggregation, _ int) int64 { return a.ManagerID }), managerID) + 1

	return types.TeamComparison{
		HasData:        true,
		ManagerAverage: stats.Round(myAvg, 1),
		TeamAverage:    stats.Round(teamAvg, 1),
		Difference:     stats.Round(myAvg-teamAvg, 1),
		Percentile:     stats.Round(percentile, 1),
		Rank:           rank,
		TotalManagers:  len(aggs),
	}
}
