package reports

import (
	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/aggregation"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/correlation"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/kpi"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/prediction"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/stats"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/trends"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	focusAreas       = 3
	maxWeakCriteria  = 10
	starScore        = 80.0
	needsHelpScore   = 65.0
	digestListLength = 3
)

// Team builds the sales-lead report for calls inside rng.
func (b *Builder) Team(ds *dataset.Dataset, rng model.DateRange) types.TeamReport {
	f := ds.Filter(rng)
	summary := kpi.Summary(ds, rng, b.now())
	leaderboard := kpi.ManagerRanking(f, model.DateRange{})

	return types.TeamReport{
		Period:        types.Period{From: summary.PeriodStart, To: summary.PeriodEnd},
		TeamAverage:   stats.Round(stats.Mean(f.FinalPercents()), 2),
		TotalCalls:    f.Len(),
		Leaderboard:   leaderboard,
		Heatmap:       correlation.ManagerCriteriaHeatmap(f),
		CoachingQueue: b.coachingQueue(f, leaderboard),
		DailyTrends:   trends.TimeSeries(f, trends.MetricScore, types.Day),
	}
}

// coachingQueue lists managers below the coaching threshold or trending
// down, in leaderboard order.
func (b *Builder) coachingQueue(ds *dataset.Dataset, leaderboard []types.ManagerRanking) []types.CoachingItem {
	out := make([]types.CoachingItem, 0)
	for _, m := range leaderboard {
		if m.AverageScore >= b.settings.CoachingScoreThreshold && m.Trend != types.DirectionDown {
			continue
		}
		suggestions := prediction.IdentifyImprovementPriority(ds, m.ManagerID)
		out = append(out, types.CoachingItem{
			Priority:     len(out) + 1,
			Rank:         m.Rank,
			ManagerID:    m.ManagerID,
			ManagerName:  m.ManagerName,
			AverageScore: m.AverageScore,
			Trend:        m.Trend,
			FocusAreas: lo.Map(lo.Slice(suggestions, 0, focusAreas), func(s types.ImprovementSuggestion, _ int) string {
				return s.CriteriaName
			}),
		})
	}
	return out
}

// ManagerComparison puts the selected managers side by side with the
// direction of their weekly scores.
func (b *Builder) ManagerComparison(ds *dataset.Dataset, ids []int64) []types.ManagerComparisonEntry {
	return lo.Map(aggregation.CompareManagers(ds, ids), func(a types.ManagerAggregation, _ int) types.ManagerComparisonEntry {
		weekly := trends.TimeSeries(ds.ForManager(a.ManagerID), trends.MetricScore, types.Week)
		tr := trends.Trend(seriesValues(weekly), b.settings.MovingAveragePeriod)
		return types.ManagerComparisonEntry{ManagerAggregation: a, Trend: tr.Direction, ChangePercent: tr.ChangePercent}
	})
}

// CriteriaAnalysis collects the weakest criteria, those driving the final
// percent and per-criterion statistics.
func (b *Builder) CriteriaAnalysis(ds *dataset.Dataset) types.CriteriaAnalysis {
	weak := correlation.WeakCriteria(ds, b.settings.WeakScoreThreshold, b.settings.WeakMinCalls)
	high := lo.Filter(correlation.CriteriaImpact(ds), func(ci types.CriteriaImpact, _ int) bool {
		return ci.Impact == types.LevelHigh
	})
	return types.CriteriaAnalysis{
		WeakCriteria:       lo.Slice(weak, 0, maxWeakCriteria),
		HighImpactCriteria: high,
		CriteriaStats:      aggregation.ByCriteria(ds),
	}
}

// WeeklyDigest summarises the team for a week of calls. The star performer is
// the best-ranked manager trending up, or stable at 80 or more.
func (b *Builder) WeeklyDigest(ds *dataset.Dataset) types.WeeklyDigest {
	if ds.Empty() {
		return types.WeeklyDigest{
			Message:   "No calls in this period",
			NeedsHelp: []types.ManagerRanking{},
			Top3:      []types.ManagerRanking{},
			Bottom3:   []types.ManagerRanking{},
		}
	}
	ranking := kpi.ManagerRanking(ds, model.DateRange{})
	out := types.WeeklyDigest{
		HasData:     true,
		TotalCalls:  ds.Len(),
		TeamAverage: stats.Round(stats.Mean(ds.FinalPercents()), 1),
		Top3:        lo.Slice(ranking, 0, digestListLength),
		Bottom3:     []types.ManagerRanking{},
	}
	if star, ok := lo.Find(ranking, func(m types.ManagerRanking) bool {
		return m.Trend == types.DirectionUp || (m.Trend == types.DirectionStable && m.AverageScore >= starScore)
	}); ok {
		out.StarPerformer = &star
	}
	help := lo.Filter(ranking, func(m types.ManagerRanking, _ int) bool {
		return m.AverageScore < needsHelpScore || m.Trend == types.DirectionDown
	})
	out.NeedsHelp = lo.Slice(help, 0, digestListLength)
	if len(ranking) >= digestListLength {
		out.Bottom3 = ranking[len(ranking)-digestListLength:]
	}
	return out
}
