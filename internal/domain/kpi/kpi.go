// Package kpi computes headline indicators: averages, the manager ranking,
// per-criterion statistics and the dashboard summary.
package kpi

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/period"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/stats"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	// rankingTrendMinCalls is the minimum number of calls for a ranking trend.
	rankingTrendMinCalls = 4
	// rankingTrendDelta is the half-over-half difference that counts as a move.
	rankingTrendDelta = 5.0
)

// AverageScore returns the mean final percent inside r, 0 when empty.
func AverageScore(ds *dataset.Dataset, r model.DateRange) float64 {
	return stats.Round(stats.Mean(ds.Filter(r).FinalPercents()), 2)
}

// ManagerRanking ranks managers by mean final percent inside r. Ties keep
// first-appearance order. Unassigned calls are ignored.
func ManagerRanking(ds *dataset.Dataset, r model.DateRange) []types.ManagerRanking {
	filtered := ds.Filter(r)
	out := make([]types.ManagerRanking, 0)
	for _, id := range filtered.ManagerIDs() {
		mine := filtered.ForManager(id)
		chrono := lo.Map(mine.Chronological(), func(c model.Call, _ int) float64 { return c.FinalPercent })
		out = append(out, types.ManagerRanking{
			ManagerID:    id,
			ManagerName:  ds.ManagerName(id),
			AverageScore: stats.Round(stats.Mean(chrono), 2),
			TotalCalls:   len(chrono),
			Trend:        HalfTrend(chrono, rankingTrendMinCalls, rankingTrendDelta),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageScore > out[j].AverageScore })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// HalfTrend compares the mean of the second half of scores with the first
// half. Fewer than minCalls scores is stable.
func HalfTrend(scores []float64, minCalls int, delta float64) types.Direction {
	if len(scores) < minCalls || len(scores) < 2 {
		return types.DirectionStable
	}
	mid := len(scores) / 2
	diff := stats.Mean(scores[mid:]) - stats.Mean(scores[:mid])
	switch {
	case diff > delta:
		return types.DirectionUp
	case diff < -delta:
		return types.DirectionDown
	default:
		return types.DirectionStable
	}
}

// CriteriaScores returns statistics for every numeric criterion keyed by id.
func CriteriaScores(ds *dataset.Dataset) map[int64]types.CriteriaStats {
	values, order := ds.ScoresByCriteria()
	out := make(map[int64]types.CriteriaStats, len(order))
	for _, id := range order {
		out[id] = criteriaStats(ds, id, values[id])
	}
	return out
}

// CriteriaScoresSorted returns CriteriaScores ordered by average ascending,
// worst first, ties by criterion display order.
func CriteriaScoresSorted(ds *dataset.Dataset) []types.CriteriaStats {
	values, order := ds.ScoresByCriteria()
	out := make([]types.CriteriaStats, 0, len(order))
	for _, id := range order {
		out = append(out, criteriaStats(ds, id, values[id]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average < out[j].Average })
	return out
}

func criteriaStats(ds *dataset.Dataset, id int64, vs []float64) types.CriteriaStats {
	cr, _ := ds.Criteria(id)
	low, high := stats.MinMax(vs)
	return types.CriteriaStats{
		CriteriaID:     id,
		CriteriaNumber: cr.Number,
		CriteriaName:   ds.CriteriaName(id),
		GroupName:      cr.Group.Name,
		Average:        stats.Round(stats.Mean(vs), 2),
		Min:            stats.Round(low, 2),
		Max:            stats.Round(high, 2),
		StdDev:         stats.Round(stats.PopStdDev(vs), 2),
		Count:          len(vs),
	}
}

// Summary returns the KPI block for calls inside r. Open bounds fall back to
// the observed span of the filtered calls, or today when there are none.
func Summary(ds *dataset.Dataset, r model.DateRange, today time.Time) types.KPISummary {
	filtered := ds.Filter(r)
	start, end := r.From, r.To
	if first, last, ok := filtered.DateSpan(); ok {
		if start.IsZero() {
			start = first
		}
		if end.IsZero() {
			end = last
		}
	}
	if start.IsZero() {
		start = today
	}
	if end.IsZero() {
		end = today
	}
	seconds := lo.SumBy(filtered.Calls(), func(c model.Call) int { return c.DurationSeconds })
	return types.KPISummary{
		AverageScore:         stats.Round(stats.Mean(filtered.FinalPercents()), 2),
		TotalCalls:           filtered.Len(),
		TotalDurationMinutes: seconds / 60,
		ManagersCount:        len(filtered.ManagerIDs()),
		PeriodStart:          period.Date(start),
		PeriodEnd:            period.Date(end),
	}
}

// CallsCount counts calls per period in ascending key order.
func CallsCount(ds *dataset.Dataset, g types.Granularity) []types.PeriodCount {
	buckets := period.Group(ds.Calls(), g)
	return lo.Map(buckets, func(b period.Bucket, _ int) types.PeriodCount {
		return types.PeriodCount{Period: b.Key, Label: b.Label, Count: len(b.Calls)}
	})
}
