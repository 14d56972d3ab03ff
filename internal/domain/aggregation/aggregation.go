// Package aggregation groups calls by manager, criterion, criteria group or
// calendar period and computes descriptive statistics per group.
package aggregation

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/period"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/stats"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	distributionBins = 5
	scaleMax         = 100.0
)

// ByManager summarises each manager's calls, best average first. Calls
// without a manager are dropped.
func ByManager(ds *dataset.Dataset) []types.ManagerAggregation {
	out := make([]types.ManagerAggregation, 0)
	for _, id := range ds.ManagerIDs() {
		calls := ds.ForManager(id).Calls()
		scores := lo.Map(calls, func(c model.Call, _ int) float64 { return c.FinalPercent })
		seconds := lo.SumBy(calls, func(c model.Call) int { return c.DurationSeconds })
		first := lo.MinBy(calls, func(a, b model.Call) bool { return a.CallDate.Before(b.CallDate) })
		last := lo.MaxBy(calls, func(a, b model.Call) bool { return a.CallDate.After(b.CallDate) })
		out = append(out, types.ManagerAggregation{
			ManagerID:            id,
			ManagerName:          ds.ManagerName(id),
			TotalCalls:           len(calls),
			AverageScore:         stats.Round(stats.Mean(scores), 2),
			TotalDurationMinutes: seconds / 60,
			FirstCallDate:        period.Date(first.CallDate),
			LastCallDate:         period.Date(last.CallDate),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageScore > out[j].AverageScore })
	return out
}

// ByCriteria summarises the numeric scores of every criterion, best average first.
func ByCriteria(ds *dataset.Dataset) []types.CriteriaAggregation {
	values, order := ds.ScoresByCriteria()
	out := make([]types.CriteriaAggregation, 0, len(order))
	for _, id := range order {
		cr, _ := ds.Criteria(id)
		vs := values[id]
		out = append(out, types.CriteriaAggregation{
			CriteriaID:     id,
			CriteriaNumber: cr.Number,
			CriteriaName:   ds.CriteriaName(id),
			GroupName:      groupName(cr),
			AverageScore:   stats.Round(stats.Mean(vs), 2),
			TotalCalls:     len(vs),
			Distribution:   Distribution(vs),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageScore > out[j].AverageScore })
	return out
}

// ByGroup summarises the per-call group averages, best average first.
func ByGroup(ds *dataset.Dataset) []types.GroupAggregation {
	values, order := ds.GroupAverages()
	criteriaPerGroup := lo.CountValuesBy(ds.CriteriaList(), func(c model.Criteria) int64 { return c.Group.ID })
	out := make([]types.GroupAggregation, 0, len(order))
	for _, id := range order {
		vs := values[id]
		out = append(out, types.GroupAggregation{
			GroupID:        id,
			GroupName:      ds.GroupName(id),
			AverageScore:   stats.Round(stats.Mean(vs), 2),
			CriteriaCount:  criteriaPerGroup[id],
			CallsEvaluated: len(vs),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageScore > out[j].AverageScore })
	return out
}

// ByPeriod buckets calls by calendar period in ascending order.
func ByPeriod(ds *dataset.Dataset, g types.Granularity) []types.PeriodAggregation {
	buckets := period.Group(ds.Calls(), g)
	out := make([]types.PeriodAggregation, 0, len(buckets))
	for _, b := range buckets {
		scores := lo.Map(b.Calls, func(c *model.Call, _ int) float64 { return c.FinalPercent })
		seconds := lo.SumBy(b.Calls, func(c *model.Call) int { return c.DurationSeconds })
		out = append(out, types.PeriodAggregation{
			Period:               b.Key,
			Label:                b.Label,
			TotalCalls:           len(b.Calls),
			AverageScore:         stats.Round(stats.Mean(scores), 2),
			TotalDurationMinutes: seconds / 60,
		})
	}
	return out
}

// Percentiles returns p10..p90 with min and max; empty input yields zeros.
func Percentiles(values []float64) types.PercentilesResult {
	if len(values) == 0 {
		return types.PercentilesResult{}
	}
	s := stats.Sorted(values)
	return types.PercentilesResult{
		P10: stats.Round(stats.Percentile(s, 10), 2),
		P25: stats.Round(stats.Percentile(s, 25), 2),
		P50: stats.Round(stats.Percentile(s, 50), 2),
		P75: stats.Round(stats.Percentile(s, 75), 2),
		P90: stats.Round(stats.Percentile(s, 90), 2),
		Min: stats.Round(s[0], 2),
		Max: stats.Round(s[len(s)-1], 2),
	}
}

// Distribution counts values in five 20-point buckets over [0,100]. Buckets
// are half-open except the last, which also holds 100.
func Distribution(values []float64) []types.Bucket {
	if len(values) == 0 {
		return []types.Bucket{}
	}
	width := scaleMax / distributionBins
	out := make([]types.Bucket, distributionBins)
	for i := range out {
		start, end := float64(i)*width, float64(i+1)*width
		out[i] = types.Bucket{Range: fmt.Sprintf("%g-%g", start, end), Min: start, Max: end}
	}
	for _, v := range values {
		for i := range out {
			last := i == distributionBins-1
			if (v >= out[i].Min && v < out[i].Max) || (last && v == scaleMax) {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// ByManagerAndGroup returns each manager's mean group average per group name.
func ByManagerAndGroup(ds *dataset.Dataset) []types.ManagerGroupScores {
	out := make([]types.ManagerGroupScores, 0)
	for _, id := range ds.ManagerIDs() {
		values, order := ds.ForManager(id).GroupAverages()
		groups := make(map[string]float64, len(order))
		for _, gid := range order {
			groups[ds.GroupName(gid)] = stats.Round(stats.Mean(values[gid]), 2)
		}
		out = append(out, types.ManagerGroupScores{ManagerID: id, ManagerName: ds.ManagerName(id), Groups: groups})
	}
	return out
}

// CompareManagers restricts ByManager to the given managers.
func CompareManagers(ds *dataset.Dataset, ids []int64) []types.ManagerAggregation {
	if len(ids) == 0 {
		return []types.ManagerAggregation{}
	}
	wanted := lo.SliceToMap(ids, func(id int64) (int64, struct{}) { return id, struct{}{} })
	sub := ds.Where(func(c *model.Call) bool {
		id, ok := c.ManagerID()
		_, want := wanted[id]
		return ok && want
	})
	return ByManager(sub)
}

func groupName(c model.Criteria) string {
	if c.Group.Name == "" {
		return "Unknown"
	}
	return c.Group.Name
}
