// Package correlation relates criteria to each other and to the final
// percent, and lays out per-manager criteria scores for heat maps.
package correlation

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/stats"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	matrixLabelMax  = 30
	heatmapLabelMax = 25
	minImpactPairs  = 3

	// HighImpact is the |r| from which a criterion drives the final percent.
	HighImpact = 0.6
	// MediumImpact is the |r| from which a criterion noticeably moves it.
	MediumImpact = 0.3
)

// CriteriaCorrelationMatrix correlates every pair of numeric criteria over the
// calls where both were scored. Criteria never scored are dropped; undefined
// correlations are reported as 0. Fewer than two criteria yield an empty matrix.
func CriteriaCorrelationMatrix(ds *dataset.Dataset) types.CorrelationMatrix {
	values, _ := ds.ScoresByCriteria()
	cols := lo.FilterMap(ds.CriteriaList(), func(c model.Criteria, _ int) (int64, bool) {
		return c.ID, len(values[c.ID]) > 0
	})
	vals, present := ds.Matrix(cols, func(c *model.Call, id int64) (float64, bool) { return c.NumericScore(id) })
	labels := lo.Map(cols, func(id int64, _ int) string { return truncate(ds.CriteriaName(id), matrixLabelMax, "...") })
	return pairwise(cols, labels, vals, present)
}

// GroupCorrelationMatrix is CriteriaCorrelationMatrix over per-call group averages.
func GroupCorrelationMatrix(ds *dataset.Dataset) types.CorrelationMatrix {
	values, _ := ds.GroupAverages()
	cols := lo.FilterMap(ds.Groups(), func(g model.CriteriaGroup, _ int) (int64, bool) {
		return g.ID, len(values[g.ID]) > 0
	})
	vals, present := ds.Matrix(cols, groupAverage)
	labels := lo.Map(cols, func(id int64, _ int) string { return ds.GroupName(id) })
	return pairwise(cols, labels, vals, present)
}

func groupAverage(c *model.Call, groupID int64) (float64, bool) {
	for _, ga := range c.GroupAverages {
		if ga.GroupID == groupID {
			if v, ok := ga.Average.Numeric(); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func pairwise(ids []int64, labels []string, vals [][]float64, present [][]bool) types.CorrelationMatrix {
	if len(ids) < 2 {
		return types.CorrelationMatrix{IDs: []int64{}, Labels: []string{}, Values: [][]float64{}}
	}
	out := make([][]float64, len(ids))
	for i := range ids {
		out[i] = make([]float64, len(ids))
	}
	for i := range ids {
		for j := i; j < len(ids); j++ {
			var x, y []float64
			for row := range vals {
				if present[row][i] && present[row][j] {
					x = append(x, vals[row][i])
					y = append(y, vals[row][j])
				}
			}
			r, ok := stats.Pearson(x, y)
			if !ok {
				r = 0
			}
			out[i][j] = stats.Round(r, 3)
			out[j][i] = out[i][j]
		}
	}
	return types.CorrelationMatrix{IDs: ids, Labels: labels, Values: out}
}

// CriteriaImpact correlates each numeric criterion that counts towards the
// final percent with the final percent itself. Criteria with fewer than three
// scored calls are omitted; constant series have correlation 0. Results are
// ordered by absolute correlation, strongest first.
func CriteriaImpact(ds *dataset.Dataset) []types.CriteriaImpact {
	out := make([]types.CriteriaImpact, 0)
	for _, cr := range ds.CriteriaList() {
		if !cr.IsNumeric() || !cr.InFinalScore {
			continue
		}
		scores, finals := ds.PairedWithFinal(cr.ID)
		if len(scores) < minImpactPairs {
			continue
		}
		r, ok := stats.Pearson(scores, finals)
		if !ok {
			r = 0
		}
		out = append(out, types.CriteriaImpact{
			CriteriaID:   cr.ID,
			CriteriaName: ds.CriteriaName(cr.ID),
			Correlation:  stats.Round(r, 3),
			Impact:       impactLevel(r),
			Observations: len(scores),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Correlation) > math.Abs(out[j].Correlation)
	})
	return out
}

func impactLevel(r float64) types.Level {
	switch a := math.Abs(r); {
	case a >= HighImpact:
		return types.LevelHigh
	case a >= MediumImpact:
		return types.LevelMedium
	default:
		return types.LevelLow
	}
}

// CriticalCriteria keeps the impacts whose absolute correlation reaches threshold.
func CriticalCriteria(ds *dataset.Dataset, threshold float64) []types.CriteriaImpact {
	return lo.Filter(CriteriaImpact(ds), func(ci types.CriteriaImpact, _ int) bool {
		return math.Abs(ci.Correlation) >= threshold
	})
}

// WeakCriteria lists criteria with at least minCalls numeric scores whose mean
// is below threshold, worst first.
func WeakCriteria(ds *dataset.Dataset, threshold float64, minCalls int) []types.WeakCriterion {
	values, order := ds.ScoresByCriteria()
	out := make([]types.WeakCriterion, 0)
	for _, id := range order {
		vs := values[id]
		if len(vs) < minCalls || len(vs) == 0 {
			continue
		}
		avg := stats.Mean(vs)
		if avg >= threshold {
			continue
		}
		below := lo.CountBy(vs, func(v float64) bool { return v < threshold })
		low, high := stats.MinMax(vs)
		cr, _ := ds.Criteria(id)
		out = append(out, types.WeakCriterion{
			CriteriaID:            id,
			CriteriaName:          ds.CriteriaName(id),
			GroupName:             cr.Group.Name,
			Average:               stats.Round(avg, 1),
			Min:                   stats.Round(low, 1),
			Max:                   stats.Round(high, 1),
			TotalCalls:            len(vs),
			BelowThresholdCount:   below,
			BelowThresholdPercent: stats.Round(float64(below)/float64(len(vs))*100, 1),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average < out[j].Average })
	return out
}

// ManagerCriteriaHeatmap averages each manager's numeric scores per criterion.
// Rows are managers by id, columns criteria by display order. A manager never
// scored on a criterion gets an empty cell with HasData false.
func ManagerCriteriaHeatmap(ds *dataset.Dataset) types.HeatMapData {
	assigned := ds.Assigned()
	values, _ := assigned.ScoresByCriteria()
	criteria := lo.Filter(assigned.CriteriaList(), func(c model.Criteria, _ int) bool { return len(values[c.ID]) > 0 })
	managers := assigned.ManagerIDs()
	sort.Slice(managers, func(i, j int) bool { return managers[i] < managers[j] })

	out := types.HeatMapData{
		Managers: lo.Map(managers, func(id int64, _ int) types.HeatMapAxis {
			return types.HeatMapAxis{ID: id, Name: ds.ManagerName(id)}
		}),
		Criteria: lo.Map(criteria, func(c model.Criteria, _ int) types.HeatMapAxis {
			return types.HeatMapAxis{ID: c.ID, Name: truncate(ds.CriteriaName(c.ID), heatmapLabelMax, "")}
		}),
		Cells: make([][]types.HeatMapCell, len(managers)),
	}
	for i, id := range managers {
		mine, _ := assigned.ForManager(id).ScoresByCriteria()
		row := make([]types.HeatMapCell, len(criteria))
		for j, c := range criteria {
			if vs := mine[c.ID]; len(vs) > 0 {
				row[j] = types.HeatMapCell{Value: stats.Round(stats.Mean(vs), 1), Count: len(vs), HasData: true}
			}
		}
		out.Cells[i] = row
	}
	return out
}

func truncate(s string, limit int, suffix string) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + suffix
}
