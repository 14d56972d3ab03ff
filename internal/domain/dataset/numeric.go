package dataset

import "github.com/eugene-kuroles/nakama-proj/internal/domain/model"

// Observation is one numeric criterion score together with its call.
type Observation struct {
	CallIndex    int
	CriteriaID   int64
	Value        float64
	FinalPercent float64
}

// NumericScores returns every numeric score on a numeric criterion, in call
// order then score order. Tags and missing scores are skipped.
func (d *Dataset) NumericScores() []Observation {
	var out []Observation
	for i := range d.calls {
		c := &d.calls[i]
		for _, s := range c.Scores {
			if !s.Criteria.IsNumeric() {
				continue
			}
			v, ok := s.Score.Numeric()
			if !ok {
				continue
			}
			out = append(out, Observation{CallIndex: i, CriteriaID: s.CriteriaID, Value: v, FinalPercent: c.FinalPercent})
		}
	}
	return out
}

// ScoresByCriteria groups NumericScores values per criterion and returns the
// criterion ids in first-seen order.
func (d *Dataset) ScoresByCriteria() (map[int64][]float64, []int64) {
	values := make(map[int64][]float64)
	var order []int64
	for _, o := range d.NumericScores() {
		if _, seen := values[o.CriteriaID]; !seen {
			order = append(order, o.CriteriaID)
		}
		values[o.CriteriaID] = append(values[o.CriteriaID], o.Value)
	}
	return values, order
}

// PairedWithFinal returns, for one criterion, the first numeric score of each
// call that has one alongside the call's final percent.
func (d *Dataset) PairedWithFinal(criteriaID int64) (scores, finals []float64) {
	for i := range d.calls {
		c := &d.calls[i]
		if v, ok := c.NumericScore(criteriaID); ok {
			scores = append(scores, v)
			finals = append(finals, c.FinalPercent)
		}
	}
	return scores, finals
}

// GroupAverages returns the numeric group averages per group and the group
// ids in first-seen order.
func (d *Dataset) GroupAverages() (map[int64][]float64, []int64) {
	values := make(map[int64][]float64)
	var order []int64
	for i := range d.calls {
		for _, ga := range d.calls[i].GroupAverages {
			v, ok := ga.Average.Numeric()
			if !ok {
				continue
			}
			if _, seen := values[ga.GroupID]; !seen {
				order = append(order, ga.GroupID)
			}
			values[ga.GroupID] = append(values[ga.GroupID], v)
		}
	}
	return values, order
}

// Matrix returns a calls x columns grid built by cell, with ok=false marking
// an absent cell.
func (d *Dataset) Matrix(columns []int64, cell func(c *model.Call, col int64) (float64, bool)) ([][]float64, [][]bool) {
	vals := make([][]float64, len(d.calls))
	present := make([][]bool, len(d.calls))
	for i := range d.calls {
		vals[i] = make([]float64, len(columns))
		present[i] = make([]bool, len(columns))
		for j, col := range columns {
			vals[i][j], present[i][j] = cell(&d.calls[i], col)
		}
	}
	return vals, present
}
