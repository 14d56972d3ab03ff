// Package model contains domain models passed between layers.
package model

import "time"

// Manager is a sales agent whose calls are scored.
type Manager struct {
	ID   int64
	Name string
}

// CriteriaGroup is a named block of rubric criteria.
type CriteriaGroup struct {
	ID    int64
	Name  string
	Order int // display order
}

// ScoreType tells how a criterion's raw score text is interpreted.
type ScoreType string

const (
	ScoreTypeNumeric        ScoreType = "numeric"
	ScoreTypeTag            ScoreType = "tag"
	ScoreTypeRecommendation ScoreType = "recommendation"
)

// Criteria is a single rubric item.
type Criteria struct {
	ID           int64
	Number       int
	Name         string
	Group        CriteriaGroup
	InFinalScore bool
	ScoreType    ScoreType
	Order        int // display order
}

// IsNumeric reports whether scores on this criterion feed statistics.
func (c Criteria) IsNumeric() bool {
	return c.ScoreType == ScoreTypeNumeric || c.ScoreType == ""
}

// CallScore is the evaluation of one criterion on one call.
type CallScore struct {
	CriteriaID int64
	Criteria   Criteria
	Score      Score
	Reason     string
}

// CallGroupAverage is the precomputed mean of a call's scores inside one group.
type CallGroupAverage struct {
	GroupID int64
	Group   CriteriaGroup
	Average Score
}

// Call is one evaluated phone call with everything resolved.
type Call struct {
	ID              int64
	ProjectID       int64
	ExternalID      string
	Manager         *Manager // nil when unassigned
	CallDate        time.Time
	DurationSeconds int
	FinalPercent    float64
	Summary         string
	Scores          []CallScore
	GroupAverages   []CallGroupAverage
}

// ManagerID returns the manager id and whether the call is assigned.
func (c *Call) ManagerID() (int64, bool) {
	if c.Manager == nil {
		return 0, false
	}
	return c.Manager.ID, true
}

// NumericScore returns the first numeric score recorded for criteriaID on
// a numeric criterion.
func (c *Call) NumericScore(criteriaID int64) (float64, bool) {
	for _, s := range c.Scores {
		if s.CriteriaID != criteriaID || !s.Criteria.IsNumeric() {
			continue
		}
		if v, ok := s.Score.Numeric(); ok {
			return v, true
		}
	}
	return 0, false
}
