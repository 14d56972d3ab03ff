// Package testcalls produces call fixtures: a fluent builder for hand-made
// cases and a seeded generator for realistic synthetic data.
package testcalls

import "github.com/eugene-kuroles/nakama-proj/internal/domain/model"

// Standard rubric groups.
var (
	GroupOpening   = model.CriteriaGroup{ID: 1, Name: "Opening", Order: 1}
	GroupDiscovery = model.CriteriaGroup{ID: 2, Name: "Needs discovery", Order: 2}
	GroupClosing   = model.CriteriaGroup{ID: 3, Name: "Closing", Order: 3}
)

// Standard rubric criteria.
var (
	Greeting   = numeric(11, 1, "Greeting and introduction", GroupOpening, 1, true)
	Rapport    = numeric(12, 2, "Builds rapport in the first minute", GroupOpening, 2, true)
	Needs      = numeric(21, 3, "Asks open questions about the client's needs", GroupDiscovery, 3, true)
	Budget     = numeric(22, 4, "Did the rep confirm the budget?", GroupDiscovery, 4, true)
	Objections = numeric(31, 5, "Handles objections", GroupClosing, 5, true)
	NextStep   = numeric(32, 6, "Agrees on a concrete next step", GroupClosing, 6, true)
	// Politeness is scored but does not count towards the final percent.
	Politeness = numeric(33, 7, "Politeness", GroupClosing, 7, false)
	Outcome    = model.Criteria{ID: 40, Number: 8, Name: "Call outcome", Group: GroupClosing, ScoreType: model.ScoreTypeTag, Order: 8}
	Advice     = model.Criteria{ID: 41, Number: 9, Name: "Coach advice", Group: GroupClosing, ScoreType: model.ScoreTypeRecommendation, Order: 9}
)

func numeric(id int64, number int, name string, g model.CriteriaGroup, order int, inFinal bool) model.Criteria {
	return model.Criteria{
		ID:           id,
		Number:       number,
		Name:         name,
		Group:        g,
		InFinalScore: inFinal,
		ScoreType:    model.ScoreTypeNumeric,
		Order:        order,
	}
}

// NumericCriteria is the scored part of the standard rubric in display order.
func NumericCriteria() []model.Criteria {
	return []model.Criteria{Greeting, Rapport, Needs, Budget, Objections, NextStep, Politeness}
}

// Groups returns the standard rubric groups in display order.
func Groups() []model.CriteriaGroup {
	return []model.CriteriaGroup{GroupOpening, GroupDiscovery, GroupClosing}
}
