package testcalls

import (
	"strconv"
	"time"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

// Builder assembles a call list by hand.
type Builder struct {
	calls    []model.Call
	managers map[int64]*model.Manager
	nextID   int64
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{managers: make(map[int64]*model.Manager), nextID: 1}
}

// Manager registers a manager name. Unregistered ids get "Manager N".
func (b *Builder) Manager(id int64, name string) *Builder {
	b.managers[id] = &model.Manager{ID: id, Name: name}
	return b
}

func (b *Builder) manager(id int64) *model.Manager {
	if id == 0 {
		return nil
	}
	m, ok := b.managers[id]
	if !ok {
		m = &model.Manager{ID: id, Name: "Manager " + strconv.FormatInt(id, 10)}
		b.managers[id] = m
	}
	return m
}

// Call appends a call. managerID 0 leaves the call unassigned; date is YYYY-MM-DD.
func (b *Builder) Call(managerID int64, date string, final float64) *CallBuilder {
	c := model.Call{
		ID:              b.nextID,
		ProjectID:       1,
		Manager:         b.manager(managerID),
		CallDate:        Day(date).Add(10 * time.Hour),
		DurationSeconds: 300,
		FinalPercent:    final,
	}
	b.nextID++
	b.calls = append(b.calls, c)
	return &CallBuilder{b: b, idx: len(b.calls) - 1}
}

// Calls returns the built calls.
func (b *Builder) Calls() []model.Call {
	out := make([]model.Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallBuilder decorates the most recently added call.
type CallBuilder struct {
	b   *Builder
	idx int
}

func (cb *CallBuilder) call() *model.Call { return &cb.b.calls[cb.idx] }

// Score adds a numeric score.
func (cb *CallBuilder) Score(cr model.Criteria, v float64) *CallBuilder {
	c := cb.call()
	c.Scores = append(c.Scores, model.CallScore{CriteriaID: cr.ID, Criteria: cr, Score: model.NumericScore(v)})
	return cb
}

// Tag adds a textual score.
func (cb *CallBuilder) Tag(cr model.Criteria, tag string) *CallBuilder {
	c := cb.call()
	c.Scores = append(c.Scores, model.CallScore{CriteriaID: cr.ID, Criteria: cr, Score: model.TagScore(tag)})
	return cb
}

// Missing adds a score row with no value.
func (cb *CallBuilder) Missing(cr model.Criteria) *CallBuilder {
	c := cb.call()
	c.Scores = append(c.Scores, model.CallScore{CriteriaID: cr.ID, Criteria: cr, Score: model.MissingScore()})
	return cb
}

// GroupAverage adds a precomputed group average.
func (cb *CallBuilder) GroupAverage(g model.CriteriaGroup, v float64) *CallBuilder {
	c := cb.call()
	c.GroupAverages = append(c.GroupAverages, model.CallGroupAverage{GroupID: g.ID, Group: g, Average: model.NumericScore(v)})
	return cb
}

// Duration sets the call length in seconds.
func (cb *CallBuilder) Duration(seconds int) *CallBuilder {
	cb.call().DurationSeconds = seconds
	return cb
}

// Summary sets the call summary.
func (cb *CallBuilder) Summary(s string) *CallBuilder {
	cb.call().Summary = s
	return cb
}

// Day parses YYYY-MM-DD as a UTC date and panics on malformed input.
func Day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
