// Package dataset is the per-request pre-pass over a call list. It validates
// the calls once and builds immutable manager, criteria and group lookups that
// every engine in the request shares by reference.
package dataset

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

// lookups is shared read-only between a Dataset and all of its subsets.
type lookups struct {
	managers map[int64]model.Manager
	criteria map[int64]model.Criteria
	groups   map[int64]model.CriteriaGroup
}

// Dataset is a validated, read-only view over calls.
type Dataset struct {
	calls []model.Call
	lk    *lookups
}

// New validates calls and builds the shared lookups. Callers must not mutate
// calls afterwards.
func New(calls []model.Call) (*Dataset, error) {
	lk := &lookups{
		managers: make(map[int64]model.Manager),
		criteria: make(map[int64]model.Criteria),
		groups:   make(map[int64]model.CriteriaGroup),
	}
	for i := range calls {
		c := &calls[i]
		if c.CallDate.IsZero() {
			return nil, fmt.Errorf("%w: call %d", ErrMissingCallDate, c.ID)
		}
		if c.Manager != nil {
			lk.managers[c.Manager.ID] = *c.Manager
		}
		for _, s := range c.Scores {
			cr := s.Criteria
			if cr.ID == 0 {
				cr.ID = s.CriteriaID
			}
			lk.criteria[s.CriteriaID] = cr
			if cr.Group.ID != 0 {
				lk.groups[cr.Group.ID] = cr.Group
			}
		}
		for _, ga := range c.GroupAverages {
			g := ga.Group
			if g.ID == 0 {
				g.ID = ga.GroupID
			}
			lk.groups[ga.GroupID] = g
		}
	}
	return &Dataset{calls: calls, lk: lk}, nil
}

// MustNew is New for inputs known to be valid, such as test fixtures.
func MustNew(calls []model.Call) *Dataset {
	ds, err := New(calls)
	if err != nil {
		panic(err)
	}
	return ds
}

// Calls returns the calls in input order. The slice is shared; do not modify.
func (d *Dataset) Calls() []model.Call { return d.calls }

// Len returns the number of calls.
func (d *Dataset) Len() int { return len(d.calls) }

// Empty reports whether the dataset holds no calls.
func (d *Dataset) Empty() bool { return len(d.calls) == 0 }

// Chronological returns a copy of the calls stably sorted by call date.
func (d *Dataset) Chronological() []model.Call {
	out := make([]model.Call, len(d.calls))
	copy(out, d.calls)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CallDate.Before(out[j].CallDate) })
	return out
}

// Where returns the subset of calls matching keep, sharing the lookups.
func (d *Dataset) Where(keep func(c *model.Call) bool) *Dataset {
	sub := lo.Filter(d.calls, func(c model.Call, _ int) bool { return keep(&c) })
	return &Dataset{calls: sub, lk: d.lk}
}

// Filter restricts the dataset to an inclusive date range.
func (d *Dataset) Filter(r model.DateRange) *Dataset {
	if r.IsOpen() {
		return d
	}
	return d.Where(func(c *model.Call) bool { return r.Contains(c.CallDate) })
}

// ForManager returns the calls of one manager.
func (d *Dataset) ForManager(id int64) *Dataset {
	return d.Where(func(c *model.Call) bool {
		mid, ok := c.ManagerID()
		return ok && mid == id
	})
}

// Assigned returns the calls that have a manager.
func (d *Dataset) Assigned() *Dataset {
	return d.Where(func(c *model.Call) bool { return c.Manager != nil })
}

// FinalPercents returns the final percent of every call in input order.
func (d *Dataset) FinalPercents() []float64 {
	return lo.Map(d.calls, func(c model.Call, _ int) float64 { return c.FinalPercent })
}

// DateSpan returns the earliest and latest call dates.
func (d *Dataset) DateSpan() (first, last time.Time, ok bool) {
	if len(d.calls) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = d.calls[0].CallDate, d.calls[0].CallDate
	for _, c := range d.calls[1:] {
		if c.CallDate.Before(first) {
			first = c.CallDate
		}
		if c.CallDate.After(last) {
			last = c.CallDate
		}
	}
	return first, last, true
}

// Manager looks up a manager seen anywhere in the parent call list.
func (d *Dataset) Manager(id int64) (model.Manager, bool) {
	m, ok := d.lk.managers[id]
	return m, ok
}

// ManagerName returns the display name or a "Manager N" placeholder.
func (d *Dataset) ManagerName(id int64) string {
	if m, ok := d.lk.managers[id]; ok && m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("Manager %d", id)
}

// ManagerIDs lists the managers present in this dataset in first-appearance order.
func (d *Dataset) ManagerIDs() []int64 {
	ids := make([]int64, 0, len(d.lk.managers))
	for i := range d.calls {
		if id, ok := d.calls[i].ManagerID(); ok {
			ids = append(ids, id)
		}
	}
	return lo.Uniq(ids)
}

// Criteria looks up a criterion by id.
func (d *Dataset) Criteria(id int64) (model.Criteria, bool) {
	c, ok := d.lk.criteria[id]
	return c, ok
}

// CriteriaName returns the criterion name or a "Criteria N" placeholder.
func (d *Dataset) CriteriaName(id int64) string {
	if c, ok := d.lk.criteria[id]; ok && c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("Criteria %d", id)
}

// CriteriaList returns every known criterion ordered by display order, then id.
func (d *Dataset) CriteriaList() []model.Criteria {
	out := lo.Values(d.lk.criteria)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Group looks up a criteria group by id.
func (d *Dataset) Group(id int64) (model.CriteriaGroup, bool) {
	g, ok := d.lk.groups[id]
	return g, ok
}

// GroupName returns the group name or a "Group N" placeholder.
func (d *Dataset) GroupName(id int64) string {
	if g, ok := d.lk.groups[id]; ok && g.Name != "" {
		return g.Name
	}
	return fmt.Sprintf("Group %d", id)
}

// Groups returns every known group ordered by display order, then id.
func (d *Dataset) Groups() []model.CriteriaGroup {
	out := lo.Values(d.lk.groups)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}
