package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/testcalls"
	"github.com/eugene-kuroles/nakama-proj/pkg/metrics"
)

// MemoryStore serves calls from an in-process slice.
type MemoryStore struct {
	mu     sync.RWMutex
	calls  []model.Call
	closed bool
}

// NewMemoryStore holds a chronologically sorted copy of calls. Calls without
// a date are dropped, as the SQL store would.
func NewMemoryStore(calls []model.Call) *MemoryStore {
	kept := lo.Filter(calls, func(c model.Call, _ int) bool { return !c.CallDate.IsZero() })
	slices.SortStableFunc(kept, func(a, b model.Call) int { return a.CallDate.Compare(b.CallDate) })
	return &MemoryStore{calls: kept}
}

// NewSeededMemoryStore generates a synthetic data set.
func NewSeededMemoryStore(cfg testcalls.Config) *MemoryStore {
	return NewMemoryStore(testcalls.Generate(cfg))
}

// LoadCalls implements Store. The returned slice is a copy; the calls share
// their score slices with the store and must be treated as read-only.
func (s *MemoryStore) LoadCalls(ctx context.Context, q model.CallQuery) ([]model.Call, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(q); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := lo.Filter(s.calls, func(c model.Call, _ int) bool { return matches(c, q) })
	metrics.RecordStoreQuery(0, len(out), nil)
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.calls), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func matches(c model.Call, q model.CallQuery) bool {
	if q.ProjectID != 0 && c.ProjectID != q.ProjectID {
		return false
	}
	if q.ManagerID != 0 {
		if id, ok := c.ManagerID(); !ok || id != q.ManagerID {
			return false
		}
	}
	return q.Range.Contains(c.CallDate)
}
