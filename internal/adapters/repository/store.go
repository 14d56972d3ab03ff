// Package repository loads evaluated calls from their storage.
package repository

import (
	"context"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

// Store provides read access to evaluated calls.
type Store interface {
	// LoadCalls returns the calls matching q in chronological order with
	// manager, criteria and groups resolved. Calls without a date or a final
	// percent are never returned.
	LoadCalls(ctx context.Context, q model.CallQuery) ([]model.Call, error)

	// Count returns the number of calls held by the store.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}

func validate(q model.CallQuery) error {
	if q.ProjectID < 0 || q.ManagerID < 0 {
		return ErrInvalidQuery
	}
	if !q.Range.From.IsZero() && !q.Range.To.IsZero() && q.Range.To.Before(q.Range.From) {
		return ErrInvalidQuery
	}
	return nil
}
