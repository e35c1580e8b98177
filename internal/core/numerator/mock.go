package numerator

import (
	"context"

	"numbering/internal/core/id"
)

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	AllocateFunc func(ctx context.Context, formatID id.ID, reqs []Request) (Values, error)
	Calls        int
}

// Allocate implements Allocator.
func (m *MockAllocator) Allocate(ctx context.Context, formatID id.ID, reqs []Request) (Values, error) {
	m.Calls++
	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx, formatID, reqs)
	}
	// Default: every context yields its would-be-first value
	out := make(Values, len(reqs))
	for _, r := range reqs {
		out[r.ContextKey] = r.StartFrom + r.Step
	}
	return out, nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
