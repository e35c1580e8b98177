package numerator

import (
	"context"

	"numbering/internal/core/id"
)

// Allocator atomically advances serial counters.
// Implementations live in the infrastructure layer.
//
// Allocate must run inside the caller's transaction (taken from ctx): every
// context in reqs advances exactly once, and either all advances become
// visible on commit or none do. For a fixed (formatID, ContextKey) successive
// committed allocations return strictly increasing values, Step apart.
type Allocator interface {
	Allocate(ctx context.Context, formatID id.ID, reqs []Request) (Values, error)
}
