// Package numerator provides domain contracts for serial counter allocation.
package numerator

import (
	"errors"
	"sort"
)

// Request asks the allocator to advance one counter context.
type Request struct {
	// ContextKey partitions counters within a format (see numbering.ContextKey)
	ContextKey string

	// StartFrom seeds a counter row on first use
	StartFrom int64

	// Step is added on every allocation (> 0)
	Step int64
}

// ErrCounterExhausted means the next value of a counter would exceed int64.
var ErrCounterExhausted = errors.New("serial counter exhausted")

// Values maps a context key to the value allocated for it in one call.
type Values map[string]int64

// Normalize deduplicates requests by context key (first occurrence wins) and
// sorts them by key, so every allocator acquires row locks in the same order.
func Normalize(reqs []Request) []Request {
	seen := make(map[string]struct{}, len(reqs))
	out := make([]Request, 0, len(reqs))
	for _, r := range reqs {
		if _, ok := seen[r.ContextKey]; ok {
			continue
		}
		seen[r.ContextKey] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContextKey < out[j].ContextKey })
	return out
}
