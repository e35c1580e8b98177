package numerator

import (
	"context"
	"fmt"
	"math"
	"sync"

	"numbering/internal/core/id"
	corenumerator "numbering/internal/core/numerator"
	"numbering/internal/core/tx"
)

var _ corenumerator.Allocator = (*MemoryAllocator)(nil)

type cellKey struct {
	formatID   id.ID
	contextKey string
}

// cell is one counter. sem is a one-slot semaphore standing in for the row
// lock; value and seeded are only touched while it is held.
type cell struct {
	sem    chan struct{}
	value  int64
	seeded bool
}

// MemoryAllocator keeps counters in process memory. It participates in
// tx.MemoryManager transactions: a cell stays locked until the transaction
// ends and a rollback restores the value it had before.
type MemoryAllocator struct {
	mu    sync.Mutex
	cells map[cellKey]*cell
	held  map[*tx.Journal]map[cellKey]struct{}
	txm   *tx.MemoryManager
}

// NewMemoryAllocator creates an empty in-memory allocator.
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{
		cells: make(map[cellKey]*cell),
		held:  make(map[*tx.Journal]map[cellKey]struct{}),
		txm:   tx.NewMemoryManager(),
	}
}

// Allocate implements corenumerator.Allocator.
func (a *MemoryAllocator) Allocate(ctx context.Context, formatID id.ID, reqs []corenumerator.Request) (corenumerator.Values, error) {
	j := tx.JournalFrom(ctx)
	if j == nil {
		var out corenumerator.Values
		err := a.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			var err error
			out, err = a.Allocate(ctx, formatID, reqs)
			return err
		})
		return out, err
	}

	reqs = corenumerator.Normalize(reqs)
	out := make(corenumerator.Values, len(reqs))
	for _, r := range reqs {
		if r.Step <= 0 {
			return nil, fmt.Errorf("allocate %q: step must be positive, got %d", r.ContextKey, r.Step)
		}

		key := cellKey{formatID: formatID, contextKey: r.ContextKey}
		c, err := a.acquire(ctx, j, key)
		if err != nil {
			return nil, fmt.Errorf("allocate %q: %w", r.ContextKey, err)
		}

		prevValue, prevSeeded := c.value, c.seeded
		j.OnRollback(func() {
			c.value, c.seeded = prevValue, prevSeeded
		})

		if !c.seeded {
			c.value = r.StartFrom
			c.seeded = true
		}
		if c.value > math.MaxInt64-r.Step {
			return nil, fmt.Errorf("allocate %q: %w", r.ContextKey, corenumerator.ErrCounterExhausted)
		}
		c.value += r.Step
		out[r.ContextKey] = c.value
	}
	return out, nil
}

// acquire locks the cell for the lifetime of j. Re-acquiring within the same
// transaction is a no-op, like a row lock.
func (a *MemoryAllocator) acquire(ctx context.Context, j *tx.Journal, key cellKey) (*cell, error) {
	a.mu.Lock()
	c, ok := a.cells[key]
	if !ok {
		c = &cell{sem: make(chan struct{}, 1)}
		a.cells[key] = c
	}
	held, ok := a.held[j]
	if !ok {
		held = make(map[cellKey]struct{})
		a.held[j] = held
		j.OnFinish(func() { a.release(j) })
	}
	_, already := held[key]
	a.mu.Unlock()

	if already {
		return c, nil
	}

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	a.mu.Lock()
	held[key] = struct{}{}
	a.mu.Unlock()
	return c, nil
}

// release unlocks every cell held by j.
func (a *MemoryAllocator) release(j *tx.Journal) {
	a.mu.Lock()
	held := a.held[j]
	delete(a.held, j)
	cells := make([]*cell, 0, len(held))
	for key := range held {
		cells = append(cells, a.cells[key])
	}
	a.mu.Unlock()

	for _, c := range cells {
		<-c.sem
	}
}

// Current returns the committed value of one counter, or false if it was
// never seeded. It waits for any transaction holding the cell.
func (a *MemoryAllocator) Current(ctx context.Context, formatID id.ID, key string) (int64, bool, error) {
	a.mu.Lock()
	c, ok := a.cells[cellKey{formatID: formatID, contextKey: key}]
	a.mu.Unlock()
	if !ok {
		return 0, false, nil
	}

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}
	defer func() { <-c.sem }()
	return c.value, c.seeded, nil
}
