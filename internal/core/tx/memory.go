package tx

import (
	"context"
	"sync"
)

// Journal collects the side effects of one in-memory transaction.
// Rollback hooks restore pre-images; finish hooks release held locks.
// Both run in reverse registration order.
type Journal struct {
	mu       sync.Mutex
	undo     []func()
	finish   []func()
	finished bool
}

// OnRollback registers fn to run if the transaction is rolled back.
func (j *Journal) OnRollback(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, fn)
}

// OnFinish registers fn to run when the transaction ends, after any rollback hooks.
func (j *Journal) OnFinish(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finish = append(j.finish, fn)
}

func (j *Journal) end(commit bool) {
	j.mu.Lock()
	if j.finished {
		j.mu.Unlock()
		return
	}
	j.finished = true
	undo, finish := j.undo, j.finish
	j.undo, j.finish = nil, nil
	j.mu.Unlock()

	if !commit {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
	for i := len(finish) - 1; i >= 0; i-- {
		finish[i]()
	}
}

type journalKey struct{}

// JournalFrom returns the active in-memory transaction journal, or nil.
func JournalFrom(ctx context.Context) *Journal {
	if j, ok := ctx.Value(journalKey{}).(*Journal); ok {
		return j
	}
	return nil
}

// MemoryManager is a Manager for in-memory stores.
// Stores participate by registering hooks on the Journal found in ctx.
type MemoryManager struct{}

// NewMemoryManager creates an in-memory transaction manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{}
}

// RunInTransaction implements Manager.
func (m *MemoryManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if JournalFrom(ctx) != nil {
		return fn(ctx)
	}

	j := &Journal{}
	defer func() {
		if r := recover(); r != nil {
			j.end(false)
			panic(r)
		}
	}()

	err = fn(context.WithValue(ctx, journalKey{}, j))
	if err == nil {
		err = ctx.Err()
	}
	j.end(err == nil)
	return err
}

var _ Manager = (*MemoryManager)(nil)
