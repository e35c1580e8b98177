// Package memory provides in-process implementations of the numbering
// repositories. Writes made inside a tx.MemoryManager transaction are undone
// on rollback.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/core/tx"
	"numbering/internal/domain/numbering"
)

var _ numbering.FormatRepository = (*FormatRepo)(nil)

type formatKey struct {
	scope  numbering.Scope
	orgID  id.ID
	target numbering.Target
}

func keyOf(f *numbering.FormatSetting) formatKey {
	k := formatKey{scope: f.Scope, target: f.Target}
	if f.OrgID != nil {
		k.orgID = *f.OrgID
	}
	return k
}

// FormatRepo is an in-memory numbering.FormatRepository.
type FormatRepo struct {
	mu    sync.RWMutex
	byID  map[id.ID]*numbering.FormatSetting
	byKey map[formatKey]id.ID
}

// NewFormatRepo creates an empty repository.
func NewFormatRepo() *FormatRepo {
	return &FormatRepo{
		byID:  make(map[id.ID]*numbering.FormatSetting),
		byKey: make(map[formatKey]id.ID),
	}
}

// Create implements numbering.FormatRepository.
func (r *FormatRepo) Create(ctx context.Context, f *numbering.FormatSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := keyOf(f)
	if _, ok := r.byKey[k]; ok {
		return apperror.NewDuplicate("number format", "scope/org/target",
			fmt.Sprintf("%s/%s/%s", f.Scope, id.String(f.OrgID), f.Target))
	}
	if _, ok := r.byID[f.ID]; ok {
		return apperror.NewDuplicate("number format", "id", f.ID.String())
	}

	r.byID[f.ID] = cloneFormat(f)
	r.byKey[k] = f.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.byID, f.ID)
		delete(r.byKey, k)
	})
	return nil
}

// Update implements numbering.FormatRepository.
func (r *FormatRepo) Update(ctx context.Context, f *numbering.FormatSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[f.ID]
	if !ok {
		return apperror.NewNotFound("number format", f.ID.String())
	}
	if stored.Version != f.Version {
		return apperror.NewConcurrentModification("number format", f.ID.String())
	}

	next := cloneFormat(f)
	next.Version++
	r.byID[f.ID] = next
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.byID[f.ID] = stored
	})

	f.Version = next.Version
	return nil
}

// GetByID implements numbering.FormatRepository.
func (r *FormatRepo) GetByID(_ context.Context, formatID id.ID) (*numbering.FormatSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[formatID]
	if !ok {
		return nil, apperror.NewNotFound("number format", formatID.String())
	}
	return cloneFormat(f), nil
}

// FindByKey implements numbering.FormatRepository.
func (r *FormatRepo) FindByKey(_ context.Context, scope numbering.Scope, orgID *id.ID, target numbering.Target) (*numbering.FormatSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k := formatKey{scope: scope, target: target}
	if orgID != nil {
		k.orgID = *orgID
	}
	formatID, ok := r.byKey[k]
	if !ok {
		return nil, apperror.NewNotFound("number format", string(target)).
			WithDetail("scope", scope).
			WithDetail("orgId", id.String(orgID))
	}
	return cloneFormat(r.byID[formatID]), nil
}

// List implements numbering.FormatRepository.
func (r *FormatRepo) List(_ context.Context, filter numbering.ListFilter) ([]*numbering.FormatSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*numbering.FormatSetting, 0, len(r.byID))
	for _, f := range r.byID {
		if filter.Target != "" && f.Target != filter.Target {
			continue
		}
		if filter.Scope != "" && f.Scope != filter.Scope {
			continue
		}
		if filter.OrgID != nil && (f.OrgID == nil || *f.OrgID != *filter.OrgID) {
			continue
		}
		items = append(items, cloneFormat(f))
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return items, nil
}

func cloneFormat(f *numbering.FormatSetting) *numbering.FormatSetting {
	c := *f
	c.Parts = append(numbering.Parts(nil), f.Parts...)
	if f.OrgID != nil {
		orgID := *f.OrgID
		c.OrgID = &orgID
	}
	if f.Joiner != nil {
		j := *f.Joiner
		c.Joiner = &j
	}
	return &c
}

func onRollback(ctx context.Context, fn func()) {
	if j := tx.JournalFrom(ctx); j != nil {
		j.OnRollback(fn)
	}
}
