package memory

import (
	"context"
	"sync"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/domain/numbering"
)

var _ numbering.ListDisplayRepository = (*ListDisplayRepo)(nil)

type displayKey struct {
	scope numbering.Scope
	orgID id.ID
}

// ListDisplayRepo is an in-memory numbering.ListDisplayRepository.
type ListDisplayRepo struct {
	mu   sync.RWMutex
	rows map[displayKey]numbering.ListDisplaySetting
}

// NewListDisplayRepo creates an empty repository.
func NewListDisplayRepo() *ListDisplayRepo {
	return &ListDisplayRepo{rows: make(map[displayKey]numbering.ListDisplaySetting)}
}

func displayKeyOf(scope numbering.Scope, orgID *id.ID) displayKey {
	k := displayKey{scope: scope}
	if orgID != nil {
		k.orgID = *orgID
	}
	return k
}

// Get implements numbering.ListDisplayRepository.
func (r *ListDisplayRepo) Get(_ context.Context, scope numbering.Scope, orgID *id.ID) (*numbering.ListDisplaySetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[displayKeyOf(scope, orgID)]
	if !ok {
		return nil, apperror.NewNotFound("list display setting", string(scope)).
			WithDetail("orgId", id.String(orgID))
	}
	return &row, nil
}

// Save implements numbering.ListDisplayRepository.
func (r *ListDisplayRepo) Save(ctx context.Context, s *numbering.ListDisplaySetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := displayKeyOf(s.Scope, s.OrgID)
	prev, exists := r.rows[k]
	switch {
	case s.Version == 0 && exists:
		return apperror.NewConcurrentModification("list display setting", string(s.Scope))
	case s.Version != 0 && (!exists || prev.Version != s.Version):
		return apperror.NewConcurrentModification("list display setting", s.ID.String())
	}

	row := *s
	row.Version++
	r.rows[k] = row
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if exists {
			r.rows[k] = prev
		} else {
			delete(r.rows, k)
		}
	})

	s.Version = row.Version
	return nil
}
