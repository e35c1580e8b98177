package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/core/tx"
	"numbering/internal/domain/numbering"
)

func newFormat(scope numbering.Scope, orgID *id.ID, target numbering.Target) *numbering.FormatSetting {
	return &numbering.FormatSetting{
		ID:                   id.New(),
		Target:               target,
		Scope:                scope,
		OrgID:                orgID,
		Enabled:              true,
		Parts:                numbering.Parts{numbering.LiteralPart{Value: "C"}},
		FiscalYearStartMonth: 4,
		Version:              1,
		CreatedAt:            time.Now(),
	}
}

func TestFormatRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		r := NewFormatRepo()
		orgID := id.New()
		f := newFormat(numbering.ScopeOrg, &orgID, numbering.TargetCustomerNo)
		require.NoError(t, r.Create(ctx, f))

		got, err := r.FindByKey(ctx, numbering.ScopeOrg, &orgID, numbering.TargetCustomerNo)
		require.NoError(t, err)
		assert.Equal(t, f.ID, got.ID)

		_, err = r.FindByKey(ctx, numbering.ScopeGlobal, nil, numbering.TargetCustomerNo)
		assert.True(t, apperror.IsNotFound(err))

		err = r.Create(ctx, newFormat(numbering.ScopeOrg, &orgID, numbering.TargetCustomerNo))
		assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
	})

	t.Run("returned values are copies", func(t *testing.T) {
		r := NewFormatRepo()
		f := newFormat(numbering.ScopeGlobal, nil, numbering.TargetCustomerNo)
		require.NoError(t, r.Create(ctx, f))

		got, err := r.GetByID(ctx, f.ID)
		require.NoError(t, err)
		got.Parts[0] = numbering.LiteralPart{Value: "Z"}
		got.Enabled = false

		again, err := r.GetByID(ctx, f.ID)
		require.NoError(t, err)
		assert.True(t, again.Enabled)
		assert.Equal(t, numbering.LiteralPart{Value: "C"}, again.Parts[0])
	})

	t.Run("update checks the version", func(t *testing.T) {
		r := NewFormatRepo()
		f := newFormat(numbering.ScopeGlobal, nil, numbering.TargetCustomerNo)
		require.NoError(t, r.Create(ctx, f))

		require.NoError(t, r.Update(ctx, f))
		assert.Equal(t, 2, f.Version)

		stale := *f
		stale.Version = 1
		assert.True(t, apperror.IsConcurrentModification(r.Update(ctx, &stale)))

		missing := newFormat(numbering.ScopeGlobal, nil, numbering.TargetManagementNo)
		assert.True(t, apperror.IsNotFound(r.Update(ctx, missing)))
	})

	t.Run("rollback undoes writes", func(t *testing.T) {
		r := NewFormatRepo()
		txm := tx.NewMemoryManager()
		kept := newFormat(numbering.ScopeGlobal, nil, numbering.TargetCustomerNo)
		require.NoError(t, r.Create(ctx, kept))

		_ = txm.RunInTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, r.Create(ctx, newFormat(numbering.ScopeGlobal, nil, numbering.TargetManagementNo)))
			kept.Enabled = false
			require.NoError(t, r.Update(ctx, kept))
			return errors.New("abort")
		})

		items, err := r.List(ctx, numbering.ListFilter{})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].Enabled)
		assert.Equal(t, 1, items[0].Version)
	})

	t.Run("list filters and orders", func(t *testing.T) {
		r := NewFormatRepo()
		orgID := id.New()
		require.NoError(t, r.Create(ctx, newFormat(numbering.ScopeOrg, &orgID, numbering.TargetManagementNo)))
		require.NoError(t, r.Create(ctx, newFormat(numbering.ScopeGlobal, nil, numbering.TargetManagementNo)))
		require.NoError(t, r.Create(ctx, newFormat(numbering.ScopeGlobal, nil, numbering.TargetCustomerNo)))

		items, err := r.List(ctx, numbering.ListFilter{})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, numbering.TargetCustomerNo, items[0].Target)
		assert.Equal(t, numbering.ScopeGlobal, items[1].Scope)
		assert.Equal(t, numbering.ScopeOrg, items[2].Scope)

		items, err = r.List(ctx, numbering.ListFilter{OrgID: &orgID})
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestListDisplayRepo(t *testing.T) {
	ctx := context.Background()
	r := NewListDisplayRepo()

	_, err := r.Get(ctx, numbering.ScopeGlobal, nil)
	assert.True(t, apperror.IsNotFound(err))

	s := &numbering.ListDisplaySetting{ID: id.New(), Scope: numbering.ScopeGlobal, ShowCustomerNo: true}
	require.NoError(t, r.Save(ctx, s))
	assert.Equal(t, 1, s.Version)

	dup := &numbering.ListDisplaySetting{ID: id.New(), Scope: numbering.ScopeGlobal}
	assert.True(t, apperror.IsConcurrentModification(r.Save(ctx, dup)))

	s.ShowManagementNo = true
	require.NoError(t, r.Save(ctx, s))
	assert.Equal(t, 2, s.Version)

	got, err := r.Get(ctx, numbering.ScopeGlobal, nil)
	require.NoError(t, err)
	assert.True(t, got.ShowManagementNo)
	assert.Equal(t, 2, got.Version)
}

func TestOrgDirectory(t *testing.T) {
	ctx := context.Background()
	orgA, orgB := id.New(), id.New()
	d := NewOrgDirectory(map[id.ID]string{orgA: " TKY  ", orgB: "   "})

	code, err := d.CodeByID(ctx, orgA)
	require.NoError(t, err)
	assert.Equal(t, "TKY", code)

	_, err = d.CodeByID(ctx, orgB)
	assert.True(t, apperror.IsNotFound(err))

	_, err = d.CodeByID(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}
