package numbering_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/core/numerator"
	"numbering/internal/core/tx"
	"numbering/internal/domain/numbering"
	infranumerator "numbering/internal/infrastructure/numerator"
	"numbering/internal/infrastructure/storage/memory"
)

type fixture struct {
	svc   *numbering.Service
	orgs  *memory.OrgDirectory
	alloc *infranumerator.MemoryAllocator
	txm   *tx.MemoryManager
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		orgs:  memory.NewOrgDirectory(nil),
		alloc: infranumerator.NewMemoryAllocator(),
		txm:   tx.NewMemoryManager(),
		now:   time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC),
	}
	fx.svc = numbering.NewService(numbering.ServiceConfig{
		Formats:   memory.NewFormatRepo(),
		Displays:  memory.NewListDisplayRepo(),
		Orgs:      fx.orgs,
		Allocator: fx.alloc,
		TxManager: fx.txm,
		Location:  time.UTC,
		Now:       func() time.Time { return fx.now },
	})
	return fx
}

func (fx *fixture) create(t *testing.T, in numbering.CreateFormatInput) *numbering.FormatSetting {
	t.Helper()
	f, err := fx.svc.CreateFormat(context.Background(), in)
	require.NoError(t, err)
	return f
}

func (fx *fixture) generate(t *testing.T, target numbering.Target, orgID *id.ID, date *time.Time) string {
	t.Helper()
	res, err := fx.svc.Generate(context.Background(), numbering.GenerateInput{Target: target, OrgID: orgID, Date: date})
	require.NoError(t, err)
	return res.Value
}

func on(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func customerFormat(parts ...numbering.Part) numbering.CreateFormatInput {
	return numbering.CreateFormatInput{
		Target:  numbering.TargetCustomerNo,
		Scope:   numbering.ScopeGlobal,
		Enabled: true,
		Parts:   parts,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("global never-reset serial", func(t *testing.T) {
		fx := newFixture(t)
		fx.create(t, customerFormat(
			numbering.LiteralPart{Value: "C"},
			numbering.SerialPart{Digits: 4, Step: 1},
		))

		assert.Equal(t, "C0001", fx.generate(t, numbering.TargetCustomerNo, nil, nil))
		assert.Equal(t, "C0002", fx.generate(t, numbering.TargetCustomerNo, nil, nil))
	})

	t.Run("daily serial per organization", func(t *testing.T) {
		fx := newFixture(t)
		orgA, orgB := id.New(), id.New()
		fx.orgs.Put(orgA, "A")
		fx.orgs.Put(orgB, "B")
		fx.create(t, customerFormat(
			numbering.DatePart{Format: numbering.DateYYYYMMDD},
			numbering.SerialPart{Digits: 3, ResetPolicy: numbering.ResetDaily, Scope: numbering.SerialScopeOrg, Step: 1},
		))

		day := on(2025, time.March, 10)
		assert.Equal(t, "20250310001", fx.generate(t, numbering.TargetCustomerNo, &orgA, day))
		assert.Equal(t, "20250310001", fx.generate(t, numbering.TargetCustomerNo, &orgB, day))
		assert.Equal(t, "20250310002", fx.generate(t, numbering.TargetCustomerNo, &orgA, day))
		assert.Equal(t, "20250311001", fx.generate(t, numbering.TargetCustomerNo, &orgA, on(2025, time.March, 11)))
	})

	t.Run("fiscal year resets on the start month", func(t *testing.T) {
		fx := newFixture(t)
		fx.create(t, numbering.CreateFormatInput{
			Target:  numbering.TargetManagementNo,
			Scope:   numbering.ScopeGlobal,
			Enabled: true,
			Joiner:  ptr("-"),
			Parts: numbering.Parts{
				numbering.FiscalYearPart{Style: numbering.YearStyleYYYY},
				numbering.SerialPart{Digits: 4, ResetPolicy: numbering.ResetFiscalYearly, Step: 1},
			},
		})

		assert.Equal(t, "2024-0001", fx.generate(t, numbering.TargetManagementNo, nil, on(2025, time.March, 30)))
		assert.Equal(t, "2024-0002", fx.generate(t, numbering.TargetManagementNo, nil, on(2025, time.March, 31)))
		assert.Equal(t, "2025-0001", fx.generate(t, numbering.TargetManagementNo, nil, on(2025, time.April, 1)))
	})

	t.Run("defaults the date to today in the service location", func(t *testing.T) {
		fx := newFixture(t)
		fx.create(t, customerFormat(numbering.DatePart{Format: numbering.DateYYYYMMDDHy}))
		assert.Equal(t, "2025-03-10", fx.generate(t, numbering.TargetCustomerNo, nil, nil))
	})

	t.Run("start and step", func(t *testing.T) {
		fx := newFixture(t)
		fx.create(t, customerFormat(numbering.SerialPart{Digits: 6, StartFrom: 1000, Step: 10}))

		assert.Equal(t, "001010", fx.generate(t, numbering.TargetCustomerNo, nil, nil))
		assert.Equal(t, "001020", fx.generate(t, numbering.TargetCustomerNo, nil, nil))
	})

	t.Run("parts sharing a context advance once", func(t *testing.T) {
		fx := newFixture(t)
		fx.create(t, customerFormat(
			numbering.SerialPart{Digits: 3, Step: 1},
			numbering.LiteralPart{Value: "/"},
			numbering.SerialPart{Digits: 5, Step: 1},
		))

		assert.Equal(t, "001/00001", fx.generate(t, numbering.TargetCustomerNo, nil, nil))
		assert.Equal(t, "002/00002", fx.generate(t, numbering.TargetCustomerNo, nil, nil))
	})

	t.Run("org format wins over global", func(t *testing.T) {
		fx := newFixture(t)
		orgA, orgB := id.New(), id.New()
		fx.create(t, customerFormat(numbering.LiteralPart{Value: "G"}, numbering.SerialPart{Digits: 2, Step: 1}))
		fx.create(t, numbering.CreateFormatInput{
			Target:  numbering.TargetCustomerNo,
			Scope:   numbering.ScopeOrg,
			OrgID:   &orgA,
			Enabled: true,
			Parts:   numbering.Parts{numbering.LiteralPart{Value: "O"}, numbering.SerialPart{Digits: 2, Step: 1}},
		})

		assert.Equal(t, "O01", fx.generate(t, numbering.TargetCustomerNo, &orgA, nil))
		assert.Equal(t, "G01", fx.generate(t, numbering.TargetCustomerNo, &orgB, nil))
		assert.Equal(t, "G02", fx.generate(t, numbering.TargetCustomerNo, nil, nil))
	})

	t.Run("disabled org format falls back to global", func(t *testing.T) {
		fx := newFixture(t)
		orgA := id.New()
		fx.create(t, customerFormat(numbering.LiteralPart{Value: "G"}, numbering.SerialPart{Digits: 2, Step: 1}))
		fx.create(t, numbering.CreateFormatInput{
			Target: numbering.TargetCustomerNo,
			Scope:  numbering.ScopeOrg,
			OrgID:  &orgA,
			Parts:  numbering.Parts{numbering.LiteralPart{Value: "O"}},
		})

		assert.Equal(t, "G01", fx.generate(t, numbering.TargetCustomerNo, &orgA, nil))
	})

	t.Run("disabled global format", func(t *testing.T) {
		fx := newFixture(t)
		in := customerFormat(numbering.SerialPart{Digits: 2, Step: 1})
		in.Enabled = false
		fx.create(t, in)

		_, err := fx.svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo})
		assertCode(t, err, apperror.CodeFormatDisabled)
	})

	t.Run("no format", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.Generate(ctx, numbering.GenerateInput{Target: "INVOICE_NO"})
		assertCode(t, err, apperror.CodeValidation)
	})

	t.Run("org code requires an org", func(t *testing.T) {
		fx := newFixture(t)
		fx.create(t, customerFormat(numbering.OrgCodePart{}, numbering.SerialPart{Digits: 2, Step: 1}))

		_, err := fx.svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo})
		assertCode(t, err, apperror.CodeValidation)

		unknown := id.New()
		_, err = fx.svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo, OrgID: &unknown})
		assert.True(t, apperror.IsNotFound(err))

		// failed lookups happen before allocation
		fx.orgs.Put(unknown, "X")
		assert.Equal(t, "X01", fx.generate(t, numbering.TargetCustomerNo, &unknown, nil))
	})

	t.Run("rolled back caller transaction releases the number", func(t *testing.T) {
		fx := newFixture(t)
		fx.create(t, customerFormat(numbering.SerialPart{Digits: 4, Step: 1}))

		boom := errors.New("customer insert failed")
		err := fx.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			res, err := fx.svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo})
			require.NoError(t, err)
			assert.Equal(t, "0001", res.Value)
			return boom
		})
		require.ErrorIs(t, err, boom)

		assert.Equal(t, "0001", fx.generate(t, numbering.TargetCustomerNo, nil, nil))
	})

	t.Run("concurrent generation yields distinct consecutive numbers", func(t *testing.T) {
		fx := newFixture(t)
		fx.create(t, customerFormat(numbering.SerialPart{Digits: 4, Step: 1}))

		const workers = 50
		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			values = make(map[string]struct{}, workers)
			errs   []error
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := fx.svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo})
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				values[res.Value] = struct{}{}
			}()
		}
		wg.Wait()

		require.Empty(t, errs)
		require.Len(t, values, workers)
		for i := 1; i <= workers; i++ {
			assert.Contains(t, values, fmt.Sprintf("%04d", i))
		}
	})
}

func TestService_Preview(t *testing.T) {
	ctx := context.Background()

	t.Run("stored format does not touch counters", func(t *testing.T) {
		fx := newFixture(t)
		f := fx.create(t, customerFormat(numbering.LiteralPart{Value: "C"}, numbering.SerialPart{Digits: 4, Step: 1}))

		for range 3 {
			res, err := fx.svc.Preview(ctx, numbering.PreviewInput{FormatID: &f.ID})
			require.NoError(t, err)
			assert.Equal(t, "C0001", res.Sample)
		}
		assert.Equal(t, "C0001", fx.generate(t, numbering.TargetCustomerNo, nil, nil))

		res, err := fx.svc.Preview(ctx, numbering.PreviewInput{FormatID: &f.ID})
		require.NoError(t, err)
		assert.Equal(t, "C0001", res.Sample, "preview always shows the first value")
	})

	t.Run("draft with sample inputs", func(t *testing.T) {
		fx := newFixture(t)
		orgID := id.New()
		fx.orgs.Put(orgID, "OSK")

		res, err := fx.svc.Preview(ctx, numbering.PreviewInput{
			Draft: &numbering.FormatSetting{
				Target: numbering.TargetCustomerNo,
				Scope:  numbering.ScopeGlobal,
				Joiner: ptr("_"),
				Parts: numbering.Parts{
					numbering.OrgCodePart{},
					numbering.FiscalYearPart{Style: numbering.YearStyleYY},
					numbering.SerialPart{Digits: 3, StartFrom: 9, Step: 1},
				},
			},
			Date:  on(2025, time.March, 31),
			OrgID: &orgID,
		})
		require.NoError(t, err)

		assert.Equal(t, "OSK_24_010", res.Sample)
		require.Len(t, res.Parts, 3)
		assert.Equal(t, numbering.Fragment{Type: numbering.PartOrgCode, Value: "OSK"}, res.Parts[0])
	})

	t.Run("invalid draft", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.Preview(ctx, numbering.PreviewInput{Draft: &numbering.FormatSetting{
			Target: numbering.TargetCustomerNo,
			Scope:  numbering.ScopeGlobal,
			Parts:  numbering.Parts{numbering.SerialPart{Digits: 20, Step: 1}},
		}})
		assertCode(t, err, apperror.CodeValidation)
	})

	t.Run("nothing to preview", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.Preview(ctx, numbering.PreviewInput{})
		assertCode(t, err, apperror.CodeValidation)
	})
}

func TestService_Formats(t *testing.T) {
	ctx := context.Background()

	t.Run("create applies defaults", func(t *testing.T) {
		fx := newFixture(t)
		f := fx.create(t, customerFormat(numbering.SerialPart{Digits: 4, Step: 1}))

		assert.Equal(t, 1, f.Version)
		assert.Equal(t, numbering.DefaultFiscalYearStartMonth, f.FiscalYearStartMonth)
		assert.Equal(t, numbering.ResetNever, f.Parts[0].(numbering.SerialPart).ResetPolicy)
		assert.False(t, f.CreatedAt.IsZero())
	})

	t.Run("duplicate scope/org/target", func(t *testing.T) {
		fx := newFixture(t)
		fx.create(t, customerFormat(numbering.SerialPart{Digits: 4, Step: 1}))

		_, err := fx.svc.CreateFormat(ctx, customerFormat(numbering.LiteralPart{Value: "X"}))
		assertCode(t, err, apperror.CodeDuplicate)
	})

	t.Run("update with optimistic locking", func(t *testing.T) {
		fx := newFixture(t)
		f := fx.create(t, customerFormat(numbering.SerialPart{Digits: 4, Step: 1}))

		disabled := false
		updated, err := fx.svc.UpdateFormat(ctx, f.ID, numbering.UpdateFormatInput{
			Version: 1,
			Enabled: &disabled,
			Joiner:  ptr("-"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		assert.False(t, updated.Enabled)
		assert.Equal(t, "-", updated.JoinerValue())

		_, err = fx.svc.UpdateFormat(ctx, f.ID, numbering.UpdateFormatInput{Version: 1, Enabled: &disabled})
		assertCode(t, err, apperror.CodeConcurrentModification)

		cleared, err := fx.svc.UpdateFormat(ctx, f.ID, numbering.UpdateFormatInput{Version: 2, Joiner: ptr("")})
		require.NoError(t, err)
		assert.Nil(t, cleared.Joiner)

		stored, err := fx.svc.GetFormat(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.Version)
	})

	t.Run("invalid update leaves the stored row untouched", func(t *testing.T) {
		fx := newFixture(t)
		f := fx.create(t, customerFormat(numbering.SerialPart{Digits: 4, Step: 1}))

		_, err := fx.svc.UpdateFormat(ctx, f.ID, numbering.UpdateFormatInput{
			Version: 1,
			Parts:   numbering.Parts{numbering.LiteralPart{Value: "全角"}},
		})
		assertCode(t, err, apperror.CodeValidation)

		stored, err := fx.svc.GetFormat(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Version)
	})

	t.Run("update of a missing format", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.UpdateFormat(ctx, id.New(), numbering.UpdateFormatInput{Version: 1})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("effective format and list", func(t *testing.T) {
		fx := newFixture(t)
		orgA := id.New()
		global := fx.create(t, customerFormat(numbering.LiteralPart{Value: "G"}))
		org := fx.create(t, numbering.CreateFormatInput{
			Target:  numbering.TargetCustomerNo,
			Scope:   numbering.ScopeOrg,
			OrgID:   &orgA,
			Enabled: true,
			Parts:   numbering.Parts{numbering.LiteralPart{Value: "O"}},
		})

		got, err := fx.svc.GetEffectiveFormat(ctx, numbering.TargetCustomerNo, &orgA)
		require.NoError(t, err)
		assert.Equal(t, org.ID, got.ID)

		got, err = fx.svc.GetEffectiveFormat(ctx, numbering.TargetCustomerNo, nil)
		require.NoError(t, err)
		assert.Equal(t, global.ID, got.ID)

		_, err = fx.svc.GetEffectiveFormat(ctx, numbering.TargetManagementNo, &orgA)
		assert.True(t, apperror.IsNotFound(err))

		all, err := fx.svc.ListFormats(ctx, numbering.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		orgOnly, err := fx.svc.ListFormats(ctx, numbering.ListFilter{Scope: numbering.ScopeOrg})
		require.NoError(t, err)
		require.Len(t, orgOnly, 1)
		assert.Equal(t, org.ID, orgOnly[0].ID)
	})
}

func TestService_ListDisplay(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	orgA := id.New()

	ds, err := fx.svc.GetListDisplay(ctx, numbering.ScopeGlobal, nil)
	require.NoError(t, err)
	assert.True(t, ds.ShowCustomerNo)
	assert.True(t, ds.ShowManagementNo)

	saved, err := fx.svc.SaveListDisplay(ctx, numbering.SaveListDisplayInput{
		Scope:          numbering.ScopeGlobal,
		ShowCustomerNo: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)

	_, err = fx.svc.SaveListDisplay(ctx, numbering.SaveListDisplayInput{Scope: numbering.ScopeGlobal})
	assertCode(t, err, apperror.CodeConcurrentModification)

	ds, err = fx.svc.GetListDisplay(ctx, numbering.ScopeOrg, &orgA)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, ds.ID, "org falls back to global")
	assert.False(t, ds.ShowManagementNo)

	_, err = fx.svc.SaveListDisplay(ctx, numbering.SaveListDisplayInput{
		Scope:            numbering.ScopeOrg,
		OrgID:            &orgA,
		ShowManagementNo: true,
	})
	require.NoError(t, err)

	ds, err = fx.svc.GetListDisplay(ctx, numbering.ScopeOrg, &orgA)
	require.NoError(t, err)
	assert.Equal(t, numbering.ScopeOrg, ds.Scope)
	assert.False(t, ds.ShowCustomerNo)
	assert.True(t, ds.ShowManagementNo)

	_, err = fx.svc.GetListDisplay(ctx, numbering.ScopeOrg, nil)
	assertCode(t, err, apperror.CodeValidation)

	_, err = fx.svc.SaveListDisplay(ctx, numbering.SaveListDisplayInput{Scope: numbering.ScopeGlobal, Version: 7})
	assertCode(t, err, apperror.CodeConcurrentModification)
}

func ptr[T any](v T) *T { return &v }

func TestService_GenerateAllocator(t *testing.T) {
	ctx := context.Background()

	newService := func(alloc numerator.Allocator) *numbering.Service {
		return numbering.NewService(numbering.ServiceConfig{
			Formats:   memory.NewFormatRepo(),
			Displays:  memory.NewListDisplayRepo(),
			Orgs:      memory.NewOrgDirectory(nil),
			Allocator: alloc,
			TxManager: tx.NewMemoryManager(),
			Location:  time.UTC,
		})
	}

	t.Run("allocator failure surfaces as allocation failed", func(t *testing.T) {
		alloc := &numerator.MockAllocator{
			AllocateFunc: func(context.Context, id.ID, []numerator.Request) (numerator.Values, error) {
				return nil, errors.New("connection reset")
			},
		}
		svc := newService(alloc)
		_, err := svc.CreateFormat(ctx, customerFormat(numbering.SerialPart{Digits: 4, Step: 1}))
		require.NoError(t, err)

		_, err = svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo})
		assertCode(t, err, apperror.CodeAllocationFailed)
		assert.Equal(t, 1, alloc.Calls)
	})

	t.Run("format without serial parts skips the allocator", func(t *testing.T) {
		alloc := &numerator.MockAllocator{}
		svc := newService(alloc)
		_, err := svc.CreateFormat(ctx, customerFormat(numbering.LiteralPart{Value: "FIXED"}))
		require.NoError(t, err)

		res, err := svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo})
		require.NoError(t, err)
		assert.Equal(t, "FIXED", res.Value)
		assert.Zero(t, alloc.Calls)
	})

	t.Run("one request per distinct context", func(t *testing.T) {
		var got []numerator.Request
		alloc := &numerator.MockAllocator{
			AllocateFunc: func(_ context.Context, _ id.ID, reqs []numerator.Request) (numerator.Values, error) {
				got = reqs
				out := make(numerator.Values, len(reqs))
				for _, r := range reqs {
					out[r.ContextKey] = r.StartFrom
				}
				return out, nil
			},
		}
		svc := newService(alloc)
		_, err := svc.CreateFormat(ctx, customerFormat(
			numbering.SerialPart{Digits: 3, Step: 1, StartFrom: 7},
			numbering.SerialPart{Digits: 2, Step: 5, StartFrom: 1},
		))
		require.NoError(t, err)

		res, err := svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(7), got[0].StartFrom)
		assert.Equal(t, "00707", res.Value)
	})
}

func TestService_SerialOverflow(t *testing.T) {
	ctx := context.Background()
	overflowing := numbering.SerialPart{Digits: 4, StartFrom: math.MaxInt64, Step: 1}

	t.Run("create rejects a serial whose first value overflows", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.CreateFormat(ctx, customerFormat(numbering.LiteralPart{Value: "C"}, overflowing))
		assertCode(t, err, apperror.CodeValidation)

		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, "parts[1].startFrom", appErr.Details["field"])
	})

	t.Run("preview rejects the same draft", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.Preview(ctx, numbering.PreviewInput{Draft: &numbering.FormatSetting{
			Target:  numbering.TargetCustomerNo,
			Scope:   numbering.ScopeGlobal,
			Enabled: true,
			Parts:   numbering.Parts{numbering.LiteralPart{Value: "C"}, overflowing},
		}})
		assertCode(t, err, apperror.CodeValidation)
	})

	t.Run("exhausted counter surfaces as allocation failed", func(t *testing.T) {
		svc := numbering.NewService(numbering.ServiceConfig{
			Formats:  memory.NewFormatRepo(),
			Displays: memory.NewListDisplayRepo(),
			Orgs:     memory.NewOrgDirectory(nil),
			Allocator: &numerator.MockAllocator{
				AllocateFunc: func(context.Context, id.ID, []numerator.Request) (numerator.Values, error) {
					return nil, fmt.Errorf("allocate %q: %w", "target=CUSTOMER_NO&global", numerator.ErrCounterExhausted)
				},
			},
			TxManager: tx.NewMemoryManager(),
			Location:  time.UTC,
		})
		_, err := svc.CreateFormat(ctx, customerFormat(numbering.SerialPart{Digits: 4, Step: 1}))
		require.NoError(t, err)

		_, err = svc.Generate(ctx, numbering.GenerateInput{Target: numbering.TargetCustomerNo})
		assertCode(t, err, apperror.CodeAllocationFailed)
		assert.ErrorIs(t, err, numerator.ErrCounterExhausted)

		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, "serial counter exhausted", appErr.Details["reason"])
	})
}
