package numbering

import (
	"context"
	"fmt"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
)

// GetListDisplay returns the effective list display setting: the org row when
// scope is ORG and one exists, else the global row, else the defaults.
func (s *Service) GetListDisplay(ctx context.Context, scope Scope, orgID *id.ID) (*ListDisplaySetting, error) {
	if !scope.Valid() {
		return nil, apperror.NewFieldValidation("scope", fmt.Sprintf("unknown scope %q", scope))
	}
	if scope == ScopeOrg {
		if orgID == nil {
			return nil, apperror.NewFieldValidation("orgId", "orgId is required for ORG scope")
		}
		ds, err := s.displays.Get(ctx, ScopeOrg, orgID)
		if err == nil {
			return ds, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	}

	ds, err := s.displays.Get(ctx, ScopeGlobal, nil)
	if err != nil {
		if apperror.IsNotFound(err) {
			return DefaultListDisplay(), nil
		}
		return nil, err
	}
	return ds, nil
}

// SaveListDisplayInput replaces the row for (Scope, OrgID). Version is the
// version last read, 0 when the row does not exist yet.
type SaveListDisplayInput struct {
	Scope            Scope
	OrgID            *id.ID
	ShowCustomerNo   bool
	ShowManagementNo bool
	Version          int
}

// SaveListDisplay creates or updates the row for one scope.
func (s *Service) SaveListDisplay(ctx context.Context, in SaveListDisplayInput) (*ListDisplaySetting, error) {
	if !in.Scope.Valid() {
		return nil, apperror.NewFieldValidation("scope", fmt.Sprintf("unknown scope %q", in.Scope))
	}
	switch {
	case in.Scope == ScopeOrg && in.OrgID == nil:
		return nil, apperror.NewFieldValidation("orgId", "orgId is required for ORG scope")
	case in.Scope == ScopeGlobal && in.OrgID != nil:
		return nil, apperror.NewFieldValidation("orgId", "orgId must be empty for GLOBAL scope")
	}

	var ds *ListDisplaySetting
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.displays.Get(ctx, in.Scope, in.OrgID)
		switch {
		case err == nil:
			if existing.Version != in.Version {
				return apperror.NewConcurrentModification("list display setting", existing.ID.String())
			}
			ds = existing
		case apperror.IsNotFound(err):
			if in.Version != 0 {
				return apperror.NewNotFound("list display setting", string(in.Scope)).
					WithDetail("orgId", id.String(in.OrgID))
			}
			ds = &ListDisplaySetting{ID: id.New(), Scope: in.Scope, OrgID: in.OrgID}
		default:
			return err
		}

		ds.ShowCustomerNo = in.ShowCustomerNo
		ds.ShowManagementNo = in.ShowManagementNo
		ds.UpdatedAt = s.now().UTC()
		return s.displays.Save(ctx, ds)
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}
