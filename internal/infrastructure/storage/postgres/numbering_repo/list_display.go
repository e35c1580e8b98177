package numbering_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/domain/numbering"
	"numbering/internal/infrastructure/storage/postgres"
)

const listDisplayTable = "list_display_settings"

var listDisplayColumns = postgres.ExtractDBColumns[numbering.ListDisplaySetting]()

var _ numbering.ListDisplayRepository = (*ListDisplayRepo)(nil)

// ListDisplayRepo implements numbering.ListDisplayRepository.
type ListDisplayRepo struct {
	txm *postgres.TxManager
}

// NewListDisplayRepo creates a new list display repository.
func NewListDisplayRepo(txm *postgres.TxManager) *ListDisplayRepo {
	return &ListDisplayRepo{txm: txm}
}

// Get implements numbering.ListDisplayRepository.
func (r *ListDisplayRepo) Get(ctx context.Context, scope numbering.Scope, orgID *id.ID) (*numbering.ListDisplaySetting, error) {
	q := builder().
		Select(listDisplayColumns...).
		From(listDisplayTable).
		Where(squirrel.Eq{"scope": string(scope)}).
		Where(orgCondition(orgID)).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	ds := &numbering.ListDisplaySetting{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), ds, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("list display setting", string(scope)).
				WithDetail("orgId", id.String(orgID))
		}
		return nil, fmt.Errorf("get %s: %w", listDisplayTable, err)
	}
	return ds, nil
}

// Save implements numbering.ListDisplayRepository.
func (r *ListDisplayRepo) Save(ctx context.Context, s *numbering.ListDisplaySetting) error {
	if s.Version == 0 {
		return r.insert(ctx, s)
	}

	q := builder().
		Update(listDisplayTable).
		Set("show_customer_no", s.ShowCustomerNo).
		Set("show_management_no", s.ShowManagementNo).
		Set("updated_at", s.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": s.ID, "version": s.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", listDisplayTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("list display setting", s.ID.String())
	}

	s.Version++
	return nil
}

func (r *ListDisplayRepo) insert(ctx context.Context, s *numbering.ListDisplaySetting) error {
	q := builder().
		Insert(listDisplayTable).
		Columns(listDisplayColumns...).
		Values(s.ID, string(s.Scope), s.OrgID, s.ShowCustomerNo, s.ShowManagementNo, 1, s.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			// another writer created the row first
			return apperror.NewConcurrentModification("list display setting", string(s.Scope)).WithCause(err)
		}
		if postgres.IsForeignKeyViolation(err) {
			return unknownOrg(s.OrgID, err)
		}
		return fmt.Errorf("insert %s: %w", listDisplayTable, err)
	}

	s.Version = 1
	return nil
}
