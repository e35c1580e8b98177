// Package numbering_repo provides PostgreSQL implementations of the numbering
// repositories.
package numbering_repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/domain/numbering"
	"numbering/internal/infrastructure/storage/postgres"
)

const formatTable = "number_format_settings"

var formatColumns = postgres.ExtractDBColumns[numbering.FormatSetting]()

var _ numbering.FormatRepository = (*FormatRepo)(nil)

// FormatRepo implements numbering.FormatRepository.
type FormatRepo struct {
	txm *postgres.TxManager
}

// NewFormatRepo creates a new format setting repository.
func NewFormatRepo(txm *postgres.TxManager) *FormatRepo {
	return &FormatRepo{txm: txm}
}

// builder returns a squirrel builder with PostgreSQL placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// unknownOrg maps an org_id foreign key violation to NOT_FOUND.
func unknownOrg(orgID *id.ID, err error) error {
	return apperror.NewNotFound("organization", id.String(orgID)).
		WithDetail("field", "orgId").
		WithCause(err)
}

// orgCondition matches org_id, folding nil into IS NULL.
func orgCondition(orgID *id.ID) squirrel.Sqlizer {
	if orgID == nil {
		return squirrel.Expr("org_id IS NULL")
	}
	return squirrel.Eq{"org_id": *orgID}
}

// Create implements numbering.FormatRepository.
func (r *FormatRepo) Create(ctx context.Context, f *numbering.FormatSetting) error {
	parts, err := json.Marshal(f.Parts)
	if err != nil {
		return fmt.Errorf("marshal parts: %w", err)
	}

	q := builder().
		Insert(formatTable).
		Columns(formatColumns...).
		Values(
			f.ID, string(f.Target), string(f.Scope), f.OrgID, f.Enabled, string(parts), f.Joiner,
			f.FiscalYearStartMonth, f.Description, f.Version, f.CreatedAt, f.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("number format", "scope/org/target",
				fmt.Sprintf("%s/%s/%s", f.Scope, id.String(f.OrgID), f.Target)).WithCause(err)
		}
		if postgres.IsForeignKeyViolation(err) {
			return unknownOrg(f.OrgID, err)
		}
		return fmt.Errorf("insert %s: %w", formatTable, err)
	}
	return nil
}

// Update implements numbering.FormatRepository.
func (r *FormatRepo) Update(ctx context.Context, f *numbering.FormatSetting) error {
	parts, err := json.Marshal(f.Parts)
	if err != nil {
		return fmt.Errorf("marshal parts: %w", err)
	}

	q := builder().
		Update(formatTable).
		Set("enabled", f.Enabled).
		Set("parts", string(parts)).
		Set("joiner", f.Joiner).
		Set("fiscal_year_start_month", f.FiscalYearStartMonth).
		Set("description", f.Description).
		Set("updated_at", f.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": f.ID}).
		Where(squirrel.Eq{"version": f.Version}) // optimistic lock

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", formatTable, err)
	}
	if result.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, f.ID); getErr != nil {
			return getErr
		}
		return apperror.NewConcurrentModification("number format", f.ID.String())
	}

	f.Version++
	return nil
}

// GetByID implements numbering.FormatRepository.
func (r *FormatRepo) GetByID(ctx context.Context, formatID id.ID) (*numbering.FormatSetting, error) {
	q := builder().
		Select(formatColumns...).
		From(formatTable).
		Where(squirrel.Eq{"id": formatID}).
		Limit(1)

	f, err := r.getOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("number format", formatID.String())
		}
		return nil, err
	}
	return f, nil
}

// FindByKey implements numbering.FormatRepository.
func (r *FormatRepo) FindByKey(ctx context.Context, scope numbering.Scope, orgID *id.ID, target numbering.Target) (*numbering.FormatSetting, error) {
	q := builder().
		Select(formatColumns...).
		From(formatTable).
		Where(squirrel.Eq{"scope": string(scope), "target": string(target)}).
		Where(orgCondition(orgID)).
		Limit(1)

	f, err := r.getOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("number format", string(target)).
				WithDetail("scope", scope).
				WithDetail("orgId", id.String(orgID))
		}
		return nil, err
	}
	return f, nil
}

// List implements numbering.FormatRepository.
func (r *FormatRepo) List(ctx context.Context, filter numbering.ListFilter) ([]*numbering.FormatSetting, error) {
	q := builder().
		Select(formatColumns...).
		From(formatTable).
		OrderBy("target", "scope", "created_at")

	if filter.Target != "" {
		q = q.Where(squirrel.Eq{"target": string(filter.Target)})
	}
	if filter.Scope != "" {
		q = q.Where(squirrel.Eq{"scope": string(filter.Scope)})
	}
	if filter.OrgID != nil {
		q = q.Where(squirrel.Eq{"org_id": *filter.OrgID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*numbering.FormatSetting
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", formatTable, err)
	}
	return items, nil
}

func (r *FormatRepo) getOne(ctx context.Context, q squirrel.SelectBuilder) (*numbering.FormatSetting, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	f := &numbering.FormatSetting{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), f, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(formatTable, "matching query")
		}
		return nil, fmt.Errorf("get %s: %w", formatTable, err)
	}
	return f, nil
}
