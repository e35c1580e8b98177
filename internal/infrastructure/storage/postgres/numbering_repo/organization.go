package numbering_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/domain/numbering"
	"numbering/internal/infrastructure/storage/postgres"
)

const organizationTable = "cat_organizations"

var organizationColumns = postgres.ExtractDBColumns[Organization]()

var _ numbering.OrgDirectory = (*OrganizationRepo)(nil)

// Organization is the slice of the org catalog the numbering engine reads.
type Organization struct {
	ID   id.ID  `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
}

// OrganizationRepo resolves organization codes from cat_organizations.
type OrganizationRepo struct {
	txm *postgres.TxManager
}

// NewOrganizationRepo creates a new organization repository.
func NewOrganizationRepo(txm *postgres.TxManager) *OrganizationRepo {
	return &OrganizationRepo{txm: txm}
}

// CodeByID implements numbering.OrgDirectory. Marked-for-deletion orgs are
// treated as missing.
func (r *OrganizationRepo) CodeByID(ctx context.Context, orgID id.ID) (string, error) {
	org, err := r.GetByID(ctx, orgID)
	if err != nil {
		return "", err
	}
	code := strings.TrimSpace(org.Code)
	if code == "" {
		return "", apperror.NewNotFound("organization", orgID.String()).
			WithDetail("reason", "organization has no code")
	}
	return code, nil
}

// GetByID retrieves an active organization.
func (r *OrganizationRepo) GetByID(ctx context.Context, orgID id.ID) (*Organization, error) {
	q := builder().
		Select(organizationColumns...).
		From(organizationTable).
		Where(squirrel.Eq{"id": orgID, "deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	org := &Organization{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), org, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("organization", orgID.String())
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

// Create inserts an organization row. Used by seeding and tests.
func (r *OrganizationRepo) Create(ctx context.Context, org *Organization) error {
	q := builder().
		Insert(organizationTable).
		Columns(organizationColumns...).
		Values(org.ID, org.Code, org.Name)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("organization", "id", org.ID.String()).WithCause(err)
		}
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

// Import bulk-loads organizations in one transaction. Codes are trimmed; a
// clash with an existing id fails the whole import.
func (r *OrganizationRepo) Import(ctx context.Context, orgs []Organization) (int64, error) {
	rows := make([][]any, 0, len(orgs))
	for _, org := range orgs {
		if id.IsNil(org.ID) {
			org.ID = id.New()
		}
		rows = append(rows, []any{org.ID, strings.TrimSpace(org.Code), org.Name})
	}

	var n int64
	err := r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = postgres.NewBatchInserter(r.txm).CopyFromSlice(ctx, organizationTable,
			organizationColumns, rows)
		return err
	})
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return 0, apperror.NewDuplicate("organization", "id", "import").WithCause(err)
		}
		return 0, fmt.Errorf("import organizations: %w", err)
	}
	return n, nil
}
