package numbering

import (
	"context"

	"numbering/internal/core/id"
)

// ListFilter narrows ListFormats. Zero values mean "any".
type ListFilter struct {
	Target Target
	Scope  Scope
	OrgID  *id.ID
}

// FormatRepository persists FormatSetting rows.
type FormatRepository interface {
	// Create inserts a new setting. A row with the same (scope, org, target)
	// yields apperror CodeDuplicate.
	Create(ctx context.Context, f *FormatSetting) error

	// Update writes f if the stored version equals f.Version, then bumps
	// f.Version. A mismatch yields apperror CodeConcurrentModification.
	Update(ctx context.Context, f *FormatSetting) error

	GetByID(ctx context.Context, formatID id.ID) (*FormatSetting, error)

	// FindByKey returns the setting for (scope, org, target) or apperror NotFound.
	FindByKey(ctx context.Context, scope Scope, orgID *id.ID, target Target) (*FormatSetting, error)

	List(ctx context.Context, filter ListFilter) ([]*FormatSetting, error)
}

// ListDisplayRepository persists ListDisplaySetting rows.
type ListDisplayRepository interface {
	// Get returns the row for (scope, org) or apperror NotFound.
	Get(ctx context.Context, scope Scope, orgID *id.ID) (*ListDisplaySetting, error)

	// Save inserts s when s.Version is 0, otherwise updates it under the same
	// optimistic rule as FormatRepository.Update.
	Save(ctx context.Context, s *ListDisplaySetting) error
}

// OrgDirectory resolves organization codes. It is owned by the org catalog.
type OrgDirectory interface {
	// CodeByID returns the organization's code or apperror NotFound.
	CodeByID(ctx context.Context, orgID id.ID) (string, error)
}
