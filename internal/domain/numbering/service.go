package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/core/numerator"
	"numbering/internal/core/tx"
	"numbering/pkg/logger"
)

// Service implements format management, preview and generation.
type Service struct {
	formats   FormatRepository
	displays  ListDisplayRepository
	orgs      OrgDirectory
	allocator numerator.Allocator
	txManager tx.Manager

	location *time.Location
	fyStart  int
	now      func() time.Time
}

// ServiceConfig configures the numbering service.
type ServiceConfig struct {
	Formats   FormatRepository
	Displays  ListDisplayRepository
	Orgs      OrgDirectory
	Allocator numerator.Allocator
	TxManager tx.Manager

	// Location decides "today" when a caller omits the date (default Local)
	Location *time.Location

	// FiscalYearStartMonth is used when a setting does not carry one
	// (default DefaultFiscalYearStartMonth)
	FiscalYearStartMonth int

	// Now is overridable for tests (default time.Now)
	Now func() time.Time
}

// NewService creates a new numbering service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		formats:   cfg.Formats,
		displays:  cfg.Displays,
		orgs:      cfg.Orgs,
		allocator: cfg.Allocator,
		txManager: cfg.TxManager,
		location:  cfg.Location,
		fyStart:   cfg.FiscalYearStartMonth,
		now:       cfg.Now,
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.fyStart < 1 || s.fyStart > 12 {
		s.fyStart = DefaultFiscalYearStartMonth
	}
	return s
}

// today returns the caller's date or the current calendar date.
func (s *Service) today(date *time.Time) time.Time {
	if date != nil {
		return *date
	}
	return s.now().In(s.location)
}

// --- Resolution ---

// GetEffectiveFormat returns the enabled ORG setting for (target, orgID) if
// one exists, otherwise the GLOBAL setting for target.
func (s *Service) GetEffectiveFormat(ctx context.Context, target Target, orgID *id.ID) (*FormatSetting, error) {
	if !target.Valid() {
		return nil, apperror.NewFieldValidation("target", fmt.Sprintf("unknown target %q", target))
	}

	if orgID != nil {
		f, err := s.formats.FindByKey(ctx, ScopeOrg, orgID, target)
		switch {
		case err == nil && f.Enabled:
			return f, nil
		case err != nil && !apperror.IsNotFound(err):
			return nil, err
		}
	}

	f, err := s.formats.FindByKey(ctx, ScopeGlobal, nil, target)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("number format", string(target)).
				WithDetail("orgId", id.String(orgID))
		}
		return nil, err
	}
	return f, nil
}

// GetFormat retrieves a setting by ID.
func (s *Service) GetFormat(ctx context.Context, formatID id.ID) (*FormatSetting, error) {
	return s.formats.GetByID(ctx, formatID)
}

// ListFormats lists settings for the administration screen.
func (s *Service) ListFormats(ctx context.Context, filter ListFilter) ([]*FormatSetting, error) {
	return s.formats.List(ctx, filter)
}

// --- Create / Update ---

// CreateFormatInput holds the fields of a new setting.
type CreateFormatInput struct {
	Target               Target
	Scope                Scope
	OrgID                *id.ID
	Enabled              bool
	Parts                Parts
	Joiner               *string
	FiscalYearStartMonth int
	Description          string
}

// CreateFormat validates and stores a new setting. Only one setting may exist
// per (scope, org, target).
func (s *Service) CreateFormat(ctx context.Context, in CreateFormatInput) (*FormatSetting, error) {
	if in.FiscalYearStartMonth == 0 {
		in.FiscalYearStartMonth = s.fyStart
	}
	now := s.now().UTC()
	f := &FormatSetting{
		ID:                   id.New(),
		Target:               in.Target,
		Scope:                in.Scope,
		OrgID:                in.OrgID,
		Enabled:              in.Enabled,
		Parts:                in.Parts,
		Joiner:               in.Joiner,
		FiscalYearStartMonth: in.FiscalYearStartMonth,
		Description:          in.Description,
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := s.formats.FindByKey(ctx, f.Scope, f.OrgID, f.Target)
		switch {
		case err == nil:
			return duplicateFormat(f)
		case !apperror.IsNotFound(err):
			return err
		}
		return s.formats.Create(ctx, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(logger.WithFormat(ctx, f.ID, string(f.Target)), "number format created",
		"scope", f.Scope, logger.KeyOrgID, id.String(f.OrgID))
	return f, nil
}

func duplicateFormat(f *FormatSetting) *apperror.AppError {
	return apperror.NewDuplicate("number format", "scope/org/target",
		fmt.Sprintf("%s/%s/%s", f.Scope, id.String(f.OrgID), f.Target))
}

// UpdateFormatInput is a partial update. Nil fields keep their stored value;
// Joiner pointing at "" clears the joiner.
type UpdateFormatInput struct {
	// Version is the version the caller last read
	Version int

	Enabled              *bool
	Parts                Parts
	Joiner               *string
	FiscalYearStartMonth *int
	Description          *string
}

// UpdateFormat applies a patch under optimistic concurrency. Scope, org and
// target are immutable.
func (s *Service) UpdateFormat(ctx context.Context, formatID id.ID, in UpdateFormatInput) (*FormatSetting, error) {
	var f *FormatSetting
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		f, err = s.formats.GetByID(ctx, formatID)
		if err != nil {
			return err
		}
		if f.Version != in.Version {
			return apperror.NewConcurrentModification("number format", formatID.String()).
				WithDetail("expectedVersion", in.Version).
				WithDetail("currentVersion", f.Version)
		}

		if in.Enabled != nil {
			f.Enabled = *in.Enabled
		}
		if in.Parts != nil {
			f.Parts = in.Parts
		}
		if in.Joiner != nil {
			if *in.Joiner == "" {
				f.Joiner = nil
			} else {
				j := *in.Joiner
				f.Joiner = &j
			}
		}
		if in.FiscalYearStartMonth != nil {
			f.FiscalYearStartMonth = *in.FiscalYearStartMonth
			if f.FiscalYearStartMonth == 0 {
				f.FiscalYearStartMonth = s.fyStart
			}
		}
		if in.Description != nil {
			f.Description = *in.Description
		}

		f.Normalize()
		if err := f.Validate(); err != nil {
			return err
		}
		f.UpdatedAt = s.now().UTC()
		return s.formats.Update(ctx, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(logger.WithFormat(ctx, f.ID, string(f.Target)), "number format updated", "version", f.Version)
	return f, nil
}

// --- Preview ---

// PreviewInput selects either a stored setting (FormatID) or an unsaved draft.
type PreviewInput struct {
	FormatID *id.ID
	Draft    *FormatSetting
	Date     *time.Time
	OrgID    *id.ID
}

// PreviewResult is the rendered sample.
type PreviewResult struct {
	Sample string     `json:"sample"`
	Parts  []Fragment `json:"parts"`
}

// Preview renders a sample without allocating: SERIAL parts show their
// would-be-first value and no counter is read or written.
func (s *Service) Preview(ctx context.Context, in PreviewInput) (*PreviewResult, error) {
	var f *FormatSetting
	switch {
	case in.FormatID != nil:
		stored, err := s.formats.GetByID(ctx, *in.FormatID)
		if err != nil {
			return nil, err
		}
		f = stored
	case in.Draft != nil:
		draft := *in.Draft
		draft.Parts = append(Parts(nil), in.Draft.Parts...)
		if draft.FiscalYearStartMonth == 0 {
			draft.FiscalYearStartMonth = s.fyStart
		}
		draft.Normalize()
		if err := draft.Validate(); err != nil {
			return nil, err
		}
		f = &draft
	default:
		return nil, apperror.NewValidation("either formatId or format is required")
	}

	date := s.today(in.Date)
	rc, err := s.renderContext(ctx, f, date, in.OrgID)
	if err != nil {
		return nil, err
	}

	frags, sample, err := Render(f, rc)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Sample: sample, Parts: frags}, nil
}

// renderContext resolves the org code up front so Render stays pure.
func (s *Service) renderContext(ctx context.Context, f *FormatSetting, date time.Time, orgID *id.ID) (RenderContext, error) {
	rc := RenderContext{Date: date, OrgID: orgID}
	if !f.HasOrgCode() {
		return rc, nil
	}
	if orgID == nil {
		return rc, apperror.NewFieldValidation("orgId", "orgId is required to render ORG_CODE")
	}
	code, err := s.orgs.CodeByID(ctx, *orgID)
	if err != nil {
		return rc, err
	}
	rc.OrgCode = code
	return rc, nil
}

// --- Generate ---

// GenerateInput asks for the next number of Target.
type GenerateInput struct {
	Target Target
	OrgID  *id.ID

	// Date defaults to today in the service location
	Date *time.Time
}

// GenerateResult is the issued number.
type GenerateResult struct {
	Value    string `json:"value"`
	FormatID id.ID  `json:"formatId"`
}

// Generate resolves the effective format, advances every distinct serial
// context exactly once and renders the value, all in one transaction.
// A disabled format is a non-retryable conflict.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	f, err := s.GetEffectiveFormat(ctx, in.Target, in.OrgID)
	if err != nil {
		return nil, err
	}
	if !f.Enabled {
		return nil, apperror.NewFormatDisabled(f.ID.String(), string(f.Target))
	}
	ctx = logger.WithFormat(ctx, f.ID, string(f.Target))

	date := s.today(in.Date)
	rc, err := s.renderContext(ctx, f, date, in.OrgID)
	if err != nil {
		return nil, err
	}
	reqs := CounterRequests(f, date, in.OrgID)

	var value string
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if len(reqs) > 0 {
			values, err := s.allocator.Allocate(ctx, f.ID, reqs)
			if err != nil {
				if apperror.IsAppError(err) {
					return err
				}
				if errors.Is(err, numerator.ErrCounterExhausted) {
					return apperror.NewAllocationFailed(err).WithDetail("reason", "serial counter exhausted")
				}
				return apperror.NewAllocationFailed(err)
			}
			rc.Serials = values
		}
		var err error
		_, value, err = Render(f, rc)
		return err
	})
	if err != nil {
		if !apperror.IsAppError(err) {
			err = apperror.NewAllocationFailed(err)
		}
		return nil, err
	}

	logger.Info(ctx, "number generated", logger.KeyOrgID, id.String(in.OrgID), "value", value)
	return &GenerateResult{Value: value, FormatID: f.ID}, nil
}

// NextCustomerNo issues a customer number for the customer-creation flow.
func (s *Service) NextCustomerNo(ctx context.Context, orgID *id.ID) (string, error) {
	res, err := s.Generate(ctx, GenerateInput{Target: TargetCustomerNo, OrgID: orgID})
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// NextManagementNo issues a management number, e.g. for reservations that
// create a new customer.
func (s *Service) NextManagementNo(ctx context.Context, orgID *id.ID) (string, error) {
	res, err := s.Generate(ctx, GenerateInput{Target: TargetManagementNo, OrgID: orgID})
	if err != nil {
		return "", err
	}
	return res.Value, nil
}
