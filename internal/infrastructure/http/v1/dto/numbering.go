package dto

import (
	"time"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/domain/numbering"
)

// --- Format settings ---

// EffectiveFormatQuery selects the format used for (target, orgId).
type EffectiveFormatQuery struct {
	Target string `form:"target" binding:"required,oneof=CUSTOMER_NO MANAGEMENT_NO"`
	OrgID  string `form:"orgId" binding:"omitempty,uuid"`
}

// Org parses the optional organization id.
func (q EffectiveFormatQuery) Org() (*id.ID, error) {
	return parseOrgID(q.OrgID)
}

// ListFormatsQuery filters the format list.
type ListFormatsQuery struct {
	Target string `form:"target" binding:"omitempty,oneof=CUSTOMER_NO MANAGEMENT_NO"`
	Scope  string `form:"scope" binding:"omitempty,oneof=GLOBAL ORG"`
	OrgID  string `form:"orgId" binding:"omitempty,uuid"`
}

// ToFilter converts the query to a repository filter.
func (q ListFormatsQuery) ToFilter() (numbering.ListFilter, error) {
	orgID, err := parseOrgID(q.OrgID)
	if err != nil {
		return numbering.ListFilter{}, err
	}
	return numbering.ListFilter{
		Target: numbering.Target(q.Target),
		Scope:  numbering.Scope(q.Scope),
		OrgID:  orgID,
	}, nil
}

// CreateFormatRequest is the DTO for creating a format setting.
type CreateFormatRequest struct {
	Target               string          `json:"target" binding:"required,oneof=CUSTOMER_NO MANAGEMENT_NO"`
	Scope                string          `json:"scope" binding:"required,oneof=GLOBAL ORG"`
	OrgID                string          `json:"orgId" binding:"omitempty,uuid"`
	Enabled              *bool           `json:"enabled"`
	Parts                numbering.Parts `json:"parts" binding:"required,min=1"`
	Joiner               *string         `json:"joiner" binding:"omitempty,max=16,halfwidth"`
	FiscalYearStartMonth int             `json:"fiscalYearStartMonth" binding:"omitempty,min=1,max=12"`
	Description          string          `json:"description" binding:"max=500"`
}

// ToInput converts the request to service input. Enabled defaults to true.
func (r CreateFormatRequest) ToInput() (numbering.CreateFormatInput, error) {
	orgID, err := parseOrgID(r.OrgID)
	if err != nil {
		return numbering.CreateFormatInput{}, err
	}
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return numbering.CreateFormatInput{
		Target:               numbering.Target(r.Target),
		Scope:                numbering.Scope(r.Scope),
		OrgID:                orgID,
		Enabled:              enabled,
		Parts:                r.Parts,
		Joiner:               r.Joiner,
		FiscalYearStartMonth: r.FiscalYearStartMonth,
		Description:          r.Description,
	}, nil
}

// UpdateFormatRequest is a partial update. Absent fields keep their value;
// "joiner": "" clears the joiner.
type UpdateFormatRequest struct {
	Version              int             `json:"version" binding:"required,min=1"`
	Enabled              *bool           `json:"enabled"`
	Parts                numbering.Parts `json:"parts" binding:"omitempty,min=1"`
	Joiner               *string         `json:"joiner" binding:"omitempty,max=16,halfwidth"`
	FiscalYearStartMonth *int            `json:"fiscalYearStartMonth" binding:"omitempty,min=1,max=12"`
	Description          *string         `json:"description" binding:"omitempty,max=500"`
}

// ToInput converts the request to service input.
func (r UpdateFormatRequest) ToInput() numbering.UpdateFormatInput {
	return numbering.UpdateFormatInput{
		Version:              r.Version,
		Enabled:              r.Enabled,
		Parts:                r.Parts,
		Joiner:               r.Joiner,
		FiscalYearStartMonth: r.FiscalYearStartMonth,
		Description:          r.Description,
	}
}

// FormatResponse is the DTO for returning a format setting.
type FormatResponse struct {
	ID                   string          `json:"id"`
	Target               string          `json:"target"`
	Scope                string          `json:"scope"`
	OrgID                *string         `json:"orgId"`
	Enabled              bool            `json:"enabled"`
	Parts                numbering.Parts `json:"parts"`
	Joiner               *string         `json:"joiner"`
	FiscalYearStartMonth int             `json:"fiscalYearStartMonth"`
	Description          string          `json:"description"`
	Version              int             `json:"version"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// FromFormat creates FormatResponse from the domain model.
func FromFormat(f *numbering.FormatSetting) FormatResponse {
	resp := FormatResponse{
		ID:                   f.ID.String(),
		Target:               string(f.Target),
		Scope:                string(f.Scope),
		Enabled:              f.Enabled,
		Parts:                f.Parts,
		Joiner:               f.Joiner,
		FiscalYearStartMonth: f.FiscalYearStartMonth,
		Description:          f.Description,
		Version:              f.Version,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.UpdatedAt,
	}
	if f.OrgID != nil {
		s := f.OrgID.String()
		resp.OrgID = &s
	}
	return resp
}

// FromFormats maps a list of settings.
func FromFormats(items []*numbering.FormatSetting) []FormatResponse {
	out := make([]FormatResponse, 0, len(items))
	for _, f := range items {
		out = append(out, FromFormat(f))
	}
	return out
}

// --- Preview ---

// FormatDraft is an unsaved format to preview. Target and scope default to
// CUSTOMER_NO and GLOBAL.
type FormatDraft struct {
	Target               string          `json:"target" binding:"omitempty,oneof=CUSTOMER_NO MANAGEMENT_NO"`
	Scope                string          `json:"scope" binding:"omitempty,oneof=GLOBAL ORG"`
	OrgID                string          `json:"orgId" binding:"omitempty,uuid"`
	Parts                numbering.Parts `json:"parts" binding:"required,min=1"`
	Joiner               *string         `json:"joiner" binding:"omitempty,max=16,halfwidth"`
	FiscalYearStartMonth int             `json:"fiscalYearStartMonth" binding:"omitempty,min=1,max=12"`
}

// SampleRequest holds the hypothetical inputs of a preview.
type SampleRequest struct {
	Date  string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	OrgID string `json:"orgId" binding:"omitempty,uuid"`
}

// PreviewRequest previews either a stored format (formatId) or a draft.
type PreviewRequest struct {
	FormatID string         `json:"formatId" binding:"omitempty,uuid"`
	Format   *FormatDraft   `json:"format"`
	Sample   *SampleRequest `json:"sample"`
}

// ToInput converts the request to service input.
func (r PreviewRequest) ToInput() (numbering.PreviewInput, error) {
	var in numbering.PreviewInput

	if r.Sample != nil {
		date, err := parseDate("sample.date", r.Sample.Date)
		if err != nil {
			return in, err
		}
		orgID, err := parseOrgID(r.Sample.OrgID)
		if err != nil {
			return in, err
		}
		in.Date, in.OrgID = date, orgID
	}

	switch {
	case r.FormatID != "" && r.Format != nil:
		return in, apperror.NewValidation("formatId and format are mutually exclusive")
	case r.FormatID != "":
		formatID, err := id.Parse(r.FormatID)
		if err != nil {
			return in, apperror.NewFieldValidation("formatId", "invalid UUID format")
		}
		in.FormatID = &formatID
	case r.Format != nil:
		draft, err := r.Format.toSetting(in.OrgID)
		if err != nil {
			return in, err
		}
		in.Draft = draft
	default:
		return in, apperror.NewValidation("either formatId or format is required")
	}
	return in, nil
}

func (d FormatDraft) toSetting(sampleOrg *id.ID) (*numbering.FormatSetting, error) {
	f := &numbering.FormatSetting{
		Target:               numbering.Target(d.Target),
		Scope:                numbering.Scope(d.Scope),
		Enabled:              true,
		Parts:                d.Parts,
		Joiner:               d.Joiner,
		FiscalYearStartMonth: d.FiscalYearStartMonth,
	}
	if f.Target == "" {
		f.Target = numbering.TargetCustomerNo
	}
	if f.Scope == "" {
		f.Scope = numbering.ScopeGlobal
	}

	orgID, err := parseOrgID(d.OrgID)
	if err != nil {
		return nil, err
	}
	if f.Scope == numbering.ScopeOrg {
		if orgID == nil {
			orgID = sampleOrg
		}
		f.OrgID = orgID
	}
	return f, nil
}

// --- Generate ---

// GenerateRequest asks for the next number.
type GenerateRequest struct {
	Target string `json:"target" binding:"required,oneof=CUSTOMER_NO MANAGEMENT_NO"`
	OrgID  string `json:"orgId" binding:"omitempty,uuid"`
	Date   string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ToInput converts the request to service input.
func (r GenerateRequest) ToInput() (numbering.GenerateInput, error) {
	orgID, err := parseOrgID(r.OrgID)
	if err != nil {
		return numbering.GenerateInput{}, err
	}
	date, err := parseDate("date", r.Date)
	if err != nil {
		return numbering.GenerateInput{}, err
	}
	return numbering.GenerateInput{
		Target: numbering.Target(r.Target),
		OrgID:  orgID,
		Date:   date,
	}, nil
}

// GenerateResponse carries the issued number.
type GenerateResponse struct {
	Value    string `json:"value"`
	FormatID string `json:"formatId"`
}

// --- List display ---

// ListDisplayQuery selects the list display setting for a scope.
type ListDisplayQuery struct {
	Scope string `form:"scope" binding:"omitempty,oneof=GLOBAL ORG"`
	OrgID string `form:"orgId" binding:"omitempty,uuid"`
}

// Resolve returns the scope (GLOBAL unless given) and org.
func (q ListDisplayQuery) Resolve() (numbering.Scope, *id.ID, error) {
	orgID, err := parseOrgID(q.OrgID)
	if err != nil {
		return "", nil, err
	}
	scope := numbering.Scope(q.Scope)
	if scope == "" {
		scope = numbering.ScopeGlobal
		if orgID != nil {
			scope = numbering.ScopeOrg
		}
	}
	return scope, orgID, nil
}

// SaveListDisplayRequest creates or replaces the setting of one scope.
// Version is 0 when the row does not exist yet.
type SaveListDisplayRequest struct {
	Scope            string `json:"scope" binding:"required,oneof=GLOBAL ORG"`
	OrgID            string `json:"orgId" binding:"omitempty,uuid"`
	ShowCustomerNo   *bool  `json:"showCustomerNo" binding:"required"`
	ShowManagementNo *bool  `json:"showManagementNo" binding:"required"`
	Version          int    `json:"version" binding:"min=0"`
}

// ToInput converts the request to service input.
func (r SaveListDisplayRequest) ToInput() (numbering.SaveListDisplayInput, error) {
	orgID, err := parseOrgID(r.OrgID)
	if err != nil {
		return numbering.SaveListDisplayInput{}, err
	}
	return numbering.SaveListDisplayInput{
		Scope:            numbering.Scope(r.Scope),
		OrgID:            orgID,
		ShowCustomerNo:   *r.ShowCustomerNo,
		ShowManagementNo: *r.ShowManagementNo,
		Version:          r.Version,
	}, nil
}
