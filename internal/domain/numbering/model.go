// Package numbering implements configurable customer/management number
// generation: format settings, part rendering, serial context derivation and
// the generate/preview operations on top of a counter allocator.
package numbering

import (
	"time"

	"numbering/internal/core/id"
)

// Target identifies which logical number is generated.
type Target string

const (
	TargetCustomerNo   Target = "CUSTOMER_NO"
	TargetManagementNo Target = "MANAGEMENT_NO"
)

// Valid reports whether t is a known target.
func (t Target) Valid() bool {
	return t == TargetCustomerNo || t == TargetManagementNo
}

// Scope tells whether a setting applies globally or to one organization.
type Scope string

const (
	ScopeGlobal Scope = "GLOBAL"
	ScopeOrg    Scope = "ORG"
)

// Valid reports whether s is a known setting scope.
func (s Scope) Valid() bool {
	return s == ScopeGlobal || s == ScopeOrg
}

// DefaultFiscalYearStartMonth is April.
const DefaultFiscalYearStartMonth = 4

// FormatSetting is a persisted number format for one (scope, org, target).
type FormatSetting struct {
	ID     id.ID  `db:"id" json:"id"`
	Target Target `db:"target" json:"target"`
	Scope  Scope  `db:"scope" json:"scope"`

	// OrgID is set iff Scope is ORG
	OrgID *id.ID `db:"org_id" json:"orgId,omitempty"`

	Enabled bool  `db:"enabled" json:"enabled"`
	Parts   Parts `db:"parts" json:"parts"`

	// Joiner is placed between non-empty fragments; nil means no separator
	Joiner *string `db:"joiner" json:"joiner"`

	FiscalYearStartMonth int    `db:"fiscal_year_start_month" json:"fiscalYearStartMonth"`
	Description          string `db:"description" json:"description"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// JoinerValue returns the joiner or "" when unset.
func (f *FormatSetting) JoinerValue() string {
	if f.Joiner == nil {
		return ""
	}
	return *f.Joiner
}

// HasOrgCode reports whether any part renders the organization code.
func (f *FormatSetting) HasOrgCode() bool {
	for _, p := range f.Parts {
		if _, ok := p.(OrgCodePart); ok {
			return true
		}
	}
	return false
}

// ListDisplaySetting controls which numbers list screens show.
// Resolution follows FormatSetting: org row over global row.
type ListDisplaySetting struct {
	ID               id.ID     `db:"id" json:"id"`
	Scope            Scope     `db:"scope" json:"scope"`
	OrgID            *id.ID    `db:"org_id" json:"orgId,omitempty"`
	ShowCustomerNo   bool      `db:"show_customer_no" json:"showCustomerNo"`
	ShowManagementNo bool      `db:"show_management_no" json:"showManagementNo"`
	Version          int       `db:"version" json:"version"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultListDisplay is returned when neither an org nor a global row exists.
func DefaultListDisplay() *ListDisplaySetting {
	return &ListDisplaySetting{
		Scope:            ScopeGlobal,
		ShowCustomerNo:   true,
		ShowManagementNo: true,
	}
}
