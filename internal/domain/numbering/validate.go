package numbering

import (
	"fmt"
	"math"

	"numbering/internal/core/apperror"
)

const (
	minSerialDigits = 1
	maxSerialDigits = 12
)

// IsHalfwidth reports whether s consists only of printable ASCII characters.
func IsHalfwidth(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// Normalize fills defaults that Validate relies on: fiscal year start month
// and SERIAL reset policy / scope.
func (f *FormatSetting) Normalize() {
	if f.FiscalYearStartMonth == 0 {
		f.FiscalYearStartMonth = DefaultFiscalYearStartMonth
	}
	for i, p := range f.Parts {
		if sp, ok := p.(SerialPart); ok {
			f.Parts[i] = sp.withDefaults()
		}
	}
}

// Validate checks the setting's invariants. It does not touch storage;
// uniqueness and version checks belong to the service.
func (f *FormatSetting) Validate() error {
	if !f.Target.Valid() {
		return apperror.NewFieldValidation("target", fmt.Sprintf("unknown target %q", f.Target))
	}
	if !f.Scope.Valid() {
		return apperror.NewFieldValidation("scope", fmt.Sprintf("unknown scope %q", f.Scope))
	}
	switch {
	case f.Scope == ScopeOrg && f.OrgID == nil:
		return apperror.NewFieldValidation("orgId", "orgId is required for ORG scope")
	case f.Scope == ScopeGlobal && f.OrgID != nil:
		return apperror.NewFieldValidation("orgId", "orgId must be empty for GLOBAL scope")
	}
	if f.FiscalYearStartMonth < 1 || f.FiscalYearStartMonth > 12 {
		return apperror.NewFieldValidation("fiscalYearStartMonth", "fiscalYearStartMonth must be between 1 and 12")
	}
	if f.Joiner != nil && !IsHalfwidth(*f.Joiner) {
		return apperror.NewFieldValidation("joiner", "joiner must be halfwidth ASCII")
	}
	return ValidateParts(f.Parts)
}

// ValidateParts checks the part list.
func ValidateParts(parts Parts) error {
	if len(parts) == 0 {
		return apperror.NewFieldValidation("parts", "parts must not be empty")
	}
	for i, p := range parts {
		if err := validatePart(fmt.Sprintf("parts[%d]", i), p); err != nil {
			return err
		}
	}
	return nil
}

func validatePart(field string, p Part) error {
	switch v := p.(type) {
	case LiteralPart:
		if !IsHalfwidth(v.Value) {
			return apperror.NewFieldValidation(field+".value", "literal must be halfwidth ASCII")
		}
	case DatePart:
		if _, ok := v.Format.layout(); !ok {
			return apperror.NewFieldValidation(field+".format", fmt.Sprintf("unknown date format %q", v.Format))
		}
	case FiscalYearPart:
		if v.Style != YearStyleYYYY && v.Style != YearStyleYY {
			return apperror.NewFieldValidation(field+".style", fmt.Sprintf("unknown fiscal year style %q", v.Style))
		}
		if v.StartMonth != 0 && (v.StartMonth < 1 || v.StartMonth > 12) {
			return apperror.NewFieldValidation(field+".startMonth", "startMonth must be between 1 and 12")
		}
	case OrgCodePart:
	case SerialPart:
		return validateSerial(field, v)
	default:
		return apperror.NewFieldValidation(field+".type", fmt.Sprintf("unknown part type %T", p))
	}
	return nil
}

func validateSerial(field string, p SerialPart) error {
	if p.Digits < minSerialDigits || p.Digits > maxSerialDigits {
		return apperror.NewFieldValidation(field+".digits",
			fmt.Sprintf("digits must be between %d and %d", minSerialDigits, maxSerialDigits))
	}
	switch p.ResetPolicy {
	case ResetNever, ResetDaily, ResetMonthly, ResetYearly, ResetFiscalYearly:
	default:
		return apperror.NewFieldValidation(field+".resetPolicy", fmt.Sprintf("unknown reset policy %q", p.ResetPolicy))
	}
	switch p.Scope {
	case SerialScopeGlobal, SerialScopeOrg, SerialScopeFiscalYear:
	default:
		return apperror.NewFieldValidation(field+".scope", fmt.Sprintf("unknown serial scope %q", p.Scope))
	}
	if p.StartFrom < 0 {
		return apperror.NewFieldValidation(field+".startFrom", "startFrom must be >= 0")
	}
	if p.Step <= 0 {
		return apperror.NewFieldValidation(field+".step", "step must be > 0")
	}
	if p.StartFrom > math.MaxInt64-p.Step {
		return apperror.NewFieldValidation(field+".startFrom", "startFrom + step must not exceed 9223372036854775807")
	}
	return nil
}
