package numbering

import (
	"fmt"
	"strings"
	"time"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/core/numerator"
)

// RenderContext carries everything Render needs; Render itself does no I/O.
type RenderContext struct {
	Date  time.Time
	OrgID *id.ID

	// OrgCode is the trimmed code of OrgID, resolved by the caller when the
	// format contains an ORG_CODE part
	OrgCode string

	// Serials holds allocated values by context key. Missing keys render the
	// would-be-first value (preview).
	Serials numerator.Values
}

// Fragment is the rendered output of one part.
type Fragment struct {
	Type  PartType `json:"type"`
	Value string   `json:"value"`
}

// Render expands every part and joins the non-empty fragments with the
// setting's joiner.
func Render(f *FormatSetting, rc RenderContext) ([]Fragment, string, error) {
	frags := make([]Fragment, 0, len(f.Parts))
	values := make([]string, 0, len(f.Parts))

	for i, p := range f.Parts {
		v, err := renderPart(f, p, rc)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return nil, "", appErr.WithDetail("part", i)
			}
			return nil, "", fmt.Errorf("parts[%d]: %w", i, err)
		}
		frags = append(frags, Fragment{Type: p.Type(), Value: v})
		if v != "" {
			values = append(values, v)
		}
	}

	return frags, strings.Join(values, f.JoinerValue()), nil
}

func renderPart(f *FormatSetting, p Part, rc RenderContext) (string, error) {
	switch v := p.(type) {
	case LiteralPart:
		return v.Value, nil
	case DatePart:
		layout, ok := v.Format.layout()
		if !ok {
			return "", apperror.NewValidation(fmt.Sprintf("unknown date format %q", v.Format))
		}
		return rc.Date.Format(layout), nil
	case FiscalYearPart:
		start := v.StartMonth
		if start == 0 {
			start = f.FiscalYearStartMonth
		}
		fy := FiscalYear(rc.Date, start)
		if v.Style == YearStyleYY {
			return fmt.Sprintf("%02d", fy%100), nil
		}
		return fmt.Sprintf("%04d", fy), nil
	case OrgCodePart:
		if rc.OrgID == nil {
			return "", apperror.NewFieldValidation("orgId", "orgId is required to render ORG_CODE")
		}
		code := strings.TrimSpace(rc.OrgCode)
		if code == "" {
			return "", apperror.NewNotFound("organization", rc.OrgID.String())
		}
		return code, nil
	case SerialPart:
		value, ok := rc.Serials[ContextKey(f, v, rc.Date, rc.OrgID)]
		if !ok {
			value = v.FirstValue()
		}
		return fmt.Sprintf("%0*d", v.Digits, value), nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown part type %T", p))
}
