package numbering

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PartType is the discriminator of a format part.
type PartType string

const (
	PartLiteral    PartType = "LITERAL"
	PartDate       PartType = "DATE"
	PartFiscalYear PartType = "FISCAL_YEAR"
	PartOrgCode    PartType = "ORG_CODE"
	PartSerial     PartType = "SERIAL"
)

// DateFormat is the layout of a DATE part.
type DateFormat string

const (
	DateYYYYMMDD   DateFormat = "YYYYMMDD"
	DateYYMMDD     DateFormat = "YYMMDD"
	DateYYYYMM     DateFormat = "YYYY-MM"
	DateYYYYMMDDHy DateFormat = "YYYY-MM-DD"
)

// layout maps a DateFormat to a Go time layout.
func (f DateFormat) layout() (string, bool) {
	switch f {
	case DateYYYYMMDD:
		return "20060102", true
	case DateYYMMDD:
		return "060102", true
	case DateYYYYMM:
		return "2006-01", true
	case DateYYYYMMDDHy:
		return "2006-01-02", true
	}
	return "", false
}

// YearStyle is the width of a rendered fiscal year.
type YearStyle string

const (
	YearStyleYYYY YearStyle = "YYYY"
	YearStyleYY   YearStyle = "YY"
)

// ResetPolicy governs how often a serial context changes.
type ResetPolicy string

const (
	ResetNever        ResetPolicy = "NEVER"
	ResetDaily        ResetPolicy = "DAILY"
	ResetMonthly      ResetPolicy = "MONTHLY"
	ResetYearly       ResetPolicy = "YEARLY"
	ResetFiscalYearly ResetPolicy = "FISCAL_YEARLY"
)

// SerialScope partitions a serial counter.
type SerialScope string

const (
	SerialScopeGlobal SerialScope = "GLOBAL"
	SerialScopeOrg    SerialScope = "ORG"
	// SerialScopeFiscalYear is accepted for compatibility; it does not change
	// the context key (only ResetFiscalYearly does).
	SerialScopeFiscalYear SerialScope = "FISCAL_YEAR"
)

// Part is one element of a format. The set of implementations is closed:
// LiteralPart, DatePart, FiscalYearPart, OrgCodePart, SerialPart.
type Part interface {
	Type() PartType
	part()
}

// LiteralPart renders a fixed halfwidth string.
type LiteralPart struct {
	Value string `json:"value"`
}

// DatePart renders the generation date.
type DatePart struct {
	Format DateFormat `json:"format"`
}

// FiscalYearPart renders the fiscal year of the generation date.
// A zero StartMonth falls back to the setting's FiscalYearStartMonth.
type FiscalYearPart struct {
	Style      YearStyle `json:"style"`
	StartMonth int       `json:"startMonth,omitempty"`
}

// OrgCodePart renders the code of the organization in context.
type OrgCodePart struct{}

// SerialPart renders an allocated counter value zero-padded to Digits.
type SerialPart struct {
	Digits      int         `json:"digits"`
	ResetPolicy ResetPolicy `json:"resetPolicy"`
	Scope       SerialScope `json:"scope"`
	StartFrom   int64       `json:"startFrom"`
	Step        int64       `json:"step"`
}

func (LiteralPart) Type() PartType    { return PartLiteral }
func (DatePart) Type() PartType       { return PartDate }
func (FiscalYearPart) Type() PartType { return PartFiscalYear }
func (OrgCodePart) Type() PartType    { return PartOrgCode }
func (SerialPart) Type() PartType     { return PartSerial }

func (LiteralPart) part()    {}
func (DatePart) part()       {}
func (FiscalYearPart) part() {}
func (OrgCodePart) part()    {}
func (SerialPart) part()     {}

// FirstValue is the value a fresh context delivers on its first allocation.
func (p SerialPart) FirstValue() int64 {
	return p.StartFrom + p.Step
}

// Parts is the ordered part list. It is persisted as a JSON array of
// {"type": ..., "options": {...}} objects.
type Parts []Part

// RawPart is the wire shape of one part.
type RawPart struct {
	Type    PartType        `json:"type"`
	Options json.RawMessage `json:"options,omitempty"`
}

type serialOptions struct {
	Digits      int         `json:"digits"`
	ResetPolicy ResetPolicy `json:"resetPolicy"`
	Scope       SerialScope `json:"scope"`
	StartFrom   *int64      `json:"startFrom"`
	Step        *int64      `json:"step"`
}

// MarshalJSON implements json.Marshaler.
func (ps Parts) MarshalJSON() ([]byte, error) {
	raw := make([]RawPart, 0, len(ps))
	for i, p := range ps {
		if p == nil {
			return nil, fmt.Errorf("parts[%d]: nil part", i)
		}
		opts, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("parts[%d]: %w", i, err)
		}
		raw = append(raw, RawPart{Type: p.Type(), Options: opts})
	}
	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler. Unknown part types are rejected.
func (ps *Parts) UnmarshalJSON(data []byte) error {
	var raw []RawPart
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Parts, 0, len(raw))
	for i, r := range raw {
		p, err := DecodePart(r.Type, r.Options)
		if err != nil {
			return fmt.Errorf("parts[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	*ps = out
	return nil
}

// DecodePart builds a Part from its type tag and JSON options, applying
// SERIAL defaults (resetPolicy NEVER, scope GLOBAL, startFrom 0, step 1).
func DecodePart(t PartType, options []byte) (Part, error) {
	options = bytes.TrimSpace(options)
	if len(options) == 0 || bytes.Equal(options, []byte("null")) {
		options = []byte("{}")
	}

	switch t {
	case PartLiteral:
		var p LiteralPart
		err := json.Unmarshal(options, &p)
		return p, err
	case PartDate:
		var p DatePart
		err := json.Unmarshal(options, &p)
		return p, err
	case PartFiscalYear:
		var p FiscalYearPart
		err := json.Unmarshal(options, &p)
		return p, err
	case PartOrgCode:
		return OrgCodePart{}, nil
	case PartSerial:
		var o serialOptions
		if err := json.Unmarshal(options, &o); err != nil {
			return nil, err
		}
		p := SerialPart{
			Digits:      o.Digits,
			ResetPolicy: o.ResetPolicy,
			Scope:       o.Scope,
			Step:        1,
		}
		if o.StartFrom != nil {
			p.StartFrom = *o.StartFrom
		}
		if o.Step != nil {
			p.Step = *o.Step
		}
		return p.withDefaults(), nil
	}
	return nil, fmt.Errorf("unknown part type %q", t)
}

func (p SerialPart) withDefaults() SerialPart {
	if p.ResetPolicy == "" {
		p.ResetPolicy = ResetNever
	}
	if p.Scope == "" {
		p.Scope = SerialScopeGlobal
	}
	return p
}

// Scan implements sql.Scanner so the JSONB column can be read with scany.
func (ps *Parts) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ps = nil
		return nil
	case []byte:
		return ps.UnmarshalJSON(v)
	case string:
		return ps.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("parts: unsupported source type %T", src)
}
