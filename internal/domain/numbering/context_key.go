package numbering

import (
	"strconv"
	"strings"
	"time"

	"numbering/internal/core/id"
	"numbering/internal/core/numerator"
)

// FiscalYear returns the fiscal year containing date for a year starting in startMonth.
func FiscalYear(date time.Time, startMonth int) int {
	if int(date.Month()) >= startMonth {
		return date.Year()
	}
	return date.Year() - 1
}

// ContextKey derives the counter partition for one SERIAL part.
// The result depends only on (target, serial scope, reset policy, date,
// orgID, fiscal year start month), so the same bucket always maps to the same
// counter row.
func ContextKey(f *FormatSetting, p SerialPart, date time.Time, orgID *id.ID) string {
	frags := []string{"target=" + string(f.Target)}

	if p.Scope == SerialScopeOrg {
		frags = append(frags, "org="+orgFragment(orgID))
	}

	switch p.ResetPolicy {
	case ResetDaily:
		frags = append(frags, "date="+date.Format("20060102"))
	case ResetMonthly:
		frags = append(frags, "month="+date.Format("2006-01"))
	case ResetYearly:
		frags = append(frags, "year="+date.Format("2006-01-02")[:4])
	case ResetFiscalYearly:
		frags = append(frags, "fy="+strconv.Itoa(FiscalYear(date, f.FiscalYearStartMonth)))
		if p.Scope == SerialScopeOrg && orgID != nil {
			frags = append(frags, "org="+orgID.String())
		}
	default:
		frags = append(frags, "global")
	}

	return strings.Join(frags, "&")
}

func orgFragment(orgID *id.ID) string {
	if orgID == nil {
		return "none"
	}
	return orgID.String()
}

// CounterRequests returns one allocation request per distinct context key
// among the format's SERIAL parts, in lock order.
func CounterRequests(f *FormatSetting, date time.Time, orgID *id.ID) []numerator.Request {
	var reqs []numerator.Request
	for _, p := range f.Parts {
		sp, ok := p.(SerialPart)
		if !ok {
			continue
		}
		reqs = append(reqs, numerator.Request{
			ContextKey: ContextKey(f, sp, date, orgID),
			StartFrom:  sp.StartFrom,
			Step:       sp.Step,
		})
	}
	return numerator.Normalize(reqs)
}
