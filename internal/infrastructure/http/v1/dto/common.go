// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewListResponse creates a list response.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

// parseOrgID parses an optional organization id.
func parseOrgID(s string) (*id.ID, error) {
	orgID, err := id.ParseOptional(s)
	if err != nil {
		return nil, apperror.NewFieldValidation("orgId", "invalid UUID format")
	}
	return orgID, nil
}

// parseDate parses an optional YYYY-MM-DD date into a UTC calendar date.
func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, apperror.NewFieldValidation(field, "must be a date in format YYYY-MM-DD")
	}
	return &d, nil
}
