package memory

import (
	"context"
	"strings"
	"sync"

	"numbering/internal/core/apperror"
	"numbering/internal/core/id"
	"numbering/internal/domain/numbering"
)

var _ numbering.OrgDirectory = (*OrgDirectory)(nil)

// OrgDirectory is a fixed map of organization codes.
type OrgDirectory struct {
	mu    sync.RWMutex
	codes map[id.ID]string
}

// NewOrgDirectory creates a directory seeded with codes.
func NewOrgDirectory(codes map[id.ID]string) *OrgDirectory {
	d := &OrgDirectory{codes: make(map[id.ID]string, len(codes))}
	for k, v := range codes {
		d.codes[k] = v
	}
	return d
}

// Put adds or replaces an organization code.
func (d *OrgDirectory) Put(orgID id.ID, code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codes[orgID] = code
}

// CodeByID implements numbering.OrgDirectory.
func (d *OrgDirectory) CodeByID(_ context.Context, orgID id.ID) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	code := strings.TrimSpace(d.codes[orgID])
	if code == "" {
		return "", apperror.NewNotFound("organization", orgID.String())
	}
	return code, nil
}
