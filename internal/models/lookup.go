package models

import (
	"fmt"
	"time"
)

var _ Model = (*LookupRecord)(nil)

// LookupRecord is the persisted outcome of one catalog lookup from a batch run.
type LookupRecord struct {
	base
	ResourceType string
	ResourceID   string
	Storefront   string
	Success      bool
	ErrorKind    string
	ErrorMessage string
}

// NewLookupRecord creates an unsaved lookup record.
func NewLookupRecord(resourceType, resourceID, storefront string) *LookupRecord {
	return &LookupRecord{
		base:         newBase(0),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Storefront:   storefront,
	}
}

// Validate checks required fields.
func (r *LookupRecord) Validate() error {
	if r.ResourceType == "" || r.ResourceID == "" {
		return fmt.Errorf("resource type and id are required")
	}
	if r.Storefront == "" {
		return fmt.Errorf("storefront is required")
	}
	return nil
}

// Touch sets UpdatedAt to now; lookup records are immutable once written so this only matters before insert.
func (r *LookupRecord) Touch() {
	r.SetUpdatedAt(time.Now().UTC())
}
