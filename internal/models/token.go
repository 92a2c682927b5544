package models

import (
	"fmt"
	"strings"
	"time"
)

var _ Model = (*DeveloperToken)(nil)

// DeveloperToken is a signed developer token saved to the local ledger for later reuse.
type DeveloperToken struct {
	base
	teamID    string
	keyID     string
	origin    []string
	value     string
	issuedAt  time.Time
	expiresAt time.Time
}

// NewDeveloperToken creates an unsaved ledger entry.
func NewDeveloperToken(sequence int, teamID, keyID, value string, issuedAt, expiresAt time.Time, origin []string) *DeveloperToken {
	return &DeveloperToken{
		base:      newBase(sequence),
		teamID:    teamID,
		keyID:     keyID,
		origin:    origin,
		value:     value,
		issuedAt:  issuedAt.UTC(),
		expiresAt: expiresAt.UTC(),
	}
}

func (t *DeveloperToken) TeamID() string       { return t.teamID }
func (t *DeveloperToken) KeyID() string        { return t.keyID }
func (t *DeveloperToken) Origin() []string     { return t.origin }
func (t *DeveloperToken) Value() string        { return t.value }
func (t *DeveloperToken) IssuedAt() time.Time  { return t.issuedAt }
func (t *DeveloperToken) ExpiresAt() time.Time { return t.expiresAt }

// OriginString joins origins with commas for storage.
func (t *DeveloperToken) OriginString() string {
	return strings.Join(t.origin, ",")
}

// ParseOrigin splits a stored origin column back into a list.
func ParseOrigin(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// Expired reports whether the token has expired at now.
func (t *DeveloperToken) Expired(now time.Time) bool {
	return !now.Before(t.expiresAt)
}

// Validate checks required fields.
func (t *DeveloperToken) Validate() error {
	switch {
	case t.teamID == "":
		return fmt.Errorf("team_id is required")
	case t.keyID == "":
		return fmt.Errorf("key_id is required")
	case t.value == "":
		return fmt.Errorf("token value is required")
	case !t.expiresAt.After(t.issuedAt):
		return fmt.Errorf("expires_at must be after issued_at")
	}
	return nil
}
