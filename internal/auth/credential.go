package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/amx/internal/shared"
)

// Credential is a MusicKit signing identity: team, key identifier and the ES256 private key.
//
// A Credential is immutable once constructed.
type Credential struct {
	teamID string
	keyID  string
	key    *ecdsa.PrivateKey
}

// NewCredential builds a [Credential] from an in-memory P-256 private key.
func NewCredential(teamID, keyID string, key *ecdsa.PrivateKey) (*Credential, error) {
	teamID = strings.TrimSpace(teamID)
	keyID = strings.TrimSpace(keyID)

	if teamID == "" {
		return nil, shared.NewValidationError("team identifier is required")
	}
	if keyID == "" {
		return nil, shared.NewValidationError("key identifier is required")
	}
	if key == nil {
		return nil, shared.NewValidationError("signing key is required")
	}
	if key.Curve != elliptic.P256() {
		return nil, shared.NewValidationError("signing key must use the P-256 curve, got %s", key.Curve.Params().Name)
	}

	return &Credential{teamID: teamID, keyID: keyID, key: key}, nil
}

// CredentialFromPEM parses a PEM-encoded private key (the contents of an AuthKey_<KEY_ID>.p8 file).
func CredentialFromPEM(teamID, keyID string, data []byte) (*Credential, error) {
	key, err := ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, err
	}
	return NewCredential(teamID, keyID, key)
}

// CredentialFromFile reads and parses the private key at path. The file is read once, here.
func CredentialFromFile(teamID, keyID, path string) (*Credential, error) {
	if path == "" {
		return nil, shared.NewValidationError("private key path is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, shared.NewValidationError("invalid private key path %q: %v", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read private key: %v", shared.ErrInvalidCredentials, err)
	}

	return CredentialFromPEM(teamID, keyID, data)
}

// ParsePrivateKeyPEM decodes an ECDSA private key from PKCS#8 ("PRIVATE KEY") or SEC 1 ("EC PRIVATE KEY") PEM.
//
// Error messages never contain key material.
func ParsePrivateKeyPEM(data []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, shared.NewValidationError("failed to parse PEM block: no valid PEM data found")
	}

	switch block.Type {
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, shared.NewValidationError("failed to parse PKCS#8 private key: %v", err)
		}
		key, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, shared.NewValidationError("key is not ECDSA: only ES256 keys are supported")
		}
		return key, nil
	case "EC PRIVATE KEY":
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, shared.NewValidationError("failed to parse EC private key: %v", err)
		}
		return key, nil
	default:
		return nil, shared.NewValidationError("unexpected PEM block type %q, expected PRIVATE KEY", block.Type)
	}
}

func (c *Credential) TeamID() string { return c.teamID }
func (c *Credential) KeyID() string  { return c.keyID }

// PublicKey returns the verification half of the signing key.
func (c *Credential) PublicKey() *ecdsa.PublicKey {
	return &c.key.PublicKey
}
