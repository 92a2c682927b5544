package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/amx/internal/shared"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const (
	testTeamID = "TEAM123456"
	testKeyID  = "KEY1234567"
)

func mustKey(t *testing.T, curve elliptic.Curve) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key
}

func mustPKCS8PEM(t *testing.T, key any) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func mustGenerator(t *testing.T, now func() time.Time) *TokenGenerator {
	t.Helper()
	cred, err := NewCredential(testTeamID, testKeyID, mustKey(t, elliptic.P256()))
	if err != nil {
		t.Fatalf("failed to create credential: %v", err)
	}
	opts := []GeneratorOption{}
	if now != nil {
		opts = append(opts, WithClock(now))
	}
	g, err := NewTokenGenerator(cred, opts...)
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}
	return g
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func assertKind(t *testing.T, err error, want shared.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := shared.KindOf(err); got != want {
		t.Fatalf("expected %v error, got %v (%v)", want, got, err)
	}
}

func TestCredential(t *testing.T) {
	t.Run("From PKCS8 PEM", func(t *testing.T) {
		key := mustKey(t, elliptic.P256())
		cred, err := CredentialFromPEM(testTeamID, testKeyID, mustPKCS8PEM(t, key))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cred.TeamID() != testTeamID || cred.KeyID() != testKeyID {
			t.Errorf("unexpected identity %s/%s", cred.TeamID(), cred.KeyID())
		}
		if !cred.PublicKey().Equal(&key.PublicKey) {
			t.Error("expected public key to match")
		}
	})

	t.Run("From SEC1 PEM", func(t *testing.T) {
		key := mustKey(t, elliptic.P256())
		der, err := x509.MarshalECPrivateKey(key)
		if err != nil {
			t.Fatalf("failed to marshal key: %v", err)
		}
		data := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})

		if _, err := CredentialFromPEM(testTeamID, testKeyID, data); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("From File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "AuthKey_"+testKeyID+".p8")
		if err := os.WriteFile(path, mustPKCS8PEM(t, mustKey(t, elliptic.P256())), 0600); err != nil {
			t.Fatalf("failed to write key: %v", err)
		}

		if _, err := CredentialFromFile(testTeamID, testKeyID, path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Missing File Fails At Construction", func(t *testing.T) {
		_, err := CredentialFromFile(testTeamID, testKeyID, filepath.Join(t.TempDir(), "missing.p8"))
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Invalid Inputs", func(t *testing.T) {
		_, edPriv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			t.Fatalf("failed to generate ed25519 key: %v", err)
		}

		tc := []struct {
			name string
			fn   func() error
		}{
			{"not pem", func() error {
				_, err := CredentialFromPEM(testTeamID, testKeyID, []byte("not a key"))
				return err
			}},
			{"wrong block type", func() error {
				data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1, 2, 3}})
				_, err := CredentialFromPEM(testTeamID, testKeyID, data)
				return err
			}},
			{"ed25519 key", func() error {
				_, err := CredentialFromPEM(testTeamID, testKeyID, mustPKCS8PEM(t, edPriv))
				return err
			}},
			{"p384 key", func() error {
				_, err := NewCredential(testTeamID, testKeyID, mustKey(t, elliptic.P384()))
				return err
			}},
			{"empty team", func() error {
				_, err := NewCredential(" ", testKeyID, mustKey(t, elliptic.P256()))
				return err
			}},
			{"empty key id", func() error {
				_, err := NewCredential(testTeamID, "", mustKey(t, elliptic.P256()))
				return err
			}},
			{"nil key", func() error {
				_, err := NewCredential(testTeamID, testKeyID, nil)
				return err
			}},
			{"empty path", func() error {
				_, err := CredentialFromFile(testTeamID, testKeyID, "")
				return err
			}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				assertKind(t, tt.fn(), shared.KindValidation)
			})
		}
	})
}

func TestTokenGenerator(t *testing.T) {
	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Default Expiration Is One Hour", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(now))

		tok, err := g.GenerateToken()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tok.Lifetime() != time.Hour {
			t.Errorf("expected 1h lifetime, got %v", tok.Lifetime())
		}
		if !tok.IssuedAt.Equal(now) {
			t.Errorf("expected issuedAt %v, got %v", now, tok.IssuedAt)
		}
	})

	t.Run("Header And Claims", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(now))
		exp := now.Add(24 * time.Hour)

		tok, err := g.GenerateToken(WithExpiration(exp), WithOrigin("https://example.com"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		parsed, err := jwt.ParseSigned(tok.Value, []jose.SignatureAlgorithm{jose.ES256})
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}
		if len(parsed.Headers) != 1 || parsed.Headers[0].KeyID != testKeyID {
			t.Errorf("expected kid %s in header, got %+v", testKeyID, parsed.Headers)
		}
		if parsed.Headers[0].Algorithm != string(jose.ES256) {
			t.Errorf("expected ES256, got %s", parsed.Headers[0].Algorithm)
		}

		claims, err := g.ParseClaims(tok.Value)
		if err != nil {
			t.Fatalf("failed to verify claims: %v", err)
		}
		if claims.Issuer != testTeamID {
			t.Errorf("expected iss %s, got %s", testTeamID, claims.Issuer)
		}
		if claims.IssuedAt >= claims.ExpiresAt || claims.ExpiresAt != exp.Unix() {
			t.Errorf("expected iat < exp == %d, got iat=%d exp=%d", exp.Unix(), claims.IssuedAt, claims.ExpiresAt)
		}
		if len(claims.Origin) != 1 || claims.Origin[0] != "https://example.com" {
			t.Errorf("unexpected origin %v", claims.Origin)
		}
	})

	t.Run("Expiration Ceiling", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(now))

		tc := []struct {
			name    string
			offset  time.Duration
			wantErr bool
		}{
			{"one second", time.Second, false},
			{"one week", 7 * 24 * time.Hour, false},
			{"exactly at ceiling", MaxValidity, false},
			{"one second over ceiling", MaxValidity + time.Second, true},
			{"one year", 365 * 24 * time.Hour, true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				tok, err := g.GenerateToken(WithExpiration(now.Add(tt.offset)))
				if tt.wantErr {
					assertKind(t, err, shared.KindValidation)
					return
				}
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if !tok.ExpiresAt.Equal(now.Add(tt.offset)) {
					t.Errorf("expected exp %v, got %v", now.Add(tt.offset), tok.ExpiresAt)
				}
			})
		}
	})

	t.Run("Lifetime Is Relative To Clock", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(now))

		tok, err := g.GenerateToken(WithLifetime(10*time.Minute), WithExpiration(now.Add(time.Hour)))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !tok.IssuedAt.Equal(now) || !tok.ExpiresAt.Equal(now.Add(10*time.Minute)) {
			t.Errorf("expected %v to %v, got %v to %v", now, now.Add(10*time.Minute), tok.IssuedAt, tok.ExpiresAt)
		}

		_, err = g.GenerateToken(WithLifetime(MaxValidity + time.Second))
		assertKind(t, err, shared.KindValidation)
	})

	t.Run("Expiration Not After Issue", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(now))
		_, err := g.GenerateToken(WithExpiration(now.Add(-time.Minute)))
		assertKind(t, err, shared.KindValidation)
	})

	t.Run("Long Lived Token", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(now))

		for months := 1; months <= MaxLongLivedMonths; months++ {
			tok, err := g.GenerateLongLivedToken(months)
			if err != nil {
				t.Fatalf("months=%d: expected no error, got %v", months, err)
			}

			calendar := now.AddDate(0, months, 0).Sub(now)
			diff := tok.Lifetime() - calendar
			if diff < 0 {
				diff = -diff
			}
			if diff > 24*time.Hour {
				t.Errorf("months=%d: lifetime %v not within a day of %v", months, tok.Lifetime(), calendar)
			}
			if tok.Lifetime() > MaxValidity {
				t.Errorf("months=%d: lifetime %v exceeds ceiling", months, tok.Lifetime())
			}
		}
	})

	t.Run("Long Lived Token Clamped To Ceiling", func(t *testing.T) {
		july := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
		g := mustGenerator(t, fixedClock(july))

		tok, err := g.GenerateLongLivedToken(6)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tok.Lifetime() != MaxValidity {
			t.Errorf("expected lifetime clamped to %v, got %v", MaxValidity, tok.Lifetime())
		}

		// Jul 1 to Jan 1 is 184 days, so the clamp gives up 120,600s against the calendar value.
		shortfall := july.AddDate(0, 6, 0).Sub(tok.ExpiresAt)
		if shortfall != 120600*time.Second {
			t.Errorf("expected a shortfall of 120600s, got %v", shortfall)
		}
	})

	t.Run("Long Lived Token Bounds", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(now))
		for _, months := range []int{0, -1, 7, 12} {
			_, err := g.GenerateLongLivedToken(months)
			assertKind(t, err, shared.KindValidation)
		}
	})

	t.Run("Fresh Token Per Call", func(t *testing.T) {
		g := mustGenerator(t, nil)
		a, err := g.GenerateToken()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		b, err := g.GenerateToken()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if a.Value == b.Value {
			t.Error("expected distinct signatures for separate calls")
		}
	})
}

func TestVerifyToken(t *testing.T) {
	issued := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Valid Token", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(issued))
		tok, err := g.GenerateToken()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := g.VerifyToken(tok.Value); err != nil {
			t.Errorf("expected valid token, got %v", err)
		}
	})

	t.Run("Expired Token", func(t *testing.T) {
		clock := issued
		g := mustGenerator(t, func() time.Time { return clock })
		tok, err := g.GenerateToken()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		clock = issued.Add(2 * time.Hour)
		_, err = g.VerifyToken(tok.Value)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
		assertKind(t, err, shared.KindValidation)
	})

	t.Run("Ceiling Violation Without Expiry", func(t *testing.T) {
		claims := Claims{
			Issuer:    testTeamID,
			IssuedAt:  issued.Unix(),
			ExpiresAt: issued.Add(MaxValidity + time.Hour).Unix(),
		}

		err := claims.Validate(issued.Add(time.Minute))
		assertKind(t, err, shared.KindValidation)
		if errors.Is(err, shared.ErrTokenExpired) {
			t.Error("ceiling violation should not be reported as expiry")
		}
	})

	t.Run("Signed By Another Key", func(t *testing.T) {
		a := mustGenerator(t, fixedClock(issued))
		b := mustGenerator(t, fixedClock(issued))

		tok, err := a.GenerateToken()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		_, err = b.VerifyToken(tok.Value)
		assertKind(t, err, shared.KindValidation)
	})

	t.Run("Malformed Token", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(issued))
		_, err := g.VerifyToken("not.a.jwt")
		assertKind(t, err, shared.KindParsing)
	})

	t.Run("ParseUnverifiedClaims", func(t *testing.T) {
		g := mustGenerator(t, fixedClock(issued))
		tok, err := g.GenerateToken()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		claims, err := ParseUnverifiedClaims(tok.Value)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if claims.IssuedAt != issued.Unix() {
			t.Errorf("expected iat %d, got %d", issued.Unix(), claims.IssuedAt)
		}
	})
}

func TestStrategy(t *testing.T) {
	ctx := context.Background()

	t.Run("Static Token Is Idempotent", func(t *testing.T) {
		s := StaticToken("static-token")

		a, err := s.Resolve(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		b, _ := s.Resolve(ctx)
		if a != b || a != "static-token" {
			t.Errorf("expected identical static tokens, got %q and %q", a, b)
		}
		if s.String() != "static" {
			t.Errorf("expected static, got %s", s)
		}
	})

	t.Run("Generated Token Resolves Fresh And Valid", func(t *testing.T) {
		g := mustGenerator(t, nil)
		s := Generated(g)

		a, err := s.Resolve(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		b, err := s.Resolve(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for _, tok := range []string{a, b} {
			if _, err := g.VerifyToken(tok); err != nil {
				t.Errorf("expected valid token, got %v", err)
			}
		}
	})

	t.Run("Zero Strategy", func(t *testing.T) {
		var s Strategy
		if !s.IsZero() {
			t.Error("expected zero strategy")
		}

		_, err := s.Resolve(ctx)
		assertKind(t, err, shared.KindValidation)
		if !strings.Contains(err.Error(), "no authentication method provided") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("Empty Static Token", func(t *testing.T) {
		_, err := StaticToken("").Resolve(ctx)
		assertKind(t, err, shared.KindValidation)
	})

	t.Run("Generated With Nil Generator", func(t *testing.T) {
		_, err := Generated(nil).Resolve(ctx)
		assertKind(t, err, shared.KindValidation)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := StaticToken("x").Resolve(cancelled); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("TokenSource", func(t *testing.T) {
		g := mustGenerator(t, nil)
		tok, err := Generated(g).TokenSource(ctx).Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tok.Type() != "Bearer" {
			t.Errorf("expected Bearer type, got %s", tok.Type())
		}
		if tok.Expiry.IsZero() {
			t.Error("expected expiry on generated token")
		}
	})

	t.Run("HTTPClient Attaches Bearer Header", func(t *testing.T) {
		var got []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = append(got, r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := StaticToken("abc").HTTPClient(ctx, nil)
		for range 2 {
			resp, err := client.Get(server.URL)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
		}

		if len(got) != 2 || got[0] != "Bearer abc" || got[1] != "Bearer abc" {
			t.Errorf("unexpected Authorization headers %v", got)
		}
	})
}

func TestStrategyFromConfig(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "AuthKey.p8")
	if err := os.WriteFile(keyPath, mustPKCS8PEM(t, mustKey(t, elliptic.P256())), 0600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	t.Run("Developer Token Wins", func(t *testing.T) {
		s, err := StrategyFromConfig(shared.AppleMusicConfig{
			DeveloperToken: "configured",
			TeamID:         testTeamID,
			KeyID:          testKeyID,
			PrivateKeyPath: keyPath,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.String() != "static" {
			t.Errorf("expected static strategy, got %s", s)
		}
	})

	t.Run("Signing Key", func(t *testing.T) {
		s, err := StrategyFromConfig(shared.AppleMusicConfig{TeamID: testTeamID, KeyID: testKeyID, PrivateKeyPath: keyPath})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.String() != "generated" || s.Generator() == nil {
			t.Errorf("expected generated strategy, got %s", s)
		}
	})

	t.Run("Nothing Configured", func(t *testing.T) {
		_, err := StrategyFromConfig(shared.AppleMusicConfig{})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
