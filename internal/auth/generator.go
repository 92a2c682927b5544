package auth

import (
	"fmt"
	"time"

	"github.com/desertthunder/amx/internal/shared"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const (
	// MaxValidity is the longest lifetime Apple Music accepts for a developer token (about six months).
	MaxValidity = 15777000 * time.Second
	// DefaultValidity is used when no expiration is requested.
	DefaultValidity = time.Hour
	// MaxLongLivedMonths caps [TokenGenerator.GenerateLongLivedToken].
	MaxLongLivedMonths = 6
)

// SignedToken is a developer token together with the times embedded in its claims.
type SignedToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Lifetime is ExpiresAt - IssuedAt.
func (t SignedToken) Lifetime() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}

// Claims is the developer token payload.
type Claims struct {
	Issuer    string   `json:"iss"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
	Origin    []string `json:"origin,omitempty"`
}

// Validate applies the reuse contract: a token is invalid once exp has passed, and independently when its
// lifetime exceeds [MaxValidity].
func (c Claims) Validate(now time.Time) error {
	if c.ExpiresAt-c.IssuedAt > int64(MaxValidity/time.Second) {
		return shared.NewValidationError("token lifetime of %ds exceeds the maximum of %ds",
			c.ExpiresAt-c.IssuedAt, int64(MaxValidity/time.Second))
	}
	if now.Unix() >= c.ExpiresAt {
		return fmt.Errorf("%w: %w", shared.ErrTokenExpired,
			shared.NewValidationError("token expired at %s", time.Unix(c.ExpiresAt, 0).UTC().Format(time.RFC3339)))
	}
	return nil
}

// TokenGenerator signs developer tokens for one [Credential].
//
// The signer is derived once at construction, so a generator is cheap to reuse and safe for concurrent use.
type TokenGenerator struct {
	cred   *Credential
	signer jose.Signer
	now    func() time.Time
}

// GeneratorOption configures a [TokenGenerator].
type GeneratorOption func(*TokenGenerator)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *TokenGenerator) { g.now = now }
}

// NewTokenGenerator creates an ES256 signer for cred, with the key identifier in the JOSE "kid" header.
func NewTokenGenerator(cred *Credential, opts ...GeneratorOption) (*TokenGenerator, error) {
	if cred == nil {
		return nil, shared.NewValidationError("credential is required")
	}

	signerOpts := (&jose.SignerOptions{}).WithType("JWT").WithHeader("kid", cred.keyID)
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: cred.key}, signerOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create signer: %v", shared.ErrInvalidCredentials, err)
	}

	g := &TokenGenerator{cred: cred, signer: signer, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Credential returns the identity tokens are signed with.
func (g *TokenGenerator) Credential() *Credential { return g.cred }

type tokenRequest struct {
	expiration time.Time
	lifetime   time.Duration
	origin     []string
}

// TokenOption customises a single [TokenGenerator.GenerateToken] call.
type TokenOption func(*tokenRequest)

// WithExpiration sets an explicit expiration instead of the one hour default.
func WithExpiration(t time.Time) TokenOption {
	return func(r *tokenRequest) { r.expiration = t }
}

// WithLifetime sets the expiration relative to the issue time, read from the generator's clock.
// It takes precedence over [WithExpiration].
func WithLifetime(d time.Duration) TokenOption {
	return func(r *tokenRequest) { r.lifetime = d }
}

// WithOrigin restricts the token to the given web origins.
func WithOrigin(origin ...string) TokenOption {
	return func(r *tokenRequest) { r.origin = append(r.origin, origin...) }
}

// GenerateToken signs a fresh developer token.
//
// The requested lifetime is checked against [MaxValidity] before anything is signed.
func (g *TokenGenerator) GenerateToken(opts ...TokenOption) (*SignedToken, error) {
	req := tokenRequest{}
	for _, opt := range opts {
		opt(&req)
	}
	return g.sign(time.Unix(g.now().Unix(), 0), req)
}

// GenerateLongLivedToken signs a token valid for the given number of calendar months (1 to 6).
//
// Six calendar months can exceed [MaxValidity] by up to 120,600s (184-day spans such as Jul 1 to Jan 1); the
// expiration is then clamped to the ceiling, so the token ends up to about 1.4 days short of the calendar date.
func (g *TokenGenerator) GenerateLongLivedToken(months int, origin ...string) (*SignedToken, error) {
	if months < 1 || months > MaxLongLivedMonths {
		return nil, shared.NewValidationError("months must be between 1 and %d, got %d", MaxLongLivedMonths, months)
	}

	issuedAt := time.Unix(g.now().Unix(), 0)
	expiration := issuedAt.AddDate(0, months, 0)
	if ceiling := issuedAt.Add(MaxValidity); expiration.After(ceiling) {
		expiration = ceiling
	}

	return g.sign(issuedAt, tokenRequest{expiration: expiration, origin: origin})
}

func (g *TokenGenerator) sign(issuedAt time.Time, req tokenRequest) (*SignedToken, error) {
	switch {
	case req.lifetime != 0:
		req.expiration = issuedAt.Add(req.lifetime)
	case req.expiration.IsZero():
		req.expiration = issuedAt.Add(DefaultValidity)
	}
	expiresAt := time.Unix(req.expiration.Unix(), 0)

	lifetime := expiresAt.Sub(issuedAt)
	if lifetime > MaxValidity {
		return nil, shared.NewValidationError("expiration %s is %ds after issue, maximum is %ds",
			expiresAt.UTC().Format(time.RFC3339), int64(lifetime/time.Second), int64(MaxValidity/time.Second))
	}
	if lifetime <= 0 {
		return nil, shared.NewValidationError("expiration %s must be after issue time %s",
			expiresAt.UTC().Format(time.RFC3339), issuedAt.UTC().Format(time.RFC3339))
	}

	claims := Claims{
		Issuer:    g.cred.teamID,
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: expiresAt.Unix(),
		Origin:    req.origin,
	}

	value, err := jwt.Signed(g.signer).Claims(claims).Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to sign developer token: %w", err)
	}

	return &SignedToken{Value: value, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// ParseClaims checks the signature of token against this generator's key and returns its payload.
// It does not check expiry; see [Claims.Validate].
func (g *TokenGenerator) ParseClaims(token string) (*Claims, error) {
	parsed, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.ES256})
	if err != nil {
		return nil, shared.NewParsingError("malformed developer token", err)
	}

	var claims Claims
	if err := parsed.Claims(g.cred.PublicKey(), &claims); err != nil {
		return nil, shared.NewValidationError("developer token signature is invalid: %v", err)
	}
	return &claims, nil
}

// VerifyToken parses token and applies [Claims.Validate] at the generator's current time.
func (g *TokenGenerator) VerifyToken(token string) (*Claims, error) {
	claims, err := g.ParseClaims(token)
	if err != nil {
		return nil, err
	}
	if err := claims.Validate(g.now()); err != nil {
		return claims, err
	}
	return claims, nil
}

// ParseUnverifiedClaims decodes the payload of token without checking its signature.
//
// Used to inspect tokens whose signing key is not at hand, such as a configured static token.
func ParseUnverifiedClaims(token string) (*Claims, error) {
	parsed, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.ES256})
	if err != nil {
		return nil, shared.NewParsingError("malformed developer token", err)
	}

	var claims Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return nil, shared.NewParsingError("malformed developer token claims", err)
	}
	return &claims, nil
}
