package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/amx/internal/shared"
	"golang.org/x/oauth2"
)

type strategyKind int

const (
	strategyNone strategyKind = iota
	strategyStatic
	strategyGenerated
)

// Strategy is the authentication method of a client: either a pre-issued static token or a [TokenGenerator].
//
// The zero value has no method configured and fails to resolve.
type Strategy struct {
	kind      strategyKind
	static    string
	generator *TokenGenerator
}

// StaticToken authenticates every request with the same pre-issued developer token.
func StaticToken(token string) Strategy {
	return Strategy{kind: strategyStatic, static: token}
}

// Generated signs a new developer token for every request.
func Generated(g *TokenGenerator) Strategy {
	return Strategy{kind: strategyGenerated, generator: g}
}

// IsZero reports whether no authentication method is configured.
func (s Strategy) IsZero() bool {
	return s.kind == strategyNone
}

func (s Strategy) String() string {
	switch s.kind {
	case strategyStatic:
		return "static"
	case strategyGenerated:
		return "generated"
	default:
		return "none"
	}
}

// Generator returns the underlying generator for a [Generated] strategy, or nil.
func (s Strategy) Generator() *TokenGenerator {
	return s.generator
}

// Resolve returns the bearer token for one request.
func (s Strategy) Resolve(ctx context.Context) (string, error) {
	tok, err := s.resolve(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (s Strategy) resolve(ctx context.Context) (*oauth2.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch s.kind {
	case strategyStatic:
		if s.static == "" {
			return nil, shared.NewValidationError("static developer token is empty")
		}
		return &oauth2.Token{AccessToken: s.static, TokenType: "Bearer"}, nil
	case strategyGenerated:
		if s.generator == nil {
			return nil, shared.NewValidationError("no authentication method provided")
		}
		signed, err := s.generator.GenerateToken()
		if err != nil {
			return nil, err
		}
		return &oauth2.Token{AccessToken: signed.Value, TokenType: "Bearer", Expiry: signed.ExpiresAt}, nil
	default:
		return nil, shared.NewValidationError("no authentication method provided")
	}
}

type strategySource struct {
	ctx      context.Context
	strategy Strategy
}

func (ts strategySource) Token() (*oauth2.Token, error) {
	return ts.strategy.resolve(ts.ctx)
}

// TokenSource adapts the strategy to [oauth2.TokenSource]. Every call to Token resolves again.
func (s Strategy) TokenSource(ctx context.Context) oauth2.TokenSource {
	return strategySource{ctx: ctx, strategy: s}
}

// HTTPClient returns a client whose transport attaches a freshly resolved bearer token to each request.
//
// The token source is used directly, without [oauth2.ReuseTokenSource], so generated tokens are never cached.
func (s Strategy) HTTPClient(ctx context.Context, base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: s.TokenSource(ctx), Base: base.Transport},
		Timeout:   base.Timeout,
	}
}

// StrategyFromConfig picks the authentication method from configuration: a configured developer token wins, then
// the signing key. Returns [shared.ErrMissingCredentials] when neither is present.
func StrategyFromConfig(cfg shared.AppleMusicConfig, opts ...GeneratorOption) (Strategy, error) {
	if cfg.DeveloperToken != "" {
		return StaticToken(cfg.DeveloperToken), nil
	}

	if !cfg.HasSigningKey() {
		return Strategy{}, fmt.Errorf("%w: set developer_token or team_id, key_id and private_key_path", shared.ErrMissingCredentials)
	}

	cred, err := CredentialFromFile(cfg.TeamID, cfg.KeyID, cfg.PrivateKeyPath)
	if err != nil {
		return Strategy{}, err
	}

	g, err := NewTokenGenerator(cred, opts...)
	if err != nil {
		return Strategy{}, err
	}
	return Generated(g), nil
}
