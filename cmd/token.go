package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/repositories"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/urfave/cli/v3"
)

// tokenView is the JSON shape of a generated or stored token.
type tokenView struct {
	ID        string    `json:"id,omitempty"`
	Sequence  int       `json:"sequence,omitempty"`
	Token     string    `json:"token"`
	TeamID    string    `json:"team_id"`
	KeyID     string    `json:"key_id"`
	Origin    []string  `json:"origin,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func viewOf(t *models.DeveloperToken) tokenView {
	return tokenView{
		ID:        t.ID(),
		Sequence:  t.Sequence(),
		Token:     t.Value(),
		TeamID:    t.TeamID(),
		KeyID:     t.KeyID(),
		Origin:    t.Origin(),
		IssuedAt:  t.IssuedAt(),
		ExpiresAt: t.ExpiresAt(),
	}
}

// TokenGenerate signs a developer token and prints it. With --save it is also written to the ledger.
func (r *Runner) TokenGenerate(ctx context.Context, cmd *cli.Command) error {
	g, err := r.requireGenerator()
	if err != nil {
		return err
	}

	months := cmd.Int("months")
	expires := cmd.Duration("expires")
	origins := cmd.StringSlice("origin")

	if months != 0 && expires != 0 {
		return fmt.Errorf("%w: use either --months or --expires", shared.ErrInvalidFlag)
	}

	var signed *auth.SignedToken
	switch {
	case months != 0:
		signed, err = g.GenerateLongLivedToken(months, origins...)
	case expires != 0:
		signed, err = g.GenerateToken(auth.WithExpiration(time.Now().Add(expires)), auth.WithOrigin(origins...))
	default:
		signed, err = g.GenerateToken(auth.WithOrigin(origins...))
	}
	if err != nil {
		return err
	}

	cred := g.Credential()
	record := models.NewDeveloperToken(0, cred.TeamID(), cred.KeyID(), signed.Value, signed.IssuedAt, signed.ExpiresAt, origins)

	if cmd.Bool("save") {
		db, err := r.openDB()
		if err != nil {
			return err
		}
		if err := repositories.NewTokenRepository(db).Create(record); err != nil {
			return err
		}
		r.logger.Info("token saved", "id", record.ID(), "sequence", record.Sequence())
	}

	r.logger.Info("developer token generated",
		"token", shared.MaskToken(signed.Value),
		"expires_at", signed.ExpiresAt.Format(time.RFC3339),
		"lifetime", signed.Lifetime(),
	)

	if cmd.Bool("json") {
		return r.writeJSON(viewOf(record), true)
	}
	return r.writePlain("%s\n", signed.Value)
}

// TokenVerify checks a token against the configured key, or decodes it without verification when only a
// static token is configured.
func (r *Runner) TokenVerify(ctx context.Context, cmd *cli.Command) error {
	token := strings.TrimSpace(cmd.StringArg("token"))
	if token == "" {
		token = r.config.Credentials.AppleMusic.DeveloperToken
	}
	if token == "" {
		return fmt.Errorf("%w: token", shared.ErrMissingArgument)
	}

	var (
		claims   *auth.Claims
		err      error
		verified bool
	)
	if g := r.strategy.Generator(); g != nil {
		claims, err = g.VerifyToken(token)
		verified = true
	} else {
		r.logger.Warn("no signing key configured, signature not checked")
		claims, err = auth.ParseUnverifiedClaims(token)
		if err == nil {
			err = claims.Validate(time.Now())
		}
	}
	if claims == nil {
		return err
	}

	if cmd.Bool("json") {
		if jsonErr := r.writeJSON(claims, true); jsonErr != nil {
			return jsonErr
		}
		return err
	}

	issued := time.Unix(claims.IssuedAt, 0).UTC()
	expires := time.Unix(claims.ExpiresAt, 0).UTC()

	r.writePlainHeader("Developer Token")
	r.writePlain("Issuer:     %s\n", claims.Issuer)
	r.writePlain("Issued:     %s\n", issued.Format(time.RFC3339))
	r.writePlain("Expires:    %s\n", expires.Format(time.RFC3339))
	if len(claims.Origin) > 0 {
		r.writePlain("Origin:     %s\n", strings.Join(claims.Origin, ", "))
	}
	if verified {
		r.writePlain("Signature:  verified\n")
	} else {
		r.writePlain("Signature:  not checked\n")
	}

	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			r.writePlain("Status:     ✗ expired\n")
		} else {
			r.writePlain("Status:     ✗ invalid\n")
		}
		return err
	}
	return r.writePlain("Status:     ✓ valid for %s\n", time.Until(expires).Round(time.Minute))
}

// TokenList prints tokens from the local ledger, oldest first.
func (r *Runner) TokenList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if !cmd.Bool("all") {
		criteria["active_at"] = time.Now()
	}

	tokens, err := repositories.NewTokenRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]tokenView, len(tokens))
		for i, t := range tokens {
			views[i] = viewOf(t)
		}
		return r.writeJSON(views, true)
	}

	if len(tokens) == 0 {
		return r.writePlain("No tokens found\n")
	}

	now := time.Now()
	for _, t := range tokens {
		status := "active"
		if t.Expired(now) {
			status = "expired"
		}
		r.writePlain("%3d  %s  %s/%s  expires %s  %-7s  %s\n",
			t.Sequence(), t.ID(), t.TeamID(), t.KeyID(), t.ExpiresAt().Format(time.RFC3339), status,
			shared.MaskToken(t.Value()))
	}
	return nil
}

// TokenRevoke removes a token from the ledger. Apple does not support revoking signed tokens; this only stops
// the token from being listed and reused locally.
func (r *Runner) TokenRevoke(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	if err := repositories.NewTokenRepository(db).Delete(id); err != nil {
		return err
	}

	r.logger.Info("token revoked", "id", id)
	return r.writePlain("✓ Token %s revoked\n", id)
}
