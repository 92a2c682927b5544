package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/amx/internal/services"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet sends an authenticated GET through the request pipeline and prints the raw JSON body.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireCatalog(); err != nil {
		return err
	}

	path := cmd.StringArg("path")

	var params []services.QueryParam
	for _, raw := range cmd.StringSlice("query") {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return fmt.Errorf("%w: query %q must be name=value", shared.ErrInvalidFlag, raw)
		}
		params = append(params, services.QueryParam{Name: name, Value: value})
	}

	r.logger.Info("GET request", "path", path, "params", len(params))

	body, err := r.client.Raw(ctx, services.Get(path, params...))
	if err != nil {
		return err
	}

	if cmd.Bool("pretty") {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			body = buf.Bytes()
		}
	}

	if _, err := r.output.Write(body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return r.writePlain("\n")
}

// APIStatus checks that the configured credentials are accepted by requesting the storefront resource through
// the oauth2 transport.
func (r *Runner) APIStatus(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil {
		return fmt.Errorf("%w: set credentials.apple_music in config.toml", shared.ErrMissingCredentials)
	}

	sf := r.storefront(cmd)
	if err := services.ValidateStorefront(sf); err != nil {
		return err
	}

	r.logger.Info("checking API status", "strategy", r.strategy.String(), "storefront", sf)

	resp, err := r.api.Get(ctx, "storefronts/"+sf)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if !resp.OK() {
		r.writePlain("✗ Apple Music API rejected the request (status %d)\n", resp.StatusCode)
		return services.Classify(resp.StatusCode, resp.Body)
	}

	r.writePlain("✓ Apple Music API reachable\n")
	r.writePlain("Authentication: %s\n", r.strategy.String())
	r.writePlain("Storefront:     %s\n", sf)
	return nil
}
