package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/desertthunder/amx/internal/repositories"
	"github.com/desertthunder/amx/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the developer token endpoint until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	g, err := r.requireGenerator()
	if err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	var store server.TokenStore
	if cmd.Bool("save") {
		db, err := r.openDB()
		if err != nil {
			return err
		}
		store = repositories.NewTokenRepository(db)
	}

	tokens := server.NewTokenHandler(g, cfg.AllowedOrigins, store, r.logger)
	router := server.NewTokenRouter(tokens, cfg.AllowedOrigins, r.logger)

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	r.writePlain("✓ Serving developer tokens at http://%s/token\n", ln.Addr())
	return server.Serve(ctx, ln, router, r.logger)
}
