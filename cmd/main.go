package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	strategy, err := auth.StrategyFromConfig(config.Credentials.AppleMusic)
	if err != nil {
		logger.Debug("catalog credentials unavailable", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Strategy: strategy,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:    "amx",
		Usage:   "Apple Music catalog client & developer token tool",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Run(ctx, os.Args)
	stop()
	runner.Close()

	if err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
