package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/amx/internal/services"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/desertthunder/amx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive catalog search browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/amx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	opts := services.SearchOptions{
		Types:        cmd.StringSlice("types"),
		Limit:        cmd.Int("limit"),
		Localization: r.config.Client.Language,
	}
	model := ui.NewModel(ctx, catalog, r.storefront(cmd), cmd.StringArg("term"), opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
