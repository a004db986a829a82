package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/desertthunder/cinemate/internal/state"
	"github.com/desertthunder/cinemate/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal client.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if err := shared.SetLogLevel(fileLogger, r.config.Log.Level); err != nil {
		return err
	}
	r.SetLogger(fileLogger)

	if err := r.connect(); err != nil {
		return err
	}

	opts := state.SearchOpts{
		Fetch:    r.api.Movies,
		Debounce: r.config.UI.Debounce.Duration,
		Context:  ctx,
		Logger:   shared.WithLogger(fileLogger, "component", "search"),
	}
	if r.history != nil {
		opts.History = r.history
	}
	search := state.NewSearch(opts)
	defer search.Close()

	model := ui.NewModel(ui.Deps{
		Controller: r.controller,
		Search:     search,
		Theme:      r.theme,
		Context:    ctx,
		Logger:     fileLogger,
	}, cmd.String("path"))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.Attach(p.Send)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
