package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/newtab/internal/tui"
)

func addTUI(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the shortcut grid (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	topLevel.AddCommand(cmd)
}

// runTUI runs the full interactive grid.
func runTUI(ctx context.Context, opts *rootOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e, err := newEnv(ctx, opts, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()
	e.run(ctx, false)

	app := tui.NewApp(tui.AppParams{
		Grid:      e.grid,
		Search:    e.search,
		Wallpaper: e.wallpaper,
		Logger:    e.log.With().Str("component", "tui").Logger(),
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
