package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/akiba/internal/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse favorites in the terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd.Context())
	},
}

func runBrowse(ctx context.Context) error {
	model := tui.NewModel(tui.Deps{
		Ledger:   current.ledger,
		Files:    current.files,
		Settings: current.settings,
		Viewer:   current.viewer(),
		Logger:   current.logger,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	current.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		current.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	current.logger.Info("shutting down")
	return nil
}
