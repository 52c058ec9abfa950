package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmcdole/akiba/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// current is set by the root PersistentPreRunE for every subcommand
var current *app

var rootCmd = &cobra.Command{
	Use:           "akiba",
	Short:         "An anime art, character and manga browser",
	Long:          "Browse anime art, characters and manga, keep favorites and cache images locally",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		current, err = newApp(cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Launch TUI by default when attached to a terminal
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return runBrowse(cmd.Context())
		}
		return cmd.Help()
	},
}

func init() {
	rootCmd.SetVersionTemplate("akiba {{.Version}}\n")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(seasonCmd)
	rootCmd.AddCommand(mangaCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if current != nil {
			current.logger.Error("command failed", "error", err)
			current.close()
		}
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// formatError turns file system permission failures into an actionable
// message
func formatError(err error) string {
	if errors.Is(err, fs.ErrPermission) {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return errorStyle.Render(fmt.Sprintf("Permission denied: cannot %s %s. Check the ownership of that path or point akiba elsewhere in config.yaml.", pathErr.Op, pathErr.Path))
		}
		return errorStyle.Render("Permission denied: " + err.Error())
	}
	return errorStyle.Render("Error: " + err.Error())
}
