package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change user settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		printSettings(current.settings.Current())
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more settings",
	Example: "  akiba settings set --grid-columns 1\n" +
		"  akiba settings set --max-cache-size 1GB",
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := settingsPatchFromFlags(cmd.Flags())
		if err != nil {
			return err
		}

		updated, err := current.settings.Update(patch)
		if err != nil {
			return err
		}
		printSettings(updated)
		return nil
	},
}

func init() {
	addSettingsFlags(settingsSetCmd.Flags())

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func addSettingsFlags(flags *pflag.FlagSet) {
	flags.Int("grid-columns", 0, "columns in the favorites grid (1 or 2)")
	flags.String("max-cache-size", "", "image cache budget, e.g. 500MB or a byte count")
}

// settingsPatchFromFlags builds a validated patch from the changed flags
func settingsPatchFromFlags(flags *pflag.FlagSet) (domain.SettingsPatch, error) {
	var patch domain.SettingsPatch

	if flags.Changed("grid-columns") {
		cols, err := flags.GetInt("grid-columns")
		if err != nil {
			return patch, err
		}
		patch.GridColumns = &cols
	}
	if flags.Changed("max-cache-size") {
		raw, err := flags.GetString("max-cache-size")
		if err != nil {
			return patch, err
		}
		size, err := parseSize(raw)
		if err != nil {
			return patch, err
		}
		patch.MaxCacheSize = &size
	}
	if patch.GridColumns == nil && patch.MaxCacheSize == nil {
		return patch, errors.New("nothing to change, pass --grid-columns or --max-cache-size")
	}
	return patch, patch.Validate()
}

// parseSize accepts a plain byte count or a humanized size
func parseSize(raw string) (int64, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("size must not be negative")
		}
		return n, nil
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", raw, err)
	}
	return int64(n), nil
}

func printSettings(s domain.Settings) {
	t := newTable("Setting", "Value")
	t.Row("grid columns", strconv.Itoa(s.GridColumns))
	t.Row("max cache size", humanize.Bytes(uint64(max(s.MaxCacheSize, 0))))
	fmt.Println(t)
}
