package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/mmcdole/akiba/internal/filecache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local image cache",
}

var cacheSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Show the disk space used by cached images",
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := current.files.Size()
		if err != nil {
			return err
		}

		line := fmt.Sprintf("%s in %s", humanize.Bytes(uint64(size)), current.files.Dir())
		if limit := current.settings.Current().MaxCacheSize; limit > 0 {
			line += fmt.Sprintf(" (limit %s)", humanize.Bytes(uint64(limit)))
			if size > limit {
				fmt.Println(errorStyle.Render(line))
				return nil
			}
		}
		fmt.Println(line)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached image",
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := current.files.Size()
		if err != nil {
			return err
		}
		if err := current.files.Clear(); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Freed " + humanize.Bytes(uint64(before))))
		return nil
	},
}

var cacheResolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Download an image into the cache and print its local path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved := current.files.Resolve(cmd.Context(), args[0])
		if resolved == filecache.Canonicalize(args[0]) {
			fmt.Println(dimStyle.Render("download failed, using remote URL"))
		}
		fmt.Println(resolved)

		if open, _ := cmd.Flags().GetBool("open"); open {
			return current.viewer().Open(resolved)
		}
		return nil
	},
}

func init() {
	cacheResolveCmd.Flags().Bool("open", false, "show the image in the configured viewer")

	cacheCmd.AddCommand(cacheSizeCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheResolveCmd)
}
