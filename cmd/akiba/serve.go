package main

import (
	"fmt"

	"github.com/mmcdole/akiba/internal/api"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve favorites, settings, feed and cache over a local HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = current.cfg.Server.Addr
		}

		srv := api.NewServer(api.Deps{
			Ledger:   current.ledger,
			Files:    current.files,
			Settings: current.settings,
			Feed:     current.feed(),
		}, current.logger)

		fmt.Printf("🚀 akiba API listening on http://%s\n", addr)
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
}
