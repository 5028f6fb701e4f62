// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-radar/internal/serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve persisted reports over HTTP",
	Long: `Serve starts a read-only HTTP API over the persisted reports:

  GET /api/reports         list available report dates
  GET /api/reports/latest  the most recent report
  GET /api/reports/:date   the report for one date
  GET /healthz             liveness probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Serve.Addr
		}

		e := serve.New(cfg.Output.ReportsDir)
		return e.Start(addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, \":8080\")")

	rootCmd.AddCommand(serveCmd)
}
