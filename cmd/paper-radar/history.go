// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-radar/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and maintain the processed-paper history",
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history entry counts by terminal state",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("%d papers tracked", stats.Total)
		if stats.Earliest != "" {
			fmt.Printf(" (%s .. %s)", stats.Earliest[:10], stats.Latest[:10])
		}
		fmt.Println()
		for state, n := range stats.ByState {
			fmt.Printf("  %-10s %d\n", state, n)
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete entries older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := history.Open(cfg.History.Path, cfg.History.RetentionDays)
		if err != nil {
			return err
		}
		defer store.Close()

		cutoff := time.Now().Add(-store.Retention())
		n, err := store.Prune(context.Background(), cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d entries last seen before %s\n", n, cutoff.Format("2006-01-02"))
		return nil
	},
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.History.Path, cfg.History.RetentionDays)
}

func init() {
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyPruneCmd)

	rootCmd.AddCommand(historyCmd)
}
