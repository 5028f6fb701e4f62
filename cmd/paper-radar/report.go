// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-radar/internal/report"
	"github.com/pdiddy/paper-radar/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [date]",
	Short: "Show a persisted report (most recent by default)",
	Long: `Report prints a persisted daily report. With no argument the most
recent report is shown; pass a date (YYYY-MM-DD) for an older one.
Use --list to see available dates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Bool("json", false, "print the raw JSON report")
	reportCmd.Flags().Bool("list", false, "list available report dates")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := cfg.Output.ReportsDir

	if list, _ := cmd.Flags().GetBool("list"); list {
		dates, err := report.Dates(dir)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			fmt.Println("No reports found.")
			return nil
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	}

	var rep *types.Report
	if len(args) == 1 {
		rep, err = report.Load(dir, args[0])
	} else {
		rep, err = report.Latest(dir)
	}
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	printReportSummary(rep)
	return nil
}

func printReportSummary(rep *types.Report) {
	fmt.Printf("Report for %s: %s\n\n", rep.Date, report.Totals(rep))

	fmt.Printf("%-24s  %-6s  %s\n", "Keyword", "Papers", "Summary")
	fmt.Println(strings.Repeat("-", 90))
	for _, kw := range rep.Keywords {
		summary := truncate(rep.Summaries[kw], 56)
		fmt.Printf("%-24s  %-6d  %s\n", kw, len(rep.PapersByKeyword[kw]), summary)
	}

	for _, kw := range rep.Keywords {
		papers := rep.PapersByKeyword[kw]
		if len(papers) == 0 {
			continue
		}
		fmt.Printf("\n%s:\n", kw)
		for _, p := range papers {
			fmt.Printf("  [%d] (%d/10) %s\n", p.PaperNumber, p.QualityScore, p.Title)
		}
	}
}

// truncate shortens s to max runes for the table view. Summaries follow
// the configured output language, so cutting on a byte offset could split
// a multi-byte rune.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
