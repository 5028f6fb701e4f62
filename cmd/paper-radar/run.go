// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-radar/internal/content"
	"github.com/pdiddy/paper-radar/internal/feed"
	"github.com/pdiddy/paper-radar/internal/gateway"
	"github.com/pdiddy/paper-radar/internal/history"
	"github.com/pdiddy/paper-radar/internal/llm"
	"github.com/pdiddy/paper-radar/internal/pipeline"
	"github.com/pdiddy/paper-radar/internal/report"
	"github.com/pdiddy/paper-radar/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, filter, analyze, and report today's papers",
	Long: `Run executes one full pipeline pass: fetch candidate papers from the
configured feeds, drop works already processed within the retention window,
filter the rest against the configured keywords, run deep analysis on the
matches, synthesize per-keyword summaries, and write the dated report.

Per-paper failures are isolated; the report covers whatever succeeded.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("date", "", "run date (YYYY-MM-DD, default today)")
	runCmd.Flags().Int("limit", 0, "cap the number of fetched papers (debug aid)")
	runCmd.Flags().Duration("deadline", 0, "abort accepting new work after this long (0 = none)")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Keywords) == 0 {
		return fmt.Errorf("no keywords configured: add a keywords section to paper-radar.yaml")
	}

	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	deadline, _ := cmd.Flags().GetDuration("deadline")

	ctx := context.Background()
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	w := os.Stdout

	store, err := history.Open(cfg.History.Path, cfg.History.RetentionDays)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Fprintf(w, "paper-radar run for %s\n", date)
	fmt.Fprintln(w, "fetching feeds...")

	papers, failed := feed.FetchAll(ctx, buildSources(cfg), w)
	if len(failed) == len(buildSources(cfg)) && len(papers) == 0 {
		fmt.Fprintln(w, "warning: every feed failed; producing an empty report")
	}
	if limit > 0 && len(papers) > limit {
		papers = papers[:limit]
	}

	orch := pipeline.New(store, buildBackends(cfg), buildGateways(cfg),
		buildContentFetcher(cfg), cfg.Keywords, w)

	result, err := orch.Run(ctx, date, papers)
	if err != nil {
		return err
	}

	rep := result.Report(cfg.Keywords)

	jsonPath, err := report.SaveJSON(rep, cfg.Output.ReportsDir)
	if err != nil {
		return err
	}
	mdPath, err := report.SaveMarkdown(rep, cfg.Output.ReportsDir)
	if err != nil {
		return err
	}
	manifestPath, err := pipeline.SaveManifest(result.Manifest(), cfg.Output.ReportsDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nreport: %s (%s)\n", report.Totals(rep), rep.Date)
	fmt.Fprintf(w, "  %s\n  %s\n  %s\n", jsonPath, mdPath, manifestPath)
	return nil
}

func buildSources(cfg *types.Config) []feed.Source {
	var sources []feed.Source
	if cfg.Feeds.Arxiv.Enabled {
		sources = append(sources, feed.NewArxivSource(cfg.Feeds.Arxiv))
	}
	if cfg.Feeds.Journals.Enabled {
		sources = append(sources, feed.NewJournalSources(cfg.Feeds.Journals)...)
	}
	return sources
}

func buildBackends(cfg *types.Config) pipeline.Backends {
	return pipeline.Backends{
		Filter: llm.NewChatFilter(llm.NewClient(cfg.Backends.Filter.LLM), cfg.Keywords),
		Analysis: llm.NewChatAnalyzer(llm.NewClient(cfg.Backends.Analysis.LLM),
			cfg.Backends.Analysis.LLM, cfg.Output.Language),
		Narrative: llm.NewChatNarrator(llm.NewClient(cfg.Backends.Narrative.LLM),
			cfg.Output.Language),
	}
}

func buildGateways(cfg *types.Config) pipeline.Gateways {
	return pipeline.Gateways{
		Filter:    gateway.New("filter", cfg.Backends.Filter.Gateway),
		Analysis:  gateway.New("analysis", cfg.Backends.Analysis.Gateway),
		Narrative: gateway.New("narrative", cfg.Backends.Narrative.Gateway),
	}
}

func buildContentFetcher(cfg *types.Config) content.Fetcher {
	if cfg.Backends.Analysis.LLM.Capability != types.CapabilityContent {
		return nil
	}
	return content.NewHTTPFetcher(cfg.Content)
}
