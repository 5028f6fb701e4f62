// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives deduplicated papers through the four ordered
// stages: filter, analyze, summarize, assemble. Failure isolation is per
// record: one paper's exhausted retries never abort the run or block
// other papers.
package pipeline

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-radar/internal/content"
	"github.com/pdiddy/paper-radar/internal/gateway"
	"github.com/pdiddy/paper-radar/internal/history"
	"github.com/pdiddy/paper-radar/internal/llm"
	"github.com/pdiddy/paper-radar/internal/report"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// State tracks one record's progress through the run.
type State string

const (
	StateFetched    State = "fetched"
	StateFiltered   State = "filtered"
	StateRejected   State = "rejected"
	StateAnalyzed   State = "analyzed"
	StateFailed     State = "failed"
	StateSummarized State = "summarized"
	StateReported   State = "reported"
)

// terminal reports whether a record finished the run. Only terminal
// records are written to the history store, so a cancelled run never
// marks in-flight records as processed.
func (s State) terminal() bool {
	return s == StateRejected || s == StateFailed || s == StateReported
}

// ErrRunInProgress is returned when a run is started while another run
// holds the orchestrator. History writes are single-writer per run.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Unit is the per-record state machine instance.
type Unit struct {
	Key      string
	Paper    *types.Paper
	State    State
	Verdict  *llm.Verdict
	Analysis *types.Analysis
	Err      error
}

// Backends groups the three stage backends.
type Backends struct {
	Filter    llm.FilterBackend
	Analysis  llm.AnalysisBackend
	Narrative llm.NarrativeBackend
}

// Gateways groups the per-backend call gateways. Each backend is rate
// limited independently so a slow analysis backend never starves the
// filter backend.
type Gateways struct {
	Filter    *gateway.Gateway
	Analysis  *gateway.Gateway
	Narrative *gateway.Gateway
}

// Orchestrator runs the pipeline. The history store is an explicit
// handle, not package state, so concurrent test runs stay isolated.
type Orchestrator struct {
	store    *history.Store
	backends Backends
	gateways Gateways
	content  content.Fetcher
	keywords []types.Keyword
	w        io.Writer

	running atomic.Bool
}

// New builds an orchestrator. content may be nil when the analysis
// backend is text-only.
func New(store *history.Store, backends Backends, gateways Gateways,
	fetcher content.Fetcher, keywords []types.Keyword, w io.Writer) *Orchestrator {
	return &Orchestrator{
		store:    store,
		backends: backends,
		gateways: gateways,
		content:  fetcher,
		keywords: keywords,
		w:        w,
	}
}

// Result carries a completed (possibly partial) run's output to the
// assembler.
type Result struct {
	RunID    string
	Date     string
	Total    int
	Matched  int
	Analyzed int

	// Groups maps keyword name to that keyword's successful analyses.
	// One record can appear in several groups, backed by the same
	// Analysis value: analysis runs once per record, not per keyword.
	Groups map[string][]*types.Analysis

	// Summaries maps keyword name to narrative text for keywords whose
	// narrative call succeeded.
	Summaries map[string]string

	// Units exposes per-record outcomes for logging and tests.
	Units []*Unit
}

// Report assembles the run's immutable report.
func (r *Result) Report(keywords []types.Keyword) *types.Report {
	names := make([]string, len(keywords))
	for i, kw := range keywords {
		names[i] = kw.Name
	}
	return report.Assemble(r.RunID, r.Date, r.Total, r.Matched, r.Analyzed,
		names, r.Groups, r.Summaries)
}

// Run executes one pipeline run for the given date over freshly fetched
// papers. Configuration problems and an unreachable store abort before
// stage one; every later failure is isolated to its record. A run cut
// short by ctx stops admitting new backend calls, but calls already
// dispatched drain to completion or their own timeout, and the Result
// covers whatever finished.
func (o *Orchestrator) Run(ctx context.Context, date string, papers []types.Paper) (*Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer o.running.Store(false)

	if len(o.keywords) == 0 {
		return nil, fmt.Errorf("no keywords configured")
	}
	if err := o.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("history store unreachable: %w", err)
	}

	runID := ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String()
	result := &Result{
		RunID:     runID,
		Date:      date,
		Total:     len(papers),
		Groups:    make(map[string][]*types.Analysis),
		Summaries: make(map[string]string),
	}
	fmt.Fprintf(o.w, "run %s: %d candidate papers\n", runID, len(papers))

	units, err := o.dedupe(ctx, papers)
	if err != nil {
		return nil, err
	}
	result.Units = units
	fmt.Fprintf(o.w, "deduplicated: %d new papers to filter\n", len(units))

	o.filterStage(ctx, units)

	matched := matchedUnits(units)
	result.Matched = len(matched)
	fmt.Fprintf(o.w, "matched: %d/%d papers\n", len(matched), len(units))

	o.analysisStage(ctx, date, matched)

	for _, u := range matched {
		if u.State != StateAnalyzed {
			continue
		}
		result.Analyzed++
		for _, kw := range u.Verdict.Keywords {
			result.Groups[kw] = append(result.Groups[kw], u.Analysis)
		}
	}
	fmt.Fprintf(o.w, "analyzed: %d/%d papers\n", result.Analyzed, len(matched))

	o.narrativeStage(ctx, result)

	// Promote surviving records to reported before the history write.
	for _, u := range units {
		if u.State == StateAnalyzed || u.State == StateSummarized {
			u.State = StateReported
		}
	}
	o.recordHistory(ctx, date, units)

	return result, nil
}

// dedupe canonicalizes papers, collapses in-run duplicates, and drops
// records the store has seen within the retention window. When the same
// work arrives from several feeds, the journal sighting supersedes the
// preprint one for display; the identity key is shared either way.
func (o *Orchestrator) dedupe(ctx context.Context, papers []types.Paper) ([]*Unit, error) {
	byKey := make(map[string]*Unit, len(papers))
	var units []*Unit

	for i := range papers {
		p := &papers[i]
		key := history.Canonicalize(p)

		if existing, ok := byKey[key]; ok {
			if existing.Paper.Source == types.SourcePreprint && p.Source == types.SourceJournal {
				existing.Paper = p
			}
			continue
		}

		status, err := o.store.Status(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("checking history: %w", err)
		}
		if status.SeenWithinRetention(time.Now(), o.store.Retention()) {
			continue
		}

		u := &Unit{Key: key, Paper: p, State: StateFetched}
		byKey[key] = u
		units = append(units, u)
	}
	return units, nil
}

// filterStage submits every deduplicated record to the filter backend,
// fully in parallel up to the filter gateway's concurrency bound.
func (o *Orchestrator) filterStage(ctx context.Context, units []*Unit) {
	var g errgroup.Group
	for _, u := range units {
		g.Go(func() error {
			err := o.gateways.Filter.Do(ctx, func(callCtx context.Context) error {
				v, err := o.backends.Filter.Filter(callCtx, u.Paper.Title, u.Paper.Abstract)
				if err != nil {
					return err
				}
				v.Key = u.Key
				u.Verdict = &v
				return nil
			})
			if err != nil {
				// A run abort leaves the record non-terminal so the next
				// run picks it up again.
				if ctx.Err() != nil {
					return nil
				}
				u.State = StateFailed
				u.Err = err
				fmt.Fprintf(o.w, "  filter failed %s: %v\n", u.Key, err)
				return nil
			}
			if u.Verdict.Matched {
				u.State = StateFiltered
			} else {
				u.State = StateRejected
			}
			return nil
		})
	}
	g.Wait()
}

func matchedUnits(units []*Unit) []*Unit {
	var matched []*Unit
	for _, u := range units {
		if u.State == StateFiltered {
			matched = append(matched, u)
		}
	}
	return matched
}

// analysisStage runs one analysis call per matched record, regardless of
// how many keywords it matched. Content retrieval happens inside the
// gateway call so a retry re-fetches the PDF.
func (o *Orchestrator) analysisStage(ctx context.Context, date string, matched []*Unit) {
	var g errgroup.Group
	for _, u := range matched {
		g.Go(func() error {
			err := o.gateways.Analysis.Do(ctx, func(callCtx context.Context) error {
				var pdf []byte
				if o.content != nil && o.backends.Analysis.ContentCapable() {
					var err error
					pdf, err = o.content.Fetch(callCtx, u.Paper, date)
					if err != nil {
						return err
					}
				}
				a, err := o.backends.Analysis.Analyze(callCtx, u.Paper, pdf, u.Verdict.Keywords)
				if err != nil {
					return err
				}
				a.Key = u.Key
				u.Analysis = a
				return nil
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				u.State = StateFailed
				u.Err = err
				fmt.Fprintf(o.w, "  analysis failed %s: %v\n", u.Key, err)
				return nil
			}
			u.State = StateAnalyzed
			return nil
		})
	}
	g.Wait()
}

// narrativeStage orders each keyword group the way the assembler will and
// requests one summary per non-empty group. The ordering happens before
// the call so the narrative can reference papers by their final numbers.
func (o *Orchestrator) narrativeStage(ctx context.Context, result *Result) {
	var mu sync.Mutex
	var g errgroup.Group

	for _, kw := range o.keywords {
		analyses := result.Groups[kw.Name]
		if len(analyses) == 0 {
			continue
		}
		report.OrderGroup(analyses)

		g.Go(func() error {
			var text string
			err := o.gateways.Narrative.Do(ctx, func(callCtx context.Context) error {
				var err error
				text, err = o.backends.Narrative.Summarize(callCtx, kw.Name, analyses)
				return err
			})
			if err != nil {
				// The group still reports with a placeholder summary.
				fmt.Fprintf(o.w, "  summary failed for %s: %v\n", kw.Name, err)
				return nil
			}
			mu.Lock()
			result.Summaries[kw.Name] = text
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
}

// recordHistory marks every record that reached a terminal state as seen
// for the run date. A failed bookkeeping write is logged and skipped; it
// never fails the run.
func (o *Orchestrator) recordHistory(ctx context.Context, date string, units []*Unit) {
	// Bookkeeping for finished work proceeds even after the run deadline;
	// only admission of new backend calls is gated on ctx.
	ctx = context.WithoutCancel(ctx)

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		day = time.Now()
	}

	for _, u := range units {
		if !u.State.terminal() {
			continue
		}
		var keywords []string
		if u.Verdict != nil {
			keywords = u.Verdict.Keywords
		}
		err := o.store.Record(ctx, history.Entry{
			Key:      u.Key,
			Title:    u.Paper.Title,
			Source:   u.Paper.Source,
			Date:     day,
			State:    string(u.State),
			Keywords: keywords,
		})
		if err != nil {
			fmt.Fprintf(o.w, "  warning: history write for %s failed: %v\n", u.Key, err)
		}
	}
}
