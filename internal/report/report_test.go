// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/paper-radar/pkg/types"
)

func analysisFixture(key, title string, score int) *types.Analysis {
	return &types.Analysis{
		Key:          key,
		Title:        title,
		QualityScore: score,
		TLDR:         "TLDR for " + title,
		Paper: &types.Paper{
			FeedID: strings.TrimPrefix(key, "id:"),
			Source: types.SourcePreprint,
			PDFURL: "https://arxiv.org/pdf/" + strings.TrimPrefix(key, "id:"),
		},
	}
}

func TestOrderGroupByScoreThenKey(t *testing.T) {
	analyses := []*types.Analysis{
		analysisFixture("id:ccc", "C", 7),
		analysisFixture("id:aaa", "A", 9),
		analysisFixture("id:bbb", "B", 7),
	}

	OrderGroup(analyses)

	got := []string{analyses[0].Key, analyses[1].Key, analyses[2].Key}
	want := []string{"id:aaa", "id:bbb", "id:ccc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestAssembleNumbersPerKeyword(t *testing.T) {
	groups := map[string][]*types.Analysis{
		"retrieval": {
			analysisFixture("id:low", "Low", 5),
			analysisFixture("id:high", "High", 9),
		},
		"agents": {
			analysisFixture("id:only", "Only", 7),
		},
	}

	r := Assemble("run-1", "2026-08-30", 10, 3, 3,
		[]string{"retrieval", "agents"}, groups, nil)

	retrieval := r.PapersByKeyword["retrieval"]
	if len(retrieval) != 2 {
		t.Fatalf("retrieval group has %d papers, want 2", len(retrieval))
	}
	if retrieval[0].PaperNumber != 1 || retrieval[0].ID != "id:high" {
		t.Errorf("paper 1 = %+v, want the high-scoring paper", retrieval[0])
	}
	if retrieval[1].PaperNumber != 2 || retrieval[1].ID != "id:low" {
		t.Errorf("paper 2 = %+v, want the low-scoring paper", retrieval[1])
	}

	// Numbering restarts per keyword.
	agents := r.PapersByKeyword["agents"]
	if len(agents) != 1 || agents[0].PaperNumber != 1 {
		t.Errorf("agents group = %+v, want one paper numbered 1", agents)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	build := func() *types.Report {
		groups := map[string][]*types.Analysis{
			"retrieval": {
				analysisFixture("id:b", "B", 7),
				analysisFixture("id:a", "A", 7),
				analysisFixture("id:c", "C", 9),
			},
		}
		return Assemble("run-1", "2026-08-30", 3, 3, 3, []string{"retrieval"}, groups, nil)
	}

	first, second := build(), build()
	if !reflect.DeepEqual(first.PapersByKeyword, second.PapersByKeyword) {
		t.Error("identical inputs produced different numbering")
	}
}

func TestAssembleEmptyKeywordGetsPlaceholder(t *testing.T) {
	r := Assemble("run-1", "2026-08-30", 5, 0, 0,
		[]string{"retrieval"}, map[string][]*types.Analysis{}, nil)

	if r.Summaries["retrieval"] != EmptySummary {
		t.Errorf("summary = %q, want placeholder", r.Summaries["retrieval"])
	}
	if len(r.PapersByKeyword["retrieval"]) != 0 {
		t.Error("empty keyword should have an empty group")
	}
}

func TestAssembleKeepsProvidedSummaries(t *testing.T) {
	groups := map[string][]*types.Analysis{
		"retrieval": {analysisFixture("id:a", "A", 8)},
	}
	summaries := map[string]string{"retrieval": "A strong day for retrieval."}

	r := Assemble("run-1", "2026-08-30", 1, 1, 1, []string{"retrieval"}, groups, summaries)
	if r.Summaries["retrieval"] != "A strong day for retrieval." {
		t.Errorf("summary = %q", r.Summaries["retrieval"])
	}
}

func TestAssembleCounts(t *testing.T) {
	r := Assemble("run-7", "2026-08-30", 42, 6, 5, nil, nil, nil)
	if r.TotalPapers != 42 || r.MatchedPapers != 6 || r.AnalyzedPapers != 5 {
		t.Errorf("counts = %d/%d/%d", r.TotalPapers, r.MatchedPapers, r.AnalyzedPapers)
	}
	if r.RunID != "run-7" || r.Date != "2026-08-30" {
		t.Errorf("RunID = %q, Date = %q", r.RunID, r.Date)
	}
}

func TestToReportPaperCopiesPaperFields(t *testing.T) {
	a := analysisFixture("id:2501.00001", "T", 8)
	a.Paper.Abstract = "An abstract."

	rp := toReportPaper(3, a)
	if rp.PaperNumber != 3 {
		t.Errorf("PaperNumber = %d", rp.PaperNumber)
	}
	if rp.Abstract != "An abstract." {
		t.Errorf("Abstract = %q", rp.Abstract)
	}
	if rp.PDFURL == "" || rp.AbstractURL == "" {
		t.Error("links not copied from paper")
	}
	if rp.Source != types.SourcePreprint {
		t.Errorf("Source = %q", rp.Source)
	}
}

func TestTotals(t *testing.T) {
	r := &types.Report{TotalPapers: 10, MatchedPapers: 4, AnalyzedPapers: 3}
	if got := Totals(r); got != "10 fetched, 4 matched, 3 analyzed" {
		t.Errorf("Totals = %q", got)
	}
}
