// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles per-keyword result sets into a dated,
// stably-numbered report and persists it as JSON and Markdown.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// EmptySummary is the placeholder for keywords with no papers today.
const EmptySummary = "No new papers in this area today."

// OrderGroup sorts a keyword group deterministically: quality score
// descending, ties broken by identity key ascending. The orchestrator
// applies the same order before narrative synthesis, so summary text and
// persisted numbering agree.
func OrderGroup(analyses []*types.Analysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		if analyses[i].QualityScore != analyses[j].QualityScore {
			return analyses[i].QualityScore > analyses[j].QualityScore
		}
		return analyses[i].Key < analyses[j].Key
	})
}

// Assemble builds the immutable report for one run. Paper numbers are
// assigned here, exactly once, and persist with the report; consumers
// must never derive them from display order. Given identical inputs,
// Assemble produces identical numbering.
func Assemble(runID, date string, total, matched, analyzed int, keywords []string,
	groups map[string][]*types.Analysis, summaries map[string]string) *types.Report {

	r := &types.Report{
		Date:            date,
		RunID:           runID,
		TotalPapers:     total,
		MatchedPapers:   matched,
		AnalyzedPapers:  analyzed,
		Keywords:        keywords,
		Summaries:       make(map[string]string, len(keywords)),
		PapersByKeyword: make(map[string][]types.ReportPaper, len(keywords)),
	}

	for _, kw := range keywords {
		analyses := groups[kw]
		OrderGroup(analyses)

		papers := make([]types.ReportPaper, 0, len(analyses))
		for i, a := range analyses {
			papers = append(papers, toReportPaper(i+1, a))
		}
		r.PapersByKeyword[kw] = papers

		if s, ok := summaries[kw]; ok && s != "" {
			r.Summaries[kw] = s
		} else {
			r.Summaries[kw] = EmptySummary
		}
	}
	return r
}

func toReportPaper(number int, a *types.Analysis) types.ReportPaper {
	rp := types.ReportPaper{
		PaperNumber:     number,
		ID:              a.Key,
		Title:           a.Title,
		Authors:         a.Authors,
		Affiliations:    a.Affiliations,
		TLDR:            a.TLDR,
		Contributions:   a.Contributions,
		Methodology:     a.Methodology,
		Experiments:     a.Experiments,
		Innovations:     a.Innovations,
		Limitations:     a.Limitations,
		CodeURL:         a.CodeURL,
		DatasetInfo:     a.DatasetInfo,
		QualityScore:    a.QualityScore,
		ScoreReason:     a.ScoreReason,
		MatchedKeywords: a.MatchedKeywords,
	}
	if p := a.Paper; p != nil {
		rp.Abstract = p.Abstract
		rp.PDFURL = p.PDFURL
		rp.AbstractURL = p.AbstractURL()
		rp.Source = p.Source
		rp.PrimaryCategory = p.PrimaryCategory
		if !p.Published.IsZero() {
			rp.Published = p.Published.Format(time.RFC3339)
		}
		if !p.Updated.IsZero() {
			rp.Updated = p.Updated.Format(time.RFC3339)
		}
	}
	return rp
}

// Totals formats the headline counts for progress output.
func Totals(r *types.Report) string {
	return fmt.Sprintf("%d fetched, %d matched, %d analyzed",
		r.TotalPapers, r.MatchedPapers, r.AnalyzedPapers)
}
