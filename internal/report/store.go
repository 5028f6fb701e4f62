// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/paper-radar/pkg/types"
)

const jsonDir = "json"

// reportFilePattern matches persisted report files: paper-radar-YYYY-MM-DD.json.
var reportFilePattern = regexp.MustCompile(`^paper-radar-(\d{4}-\d{2}-\d{2})\.json$`)

// datePattern matches a bare report date.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDate reports whether s has the YYYY-MM-DD shape reports are keyed by.
func ValidDate(s string) bool {
	return datePattern.MatchString(s)
}

// SaveJSON writes the report to dir/json/paper-radar-<date>.json and
// returns the path. The JSON file is the canonical persisted form the
// serving layer reads.
func SaveJSON(r *types.Report, dir string) (string, error) {
	outDir := filepath.Join(dir, jsonDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(outDir, fmt.Sprintf("paper-radar-%s.json", r.Date))
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Load reads the persisted report for a date.
func Load(dir, date string) (*types.Report, error) {
	path := filepath.Join(dir, jsonDir, fmt.Sprintf("paper-radar-%s.json", date))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report for %s: %w", date, err)
	}
	var r types.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report for %s: %w", date, err)
	}
	return &r, nil
}

// Dates lists the dates with persisted reports, newest first.
func Dates(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, jsonDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading report directory: %w", err)
	}

	var dates []string
	for _, e := range entries {
		if m := reportFilePattern.FindStringSubmatch(e.Name()); m != nil {
			dates = append(dates, m[1])
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// Latest loads the most recent persisted report.
func Latest(dir string) (*types.Report, error) {
	dates, err := Dates(dir)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no reports found in %s", dir)
	}
	return Load(dir, dates[0])
}

// SaveMarkdown writes the human-readable rendering to
// dir/paper-radar-<date>.md and returns the path.
func SaveMarkdown(r *types.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("paper-radar-%s.md", r.Date))
	if err := os.WriteFile(path, []byte(Markdown(r)), 0o644); err != nil {
		return "", fmt.Errorf("writing markdown report: %w", err)
	}
	return path, nil
}

// Markdown renders the report for human readers. Entries keep their
// persisted paper numbers; rendering never renumbers.
func Markdown(r *types.Report) string {
	var b strings.Builder

	b.WriteString("# Paper Radar Daily\n\n")
	fmt.Fprintf(&b, "**Date**: %s | **New papers**: %d | **Matched**: %d | **Analyzed**: %d\n\n---\n\n",
		r.Date, r.TotalPapers, r.MatchedPapers, r.AnalyzedPapers)

	for _, kw := range r.Keywords {
		papers := r.PapersByKeyword[kw]
		fmt.Fprintf(&b, "## %s (%d papers)\n\n", kw, len(papers))

		if summary := r.Summaries[kw]; summary != "" {
			fmt.Fprintf(&b, "### Field summary\n\n> %s\n\n", summary)
		}

		if len(papers) == 0 {
			b.WriteString("*No relevant papers in this area today.*\n\n---\n\n")
			continue
		}

		b.WriteString("### Papers\n\n")
		for _, p := range papers {
			fmt.Fprintf(&b, "#### %d. [%s](%s)\n\n", p.PaperNumber, p.Title, linkFor(p))

			if len(p.Authors) > 0 {
				authors := strings.Join(truncateList(p.Authors, 3), ", ")
				if len(p.Authors) > 3 {
					authors += " et al."
				}
				fmt.Fprintf(&b, "**Authors**: %s\n\n", authors)
			}
			fmt.Fprintf(&b, "**Source**: %s", sourceLabel(p))
			fmt.Fprintf(&b, " | **Score**: %d/10\n\n", p.QualityScore)

			if p.TLDR != "" {
				fmt.Fprintf(&b, "**TLDR**: %s\n\n", p.TLDR)
			}
			if len(p.Contributions) > 0 {
				b.WriteString("**Contributions:**\n")
				for _, c := range truncateList(p.Contributions, 3) {
					fmt.Fprintf(&b, "- %s\n", c)
				}
				b.WriteString("\n")
			}
			if p.DatasetInfo != "" && p.DatasetInfo != "not stated" {
				fmt.Fprintf(&b, "**Datasets**: %s\n\n", p.DatasetInfo)
			}

			links := []string{fmt.Sprintf("[PDF](%s)", p.PDFURL)}
			if p.AbstractURL != "" && p.AbstractURL != p.PDFURL {
				links = append(links, fmt.Sprintf("[Abstract](%s)", p.AbstractURL))
			}
			if p.CodeURL != "" {
				links = append(links, fmt.Sprintf("[Code](%s)", p.CodeURL))
			}
			fmt.Fprintf(&b, "**Links**: %s\n\n", strings.Join(links, " | "))
		}
		b.WriteString("---\n\n")
	}

	b.WriteString("*Generated by paper-radar*\n")
	return b.String()
}

func linkFor(p types.ReportPaper) string {
	if p.AbstractURL != "" {
		return p.AbstractURL
	}
	return p.PDFURL
}

func sourceLabel(p types.ReportPaper) string {
	switch p.Source {
	case types.SourceJournal:
		if p.PrimaryCategory != "" {
			return p.PrimaryCategory
		}
		return "Journal"
	default:
		if p.PrimaryCategory != "" {
			return fmt.Sprintf("Preprint (%s)", p.PrimaryCategory)
		}
		return "Preprint"
	}
}

func truncateList(items []string, max int) []string {
	if len(items) <= max {
		return items
	}
	return items[:max]
}
