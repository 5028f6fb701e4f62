// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ReportPaper is one numbered entry in a keyword group of a persisted
// report. PaperNumber is assigned exactly once, at assembly time, and is
// never recomputed from display order.
type ReportPaper struct {
	// PaperNumber is the stable per-(date, keyword) reference number.
	PaperNumber int `json:"paper_number" yaml:"paper_number"`

	// ID is the identity key of the underlying work.
	ID string `json:"id" yaml:"id"`

	Title        string   `json:"title" yaml:"title"`
	Authors      []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Affiliations []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`

	// Abstract is the feed abstract, kept for the presentation layer.
	Abstract string `json:"summary,omitempty" yaml:"summary,omitempty"`

	TLDR          string   `json:"tldr,omitempty" yaml:"tldr,omitempty"`
	Contributions []string `json:"contributions,omitempty" yaml:"contributions,omitempty"`
	Methodology   string   `json:"methodology,omitempty" yaml:"methodology,omitempty"`
	Experiments   string   `json:"experiments,omitempty" yaml:"experiments,omitempty"`
	Innovations   []string `json:"innovations,omitempty" yaml:"innovations,omitempty"`
	Limitations   []string `json:"limitations,omitempty" yaml:"limitations,omitempty"`
	CodeURL       string   `json:"code_url,omitempty" yaml:"code_url,omitempty"`
	DatasetInfo   string   `json:"dataset_info,omitempty" yaml:"dataset_info,omitempty"`

	QualityScore int    `json:"quality_score" yaml:"quality_score"`
	ScoreReason  string `json:"score_reason,omitempty" yaml:"score_reason,omitempty"`

	MatchedKeywords []string `json:"matched_keywords" yaml:"matched_keywords"`

	PDFURL          string     `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`
	AbstractURL     string     `json:"abstract_url,omitempty" yaml:"abstract_url,omitempty"`
	Source          SourceType `json:"source" yaml:"source"`
	PrimaryCategory string     `json:"primary_category,omitempty" yaml:"primary_category,omitempty"`
	Published       string     `json:"published,omitempty" yaml:"published,omitempty"`
	Updated         string     `json:"updated,omitempty" yaml:"updated,omitempty"`
}

// Report is the immutable output of one pipeline run. One report exists
// per run date.
type Report struct {
	// Date is the run date in YYYY-MM-DD form.
	Date string `json:"date" yaml:"date"`

	// RunID is the ULID of the run that produced this report.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	// TotalPapers counts the candidate papers fetched from all feeds,
	// before deduplication.
	TotalPapers int `json:"total_papers" yaml:"total_papers"`

	// MatchedPapers counts records that matched at least one keyword.
	MatchedPapers int `json:"matched_papers" yaml:"matched_papers"`

	// AnalyzedPapers counts records whose analysis succeeded.
	AnalyzedPapers int `json:"analyzed_papers" yaml:"analyzed_papers"`

	// Keywords lists keyword names in configuration order.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Summaries maps keyword name to its narrative summary text.
	Summaries map[string]string `json:"summaries" yaml:"summaries"`

	// PapersByKeyword maps keyword name to its numbered entries.
	PapersByKeyword map[string][]ReportPaper `json:"papers_by_keyword" yaml:"papers_by_keyword"`
}
