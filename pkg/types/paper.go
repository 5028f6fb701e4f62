// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-radar pipeline.
package types

import (
	"strings"
	"time"
)

// SourceType distinguishes preprint feeds from peer-reviewed journal feeds.
type SourceType string

const (
	SourcePreprint SourceType = "preprint"
	SourceJournal  SourceType = "journal"
)

// Relevance is the filter backend's confidence tier for a keyword match.
type Relevance string

const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
)

// Paper is a raw candidate record produced by a feed adapter. It is
// immutable once fetched; all downstream state lives in FilterResult and
// Analysis records keyed by the paper's identity key.
type Paper struct {
	// FeedID is the feed-native identifier (e.g. "2301.07041" for arXiv,
	// "nature:10.1038/s41586-..." for journal entries).
	FeedID string `json:"feed_id" yaml:"feed_id"`

	// DOI is the Digital Object Identifier, if the feed provided one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract or feed summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the publication or announcement date.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the last revision date, when the feed distinguishes it.
	Updated time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`

	// PDFURL is the content location (PDF or article page).
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Categories lists subject categories (arXiv) or the journal name.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// PrimaryCategory is the first category, kept separate for display.
	PrimaryCategory string `json:"primary_category,omitempty" yaml:"primary_category,omitempty"`

	// Source identifies the source type: preprint or journal.
	Source SourceType `json:"source" yaml:"source"`
}

// AbstractURL returns the human-readable article page for the paper.
// Native arXiv IDs resolve to arxiv.org; everything else falls back to
// the content location.
func (p *Paper) AbstractURL() string {
	if p.Source == SourcePreprint && p.FeedID != "" && !strings.ContainsRune(p.FeedID, ':') {
		return "https://arxiv.org/abs/" + p.FeedID
	}
	return p.PDFURL
}

// Keyword is one user-defined topic the pipeline filters against.
type Keyword struct {
	// Name is the short topic label used for grouping and report headings.
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Description tells the filter backend what the topic covers.
	Description string `json:"description" yaml:"description" mapstructure:"description"`

	// Examples are representative paper titles or phrasings.
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty" mapstructure:"examples"`
}

// FilterResult is the filter stage's verdict for one deduplicated record.
type FilterResult struct {
	// Key is the record's identity key.
	Key string `json:"key" yaml:"key"`

	// Matched reports whether the paper is relevant to any keyword.
	Matched bool `json:"matched" yaml:"matched"`

	// Keywords lists the matched keyword names.
	Keywords []string `json:"matched_keywords,omitempty" yaml:"matched_keywords,omitempty"`

	// Relevance is the confidence tier: high, medium, or low.
	Relevance Relevance `json:"relevance" yaml:"relevance"`

	// Reason is the backend's one-line rationale.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// KeywordRelevance explains how an analyzed paper relates to one keyword.
type KeywordRelevance struct {
	Relation          string `json:"relation" yaml:"relation"`
	ContributionLevel string `json:"contribution_level" yaml:"contribution_level"`
}

// Analysis is the deep-analysis result for one matched record. At most one
// Analysis exists per identity key per run, regardless of how many keywords
// the record matched.
type Analysis struct {
	// Key is the record's identity key.
	Key string `json:"key" yaml:"key"`

	// Paper points at the originating record for display fields. Not
	// serialized; reports flatten the fields they need.
	Paper *Paper `json:"-" yaml:"-"`

	// MatchedKeywords carries the filter stage's keyword set forward.
	MatchedKeywords []string `json:"matched_keywords" yaml:"matched_keywords"`

	Title            string                      `json:"title" yaml:"title"`
	Authors          []string                    `json:"authors,omitempty" yaml:"authors,omitempty"`
	Affiliations     []string                    `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`
	TLDR             string                      `json:"tldr" yaml:"tldr"`
	Motivation       string                      `json:"motivation,omitempty" yaml:"motivation,omitempty"`
	Background       string                      `json:"background,omitempty" yaml:"background,omitempty"`
	Contributions    []string                    `json:"contributions,omitempty" yaml:"contributions,omitempty"`
	Methodology      string                      `json:"methodology,omitempty" yaml:"methodology,omitempty"`
	Experiments      string                      `json:"experiments,omitempty" yaml:"experiments,omitempty"`
	Innovations      []string                    `json:"innovations,omitempty" yaml:"innovations,omitempty"`
	Limitations      []string                    `json:"limitations,omitempty" yaml:"limitations,omitempty"`
	KeywordRelevance map[string]KeywordRelevance `json:"keyword_relevance,omitempty" yaml:"keyword_relevance,omitempty"`

	// CodeURL is the open-source repository link, if the paper names one.
	CodeURL string `json:"code_url,omitempty" yaml:"code_url,omitempty"`

	// DatasetInfo describes datasets used, with scale where stated.
	DatasetInfo string `json:"dataset_info,omitempty" yaml:"dataset_info,omitempty"`

	// QualityScore is the backend's 1-10 overall rating.
	QualityScore int `json:"quality_score" yaml:"quality_score"`

	// ScoreReason is a one-line justification for the score.
	ScoreReason string `json:"score_reason,omitempty" yaml:"score_reason,omitempty"`
}
