// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-radar/internal/gateway"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// AnalysisBackend performs the deep per-paper analysis. A content-capable
// backend receives the PDF bytes; a text-only backend receives nil content
// and works from the abstract.
type AnalysisBackend interface {
	Analyze(ctx context.Context, paper *types.Paper, content []byte, keywords []string) (*types.Analysis, error)

	// ContentCapable reports whether Analyze wants PDF content. Selected
	// by configuration, not by runtime type inspection.
	ContentCapable() bool
}

const analysisPrompt = `You are a senior AI researcher. Read this academic paper carefully and
provide a deep analysis in %s.

The paper was flagged as relevant to these keywords: %s

Return strict JSON only, no other text:
{
    "title": "full paper title",
    "authors": ["author 1", "author 2"],
    "affiliations": ["institution 1"],
    "tldr": "1-2 sentences: the problem, the method, the result",
    "motivation": "why the problem matters and what gap existing work leaves (2-4 sentences)",
    "background": "task setting and the most relevant prior work (2-4 sentences)",
    "contributions": ["contribution 1", "contribution 2", "contribution 3"],
    "methodology": "core method in under 100 words",
    "experiments": "key results and numbers in under 100 words",
    "innovations": ["innovation 1", "innovation 2"],
    "limitations": ["limitation 1"],
    "keyword_relevance": {
        "keyword name": {
            "relation": "how the paper relates to this keyword",
            "contribution_level": "high" or "medium" or "low"
        }
    },
    "code_url": "repository link if the paper provides one, else empty",
    "dataset_info": "dataset names and scale, or 'not stated'",
    "quality_score": 7,
    "score_reason": "one sentence justifying the score"
}

Scoring guide: 9-10 landmark work, 7-8 strong work with clear novelty,
5-6 solid but limited, 3-4 marginal contribution, 1-2 poor quality.`

const analysisTextNote = `

Only the title and abstract are available; analyze from those and keep
claims about experiments conservative.

Title: %s

Abstract: %s`

// ChatAnalyzer implements AnalysisBackend over a chat client.
type ChatAnalyzer struct {
	client         *Client
	language       string
	contentCapable bool
}

// NewChatAnalyzer builds an analysis backend. cfg.Capability selects
// whether PDFs are sent.
func NewChatAnalyzer(client *Client, cfg types.LLMConfig, language string) *ChatAnalyzer {
	return &ChatAnalyzer{
		client:         client,
		language:       language,
		contentCapable: cfg.Capability == types.CapabilityContent,
	}
}

// ContentCapable reports the configured capability variant.
func (a *ChatAnalyzer) ContentCapable() bool { return a.contentCapable }

// Analyze runs the deep analysis for one paper.
func (a *ChatAnalyzer) Analyze(ctx context.Context, paper *types.Paper, content []byte, keywords []string) (*types.Analysis, error) {
	prompt := fmt.Sprintf(analysisPrompt, a.language, strings.Join(keywords, ", "))

	var response string
	var err error
	if a.contentCapable && len(content) > 0 {
		response, err = a.client.ChatWithPDF(ctx, prompt, content, paper.FeedID+".pdf")
	} else {
		response, err = a.client.Chat(ctx, prompt,
			fmt.Sprintf(analysisTextNote, paper.Title, paper.Abstract))
	}
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, gateway.Transientf("analysis response: %v", err)
	}

	var analysis types.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, gateway.Transient(fmt.Errorf("parsing analysis: %w", err))
	}

	if analysis.Title == "" {
		analysis.Title = paper.Title
	}
	if len(analysis.Authors) == 0 {
		analysis.Authors = paper.Authors
	}
	if analysis.QualityScore < 1 || analysis.QualityScore > 10 {
		analysis.QualityScore = 5
	}
	analysis.Paper = paper
	analysis.MatchedKeywords = keywords
	return &analysis, nil
}
