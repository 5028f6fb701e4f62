// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pdiddy/paper-radar/pkg/types"
)

const sampleAnalysisJSON = `{
	"title": "Efficient Retrieval for Long Contexts",
	"authors": ["Jane Smith", "Alan Doe"],
	"tldr": "A faster retriever.",
	"contributions": ["Sub-linear retrieval", "New benchmark"],
	"methodology": "Hierarchical index.",
	"quality_score": 8,
	"score_reason": "Strong results on public benchmarks."
}`

func samplePaper() *types.Paper {
	return &types.Paper{
		FeedID:   "2501.00042",
		Title:    "Efficient Retrieval for Long Contexts",
		Abstract: "We build a faster retriever.",
		Authors:  []string{"Jane Smith", "Alan Doe"},
		Source:   types.SourcePreprint,
	}
}

func TestAnalyzeTextOnly(t *testing.T) {
	var gotReq chatRequest
	client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		chatReply(sampleAnalysisJSON)(w, r)
	})
	a := NewChatAnalyzer(client, types.LLMConfig{Capability: types.CapabilityTextOnly}, "English")

	if a.ContentCapable() {
		t.Fatal("text-only backend reports ContentCapable = true")
	}

	analysis, err := a.Analyze(context.Background(), samplePaper(), nil, []string{"retrieval"})
	if err != nil {
		t.Fatal(err)
	}
	if analysis.QualityScore != 8 {
		t.Errorf("QualityScore = %d, want 8", analysis.QualityScore)
	}
	if analysis.Paper == nil || analysis.Paper.FeedID != "2501.00042" {
		t.Error("analysis not linked back to its paper")
	}
	if len(analysis.MatchedKeywords) != 1 || analysis.MatchedKeywords[0] != "retrieval" {
		t.Errorf("MatchedKeywords = %v", analysis.MatchedKeywords)
	}

	// Text-only requests carry plain string content, not file parts.
	if len(gotReq.Messages) == 0 {
		t.Fatal("no messages sent")
	}
	if _, ok := gotReq.Messages[len(gotReq.Messages)-1].Content.(string); !ok {
		t.Error("text-only analysis should send string content")
	}
}

func TestAnalyzeContentCapableSendsPDF(t *testing.T) {
	var gotBody map[string]any
	client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		chatReply(sampleAnalysisJSON)(w, r)
	})
	a := NewChatAnalyzer(client, types.LLMConfig{Capability: types.CapabilityContent}, "English")

	if !a.ContentCapable() {
		t.Fatal("content backend reports ContentCapable = false")
	}

	_, err := a.Analyze(context.Background(), samplePaper(), []byte("%PDF-1.4"), []string{"retrieval"})
	if err != nil {
		t.Fatal(err)
	}

	messages := gotBody["messages"].([]any)
	parts, ok := messages[0].(map[string]any)["content"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("content-capable analysis should send file + text parts, got %v", messages[0])
	}
}

func TestAnalyzeContentCapableFallsBackWithoutContent(t *testing.T) {
	var gotReq chatRequest
	client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		chatReply(sampleAnalysisJSON)(w, r)
	})
	a := NewChatAnalyzer(client, types.LLMConfig{Capability: types.CapabilityContent}, "English")

	_, err := a.Analyze(context.Background(), samplePaper(), nil, []string{"retrieval"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := gotReq.Messages[len(gotReq.Messages)-1].Content.(string); !ok {
		t.Error("missing content should fall back to text analysis")
	}
}

func TestAnalyzeDefaults(t *testing.T) {
	// Missing title/authors come from the paper; an out-of-range score is
	// clamped to the midpoint.
	client := chatServer(t, chatReply(`{"tldr": "short", "quality_score": 42}`))
	a := NewChatAnalyzer(client, types.LLMConfig{}, "English")

	analysis, err := a.Analyze(context.Background(), samplePaper(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Title != "Efficient Retrieval for Long Contexts" {
		t.Errorf("Title = %q, want paper title", analysis.Title)
	}
	if len(analysis.Authors) != 2 {
		t.Errorf("Authors = %v, want paper authors", analysis.Authors)
	}
	if analysis.QualityScore != 5 {
		t.Errorf("QualityScore = %d, want clamped 5", analysis.QualityScore)
	}
}

func TestAnalyzeNonJSONResponseIsError(t *testing.T) {
	client := chatServer(t, chatReply("The paper looks solid."))
	a := NewChatAnalyzer(client, types.LLMConfig{}, "English")

	_, err := a.Analyze(context.Background(), samplePaper(), nil, nil)
	if err == nil {
		t.Fatal("expected error for non-JSON analysis")
	}
}
