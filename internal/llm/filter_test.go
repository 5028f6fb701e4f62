// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/pdiddy/paper-radar/pkg/types"
)

var filterKeywords = []types.Keyword{
	{Name: "retrieval", Description: "Retrieval-augmented generation", Examples: []string{"RAG pipelines"}},
	{Name: "agents", Description: "LLM agent systems"},
}

func TestFilterParsesVerdict(t *testing.T) {
	client := chatServer(t, chatReply(
		`{"matched": true, "matched_keywords": ["retrieval"], "relevance": "high", "reason": "core RAG paper"}`))
	f := NewChatFilter(client, filterKeywords)

	v, err := f.Filter(context.Background(), "A RAG Paper", "We study retrieval.")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Matched {
		t.Error("Matched = false, want true")
	}
	if len(v.Keywords) != 1 || v.Keywords[0] != "retrieval" {
		t.Errorf("Keywords = %v, want [retrieval]", v.Keywords)
	}
	if v.Relevance != types.RelevanceHigh {
		t.Errorf("Relevance = %q, want high", v.Relevance)
	}
}

func TestFilterAcceptsFencedResponse(t *testing.T) {
	client := chatServer(t, chatReply(
		"```json\n{\"matched\": true, \"matched_keywords\": [\"agents\"], \"relevance\": \"medium\"}\n```"))
	f := NewChatFilter(client, filterKeywords)

	v, err := f.Filter(context.Background(), "T", "A")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Matched {
		t.Error("fenced verdict not parsed")
	}
}

func TestFilterDropsUnknownKeywords(t *testing.T) {
	client := chatServer(t, chatReply(
		`{"matched": true, "matched_keywords": ["retrieval", "hallucinated-topic"], "relevance": "high"}`))
	f := NewChatFilter(client, filterKeywords)

	v, err := f.Filter(context.Background(), "T", "A")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Keywords) != 1 || v.Keywords[0] != "retrieval" {
		t.Errorf("Keywords = %v, unknown names should be dropped", v.Keywords)
	}
}

func TestFilterDemotesLowRelevance(t *testing.T) {
	client := chatServer(t, chatReply(
		`{"matched": true, "matched_keywords": ["retrieval"], "relevance": "low", "reason": "weak link"}`))
	f := NewChatFilter(client, filterKeywords)

	v, err := f.Filter(context.Background(), "T", "A")
	if err != nil {
		t.Fatal(err)
	}
	if v.Matched {
		t.Error("low-relevance match should be demoted to unmatched")
	}
}

func TestFilterDemotesWhenAllKeywordsUnknown(t *testing.T) {
	client := chatServer(t, chatReply(
		`{"matched": true, "matched_keywords": ["made-up"], "relevance": "high"}`))
	f := NewChatFilter(client, filterKeywords)

	v, err := f.Filter(context.Background(), "T", "A")
	if err != nil {
		t.Fatal(err)
	}
	if v.Matched {
		t.Error("match with no surviving keywords should be demoted")
	}
}

func TestFilterNonJSONResponseIsError(t *testing.T) {
	client := chatServer(t, chatReply("I think this paper is relevant."))
	f := NewChatFilter(client, filterKeywords)

	_, err := f.Filter(context.Background(), "T", "A")
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestDescribeKeywords(t *testing.T) {
	out := describeKeywords(filterKeywords)
	for _, want := range []string{"[retrieval]", "Retrieval-augmented generation", "RAG pipelines", "[agents]"} {
		if !strings.Contains(out, want) {
			t.Errorf("description missing %q:\n%s", want, out)
		}
	}
}
