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

// FilterBackend decides whether a paper is relevant to any configured
// keyword, from title and abstract alone.
type FilterBackend interface {
	Filter(ctx context.Context, title, abstract string) (Verdict, error)
}

// Verdict is the filter backend's answer for one paper: the shared
// FilterResult record. The backend leaves Key empty; the orchestrator
// fills it after identity resolution.
type Verdict = types.FilterResult

const filterSystemPrompt = `You are an academic paper classifier. Decide whether a paper is highly
relevant to any of these research keyword areas:

%s

Return JSON only, no other text:
{
    "matched": true or false,
    "matched_keywords": ["keyword name", ...],
    "relevance": "high" or "medium" or "low",
    "reason": "one sentence explaining the match"
}

Rules:
- Return matched: true only when the paper's core topic belongs to a keyword area.
- A paper that merely mentions related concepts is not a match.
- relevance "high" means the keyword area is the paper's central topic.
- relevance "low" means the connection is weak; return matched: false in that case.
- A paper may match several keywords.`

const filterUserPrompt = `Title: %s

Abstract: %s

Is this paper highly relevant to any of the given keywords? Return the JSON verdict.`

// ChatFilter implements FilterBackend over a chat client.
type ChatFilter struct {
	client       *Client
	systemPrompt string
	known        map[string]bool
}

// NewChatFilter builds a filter backend for the configured keyword set.
func NewChatFilter(client *Client, keywords []types.Keyword) *ChatFilter {
	known := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		known[kw.Name] = true
	}
	return &ChatFilter{
		client:       client,
		systemPrompt: fmt.Sprintf(filterSystemPrompt, describeKeywords(keywords)),
		known:        known,
	}
}

// describeKeywords formats the keyword set for the system prompt.
func describeKeywords(keywords []types.Keyword) string {
	var b strings.Builder
	for _, kw := range keywords {
		fmt.Fprintf(&b, "[%s]\n", kw.Name)
		fmt.Fprintf(&b, "  Scope: %s\n", kw.Description)
		if len(kw.Examples) > 0 {
			fmt.Fprintf(&b, "  Examples: %s\n", strings.Join(kw.Examples, "; "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Filter asks the backend for a verdict. Unknown keyword names in the
// response are dropped; a matched verdict with low relevance is demoted
// to unmatched.
func (f *ChatFilter) Filter(ctx context.Context, title, abstract string) (Verdict, error) {
	response, err := f.client.Chat(ctx, f.systemPrompt,
		fmt.Sprintf(filterUserPrompt, title, abstract))
	if err != nil {
		return Verdict{}, err
	}

	raw, err := ExtractJSON(response)
	if err != nil {
		return Verdict{}, gateway.Transientf("filter response: %v", err)
	}

	var v Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return Verdict{}, gateway.Transient(fmt.Errorf("parsing filter verdict: %w", err))
	}

	kept := v.Keywords[:0]
	for _, name := range v.Keywords {
		if f.known[name] {
			kept = append(kept, name)
		}
	}
	v.Keywords = kept

	if v.Matched && (v.Relevance == types.RelevanceLow || len(v.Keywords) == 0) {
		v.Matched = false
	}
	return v, nil
}
