// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// NarrativeBackend synthesizes a per-keyword summary over the ordered
// analysis set. The analyses arrive in report order, so the text can
// reference papers by the same numbers the assembler will persist.
type NarrativeBackend interface {
	Summarize(ctx context.Context, keyword string, analyses []*types.Analysis) (string, error)
}

const narrativeSystemPrompt = `You are an academic field analyst writing a daily research digest in %s.
Given today's analyzed papers for one research area, write a cohesive
narrative summary (one paragraph, at most 150 words) covering the common
themes and the most notable results. Reference individual papers by their
bracketed numbers, e.g. [1] or [2][3]. Do not renumber papers and do not
invent papers that are not listed.`

// ChatNarrator implements NarrativeBackend over a chat client.
type ChatNarrator struct {
	client   *Client
	language string
}

// NewChatNarrator builds a narrative backend.
func NewChatNarrator(client *Client, language string) *ChatNarrator {
	return &ChatNarrator{client: client, language: language}
}

// Summarize produces the narrative for one keyword group.
func (n *ChatNarrator) Summarize(ctx context.Context, keyword string, analyses []*types.Analysis) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Research area: %s\n\nToday's papers:\n", keyword)
	for i, a := range analyses {
		tldr := a.TLDR
		if tldr == "" {
			tldr = a.Methodology
		}
		fmt.Fprintf(&b, "[%d] %s: %s (quality %d/10)\n", i+1, a.Title, tldr, a.QualityScore)
	}

	response, err := n.client.Chat(ctx,
		fmt.Sprintf(narrativeSystemPrompt, n.language), b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}
