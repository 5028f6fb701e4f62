// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// arxivFeedBase is the arXiv Atom feed root. Declared as a var so tests
// can substitute an httptest server.
var arxivFeedBase = "https://rss.arxiv.org/atom/"

// ArxivSource fetches the daily arXiv announcement feed for a category
// expression such as "cs.AI+cs.CV".
type ArxivSource struct {
	cfg    types.ArxivFeedConfig
	parser *gofeed.Parser
}

// NewArxivSource builds the arXiv feed adapter.
func NewArxivSource(cfg types.ArxivFeedConfig) *ArxivSource {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.Timeout}
	parser.UserAgent = cfg.UserAgent
	return &ArxivSource{cfg: cfg, parser: parser}
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Fetch parses the announcement feed and returns new papers. Replacement
// and cross-list announcements are skipped; only genuinely new entries
// count.
func (s *ArxivSource) Fetch(ctx context.Context) ([]types.Paper, error) {
	feed, err := s.parser.ParseURLWithContext(arxivFeedBase+s.cfg.Categories, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv feed: %w", err)
	}

	var papers []types.Paper
	for _, item := range feed.Items {
		if announceType(item) != "new" {
			continue
		}
		id := extractArxivID(item.Link)
		if id == "" {
			id = extractArxivID(item.GUID)
		}
		if id == "" {
			continue
		}

		p := types.Paper{
			FeedID:     id,
			Title:      strings.TrimSpace(item.Title),
			Abstract:   cleanAbstract(item.Description),
			PDFURL:     fmt.Sprintf("https://arxiv.org/pdf/%s", id),
			Categories: item.Categories,
			Source:     types.SourcePreprint,
		}
		if len(item.Categories) > 0 {
			p.PrimaryCategory = item.Categories[0]
		}
		for _, a := range item.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		if item.PublishedParsed != nil {
			p.Published = *item.PublishedParsed
		}
		if item.UpdatedParsed != nil {
			p.Updated = *item.UpdatedParsed
		}

		papers = append(papers, p)
		if s.cfg.MaxPapers > 0 && len(papers) >= s.cfg.MaxPapers {
			break
		}
	}
	return papers, nil
}

// announceType reads the arXiv announce_type extension; entries without
// one default to "new".
func announceType(item *gofeed.Item) string {
	if ns, ok := item.Extensions["arxiv"]; ok {
		if exts, ok := ns["announce_type"]; ok && len(exts) > 0 {
			return exts[0].Value
		}
	}
	return "new"
}

// cleanAbstract strips the "arXiv:NNNN Announce Type" preamble the feed
// prepends to each abstract.
func cleanAbstract(desc string) string {
	desc = strings.TrimSpace(desc)
	if i := strings.Index(desc, "Abstract:"); i >= 0 {
		desc = desc[i+len("Abstract:"):]
	}
	return strings.TrimSpace(desc)
}

// extractArxivID pulls the arXiv ID from an abs URL or OAI identifier
// (e.g. "https://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(s string) string {
	id := s
	if idx := strings.Index(s, "/abs/"); idx >= 0 {
		id = s[idx+len("/abs/"):]
	} else if idx := strings.LastIndex(s, "arXiv.org:"); idx >= 0 {
		id = s[idx+len("arXiv.org:"):]
	} else if !looksLikeArxivID(s) {
		return ""
	}

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// looksLikeArxivID reports whether s is a bare modern arXiv ID (NNNN.NNNNN).
func looksLikeArxivID(s string) bool {
	if len(s) < 9 {
		return false
	}
	return s[4] == '.' && s[0] >= '0' && s[0] <= '9'
}
