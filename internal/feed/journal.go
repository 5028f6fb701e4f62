// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// JournalSource fetches one journal's RSS or Atom feed.
type JournalSource struct {
	src    types.JournalSource
	cfg    types.JournalFeedConfig
	parser *gofeed.Parser
}

// NewJournalSources builds one adapter per configured journal feed.
func NewJournalSources(cfg types.JournalFeedConfig) []Source {
	sources := make([]Source, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		parser := gofeed.NewParser()
		parser.Client = &http.Client{Timeout: cfg.Timeout}
		parser.UserAgent = cfg.UserAgent
		sources = append(sources, &JournalSource{src: src, cfg: cfg, parser: parser})
	}
	return sources
}

// Name returns the journal slug.
func (s *JournalSource) Name() string { return s.src.Key }

// Fetch parses the journal feed. Entries without a resolvable identifier
// fall back to a key built from the journal slug and the entry link.
func (s *JournalSource) Fetch(ctx context.Context) ([]types.Paper, error) {
	feed, err := s.parser.ParseURLWithContext(s.src.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing %s feed: %w", s.src.Key, err)
	}

	sourceType := s.src.Source
	if sourceType == "" {
		sourceType = types.SourceJournal
	}

	var papers []types.Paper
	for _, item := range feed.Items {
		doi := extractDOI(item)

		feedID := s.src.Key + ":" + doi
		if doi == "" {
			feedID = s.src.Key + ":" + strings.TrimPrefix(item.Link, "https://")
		}

		p := types.Paper{
			FeedID:          feedID,
			DOI:             doi,
			Title:           strings.TrimSpace(item.Title),
			Abstract:        strings.TrimSpace(item.Description),
			PDFURL:          item.Link,
			Categories:      []string{s.src.Name},
			PrimaryCategory: s.src.Name,
			Source:          sourceType,
		}
		for _, a := range item.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		if item.DublinCoreExt != nil && len(p.Authors) == 0 {
			p.Authors = append(p.Authors, item.DublinCoreExt.Creator...)
		}
		if item.PublishedParsed != nil {
			p.Published = *item.PublishedParsed
		}
		if item.UpdatedParsed != nil {
			p.Updated = *item.UpdatedParsed
		}

		papers = append(papers, p)
		if s.cfg.MaxPerJournal > 0 && len(papers) >= s.cfg.MaxPerJournal {
			break
		}
	}
	return papers, nil
}

// extractDOI resolves a DOI from the common feed encodings: a prism:doi
// extension, a dc:identifier, or a doi.org link.
func extractDOI(item *gofeed.Item) string {
	if ns, ok := item.Extensions["prism"]; ok {
		if exts, ok := ns["doi"]; ok && len(exts) > 0 {
			return normalizeDOI(exts[0].Value)
		}
	}
	if item.DublinCoreExt != nil {
		for _, id := range item.DublinCoreExt.Identifier {
			if d := normalizeDOI(id); d != "" {
				return d
			}
		}
	}
	if strings.Contains(item.Link, "doi.org/") {
		return normalizeDOI(item.Link)
	}
	if strings.Contains(item.GUID, "10.") {
		return normalizeDOI(item.GUID)
	}
	return ""
}

// normalizeDOI strips URL and "doi:" prefixes; anything that does not
// start with the "10." registrant prefix is not a DOI.
func normalizeDOI(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		s = strings.TrimPrefix(s, prefix)
	}
	if idx := strings.Index(s, "10."); idx >= 0 {
		s = s[idx:]
	}
	if !strings.HasPrefix(s, "10.") {
		return ""
	}
	return s
}
