// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content retrieves paper PDFs for content-capable analysis
// backends, with an on-disk cache. Retrieval failures surface as
// transient analysis failures unless the content is permanently
// unreachable.
package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-radar/internal/gateway"
	"github.com/pdiddy/paper-radar/internal/httputil"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// Fetcher retrieves the byte content behind a paper's content reference.
type Fetcher interface {
	Fetch(ctx context.Context, paper *types.Paper, date string) ([]byte, error)
}

// HTTPFetcher downloads PDFs over HTTP and caches them under
// cacheDir/<date>/<slug>.pdf so retries and reruns skip the download.
type HTTPFetcher struct {
	client    *http.Client
	cacheDir  string
	maxBytes  int64
	userAgent string
}

// NewHTTPFetcher builds the adapter from configuration.
func NewHTTPFetcher(cfg types.ContentConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		cacheDir:  cfg.CacheDir,
		maxBytes:  int64(cfg.MaxSizeMB) << 20,
		userAgent: cfg.UserAgent,
	}
}

// Fetch returns the PDF bytes for a paper, from cache when available.
func (f *HTTPFetcher) Fetch(ctx context.Context, paper *types.Paper, date string) ([]byte, error) {
	if paper.PDFURL == "" {
		return nil, gateway.Permanentf("paper %s has no content location", paper.FeedID)
	}

	cachePath := filepath.Join(f.cacheDir, date, slug(paper.FeedID)+".pdf")
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, paper.PDFURL, nil)
	if err != nil {
		return nil, gateway.Permanent(fmt.Errorf("creating download request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, f.client, req, 0)
	if err != nil {
		return nil, gateway.Transient(fmt.Errorf("downloading %s: %w", paper.FeedID, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, gateway.Permanentf("content for %s requires credentials (HTTP %d)", paper.FeedID, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, gateway.Permanentf("content for %s not found (HTTP %d)", paper.FeedID, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, gateway.Transientf("content download for %s returned HTTP %d", paper.FeedID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, gateway.Transient(fmt.Errorf("reading content for %s: %w", paper.FeedID, err))
	}
	if int64(len(data)) > f.maxBytes {
		return nil, gateway.Permanentf("content for %s exceeds %d MB limit", paper.FeedID, f.maxBytes>>20)
	}

	// Cache best-effort; a failed write never fails the fetch.
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
		tmp := cachePath + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err == nil {
			os.Rename(tmp, cachePath)
		}
	}

	return data, nil
}

// slug converts a feed identifier into a safe filename.
func slug(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, id)
}
