// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed fetches candidate papers from preprint and journal feeds.
// Sources are fetched concurrently; a failing source logs a warning and
// is isolated from the others.
package feed

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// Source produces candidate papers from one feed. Order is irrelevant;
// deduplication happens downstream against identity keys.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]types.Paper, error)
}

// FetchAll fans out to all sources concurrently and returns the combined
// candidate set plus the names of sources that failed.
func FetchAll(ctx context.Context, sources []Source, w io.Writer) ([]types.Paper, []string) {
	type sourceResult struct {
		papers []types.Paper
		err    error
		name   string
	}

	ch := make(chan sourceResult, len(sources))
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			papers, err := src.Fetch(ctx)
			ch <- sourceResult{papers: papers, err: err, name: src.Name()}
		}(src)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.Paper
	var failed []string
	for sr := range ch {
		if sr.err != nil {
			failed = append(failed, sr.name)
			fmt.Fprintf(w, "warning: feed %s failed: %v\n", sr.name, sr.err)
			continue
		}
		fmt.Fprintf(w, "  %s: %d papers\n", sr.name, len(sr.papers))
		all = append(all, sr.papers...)
	}
	return all, failed
}
