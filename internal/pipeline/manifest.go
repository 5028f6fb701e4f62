// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Manifest is the per-run record of every unit's outcome, persisted next
// to the reports for debugging and audit. The report carries only the
// successful analyses; the manifest also names what was rejected, what
// failed and why.
type Manifest struct {
	RunID    string `yaml:"run_id"`
	Date     string `yaml:"date"`
	Total    int    `yaml:"total_papers"`
	Matched  int    `yaml:"matched_papers"`
	Analyzed int    `yaml:"analyzed_papers"`

	Units []ManifestUnit `yaml:"units"`
}

// ManifestUnit is one deduplicated record's outcome.
type ManifestUnit struct {
	Key      string   `yaml:"key"`
	Title    string   `yaml:"title"`
	State    string   `yaml:"state"`
	Keywords []string `yaml:"matched_keywords,omitempty"`
	Error    string   `yaml:"error,omitempty"`
}

// Manifest summarizes the run's per-unit outcomes.
func (r *Result) Manifest() Manifest {
	m := Manifest{
		RunID:    r.RunID,
		Date:     r.Date,
		Total:    r.Total,
		Matched:  r.Matched,
		Analyzed: r.Analyzed,
	}
	for _, u := range r.Units {
		mu := ManifestUnit{
			Key:   u.Key,
			Title: u.Paper.Title,
			State: string(u.State),
		}
		if u.Verdict != nil {
			mu.Keywords = u.Verdict.Keywords
		}
		if u.Err != nil {
			mu.Error = u.Err.Error()
		}
		m.Units = append(m.Units, mu)
	}
	return m
}

// SaveManifest writes the manifest to dir/runs/paper-radar-<date>-<runid>.yaml
// and returns the path.
func SaveManifest(m Manifest, dir string) (string, error) {
	outDir := filepath.Join(dir, "runs")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating runs directory: %w", err)
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return "", fmt.Errorf("encoding run manifest: %w", err)
	}
	path := filepath.Join(outDir, fmt.Sprintf("paper-radar-%s-%s.yaml", m.Date, m.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run manifest: %w", err)
	}
	return path, nil
}
