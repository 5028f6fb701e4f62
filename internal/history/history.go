// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history canonicalizes papers into identity keys and remembers
// which works were already processed, so a run never repeats expensive
// analysis for a work seen within the retention window.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// Store persists history entries in a SQLite database. It survives process
// restarts; a single Store handle is passed into the orchestrator rather
// than held as package state, so parallel test runs stay isolated.
type Store struct {
	db        *sql.DB
	retention time.Duration
}

// Open opens or creates the history database at path and creates the
// schema if it does not exist. retentionDays bounds how long a processed
// work suppresses reprocessing.
func Open(path string, retentionDays int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if retentionDays <= 0 {
		retentionDays = 30
	}

	s := &Store{
		db:        db,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable before a run begins.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Retention returns the configured retention window.
func (s *Store) Retention() time.Duration {
	return s.retention
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			key TEXT PRIMARY KEY,
			title TEXT,
			source TEXT,
			first_seen TEXT NOT NULL,
			last_seen TEXT NOT NULL,
			state TEXT NOT NULL,
			keywords TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_last_seen ON papers(last_seen)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Status is the store's answer for one identity key.
type Status struct {
	// Seen reports whether the key has ever been recorded.
	Seen bool

	// LastSeen is the date of the most recent sighting, zero when unseen.
	LastSeen time.Time

	// State is the terminal state recorded at the last sighting.
	State string
}

// SeenWithinRetention reports whether the sighting falls inside the
// retention window ending at now.
func (st Status) SeenWithinRetention(now time.Time, retention time.Duration) bool {
	return st.Seen && st.LastSeen.After(now.Add(-retention))
}

// Status looks up one identity key.
func (s *Store) Status(ctx context.Context, key string) (Status, error) {
	var lastSeen, state string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_seen, state FROM papers WHERE key = ?`, key,
	).Scan(&lastSeen, &state)
	if err == sql.ErrNoRows {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("querying history for %s: %w", key, err)
	}

	t, err := time.Parse(time.RFC3339, lastSeen)
	if err != nil {
		return Status{}, fmt.Errorf("parsing last_seen for %s: %w", key, err)
	}
	return Status{Seen: true, LastSeen: t, State: state}, nil
}

// Entry is one sighting to record.
type Entry struct {
	Key      string
	Title    string
	Source   types.SourceType
	Date     time.Time
	State    string
	Keywords []string
}

// Record upserts a sighting. A re-sighting updates last_seen, state and
// keywords; first_seen is preserved. A richer-metadata sighting (journal
// version of a work first seen as a preprint) supersedes title and source
// for display, but the key and the already-processed guarantee are shared.
func (s *Store) Record(ctx context.Context, e Entry) error {
	keywordsJSON, _ := json.Marshal(e.Keywords)
	date := e.Date.UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (key, title, source, first_seen, last_seen, state, keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			title=CASE WHEN excluded.title != '' THEN excluded.title ELSE papers.title END,
			source=CASE WHEN excluded.source != '' THEN excluded.source ELSE papers.source END,
			last_seen=excluded.last_seen,
			state=excluded.state,
			keywords=excluded.keywords`,
		e.Key, e.Title, string(e.Source), date, date, e.State, string(keywordsJSON),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", e.Key, err)
	}
	return nil
}

// Prune deletes entries last seen before cutoff and returns the number
// removed. Pruning bounds the database to roughly one retention window
// of sightings.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM papers WHERE last_seen < ?`, cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats summarizes the store contents for the history CLI command.
type Stats struct {
	Total    int
	ByState  map[string]int
	Earliest string
	Latest   string
}

// Stats reports entry counts grouped by terminal state.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByState: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT state, count(*) FROM papers GROUP BY state`)
	if err != nil {
		return st, fmt.Errorf("querying history stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return st, fmt.Errorf("scanning history stats: %w", err)
		}
		st.ByState[state] = n
		st.Total += n
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT coalesce(min(last_seen), ''), coalesce(max(last_seen), '') FROM papers`,
	).Scan(&st.Earliest, &st.Latest)
	if err != nil {
		return st, fmt.Errorf("querying history range: %w", err)
	}
	return st, nil
}
