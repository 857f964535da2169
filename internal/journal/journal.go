// Package journal keeps a local history of phase inspections in SQLite.
//
// The phase engine itself never persists anything. The journal is an
// optional observer: the dispatcher hands it every successful inspection
// so a later inspection can report the phase the feature moved from, and
// so the history action can show how a feature progressed over time.
package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/HendryAvila/speckit-mcp/internal/phase"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// DBFile is the database file name inside the journal directory.
const DBFile = "journal.db"

// DefaultRecentLimit caps Recent when the caller passes no limit.
const DefaultRecentLimit = 20

// Entry is one recorded inspection.
type Entry struct {
	ID         string           `json:"id"`
	Worktree   string           `json:"worktree"`
	Branch     string           `json:"branch"`
	FeatureDir string           `json:"featureDir,omitempty"`
	Phase      phase.Phase      `json:"phase"`
	ReadyFor   []phase.Phase    `json:"readyFor"`
	Docs       []phase.Document `json:"docs"`
	CreatedAt  string           `json:"createdAt"`
}

// Store is the SQLite-backed inspection journal.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the journal database under dir and runs
// migrations.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("journal: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS inspections (
			id          TEXT PRIMARY KEY,
			worktree    TEXT NOT NULL,
			branch      TEXT NOT NULL,
			feature_dir TEXT NOT NULL DEFAULT '',
			phase       TEXT NOT NULL,
			ready_for   TEXT NOT NULL,
			docs        TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			seq         INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_inspections_worktree
			ON inspections(worktree, seq DESC);
		CREATE INDEX IF NOT EXISTS idx_inspections_branch
			ON inspections(worktree, branch, seq DESC);
	`)
	return err
}

// Record stores an inspection and returns the persisted entry with its
// ID and timestamp filled in.
func (s *Store) Record(worktree string, in *phase.Inspection) (*Entry, error) {
	if in == nil {
		return nil, errors.New("journal: nil inspection")
	}

	readyFor, err := json.Marshal(nonNilPhases(in.ReadyFor))
	if err != nil {
		return nil, fmt.Errorf("journal: encode ready_for: %w", err)
	}
	docs, err := json.Marshal(nonNilDocs(in.Docs))
	if err != nil {
		return nil, fmt.Errorf("journal: encode docs: %w", err)
	}

	now := timeNow().UTC()
	e := &Entry{
		ID:         uuid.NewString(),
		Worktree:   worktree,
		Branch:     in.Branch,
		FeatureDir: in.FeatureDir,
		Phase:      in.Phase,
		ReadyFor:   nonNilPhases(in.ReadyFor),
		Docs:       nonNilDocs(in.Docs),
		CreatedAt:  now.Format(time.RFC3339),
	}

	_, err = s.db.Exec(
		`INSERT INTO inspections (id, worktree, branch, feature_dir, phase, ready_for, docs, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?,
		         (SELECT COALESCE(MAX(seq), 0) + 1 FROM inspections))`,
		e.ID, e.Worktree, e.Branch, e.FeatureDir, string(e.Phase), string(readyFor), string(docs), e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: insert: %w", err)
	}
	return e, nil
}

// Latest returns the most recent entry for a worktree and branch, or nil
// (not an error) when there is none.
func (s *Store) Latest(worktree, branch string) (*Entry, error) {
	entries, err := s.query(
		`SELECT id, worktree, branch, feature_dir, phase, ready_for, docs, created_at
		 FROM inspections WHERE worktree = ? AND branch = ?
		 ORDER BY seq DESC LIMIT 1`,
		worktree, branch,
	)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Recent returns up to limit entries for a worktree, newest first.
func (s *Store) Recent(worktree string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.query(
		`SELECT id, worktree, branch, feature_dir, phase, ready_for, docs, created_at
		 FROM inspections WHERE worktree = ?
		 ORDER BY seq DESC LIMIT ?`,
		worktree, limit,
	)
}

func (s *Store) query(query string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []Entry{}
	for rows.Next() {
		var (
			e                     Entry
			ph, readyFor, docsRaw string
		)
		if err := rows.Scan(&e.ID, &e.Worktree, &e.Branch, &e.FeatureDir, &ph, &readyFor, &docsRaw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Phase = phase.Phase(ph)
		if err := json.Unmarshal([]byte(readyFor), &e.ReadyFor); err != nil {
			return nil, fmt.Errorf("journal: decode ready_for of %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(docsRaw), &e.Docs); err != nil {
			return nil, fmt.Errorf("journal: decode docs of %s: %w", e.ID, err)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func nonNilPhases(p []phase.Phase) []phase.Phase {
	if p == nil {
		return []phase.Phase{}
	}
	return p
}

func nonNilDocs(d []phase.Document) []phase.Document {
	if d == nil {
		return []phase.Document{}
	}
	return d
}
