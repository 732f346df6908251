package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at   TEXT NOT NULL,
	finished_at  TEXT NOT NULL,
	corpus_root  TEXT NOT NULL,
	files_parsed INTEGER NOT NULL DEFAULT 0,
	files_failed INTEGER NOT NULL DEFAULT 0,
	definitions  INTEGER NOT NULL DEFAULT 0,
	base_entries INTEGER NOT NULL DEFAULT 0,
	non_base     INTEGER NOT NULL DEFAULT 0,
	patterns     INTEGER NOT NULL DEFAULT 0,
	resolved     INTEGER NOT NULL DEFAULT 0,
	unresolved   INTEGER NOT NULL DEFAULT 0,
	ambiguous    INTEGER NOT NULL DEFAULT 0,
	artifact_dir TEXT NOT NULL DEFAULT ''
);
`

// SqlStore implements Store with SQLite via database/sql.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates the SQLite DB at path, creating parent
// directories and applying the schema.
func Open(path string) (*SqlStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SqlStore{db: db}, nil
}

// SaveRun implements Store.
func (s *SqlStore) SaveRun(r *Run) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO runs
		(started_at, finished_at, corpus_root, files_parsed, files_failed,
		 definitions, base_entries, non_base, patterns, resolved, unresolved,
		 ambiguous, artifact_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
		r.CorpusRoot, r.FilesParsed, r.FilesFailed, r.Definitions, r.BaseEntries,
		r.NonBase, r.Patterns, r.Resolved, r.Unresolved, r.Ambiguous, r.ArtifactDir)
	if err != nil {
		return 0, fmt.Errorf("store: save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: save run id: %w", err)
	}
	return id, nil
}

const runColumns = `id, started_at, finished_at, corpus_root, files_parsed,
	files_failed, definitions, base_entries, non_base, patterns, resolved,
	unresolved, ambiguous, artifact_dir`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	var started, finished string
	err := row.Scan(&r.ID, &started, &finished, &r.CorpusRoot, &r.FilesParsed,
		&r.FilesFailed, &r.Definitions, &r.BaseEntries, &r.NonBase, &r.Patterns,
		&r.Resolved, &r.Unresolved, &r.Ambiguous, &r.ArtifactDir)
	if err != nil {
		return nil, err
	}
	if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return nil, fmt.Errorf("store: bad started_at %q: %w", started, err)
	}
	if r.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
		return nil, fmt.Errorf("store: bad finished_at %q: %w", finished, err)
	}
	return &r, nil
}

// GetRun implements Store. A missing id returns nil, nil.
func (s *SqlStore) GetRun(id int64) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run %d: %w", id, err)
	}
	return r, nil
}

// ListRuns implements Store.
func (s *SqlStore) ListRuns(limit int) ([]*Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(q+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(q)
	}
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list runs: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return out, nil
}

// LastRun implements Store.
func (s *SqlStore) LastRun() (*Run, error) {
	runs, err := s.ListRuns(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

// Close implements Store.
func (s *SqlStore) Close() error { return s.db.Close() }
