// Package store persists the mining run history. Domain and CLI code use
// only the Store interface; the implementation is SQLite or in-memory.
package store

import "time"

// DefaultDBPath is the default relative path for the SQLite DB
// (per-workspace). Open() creates the parent dir (e.g. .waypoint).
const DefaultDBPath = ".waypoint/waypoint.db"

// Run is one completed mining run: when it ran, what it scanned, and the
// headline counts the status command reports.
type Run struct {
	ID          int64     `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	CorpusRoot  string    `json:"corpus_root"`
	FilesParsed int       `json:"files_parsed"`
	FilesFailed int       `json:"files_failed"`
	Definitions int       `json:"definitions"`
	BaseEntries int       `json:"base_entries"`
	NonBase     int       `json:"non_base"`
	Patterns    int       `json:"patterns"`
	Resolved    int       `json:"resolved"`
	Unresolved  int       `json:"unresolved"`
	Ambiguous   int       `json:"ambiguous"`
	ArtifactDir string    `json:"artifact_dir"`
}

// Store is the run-history facade.
type Store interface {
	// SaveRun records a completed run and returns its id.
	SaveRun(r *Run) (int64, error)
	// GetRun returns the run by id.
	GetRun(id int64) (*Run, error)
	// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
	ListRuns(limit int) ([]*Run, error)
	// LastRun returns the newest run, or nil when none exist.
	LastRun() (*Run, error)
	// Close releases the backing resources.
	Close() error
}
