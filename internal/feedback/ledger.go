package feedback

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Ledger is the newline-delimited JSON event log on disk. Appends are
// independently atomic (single O_APPEND write per event); reads always
// fold the full file. Concurrent writers from separate processes risk
// interleaving only at event granularity, an accepted limitation for
// low-concurrency single-user operation.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// OpenLedger prepares a ledger at path, creating parent directories. The
// file itself is created lazily on first append.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("feedback: create ledger dir: %w", err)
	}
	return &Ledger{path: path}, nil
}

// Path returns the ledger file location.
func (l *Ledger) Path() string { return l.path }

// Append validates and writes one event as a single NDJSON line. The
// event's timestamp defaults to now (UTC) when unset.
func (l *Ledger) Append(e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := e.Validate(); err != nil {
		return err
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("feedback: marshal event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("feedback: open ledger: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("feedback: append event: %w", err)
	}
	return nil
}

// Events reads the full history in append order. A missing ledger file
// is an empty history, not an error. Unparseable lines are skipped so a
// single corrupt line cannot take the whole loop down.
func (l *Ledger) Events() ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("feedback: open ledger: %w", err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("feedback: read ledger: %w", err)
	}
	return events, nil
}

// SummarizeAll reads the full history and folds it as of now.
func (l *Ledger) SummarizeAll(now time.Time) (map[string]Stats, error) {
	events, err := l.Events()
	if err != nil {
		return nil, err
	}
	return Summarize(events, now), nil
}
