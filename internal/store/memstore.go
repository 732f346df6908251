package store

import (
	"sort"
	"sync"
)

// MemStore is an in-memory Store for tests. Implements Store.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	runs   map[int64]*Run
}

// NewMemStore returns a new in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, runs: make(map[int64]*Run)}
}

// SaveRun implements Store.
func (s *MemStore) SaveRun(r *Run) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	cp.ID = s.nextID
	s.nextID++
	s.runs[cp.ID] = &cp
	return cp.ID, nil
}

// GetRun implements Store.
func (s *MemStore) GetRun(id int64) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

// ListRuns implements Store.
func (s *MemStore) ListRuns(limit int) ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LastRun implements Store.
func (s *MemStore) LastRun() (*Run, error) {
	runs, err := s.ListRuns(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

// Close implements Store.
func (s *MemStore) Close() error { return nil }
