package progress

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in a process-local map. Suitable for
// single-process deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	// Lazy expiry: a terminal record past its retention deadline is gone even
	// if the cleanup pass has not reached it yet.
	if r.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.records, id)
		s.mu.Unlock()
		return nil, nil
	}
	out := r
	return &out, nil
}

func (s *MemoryStore) Set(ctx context.Context, r *Record) error {
	s.mu.Lock()
	s.records[r.SessionID] = *r
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	now := time.Now()
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if r.Expired(now) {
			continue
		}
		out = append(out, r)
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *MemoryStore) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, r := range s.records {
		if r.Expired(now) || now.Sub(r.UpdatedAt) > olderThan {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}
