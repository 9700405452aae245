package evaluation

import "sync"

// ResultStore keeps the most recent cycle results in memory for the HTTP
// surface. Bounded ring; oldest results fall off.
type ResultStore struct {
	mu      sync.RWMutex
	results []CycleResult
	limit   int
}

// NewResultStore creates a result store retaining up to limit results
func NewResultStore(limit int) *ResultStore {
	if limit <= 0 {
		limit = 50
	}
	return &ResultStore{limit: limit}
}

// StoreResult appends a result, evicting the oldest beyond the limit
func (s *ResultStore) StoreResult(result CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	if len(s.results) > s.limit {
		s.results = s.results[len(s.results)-s.limit:]
	}
}

// Latest returns the most recent result, if any
func (s *ResultStore) Latest() (CycleResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.results) == 0 {
		return CycleResult{}, false
	}
	return s.results[len(s.results)-1], true
}

// All returns the retained results, oldest first
func (s *ResultStore) All() []CycleResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CycleResult, len(s.results))
	copy(out, s.results)
	return out
}
