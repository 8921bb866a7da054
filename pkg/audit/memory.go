package audit

import (
	"context"
	"sync"
)

// MemorySink implements Sink with an in-memory slice. It is intended for
// testing only and should not be used in production.
type MemorySink struct {
	entries []*Entry
	mu      sync.RWMutex
}

// NewMemorySink creates a new in-memory audit sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append stores a copy of the entry in append order.
func (s *MemorySink) Append(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *entry
	s.entries = append(s.entries, &entryCopy)
	return nil
}

// Query retrieves entries matching the filters, in append order.
func (s *MemorySink) Query(ctx context.Context, query *Query) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Entry
	matched := 0
	for _, entry := range s.entries {
		if !query.Matches(entry) {
			continue
		}
		matched++
		if matched <= query.Offset {
			continue
		}
		entryCopy := *entry
		results = append(results, &entryCopy)
		if query.Limit > 0 && len(results) >= query.Limit {
			break
		}
	}
	return results, nil
}

// Count returns the number of entries matching the filters.
func (s *MemorySink) Count(ctx context.Context, query *Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, entry := range s.entries {
		if query.Matches(entry) {
			count++
		}
	}
	return count, nil
}

// Tail returns the last n entries in append order.
func (s *MemorySink) Tail(ctx context.Context, n int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil, nil
	}
	start := len(s.entries) - n
	if start < 0 {
		start = 0
	}
	results := make([]*Entry, 0, len(s.entries)-start)
	for _, entry := range s.entries[start:] {
		entryCopy := *entry
		results = append(results, &entryCopy)
	}
	return results, nil
}

// Close clears the stored entries.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}

// Size returns the number of stored entries (for testing).
func (s *MemorySink) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// All returns a copy of every stored entry in append order (for testing).
func (s *MemorySink) All() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entryCopy := *entry
		results = append(results, &entryCopy)
	}
	return results
}
