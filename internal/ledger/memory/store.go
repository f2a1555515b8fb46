package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/wspay/internal/payments/ports"
)

// Store remembers processed notifications for the lifetime of the process.
type Store struct {
	mu    sync.Mutex
	items map[string]ports.ProcessedNotification
}

// NewStore creates a new in-memory notification ledger.
func NewStore() *Store {
	return &Store{items: make(map[string]ports.ProcessedNotification)}
}

// Claim records the key unless it is already present. The first claim wins.
func (s *Store) Claim(_ context.Context, key string, record ports.ProcessedNotification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false, nil
	}
	s.items[key] = record
	return true, nil
}

// Release forgets a key. Unknown keys are ignored.
func (s *Store) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Lookup returns the record held for a key.
func (s *Store) Lookup(key string) (ports.ProcessedNotification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.items[key]
	return record, ok
}
