package idempotency

import (
	"context"
	"sync"
)

// Store is the processed-reference ledger. References are only added, never
// removed.
type Store interface {
	Contains(ctx context.Context, reference string) (bool, error)
	Add(ctx context.Context, reference string) error
}

// MemoryStore keeps processed references for the lifetime of the process.
// A restart forgets history; deployments that need durability configure the
// Redis store instead.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) Contains(ctx context.Context, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[reference]
	return ok, nil
}

func (s *MemoryStore) Add(ctx context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[reference] = struct{}{}
	return nil
}
