package pricing

import (
	"context"
	"sync"

	"github.com/davidbz/llmcost/internal/domain"
)

// MemoryStore keeps the pricing snapshot in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *domain.PricingSnapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored snapshot, or nil.
func (s *MemoryStore) Load(_ context.Context) (*domain.PricingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot, nil
}

// Save replaces the stored snapshot.
func (s *MemoryStore) Save(_ context.Context, snapshot *domain.PricingSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot
	return nil
}

// Clear removes the stored snapshot.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = nil
	return nil
}
