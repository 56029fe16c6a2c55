package memory

import (
	"context"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
)

// Store implements ports.InstanceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Instance
	mu   sync.RWMutex
}

// NewStore creates a new in-memory instance store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Instance),
	}
}

// Save persists a deep copy of the instance, similar to serialization.
func (s *Store) Save(ctx context.Context, inst *domain.Instance) error {
	c := inst.Clone()
	c.Definition = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[inst.ID] = c
	return nil
}

// Load retrieves a copy of the instance so callers can't mutate the store directly.
func (s *Store) Load(ctx context.Context, id string) (*domain.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.data[id]
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	return inst.Clone(), nil
}

// Delete removes the instance.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored instance IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
