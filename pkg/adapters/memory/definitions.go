package memory

import (
	"context"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
)

// DefinitionStore implements ports.DefinitionStore in memory.
// Safe for concurrent use.
type DefinitionStore struct {
	mu    sync.RWMutex
	data  map[string]domain.DefinitionSummary
	order []string
}

// NewDefinitionStore creates an empty definition store.
func NewDefinitionStore() *DefinitionStore {
	return &DefinitionStore{
		data: make(map[string]domain.DefinitionSummary),
	}
}

// Create stores a copy of the definition.
func (s *DefinitionStore) Create(ctx context.Context, summary domain.DefinitionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[summary.ID]; ok {
		return domain.ErrDefinitionExists
	}
	s.data[summary.ID] = summary.Clone()
	s.order = append(s.order, summary.ID)
	return nil
}

// Get returns a copy of the stored definition.
func (s *DefinitionStore) Get(ctx context.Context, id string) (domain.DefinitionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.data[id]
	if !ok {
		return domain.DefinitionSummary{}, domain.ErrDefinitionNotFound
	}
	return summary.Clone(), nil
}

// List returns every definition in creation order.
func (s *DefinitionStore) List(ctx context.Context) ([]domain.DefinitionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DefinitionSummary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.data[id].Clone())
	}
	return out, nil
}
