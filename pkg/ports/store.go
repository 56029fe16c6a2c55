package ports

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
)

// DefinitionStore persists validated definitions. Definitions are immutable
// once stored, so there is no update or delete.
type DefinitionStore interface {
	// Create stores the definition under summary.ID.
	// Returns domain.ErrDefinitionExists if the ID is taken.
	Create(ctx context.Context, summary domain.DefinitionSummary) error

	// Get returns the definition with the given ID.
	// Returns domain.ErrDefinitionNotFound if it does not exist.
	Get(ctx context.Context, id string) (domain.DefinitionSummary, error)

	// List returns every stored definition in creation order.
	List(ctx context.Context) ([]domain.DefinitionSummary, error)
}

// InstanceStore persists instance configurations.
// Loaded instances carry DefinitionID only; the caller attaches the Definition.
type InstanceStore interface {
	// Save persists the instance under inst.ID, replacing any previous value.
	Save(ctx context.Context, inst *domain.Instance) error

	// Load retrieves the instance with the given ID.
	// Returns domain.ErrInstanceNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Instance, error)

	// Delete removes the instance. Deleting a missing instance is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored instances.
	List(ctx context.Context) ([]string, error)
}
