package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/google/uuid"
)

// Registry stores validated definitions and hands out their compiled form.
// Compiled definitions are immutable and cached, so Get is cheap after the first call.
type Registry struct {
	store  ports.DefinitionStore
	newID  func() string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*domain.Definition
}

// Option configures the Registry.
type Option func(*Registry)

// WithIDGenerator overrides the UUIDv7 identifier source.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a registry backed by store.
func New(store ports.DefinitionStore, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		newID:  NewID,
		logger: logging.NewNop(),
		cache:  make(map[string]*domain.Definition),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewID returns a time-ordered UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Create validates spec and stores it under a fresh identifier.
func (r *Registry) Create(ctx context.Context, spec schema.DefinitionSpec) (*domain.Definition, error) {
	return r.Put(ctx, r.newID(), spec)
}

// Put validates spec and stores it under id.
// Returns domain.ErrDefinitionExists if id is taken.
func (r *Registry) Put(ctx context.Context, id string, spec schema.DefinitionSpec) (*domain.Definition, error) {
	if id == "" {
		return nil, domain.InvalidInputf("definition id must not be empty")
	}
	def, err := schema.Compile(id, spec)
	if err != nil {
		return nil, err
	}
	if err := r.store.Create(ctx, def.Summary()); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[id] = def
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "definition registered",
		"definition_id", id,
		"name", def.Name(),
		"transitions", len(spec.Transitions),
	)
	return def, nil
}

// Get returns the compiled definition with the given ID.
// Returns domain.ErrDefinitionNotFound if it does not exist.
func (r *Registry) Get(ctx context.Context, id string) (*domain.Definition, error) {
	r.mu.RLock()
	def, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return def, nil
	}

	summary, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Stored by another replica: recompile and cache.
	def, err = schema.Compile(id, schema.FromSummary(summary))
	if err != nil {
		return nil, fmt.Errorf("stored definition %s is invalid: %w", id, err)
	}

	r.mu.Lock()
	r.cache[id] = def
	r.mu.Unlock()
	return def, nil
}

// List returns the (id, name) pairs of all definitions in creation order.
func (r *Registry) List(ctx context.Context) ([]domain.DefinitionRef, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.DefinitionRef, len(all))
	for i, s := range all {
		refs[i] = domain.DefinitionRef{ID: s.ID, Name: s.Name}
	}
	return refs, nil
}
