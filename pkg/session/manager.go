package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// DefinitionSource resolves definition IDs. *registry.Registry satisfies it.
type DefinitionSource interface {
	Get(ctx context.Context, id string) (*domain.Definition, error)
}

// Opened is the result of opening an instance.
type Opened struct {
	InstanceID string
	Snapshot   domain.Snapshot
	Definition domain.DefinitionSummary
}

// View is a read-only look at a live instance.
type View struct {
	InstanceID   string
	DefinitionID string
	Snapshot     domain.Snapshot
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates instance access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store  ports.InstanceStore
	defs   DefinitionSource
	engine *runtime.Engine

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	newID   func() string

	maxTapeLength int
	maxRunSteps   int
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHooks registers the OnOpen and OnClose callbacks. Step, halt, run and
// reset callbacks belong to the engine.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithIDGenerator overrides the UUIDv7 instance identifier source.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithLimits bounds the initial tape length and the steps of a single run.
// Zero disables a limit.
func WithLimits(maxTapeLength, maxRunSteps int) Option {
	return func(m *Manager) {
		m.maxTapeLength = max(maxTapeLength, 0)
		m.maxRunSteps = max(maxRunSteps, 0)
	}
}

// NewManager creates a new instance manager.
func NewManager(store ports.InstanceStore, defs DefinitionSource, engine *runtime.Engine, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		defs:    defs,
		engine:  engine,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Open creates a Ready instance of the definition over the given tape.
func (m *Manager) Open(ctx context.Context, definitionID string, symbols []string) (Opened, error) {
	def, err := m.defs.Get(ctx, definitionID)
	if err != nil {
		return Opened{}, err
	}
	if m.maxTapeLength > 0 && len(symbols) > m.maxTapeLength {
		return Opened{}, domain.InvalidInputf("tape has %d symbols, limit is %d", len(symbols), m.maxTapeLength)
	}
	if err := def.CheckTape(symbols); err != nil {
		return Opened{}, err
	}

	inst := domain.NewInstance(m.newID(), def, symbols)
	if err := m.store.Save(ctx, inst); err != nil {
		return Opened{}, fmt.Errorf("failed to save instance: %w", err)
	}

	snap := inst.Snapshot()
	m.logger.InfoContext(ctx, "session opened",
		"instance_id", inst.ID,
		"definition_id", definitionID,
		"tape_length", len(symbols),
	)
	if m.hooks.OnOpen != nil {
		m.hooks.OnOpen(ctx, &domain.SessionEvent{
			EventBase: domain.NewEventBase(domain.EventOpen, inst),
			Snapshot:  snap,
		})
	}
	return Opened{InstanceID: inst.ID, Snapshot: snap, Definition: def.Summary()}, nil
}

// Get returns the current snapshot of an instance.
func (m *Manager) Get(ctx context.Context, id string) (View, error) {
	inst, err := m.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return View{InstanceID: inst.ID, DefinitionID: inst.DefinitionID, Snapshot: inst.Snapshot()}, nil
}

// Step applies at most one transition.
func (m *Manager) Step(ctx context.Context, id string) (domain.StepOutcome, error) {
	var out domain.StepOutcome
	err := m.mutate(ctx, id, func(inst *domain.Instance) error {
		out = m.engine.Step(ctx, inst)
		return nil
	})
	return out, err
}

// Run steps the instance until it halts or maxSteps transitions were applied.
// maxSteps above the configured limit is clamped. If ctx is cancelled mid-run the
// progress made so far is saved and returned together with the context error.
func (m *Manager) Run(ctx context.Context, id string, maxSteps int) (domain.RunOutcome, error) {
	if maxSteps <= 0 {
		return domain.RunOutcome{}, domain.InvalidInputf("max_steps must be positive, got %d", maxSteps)
	}
	if m.maxRunSteps > 0 && maxSteps > m.maxRunSteps {
		m.logger.WarnContext(ctx, "max_steps clamped",
			"instance_id", id,
			"requested", maxSteps,
			"limit", m.maxRunSteps,
		)
		maxSteps = m.maxRunSteps
	}

	var out domain.RunOutcome
	var runErr error
	err := m.mutate(ctx, id, func(inst *domain.Instance) error {
		out, runErr = m.engine.Run(ctx, inst, maxSteps)
		return nil
	})
	if err != nil {
		return out, err
	}
	return out, runErr
}

// Reset reinitializes the instance from a new tape.
func (m *Manager) Reset(ctx context.Context, id string, symbols []string) (domain.Snapshot, error) {
	if m.maxTapeLength > 0 && len(symbols) > m.maxTapeLength {
		return domain.Snapshot{}, domain.InvalidInputf("tape has %d symbols, limit is %d", len(symbols), m.maxTapeLength)
	}
	var snap domain.Snapshot
	err := m.mutate(ctx, id, func(inst *domain.Instance) error {
		if err := m.engine.Reset(ctx, inst, symbols); err != nil {
			return err
		}
		snap = inst.Snapshot()
		return nil
	})
	return snap, err
}

// Close retires the instance.
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		inst, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		if err := m.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete instance: %w", err)
		}

		m.logger.InfoContext(ctx, "session closed", "instance_id", id, "steps", inst.Steps)
		if m.hooks.OnClose != nil {
			m.hooks.OnClose(ctx, &domain.SessionEvent{
				EventBase: domain.NewEventBase(domain.EventClose, inst),
			})
		}
		return nil
	})
}

// History returns the retained step records of an instance, oldest first.
func (m *Manager) History(ctx context.Context, id string) ([]domain.StepRecord, error) {
	inst, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return runtime.RetainedHistory(inst.History, m.engine.HistoryLimit()), nil
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying instance store.
func (m *Manager) Store() ports.InstanceStore {
	return m.store
}

// mutate loads the instance under its lock, applies fn and saves the result.
// Nothing is saved when fn fails.
func (m *Manager) mutate(ctx context.Context, id string, fn func(*domain.Instance) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		inst, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(inst); err != nil {
			return err
		}
		// Saving must survive a cancelled run so partial progress is kept.
		if err := m.store.Save(context.WithoutCancel(ctx), inst); err != nil {
			return fmt.Errorf("failed to save instance: %w", err)
		}
		return nil
	})
}

// load fetches an instance and attaches its definition.
func (m *Manager) load(ctx context.Context, id string) (*domain.Instance, error) {
	inst, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	def, err := m.defs.Get(ctx, inst.DefinitionID)
	if err != nil {
		// The instance exists, so a missing definition is a broken store, not a lookup miss.
		if errors.Is(err, domain.ErrDefinitionNotFound) {
			return nil, fmt.Errorf("instance %s references unknown definition %s", id, inst.DefinitionID)
		}
		return nil, err
	}
	if !def.HasState(inst.State) || inst.Tape == nil {
		return nil, fmt.Errorf("stored instance %s is inconsistent with definition %s", id, def.ID())
	}
	inst.Definition = def
	return inst, nil
}

// WithLock executes a function while holding the lock for the instance.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"instance_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
