package turing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/registry"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/aretw0/turing/pkg/session"
)

// Service is the high-level entry point of the interpreter.
// It wires the definition registry, the engine and the session manager
// and is safe for concurrent use.
type Service struct {
	registry *registry.Registry
	sessions *session.Manager
	engine   *runtime.Engine
	logger   *slog.Logger
}

type options struct {
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	definitions   ports.DefinitionStore
	instances     ports.InstanceStore
	locker        ports.DistributedLocker
	lockTTL       time.Duration
	newID         func() string
	history       bool
	historyLimit  int
	maxTapeLength int
	maxRunSteps   int
}

// Option defines a functional option for configuring the Service.
type Option func(*options)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Multiple calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = domain.MergeHooks(o.hooks, hooks)
	}
}

// WithDefinitionStore replaces the in-memory definition store.
func WithDefinitionStore(store ports.DefinitionStore) Option {
	return func(o *options) {
		o.definitions = store
	}
}

// WithInstanceStore replaces the in-memory instance store.
func WithInstanceStore(store ports.InstanceStore) Option {
	return func(o *options) {
		o.instances = store
	}
}

// WithLocker serializes mutations across processes sharing an instance store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(o *options) {
		o.locker = locker
		o.lockTTL = ttl
	}
}

// WithIDGenerator overrides the UUIDv7 source for definition and instance IDs.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithHistory toggles step recording and bounds retention (0 = unbounded).
func WithHistory(enabled bool, limit int) Option {
	return func(o *options) {
		o.history = enabled
		o.historyLimit = limit
	}
}

// WithLimits bounds the tape length accepted by open and reset and the steps of
// a single run. Zero disables a limit.
func WithLimits(maxTapeLength, maxRunSteps int) Option {
	return func(o *options) {
		o.maxTapeLength = maxTapeLength
		o.maxRunSteps = maxRunSteps
	}
}

// New initializes a Service. Without store options everything lives in memory.
func New(opts ...Option) *Service {
	o := &options{history: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.definitions == nil {
		o.definitions = memory.NewDefinitionStore()
	}
	if o.instances == nil {
		o.instances = memory.NewStore()
	}

	regOpts := []registry.Option{registry.WithLogger(o.logger)}
	sessOpts := []session.Option{
		session.WithLogger(o.logger),
		session.WithHooks(o.hooks),
		session.WithLimits(o.maxTapeLength, o.maxRunSteps),
	}
	if o.newID != nil {
		regOpts = append(regOpts, registry.WithIDGenerator(o.newID))
		sessOpts = append(sessOpts, session.WithIDGenerator(o.newID))
	}
	if o.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(o.locker), session.WithLockTTL(o.lockTTL))
	}

	engine := runtime.NewEngine(
		runtime.WithHooks(o.hooks),
		runtime.WithLogger(o.logger),
		runtime.WithHistory(o.history, o.historyLimit),
	)
	reg := registry.New(o.definitions, regOpts...)

	return &Service{
		registry: reg,
		engine:   engine,
		sessions: session.NewManager(o.instances, reg, engine, sessOpts...),
		logger:   o.logger,
	}
}

// CreateDefinition validates and stores a definition under a fresh ID.
func (s *Service) CreateDefinition(ctx context.Context, spec schema.DefinitionSpec) (*domain.Definition, error) {
	return s.registry.Create(ctx, spec)
}

// PutDefinition validates and stores a definition under a caller-chosen ID.
// It fails with domain.ErrDefinitionExists if the ID is taken.
func (s *Service) PutDefinition(ctx context.Context, id string, spec schema.DefinitionSpec) (*domain.Definition, error) {
	return s.registry.Put(ctx, id, spec)
}

// Definition returns a stored definition.
func (s *Service) Definition(ctx context.Context, id string) (*domain.Definition, error) {
	return s.registry.Get(ctx, id)
}

// ListDefinitions returns {id, name} pairs in creation order.
func (s *Service) ListDefinitions(ctx context.Context) ([]domain.DefinitionRef, error) {
	return s.registry.List(ctx)
}

// Open starts an instance over tapeText, one symbol per code point.
func (s *Service) Open(ctx context.Context, definitionID, tapeText string) (session.Opened, error) {
	return s.sessions.Open(ctx, definitionID, domain.SplitTape(tapeText))
}

// OpenSymbols starts an instance over an explicit symbol sequence.
func (s *Service) OpenSymbols(ctx context.Context, definitionID string, symbols []string) (session.Opened, error) {
	return s.sessions.Open(ctx, definitionID, symbols)
}

// Get returns the current snapshot of an instance.
func (s *Service) Get(ctx context.Context, instanceID string) (session.View, error) {
	return s.sessions.Get(ctx, instanceID)
}

// Step applies at most one transition.
func (s *Service) Step(ctx context.Context, instanceID string) (domain.StepOutcome, error) {
	return s.sessions.Step(ctx, instanceID)
}

// Run steps until the instance halts or maxSteps transitions were applied.
func (s *Service) Run(ctx context.Context, instanceID string, maxSteps int) (domain.RunOutcome, error) {
	return s.sessions.Run(ctx, instanceID, maxSteps)
}

// Reset reinitializes an instance from tapeText.
func (s *Service) Reset(ctx context.Context, instanceID, tapeText string) (domain.Snapshot, error) {
	return s.sessions.Reset(ctx, instanceID, domain.SplitTape(tapeText))
}

// ResetSymbols reinitializes an instance from an explicit symbol sequence.
func (s *Service) ResetSymbols(ctx context.Context, instanceID string, symbols []string) (domain.Snapshot, error) {
	return s.sessions.Reset(ctx, instanceID, symbols)
}

// Close retires an instance.
func (s *Service) Close(ctx context.Context, instanceID string) error {
	return s.sessions.Close(ctx, instanceID)
}

// History returns the retained step records of an instance, oldest first.
func (s *Service) History(ctx context.Context, instanceID string) ([]domain.StepRecord, error) {
	return s.sessions.History(ctx, instanceID)
}

// Sessions lists live instance IDs.
func (s *Service) Sessions(ctx context.Context) ([]string, error) {
	return s.sessions.List(ctx)
}

// HistoryEnabled reports whether step records are kept.
func (s *Service) HistoryEnabled() bool {
	return s.engine.HistoryEnabled()
}

// IsNotFound reports whether err names an unknown definition or instance.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrDefinitionNotFound) || errors.Is(err, domain.ErrInstanceNotFound)
}

// IsInvalidInput reports whether err is a caller input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput)
}
