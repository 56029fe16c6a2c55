package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
)

// cancelCheckInterval is how many applied transitions Run performs between
// context checks.
const cancelCheckInterval = 256

// Engine applies the transition function of a definition to an instance.
// It holds no per-instance state; callers serialize access to each instance.
type Engine struct {
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	history      bool
	historyLimit int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHistory enables step recording. A positive limit bounds the records
// retained per instance; zero keeps everything.
func WithHistory(enabled bool, limit int) EngineOption {
	return func(e *Engine) {
		e.history = enabled
		e.historyLimit = max(limit, 0)
	}
}

// NewEngine creates an engine. History recording is on and unbounded by default.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:  logging.NewNop(),
		history: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HistoryEnabled reports whether step records are kept.
func (e *Engine) HistoryEnabled() bool {
	return e.history
}

// HistoryLimit is the per-instance retention bound (0 = unbounded).
func (e *Engine) HistoryLimit() int {
	return e.historyLimit
}

// Step applies at most one transition. Stepping a halted instance is a no-op.
func (e *Engine) Step(ctx context.Context, inst *domain.Instance) domain.StepOutcome {
	rec, ok := e.advance(ctx, inst)
	out := domain.StepOutcome{Applied: ok, Snapshot: inst.Snapshot()}
	if ok && e.history {
		out.Record = &rec
	}
	return out
}

// Run steps until the instance halts or maxSteps transitions were applied by this
// call. The context is checked between steps; on cancellation the partial outcome
// is returned with the context error.
func (e *Engine) Run(ctx context.Context, inst *domain.Instance, maxSteps int) (domain.RunOutcome, error) {
	if maxSteps <= 0 {
		return domain.RunOutcome{Snapshot: inst.Snapshot()}, domain.InvalidInputf("max_steps must be positive, got %d", maxSteps)
	}

	var out domain.RunOutcome
	var runErr error
	for out.Applied < maxSteps && !inst.Halted {
		if out.Applied%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				runErr = err
				break
			}
		}
		rec, ok := e.advance(ctx, inst)
		if !ok {
			continue
		}
		out.Applied++
		if e.history {
			out.Records = append(out.Records, rec)
		}
	}
	out.Snapshot = inst.Snapshot()

	e.logger.DebugContext(ctx, "run finished",
		"instance_id", inst.ID,
		"applied", out.Applied,
		"max_steps", maxSteps,
		"halted", inst.Halted,
	)
	if e.hooks.OnRun != nil {
		e.hooks.OnRun(ctx, &domain.RunEvent{
			EventBase: domain.NewEventBase(domain.EventRun, inst),
			Applied:   out.Applied,
			Halted:    inst.Halted,
		})
	}
	return out, runErr
}

// Reset reinitializes the instance from the given tape at origin 0.
func (e *Engine) Reset(ctx context.Context, inst *domain.Instance, symbols []string) error {
	if err := inst.Definition.CheckTape(symbols); err != nil {
		return err
	}
	inst.Rewind(symbols)
	if e.hooks.OnReset != nil {
		e.hooks.OnReset(ctx, &domain.SessionEvent{
			EventBase: domain.NewEventBase(domain.EventReset, inst),
			Snapshot:  inst.Snapshot(),
		})
	}
	return nil
}

// advance applies one transition and reports whether it did.
func (e *Engine) advance(ctx context.Context, inst *domain.Instance) (domain.StepRecord, bool) {
	if inst.Halted {
		return domain.StepRecord{}, false
	}
	def := inst.Definition
	if !def.HasState(inst.State) {
		panic(fmt.Sprintf("runtime: instance %s is in undeclared state %q", inst.ID, inst.State))
	}

	symbol := inst.Tape.Read(inst.Head)
	t, ok := def.Lookup(inst.State, symbol)
	final := def.IsFinal(inst.State)
	if !ok || final {
		e.halt(ctx, inst, final)
		return domain.StepRecord{}, false
	}
	if !def.HasState(t.Next) || !def.HasSymbol(t.Write) || !t.Move.Valid() {
		panic(fmt.Sprintf("runtime: transition %q of definition %s escaped validation", t.String(), def.ID()))
	}

	rec := domain.StepRecord{
		Index:       inst.Steps,
		StateBefore: inst.State,
		Read:        symbol,
	}

	inst.Tape.Write(inst.Head, t.Write)
	inst.State = t.Next
	inst.Head += t.Move.Delta()
	inst.Steps++

	rec.StateAfter = inst.State
	rec.Written = t.Write
	rec.Move = t.Move
	rec.Head = inst.Head

	if e.history {
		inst.History = appendHistory(inst.History, rec, e.historyLimit)
	}
	if e.hooks.OnStep != nil {
		e.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase: domain.NewEventBase(domain.EventStep, inst),
			Record:    rec,
		})
	}
	return rec, true
}

func (e *Engine) halt(ctx context.Context, inst *domain.Instance, final bool) {
	inst.Halted = true
	e.logger.DebugContext(ctx, "instance halted",
		"instance_id", inst.ID,
		"state", inst.State,
		"steps", inst.Steps,
		"final", final,
	)
	if e.hooks.OnHalt != nil {
		e.hooks.OnHalt(ctx, &domain.HaltEvent{
			EventBase: domain.NewEventBase(domain.EventHalt, inst),
			State:     inst.State,
			Steps:     inst.Steps,
			Final:     final,
		})
	}
}
