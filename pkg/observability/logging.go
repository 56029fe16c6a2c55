package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/turing/pkg/domain"
)

// LogHooks logs session level events at info and halts at debug.
// Individual steps are not logged.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReset: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session reset",
				"instance_id", e.InstanceID,
				"definition_id", e.DefinitionID,
			)
		},
		OnRun: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "session run",
				"instance_id", e.InstanceID,
				"applied", e.Applied,
				"halted", e.Halted,
			)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			logger.DebugContext(ctx, "session halted",
				"instance_id", e.InstanceID,
				"state", e.State,
				"steps", e.Steps,
			)
		},
	}
}
