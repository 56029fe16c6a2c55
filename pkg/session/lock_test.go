package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
)

type noDefinitions struct{}

func (noDefinitions) Get(context.Context, string) (*domain.Definition, error) {
	return nil, domain.ErrDefinitionNotFound
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore(), noDefinitions{}, runtime.NewEngine())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("instance-%d", i)
		_ = mgr.WithLock(ctx, id, func(context.Context) error { return nil })
		_, _ = mgr.Step(ctx, id)
		_ = mgr.Close(ctx, id)
	}

	lockCount := len(mgr.locks)
	t.Logf("Operations: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory", lockCount)
	}
}
