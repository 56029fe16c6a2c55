package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes mutations of one instance across replicas
// that share an InstanceStore. The in-process per-instance mutex of the
// session manager is always taken first.
type DistributedLocker interface {
	// Lock blocks until the lock for key (an instance ID) is held or ctx is done.
	// The lock expires after ttl if the holder never calls the returned UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
