package domain

import (
	"context"
	"time"
)

// LockManager provides distributed locks so only one pipeline run writes to
// the ledger and stores at a time. Acquire returns an unlock function on
// success and ErrLockHeld when another run holds the lock.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}
