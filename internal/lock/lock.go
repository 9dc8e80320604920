package lock

import (
	"context"
	"time"
)

// Locker is a single-flight exclusive lock with a bounded time-to-live.
// Acquire returns ok=false when another holder has the key; the returned
// release func only removes the lock if the caller still owns it.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
