package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalLock is an in-process Locker with the same TTL semantics as RedisLock.
// Used in tests and single-node setups.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]localEntry
}

type localEntry struct {
	token   string
	expires time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]localEntry)}
}

func (l *LocalLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, exists := l.held[key]; exists && time.Now().Before(entry.expires) {
		return nil, false, nil
	}

	token := uuid.NewString()
	l.held[key] = localEntry{token: token, expires: time.Now().Add(ttl)}

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if entry, exists := l.held[key]; exists && entry.token == token {
			delete(l.held, key)
		}
	}
	return release, true, nil
}
