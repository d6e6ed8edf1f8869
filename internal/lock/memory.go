package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local Locker with the same TTL semantics as
// the Redis implementation. Used in tests and single-instance setups.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLock
	now   func() time.Time
}

type memoryLock struct {
	token  string
	expiry time.Time
}

// NewMemoryLocker creates an in-memory locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]memoryLock),
		now:   time.Now,
	}
}

// Acquire takes the lock unless an unexpired holder exists
func (l *MemoryLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.locks[name]; ok && l.now().Before(existing.expiry) {
		return "", ErrNotAcquired
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}
	l.locks[name] = memoryLock{token: token, expiry: l.now().Add(ttl)}
	return token, nil
}

// Release frees the lock if token still holds it
func (l *MemoryLocker) Release(ctx context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.locks[name]; ok && existing.token == token {
		delete(l.locks, name)
	}
	return nil
}
