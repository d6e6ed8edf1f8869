// Package lock provides a named, TTL-bounded mutual exclusion token so
// that at most one running instance executes a given scheduled job at a
// time. A crashed holder can never wedge future acquisitions: the TTL
// expires the token on Redis's side.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock is held by someone else
var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires and releases named TTL-bounded locks
type Locker interface {
	// Acquire takes the named lock for ttl, returning an opaque holder
	// token on success and ErrNotAcquired when the lock is busy.
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, error)
	// Release frees the named lock if and only if token still holds it.
	Release(ctx context.Context, name, token string) error
}

// releaseScript deletes the key only when the caller still holds it, so
// a holder whose TTL already expired cannot free a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a shared Redis instance
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker creates a locker over the given Redis client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: "advisor:lock:",
	}
}

// Acquire attempts SET NX PX on the lock key
func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	ok, err := l.client.SetNX(ctx, l.prefix+name, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return "", ErrNotAcquired
	}
	return token, nil
}

// Release frees the lock if token still holds it
func (l *RedisLocker) Release(ctx context.Context, name, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + name}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}
	return nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
