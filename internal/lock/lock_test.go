package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("exactly one of two concurrent acquires succeeds", func(t *testing.T) {
		l := NewMemoryLocker()

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = l.Acquire(ctx, "refresh", time.Minute)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, ErrNotAcquired)
			}
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("release frees the lock for the next acquirer", func(t *testing.T) {
		l := NewMemoryLocker()

		token, err := l.Acquire(ctx, "refresh", time.Minute)
		require.NoError(t, err)

		_, err = l.Acquire(ctx, "refresh", time.Minute)
		require.ErrorIs(t, err, ErrNotAcquired)

		require.NoError(t, l.Release(ctx, "refresh", token))

		_, err = l.Acquire(ctx, "refresh", time.Minute)
		assert.NoError(t, err)
	})

	t.Run("expired lock can be re-acquired", func(t *testing.T) {
		l := NewMemoryLocker()
		now := time.Now()
		l.now = func() time.Time { return now }

		_, err := l.Acquire(ctx, "refresh", time.Minute)
		require.NoError(t, err)

		now = now.Add(61 * time.Second)
		_, err = l.Acquire(ctx, "refresh", time.Minute)
		assert.NoError(t, err, "TTL expiry must not wedge future acquisitions")
	})

	t.Run("stale token cannot release a successor's lock", func(t *testing.T) {
		l := NewMemoryLocker()
		now := time.Now()
		l.now = func() time.Time { return now }

		staleToken, err := l.Acquire(ctx, "refresh", time.Minute)
		require.NoError(t, err)

		now = now.Add(2 * time.Minute)
		_, err = l.Acquire(ctx, "refresh", time.Minute)
		require.NoError(t, err)

		// The first holder's TTL expired; its release must be a no-op
		require.NoError(t, l.Release(ctx, "refresh", staleToken))
		_, err = l.Acquire(ctx, "refresh", time.Minute)
		assert.ErrorIs(t, err, ErrNotAcquired, "successor still holds the lock")
	})

	t.Run("different names are independent", func(t *testing.T) {
		l := NewMemoryLocker()

		_, err := l.Acquire(ctx, "quotes", time.Minute)
		require.NoError(t, err)
		_, err = l.Acquire(ctx, "decisions", time.Minute)
		assert.NoError(t, err)
	})
}
