package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	newBreaker := func(threshold int, cooldown time.Duration) *CircuitBreaker {
		cb := NewCircuitBreaker(threshold, cooldown)
		cb.now = clock
		return cb
	}

	t.Run("starts closed and allows requests", func(t *testing.T) {
		cb := newBreaker(5, time.Minute)
		assert.Equal(t, BreakerClosed, cb.State())
		assert.True(t, cb.Allow())
	})

	t.Run("opens after exactly threshold consecutive failures", func(t *testing.T) {
		cb := newBreaker(5, time.Minute)

		for i := 0; i < 4; i++ {
			cb.RecordFailure()
			assert.Equal(t, BreakerClosed, cb.State(), "failure %d should not open", i+1)
		}
		cb.RecordFailure()
		assert.Equal(t, BreakerOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("success resets failure count in any state", func(t *testing.T) {
		cb := newBreaker(5, time.Minute)

		cb.RecordFailure()
		cb.RecordFailure()
		cb.RecordSuccess()
		assert.Equal(t, 0, cb.Failures())

		for i := 0; i < 4; i++ {
			cb.RecordFailure()
		}
		assert.Equal(t, BreakerClosed, cb.State())
	})

	t.Run("transitions to half open after cooldown", func(t *testing.T) {
		cb := newBreaker(2, time.Minute)
		cb.RecordFailure()
		cb.RecordFailure()
		assert.Equal(t, BreakerOpen, cb.State())
		assert.False(t, cb.Allow())

		now = now.Add(61 * time.Second)
		assert.Equal(t, BreakerHalfOpen, cb.State())
		assert.True(t, cb.Allow(), "first probe admitted")
		assert.False(t, cb.Allow(), "only a single probe allowed")
	})

	t.Run("successful probe closes breaker and resets count", func(t *testing.T) {
		cb := newBreaker(2, time.Minute)
		cb.RecordFailure()
		cb.RecordFailure()

		now = now.Add(2 * time.Minute)
		assert.True(t, cb.Allow())
		cb.RecordSuccess()

		assert.Equal(t, BreakerClosed, cb.State())
		assert.Equal(t, 0, cb.Failures())
	})

	t.Run("failed probe reopens and restarts cooldown", func(t *testing.T) {
		cb := newBreaker(2, time.Minute)
		cb.RecordFailure()
		cb.RecordFailure()

		now = now.Add(2 * time.Minute)
		assert.True(t, cb.Allow())
		cb.RecordFailure()

		assert.Equal(t, BreakerOpen, cb.State())
		assert.False(t, cb.Allow())

		// Cooldown restarted from the failed probe, not the original trip
		now = now.Add(59 * time.Second)
		assert.False(t, cb.Allow())
		now = now.Add(2 * time.Second)
		assert.True(t, cb.Allow())
	})
}
