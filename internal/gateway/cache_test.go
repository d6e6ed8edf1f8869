package gateway

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

func TestQuoteCache(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	quoteAt := func(symbol string, fetchedAt time.Time) *models.PriceQuote {
		return &models.PriceQuote{Symbol: symbol, CurrentPrice: 100, FetchedAt: fetchedAt}
	}

	t.Run("fresh entry is returned", func(t *testing.T) {
		c, err := NewQuoteCache(10)
		require.NoError(t, err)

		c.Set("AAPL", quoteAt("AAPL", now))
		q, ok := c.Get("AAPL", now.Add(19*time.Second))
		require.True(t, ok)
		assert.Equal(t, "AAPL", q.Symbol)
	})

	t.Run("entry older than TTL is a miss but stays peekable", func(t *testing.T) {
		c, err := NewQuoteCache(10)
		require.NoError(t, err)

		c.Set("AAPL", quoteAt("AAPL", now))
		_, ok := c.Get("AAPL", now.Add(21*time.Second))
		assert.False(t, ok)

		stale, ok := c.GetStale("AAPL")
		require.True(t, ok)
		assert.Equal(t, now, stale.FetchedAt)
	})

	t.Run("TTL is measured from fetch time not last access", func(t *testing.T) {
		c, err := NewQuoteCache(10)
		require.NoError(t, err)

		c.Set("AAPL", quoteAt("AAPL", now))
		_, ok := c.Get("AAPL", now.Add(15*time.Second))
		require.True(t, ok)

		// Reading at 15s must not extend freshness past 20s
		_, ok = c.Get("AAPL", now.Add(25*time.Second))
		assert.False(t, ok)
	})

	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		c, err := NewQuoteCache(3)
		require.NoError(t, err)

		for i := 0; i < 4; i++ {
			sym := fmt.Sprintf("SYM%d", i)
			c.Set(sym, quoteAt(sym, now))
		}

		_, ok := c.GetStale("SYM0")
		assert.False(t, ok, "oldest entry evicted")
		_, ok = c.GetStale("SYM3")
		assert.True(t, ok)
	})

	t.Run("stats track hits and misses", func(t *testing.T) {
		c, err := NewQuoteCache(10)
		require.NoError(t, err)

		c.Set("AAPL", quoteAt("AAPL", now))
		c.Get("AAPL", now)
		c.Get("AAPL", now)
		c.Get("MSFT", now)

		stats := c.Stats()
		assert.Equal(t, 1, stats.Size)
		assert.Equal(t, 10, stats.Capacity)
		assert.Equal(t, int64(2), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
		assert.InDelta(t, 0.666, stats.HitRate, 0.01)
	})

	t.Run("clear empties cache and resets counters", func(t *testing.T) {
		c, err := NewQuoteCache(10)
		require.NoError(t, err)

		c.Set("AAPL", quoteAt("AAPL", now))
		c.Get("AAPL", now)
		c.Clear()

		stats := c.Stats()
		assert.Equal(t, 0, stats.Size)
		assert.Equal(t, int64(0), stats.Hits)
		assert.Equal(t, int64(0), stats.Misses)
	})
}
