package gateway

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

// QuoteCache is a capacity-bounded LRU of the most recent quote per
// symbol. Freshness is judged against the quote's own fetch time, never
// against last access, so a hot symbol cannot mask true staleness.
// Entries outlive their TTL on purpose: the stale value is the fallback
// of last resort when every provider is down.
type QuoteCache struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, *models.PriceQuote]
	capacity int
	hits     int64
	misses   int64
}

// CacheStats is a point-in-time snapshot of cache performance
type CacheStats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
}

// NewQuoteCache creates a quote cache with the given capacity
func NewQuoteCache(capacity int) (*QuoteCache, error) {
	l, err := lru.New[string, *models.PriceQuote](capacity)
	if err != nil {
		return nil, err
	}
	return &QuoteCache{lru: l, capacity: capacity}, nil
}

// Get returns the cached quote for symbol if it is still fresh. A stale
// or missing entry counts as a miss.
func (c *QuoteCache) Get(symbol string, now time.Time) (*models.PriceQuote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.lru.Get(symbol)
	if !ok || !q.Fresh(now) {
		c.misses++
		return nil, false
	}
	c.hits++
	return q, true
}

// GetStale returns whatever is cached for symbol regardless of age,
// along with whether anything was found. Does not touch hit counters.
func (c *QuoteCache) GetStale(symbol string) (*models.PriceQuote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Peek(symbol)
}

// Set stores a quote, evicting the least-recently-used entry if full
func (c *QuoteCache) Set(symbol string, q *models.PriceQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(symbol, q)
}

// Clear empties the cache and resets counters
func (c *QuoteCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.hits = 0
	c.misses = 0
}

// Stats returns a snapshot of size and hit/miss counters
func (c *QuoteCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Size:     c.lru.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  rate,
	}
}
