package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

// Options tunes gateway retry and breaker behaviour
type Options struct {
	MaxRetries       int           // attempts per provider, including the first
	RetryBaseDelay   time.Duration // backoff base, doubled per attempt
	BreakerThreshold int
	BreakerCooldown  time.Duration
	CacheCapacity    int
}

// DefaultOptions returns production defaults
func DefaultOptions() Options {
	return Options{
		MaxRetries:       3,
		RetryBaseDelay:   500 * time.Millisecond,
		BreakerThreshold: 5,
		BreakerCooldown:  60 * time.Second,
		CacheCapacity:    1000,
	}
}

// Gateway is the single entry point for market data. It owns the quote
// cache and one circuit breaker per provider; providers are tried in the
// order given, and a stale cached quote beats an error when everything
// upstream is down.
type Gateway struct {
	providers []Provider
	breakers  map[string]*CircuitBreaker
	cache     *QuoteCache
	opts      Options
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a gateway over the given providers, in priority order
func New(providers []Provider, opts Options, log zerolog.Logger) (*Gateway, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("gateway requires at least one provider")
	}
	cache, err := NewQuoteCache(opts.CacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote cache: %w", err)
	}

	breakers := make(map[string]*CircuitBreaker, len(providers))
	for _, p := range providers {
		breakers[p.Name()] = NewCircuitBreaker(opts.BreakerThreshold, opts.BreakerCooldown)
	}

	return &Gateway{
		providers: providers,
		breakers:  breakers,
		cache:     cache,
		opts:      opts,
		log:       log.With().Str("component", "gateway").Logger(),
		now:       time.Now,
	}, nil
}

// GetQuote returns the freshest available quote for symbol. Resolution
// order: fresh cache entry, providers in priority order (each with
// bounded retry, skipped while its breaker is open), then the last
// cached value marked stale. Only when nothing was ever cached does the
// caller see ErrNoData.
func (g *Gateway) GetQuote(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	if q, ok := g.cache.Get(symbol, g.now()); ok {
		return q, nil
	}

	for _, p := range g.providers {
		cb := g.breakers[p.Name()]
		if !cb.Allow() {
			g.log.Debug().Str("provider", p.Name()).Str("symbol", symbol).
				Msg("breaker open, skipping provider")
			continue
		}

		q, err := g.fetchWithRetry(ctx, p, cb, symbol)
		if err != nil {
			g.log.Warn().Err(err).Str("provider", p.Name()).Str("symbol", symbol).
				Msg("provider exhausted")
			continue
		}

		g.cache.Set(symbol, q)
		return q, nil
	}

	if q, ok := g.cache.GetStale(symbol); ok {
		stale := *q
		stale.Stale = true
		g.log.Warn().Str("symbol", symbol).Time("fetched_at", q.FetchedAt).
			Msg("all providers failed, serving stale quote")
		return &stale, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
}

// GetQuotes fetches all symbols with full fan-out. Failed symbols are
// simply absent from the result; one symbol never fails the batch.
func (g *Gateway) GetQuotes(ctx context.Context, symbols []string) map[string]*models.PriceQuote {
	results := make(map[string]*models.PriceQuote, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			q, err := g.GetQuote(ctx, sym)
			if err != nil {
				g.log.Warn().Err(err).Str("symbol", sym).Msg("batch fetch failed for symbol")
				return
			}
			mu.Lock()
			results[sym] = q
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	return results
}

// fetchWithRetry runs one provider's attempt loop. Every failed attempt
// feeds the breaker; an open breaker aborts the loop early.
func (g *Gateway) fetchWithRetry(ctx context.Context, p Provider, cb *CircuitBreaker, symbol string) (*models.PriceQuote, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.opts.RetryBaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	policy := backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(g.opts.MaxRetries-1)), ctx)

	var quote *models.PriceQuote
	operation := func() error {
		q, err := p.FetchQuote(ctx, symbol)
		if err != nil {
			cb.RecordFailure()
			if cb.State() == BreakerOpen {
				return backoff.Permanent(fmt.Errorf("%w: %s", ErrProviderUnavailable, p.Name()))
			}
			return err
		}
		cb.RecordSuccess()
		quote = q
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return quote, nil
}

// ProviderStates returns the breaker state per provider name
func (g *Gateway) ProviderStates() map[string]string {
	states := make(map[string]string, len(g.breakers))
	for name, cb := range g.breakers {
		states[name] = string(cb.State())
	}
	return states
}

// CacheStats returns a snapshot of cache size and hit/miss counters
func (g *Gateway) CacheStats() CacheStats {
	return g.cache.Stats()
}

// ClearCache empties the quote cache
func (g *Gateway) ClearCache() {
	g.cache.Clear()
}
