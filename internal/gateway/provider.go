package gateway

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

// Gateway error taxonomy. Transient provider errors never reach callers
// directly; they feed retry and breaker logic. Callers only ever see
// ErrNoData when every provider is exhausted and nothing is cached.
var (
	ErrNoData              = errors.New("no quote data available")
	ErrProviderUnavailable = errors.New("provider circuit open")
)

// Provider is a market-data upstream. Adapters return a fully populated
// PriceQuote or an error; the gateway owns retries, fallback and caching.
type Provider interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*models.PriceQuote, error)
}

// dailyClose is one day-close observation used to derive quote statistics
type dailyClose struct {
	Date  time.Time
	Close float64
}

// quoteFromSeries derives the gateway quote shape from a daily close
// series. The series does not need to be sorted.
func quoteFromSeries(symbol, provider string, series []dailyClose, now time.Time) *models.PriceQuote {
	sorted := make([]dailyClose, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	q := &models.PriceQuote{
		Symbol:    symbol,
		Provider:  provider,
		FetchedAt: now,
	}
	if len(sorted) == 0 {
		return q
	}

	q.CurrentPrice = sorted[len(sorted)-1].Close
	q.High30Day = highSince(sorted, now.AddDate(0, 0, -30))
	q.High60Day = highSince(sorted, now.AddDate(0, 0, -60))
	q.ThisMonthPct = changeSincePct(sorted, now.AddDate(0, -1, 0), q.CurrentPrice)
	q.LastMonthPct = changeBetweenPct(sorted, now.AddDate(0, -2, 0), now.AddDate(0, -1, 0))
	q.Volatility = annualizedVolatility(sorted)
	return q
}

func highSince(sorted []dailyClose, since time.Time) float64 {
	high := 0.0
	for _, d := range sorted {
		if d.Date.Before(since) {
			continue
		}
		if d.Close > high {
			high = d.Close
		}
	}
	return high
}

// changeSincePct returns the percent change from the first close at or
// after `since` to the current price.
func changeSincePct(sorted []dailyClose, since time.Time, current float64) float64 {
	for _, d := range sorted {
		if !d.Date.Before(since) {
			if d.Close == 0 {
				return 0
			}
			return (current - d.Close) / d.Close * 100
		}
	}
	return 0
}

// changeBetweenPct returns the percent change across the [from, to) slice
// of the series.
func changeBetweenPct(sorted []dailyClose, from, to time.Time) float64 {
	var first, last float64
	for _, d := range sorted {
		if d.Date.Before(from) || !d.Date.Before(to) {
			continue
		}
		if first == 0 {
			first = d.Close
		}
		last = d.Close
	}
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

// annualizedVolatility computes the standard deviation of daily log
// returns scaled by sqrt(252), as a decimal fraction.
func annualizedVolatility(sorted []dailyClose) float64 {
	if len(sorted) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1].Close, sorted[i].Close
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance) * math.Sqrt(252)
}
