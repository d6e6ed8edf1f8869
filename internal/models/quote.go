package models

import "time"

// QuoteTTL is how long a fetched quote stays usable before it is
// considered stale. Measured from FetchedAt, not from last access.
const QuoteTTL = 20 * time.Second

// PriceQuote represents a point-in-time price snapshot for one ticker.
// Produced exclusively by the gateway; superseded, never mutated, by the
// next fetch.
type PriceQuote struct {
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	High30Day    float64   `json:"high_30_day"`
	High60Day    float64   `json:"high_60_day"`
	ThisMonthPct float64   `json:"this_month_pct"`
	LastMonthPct float64   `json:"last_month_pct"`
	Volatility   float64   `json:"volatility"` // decimal fraction, annualized
	MarketCap    int64     `json:"market_cap,omitempty"`
	Provider     string    `json:"provider"`
	Stale        bool      `json:"stale"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Age returns how long ago the quote was fetched.
func (q *PriceQuote) Age(now time.Time) time.Duration {
	return now.Sub(q.FetchedAt)
}

// Fresh reports whether the quote is still within its TTL.
func (q *PriceQuote) Fresh(now time.Time) bool {
	return q.Age(now) < QuoteTTL
}
