package models

import "time"

// ActionChangeEvent is published when a position's recommended action flips.
// The core only signals that a notification should fire; delivery is
// someone else's problem.
type ActionChangeEvent struct {
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	Symbol    string    `json:"symbol"`
	OldAction string    `json:"old_action"`
	NewAction string    `json:"new_action"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// PriceHistoryDaily represents a day-close price snapshot for a symbol,
// recorded by the daily backfill job.
type PriceHistoryDaily struct {
	ID         int       `json:"id"`
	Symbol     string    `json:"symbol"`
	Date       time.Time `json:"date"`
	Close      float64   `json:"close"`
	High30Day  float64   `json:"high_30_day,omitempty"`
	High60Day  float64   `json:"high_60_day,omitempty"`
	Volatility float64   `json:"volatility,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
