package models

import "time"

// Risk alert type constants
const (
	AlertStopLoss        = "STOP_LOSS"
	AlertTakeProfit      = "TAKE_PROFIT"
	AlertPositionSize    = "POSITION_SIZE"
	AlertPortfolioRisk   = "PORTFOLIO_RISK"
	AlertMarketCondition = "MARKET_CONDITION"
)

// Severity constants, ordered low to high
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Recommended action constants
const (
	RecommendSell    = "SELL"
	RecommendHold    = "HOLD"
	RecommendReduce  = "REDUCE"
	RecommendMonitor = "MONITOR"
)

// severityRank orders severities for max comparisons
var severityRank = map[string]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// SeverityAtLeast reports whether a is the same severity as b or worse.
func SeverityAtLeast(a, b string) bool {
	return severityRank[a] >= severityRank[b]
}

// WorstSeverity returns the higher of two severities.
func WorstSeverity(a, b string) string {
	if severityRank[a] >= severityRank[b] {
		return a
	}
	return b
}

// RiskAlert is an immutable event describing a detected risk condition.
// Generated fresh on each analysis pass; the caller decides persistence
// and dedup.
type RiskAlert struct {
	Type              string    `json:"type"`
	Severity          string    `json:"severity"`
	Symbol            string    `json:"symbol,omitempty"`
	PortfolioID       string    `json:"portfolio_id,omitempty"`
	Message           string    `json:"message"`
	RecommendedAction string    `json:"recommended_action"`
	TriggeredAt       time.Time `json:"triggered_at"`
}

// PositionRisk is the per-position risk assessment
type PositionRisk struct {
	Symbol    string      `json:"symbol"`
	Score     float64     `json:"score"` // 0-100
	RiskLevel string      `json:"risk_level"`
	WeightPct float64     `json:"weight_pct"`
	Alerts    []RiskAlert `json:"alerts,omitempty"`
}

// PortfolioRisk is the aggregate risk assessment across all positions
type PortfolioRisk struct {
	PortfolioID   string         `json:"portfolio_id,omitempty"`
	WeightedScore float64        `json:"weighted_score"`
	RiskLevel     string         `json:"risk_level"`
	Positions     []PositionRisk `json:"positions"`
	Alerts        []RiskAlert    `json:"alerts,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
}
