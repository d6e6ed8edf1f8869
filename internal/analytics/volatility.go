// Package analytics derives volatility statistics from gateway quotes.
// Everything here is pure computation over supplied inputs; nothing is
// persisted and nothing does I/O.
package analytics

import (
	"math"
	"time"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

const (
	tradingDaysPerYear = 252
	monthsPerYear      = 12

	// Confidence in a quote decays linearly to zero over this horizon
	recencyHorizon = 4 * time.Hour
)

// Compute derives VolatilityMetrics from a single quote. The quote's
// volatility field is already annualized upstream, as a decimal fraction.
func Compute(q *models.PriceQuote, now time.Time) models.VolatilityMetrics {
	annualized := q.Volatility * 100

	return models.VolatilityMetrics{
		Symbol:        q.Symbol,
		AnnualizedPct: annualized,
		DailyPct:      annualized / math.Sqrt(tradingDaysPerYear),
		MonthlyPct:    annualized / math.Sqrt(monthsPerYear),
		RiskLevel:     RiskLevel(annualized),
		Confidence:    confidence(q, now),
	}
}

// RiskLevel buckets an annualized volatility percentage. Upper bounds
// are exclusive.
func RiskLevel(annualizedPct float64) string {
	switch {
	case annualizedPct < 15:
		return models.VolRiskLow
	case annualizedPct < 25:
		return models.VolRiskMedium
	case annualizedPct < 35:
		return models.VolRiskHigh
	default:
		return models.VolRiskExtreme
	}
}

// confidence blends data recency with a volatility-derived term, each
// on a 0-100 scale, averaged and clamped.
func confidence(q *models.PriceQuote, now time.Time) float64 {
	age := now.Sub(q.FetchedAt)
	recency := 100 * (1 - float64(age)/float64(recencyHorizon))
	recency = clamp(recency, 0, 100)

	// Tighter volatility means a steadier estimate
	volTerm := clamp(100-q.Volatility*100, 0, 100)

	return clamp((recency+volTerm)/2, 0, 100)
}

// PositionWeight pairs a position's volatility with its share of
// portfolio market value.
type PositionWeight struct {
	Symbol        string
	AnnualizedPct float64
	Weight        float64
}

// ComputePortfolio aggregates per-position volatility into a portfolio
// view. Caller-supplied weights are normalized to sum to 1 before use.
func ComputePortfolio(positions []PositionWeight) models.PortfolioVolatility {
	if len(positions) == 0 {
		return models.PortfolioVolatility{RiskLevel: models.VolRiskLow}
	}

	total := 0.0
	for _, p := range positions {
		total += p.Weight
	}

	weighted := 0.0
	average := 0.0
	hhi := 0.0
	for _, p := range positions {
		w := p.Weight
		if total > 0 {
			w = p.Weight / total
		} else {
			w = 1 / float64(len(positions))
		}
		weighted += w * p.AnnualizedPct
		average += p.AnnualizedPct
		hhi += w * w
	}
	average /= float64(len(positions))

	diversification := 0.0
	if weighted > 0 {
		diversification = average / weighted
	}

	return models.PortfolioVolatility{
		WeightedVolPct:       weighted,
		AverageVolPct:        average,
		DiversificationRatio: diversification,
		ConcentrationRisk:    hhi * 100,
		RiskLevel:            RiskLevel(weighted),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
