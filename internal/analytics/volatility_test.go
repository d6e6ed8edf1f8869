package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		annualizedPct float64
		want          string
	}{
		{0, models.VolRiskLow},
		{14.99, models.VolRiskLow},
		{15, models.VolRiskMedium}, // upper bounds are exclusive
		{24.99, models.VolRiskMedium},
		{25, models.VolRiskHigh},
		{34.99, models.VolRiskHigh},
		{35, models.VolRiskExtreme},
		{120, models.VolRiskExtreme},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.annualizedPct), "vol %.2f", tt.annualizedPct)
	}
}

func TestCompute(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	t.Run("scales annualized volatility to daily and monthly", func(t *testing.T) {
		q := &models.PriceQuote{Symbol: "AAPL", Volatility: 0.25, FetchedAt: now}
		m := Compute(q, now)

		assert.Equal(t, 25.0, m.AnnualizedPct)
		assert.InDelta(t, 25.0/math.Sqrt(252), m.DailyPct, 1e-9)
		assert.InDelta(t, 25.0/math.Sqrt(12), m.MonthlyPct, 1e-9)
		assert.Equal(t, models.VolRiskHigh, m.RiskLevel)
	})

	t.Run("confidence is full for a fresh calm quote", func(t *testing.T) {
		q := &models.PriceQuote{Symbol: "AAPL", Volatility: 0, FetchedAt: now}
		m := Compute(q, now)
		assert.Equal(t, 100.0, m.Confidence)
	})

	t.Run("confidence decays with quote age", func(t *testing.T) {
		q := &models.PriceQuote{Symbol: "AAPL", Volatility: 0.2, FetchedAt: now}

		fresh := Compute(q, now)
		old := Compute(q, now.Add(2*time.Hour))
		ancient := Compute(q, now.Add(5*time.Hour))

		assert.Greater(t, fresh.Confidence, old.Confidence)
		assert.Greater(t, old.Confidence, ancient.Confidence)
		// Past the 4h horizon only the volatility term remains
		assert.InDelta(t, 40.0, ancient.Confidence, 1e-9)
	})

	t.Run("confidence is clamped to valid range", func(t *testing.T) {
		q := &models.PriceQuote{Symbol: "MEME", Volatility: 3.5, FetchedAt: now}
		m := Compute(q, now.Add(24*time.Hour))
		assert.GreaterOrEqual(t, m.Confidence, 0.0)
		assert.LessOrEqual(t, m.Confidence, 100.0)
	})
}

func TestComputePortfolio(t *testing.T) {
	t.Run("weights are normalized before use", func(t *testing.T) {
		// Weights sum to 2; normalization makes them 0.5/0.5
		positions := []PositionWeight{
			{Symbol: "AAPL", AnnualizedPct: 20, Weight: 1.0},
			{Symbol: "MSFT", AnnualizedPct: 30, Weight: 1.0},
		}
		pv := ComputePortfolio(positions)

		assert.InDelta(t, 25.0, pv.WeightedVolPct, 1e-9)
		assert.InDelta(t, 25.0, pv.AverageVolPct, 1e-9)
		assert.InDelta(t, 1.0, pv.DiversificationRatio, 1e-9)
		assert.InDelta(t, 50.0, pv.ConcentrationRisk, 1e-9) // HHI 0.5 * 100
	})

	t.Run("concentrated portfolio has high HHI", func(t *testing.T) {
		positions := []PositionWeight{
			{Symbol: "AAPL", AnnualizedPct: 20, Weight: 0.9},
			{Symbol: "MSFT", AnnualizedPct: 40, Weight: 0.1},
		}
		pv := ComputePortfolio(positions)

		assert.InDelta(t, 22.0, pv.WeightedVolPct, 1e-9)
		assert.InDelta(t, 82.0, pv.ConcentrationRisk, 1e-9) // 0.81 + 0.01
		// Simple average (30) exceeds the weighted figure
		assert.Greater(t, pv.DiversificationRatio, 1.0)
	})

	t.Run("zero weights fall back to equal weighting", func(t *testing.T) {
		positions := []PositionWeight{
			{Symbol: "AAPL", AnnualizedPct: 10, Weight: 0},
			{Symbol: "MSFT", AnnualizedPct: 30, Weight: 0},
		}
		pv := ComputePortfolio(positions)
		assert.InDelta(t, 20.0, pv.WeightedVolPct, 1e-9)
	})

	t.Run("empty portfolio is low risk", func(t *testing.T) {
		pv := ComputePortfolio(nil)
		assert.Equal(t, models.VolRiskLow, pv.RiskLevel)
		assert.Zero(t, pv.WeightedVolPct)
	})
}
