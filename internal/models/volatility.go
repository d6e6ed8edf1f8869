package models

// Volatility risk level constants
const (
	VolRiskLow     = "Low"
	VolRiskMedium  = "Medium"
	VolRiskHigh    = "High"
	VolRiskExtreme = "Extreme"
)

// VolatilityMetrics holds derived volatility statistics for one symbol.
// Always recomputed from quote data, never the source of truth.
type VolatilityMetrics struct {
	Symbol        string  `json:"symbol"`
	AnnualizedPct float64 `json:"annualized_pct"`
	DailyPct      float64 `json:"daily_pct"`
	MonthlyPct    float64 `json:"monthly_pct"`
	RiskLevel     string  `json:"risk_level"`
	Confidence    float64 `json:"confidence"` // 0-100
}

// PortfolioVolatility holds aggregate volatility statistics across positions
type PortfolioVolatility struct {
	WeightedVolPct       float64 `json:"weighted_vol_pct"`
	AverageVolPct        float64 `json:"average_vol_pct"`
	DiversificationRatio float64 `json:"diversification_ratio"`
	ConcentrationRisk    float64 `json:"concentration_risk"` // HHI * 100
	RiskLevel            string  `json:"risk_level"`
}
