// Package risk scores positions and portfolios on a 0-100 scale and
// emits alerts for detected risk conditions. It is a separate analysis
// from the decision engine: the two deliberately keep their own
// thresholds for similar signals.
package risk

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

const (
	baseCritical = 90
	baseHigh     = 70
	baseMedium   = 40
	baseLow      = 20

	oversizeWeightPct = 20
	largeWeightPct    = 15
	concentrationPct  = 30

	takeProfitZone = 0.90 // within 5% of, or above, the target

	portfolioCriticalScore = 80
	portfolioHighScore     = 60
	portfolioMediumScore   = 40
)

// Engine analyzes position and portfolio risk
type Engine struct {
	log zerolog.Logger
	now func() time.Time
}

// NewEngine creates a risk engine
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "risk").Logger(),
		now: time.Now,
	}
}

// AnalyzePosition scores one position. portfolioValue is the total
// market value of the owning portfolio; vol may be nil when analytics
// are unavailable, which only suppresses the volatility contribution.
func (e *Engine) AnalyzePosition(pos *models.Position, portfolioValue float64, vol *models.VolatilityMetrics) models.PositionRisk {
	price := pos.CurrentPrice.InexactFloat64()
	value := pos.MarketValue().InexactFloat64()

	weight := 0.0
	if portfolioValue > 0 {
		weight = value / portfolioValue * 100
	}

	level := e.positionRiskLevel(pos, price, vol)

	score := 0.0
	switch level {
	case models.SeverityCritical:
		score = baseCritical
	case models.SeverityHigh:
		score = baseHigh
	case models.SeverityMedium:
		score = baseMedium
	default:
		score = baseLow
	}

	if weight > oversizeWeightPct {
		score += 20
	} else if weight > largeWeightPct {
		score += 10
	}
	if score > 100 {
		score = 100
	}

	return models.PositionRisk{
		Symbol:    pos.Symbol,
		Score:     score,
		RiskLevel: level,
		WeightPct: weight,
		Alerts:    e.positionAlerts(pos, price, weight),
	}
}

// positionRiskLevel is the stop-distance/performance heuristic.
// CRITICAL only ever means a stop-loss breach.
func (e *Engine) positionRiskLevel(pos *models.Position, price float64, vol *models.VolatilityMetrics) string {
	if pos.StopLoss != nil && price <= *pos.StopLoss {
		return models.SeverityCritical
	}

	entry := pos.EntryPrice.InexactFloat64()
	pnlPct := 0.0
	if entry > 0 {
		pnlPct = (price - entry) / entry * 100
	}

	if pos.StopLoss != nil && *pos.StopLoss > 0 && price <= *pos.StopLoss*1.05 {
		return models.SeverityHigh
	}
	if pnlPct < -15 {
		return models.SeverityHigh
	}
	if pnlPct < -5 {
		return models.SeverityMedium
	}
	if vol != nil && (vol.RiskLevel == models.VolRiskHigh || vol.RiskLevel == models.VolRiskExtreme) {
		return models.SeverityMedium
	}
	return models.SeverityLow
}

func (e *Engine) positionAlerts(pos *models.Position, price, weight float64) []models.RiskAlert {
	var alerts []models.RiskAlert
	now := e.now()

	if pos.StopLoss != nil && price <= *pos.StopLoss {
		alerts = append(alerts, models.RiskAlert{
			Type:              models.AlertStopLoss,
			Severity:          models.SeverityCritical,
			Symbol:            pos.Symbol,
			PortfolioID:       pos.PortfolioID,
			Message:           fmt.Sprintf("%s at %.2f breached stop loss %.2f", pos.Symbol, price, *pos.StopLoss),
			RecommendedAction: models.RecommendSell,
			TriggeredAt:       now,
		})
	}

	if pos.TakeProfit != nil && *pos.TakeProfit > 0 && price >= *pos.TakeProfit*takeProfitZone {
		action := models.RecommendMonitor
		if price >= *pos.TakeProfit {
			action = models.RecommendSell
		}
		alerts = append(alerts, models.RiskAlert{
			Type:              models.AlertTakeProfit,
			Severity:          models.SeverityHigh,
			Symbol:            pos.Symbol,
			PortfolioID:       pos.PortfolioID,
			Message:           fmt.Sprintf("%s at %.2f is in the take profit zone (target %.2f)", pos.Symbol, price, *pos.TakeProfit),
			RecommendedAction: action,
			TriggeredAt:       now,
		})
	}

	if weight > oversizeWeightPct {
		alerts = append(alerts, models.RiskAlert{
			Type:              models.AlertPositionSize,
			Severity:          models.SeverityHigh,
			Symbol:            pos.Symbol,
			PortfolioID:       pos.PortfolioID,
			Message:           fmt.Sprintf("%s is %.1f%% of portfolio value", pos.Symbol, weight),
			RecommendedAction: models.RecommendReduce,
			TriggeredAt:       now,
		})
	} else if weight > largeWeightPct {
		alerts = append(alerts, models.RiskAlert{
			Type:              models.AlertPositionSize,
			Severity:          models.SeverityMedium,
			Symbol:            pos.Symbol,
			PortfolioID:       pos.PortfolioID,
			Message:           fmt.Sprintf("%s is %.1f%% of portfolio value", pos.Symbol, weight),
			RecommendedAction: models.RecommendMonitor,
			TriggeredAt:       now,
		})
	}

	return alerts
}

// AnalyzePortfolio aggregates risk across positions. A position whose
// quote never arrived (zero current price) is excluded from the
// aggregate with a warning instead of dragging the average down as
// phantom zero risk.
func (e *Engine) AnalyzePortfolio(positions []*models.Position, analytics map[string]*models.VolatilityMetrics) models.PortfolioRisk {
	result := models.PortfolioRisk{}
	if len(positions) > 0 {
		result.PortfolioID = positions[0].PortfolioID
	}

	totalValue := 0.0
	usable := make([]*models.Position, 0, len(positions))
	for _, pos := range positions {
		if pos.CurrentPrice.IsZero() {
			warning := fmt.Sprintf("no quote data for %s, excluded from portfolio risk", pos.Symbol)
			result.Warnings = append(result.Warnings, warning)
			e.log.Warn().Str("symbol", pos.Symbol).Msg("position excluded from risk aggregate")
			continue
		}
		usable = append(usable, pos)
		totalValue += pos.MarketValue().InexactFloat64()
	}

	if len(usable) == 0 {
		result.RiskLevel = models.SeverityLow
		return result
	}

	worstAlert := models.SeverityLow
	weightedScore := 0.0
	for _, pos := range usable {
		pr := e.AnalyzePosition(pos, totalValue, analytics[pos.Symbol])
		result.Positions = append(result.Positions, pr)
		weightedScore += pr.Score * pr.WeightPct / 100

		for _, a := range pr.Alerts {
			worstAlert = models.WorstSeverity(worstAlert, a.Severity)
		}
		if pr.WeightPct > concentrationPct {
			alert := models.RiskAlert{
				Type:              models.AlertPortfolioRisk,
				Severity:          models.SeverityHigh,
				Symbol:            pos.Symbol,
				PortfolioID:       pos.PortfolioID,
				Message:           fmt.Sprintf("concentration: %s is %.1f%% of portfolio", pos.Symbol, pr.WeightPct),
				RecommendedAction: models.RecommendReduce,
				TriggeredAt:       e.now(),
			}
			result.Alerts = append(result.Alerts, alert)
			worstAlert = models.WorstSeverity(worstAlert, alert.Severity)
		}
	}
	result.WeightedScore = weightedScore

	thresholdLevel := models.SeverityLow
	switch {
	case weightedScore > portfolioCriticalScore:
		thresholdLevel = models.SeverityCritical
	case weightedScore > portfolioHighScore:
		thresholdLevel = models.SeverityHigh
	case weightedScore > portfolioMediumScore:
		thresholdLevel = models.SeverityMedium
	}

	if thresholdLevel != models.SeverityLow {
		result.Alerts = append(result.Alerts, models.RiskAlert{
			Type:              models.AlertPortfolioRisk,
			Severity:          thresholdLevel,
			PortfolioID:       result.PortfolioID,
			Message:           fmt.Sprintf("portfolio weighted risk score %.1f", weightedScore),
			RecommendedAction: models.RecommendReduce,
			TriggeredAt:       e.now(),
		})
	}

	result.RiskLevel = models.WorstSeverity(thresholdLevel, worstAlert)
	return result
}
