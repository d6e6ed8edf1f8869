// Package decision classifies a position against its latest quote.
// Decide is deterministic: no I/O, no clock, no randomness.
package decision

import (
	"strings"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

const (
	buyThreshold  = 2
	sellThreshold = -2

	strongHighRatio = 0.9
	weakHighRatio   = 0.7
	momentumPct     = 10
)

// Decide applies the hard rules first, then the additive score. Stop-loss
// and take-profit always outrank the soft score.
func Decide(pos *models.Position, q *models.PriceQuote) models.Decision {
	price := q.CurrentPrice

	if pos.StopLoss != nil && price <= *pos.StopLoss {
		return models.Decision{
			Symbol: q.Symbol,
			Action: models.ActionSell,
			Reason: "stop loss triggered",
			Color:  models.ColorRed,
		}
	}

	if pos.TakeProfit != nil && price >= *pos.TakeProfit {
		return models.Decision{
			Symbol: q.Symbol,
			Action: models.ActionSell,
			Reason: "take profit reached",
			Color:  models.ColorGreen,
		}
	}

	score := 0
	var reasons []string

	if q.High60Day > 0 {
		ratio := price / q.High60Day
		if ratio > strongHighRatio {
			score++
			reasons = append(reasons, "strong vs 60-day high")
		} else if ratio < weakHighRatio {
			score--
			reasons = append(reasons, "weak vs 60-day high")
		}
	}

	if q.ThisMonthPct > momentumPct {
		score++
		reasons = append(reasons, "strong month")
	} else if q.ThisMonthPct < -momentumPct {
		score--
		reasons = append(reasons, "weak month")
	}

	if q.LastMonthPct > momentumPct {
		score++
		reasons = append(reasons, "strong last month")
	} else if q.LastMonthPct < -momentumPct {
		score--
		reasons = append(reasons, "weak last month")
	}

	entry := pos.EntryPrice.InexactFloat64()
	if price > entry {
		score++
		reasons = append(reasons, "above entry")
	} else {
		score--
		reasons = append(reasons, "below entry")
	}

	reason := "neutral signals"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}

	action := models.ActionHold
	color := models.ColorYellow
	switch {
	case score >= buyThreshold:
		action = models.ActionBuy
		color = models.ColorGreen
	case score <= sellThreshold:
		action = models.ActionSell
		color = models.ColorRed
	}

	return models.Decision{
		Symbol: q.Symbol,
		Action: action,
		Reason: reason,
		Color:  color,
		Score:  score,
	}
}
