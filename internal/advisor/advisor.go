// Package advisor orchestrates the refresh pipeline: fetch quotes,
// recompute decisions and risk, persist what changed, and signal
// notifications for action flips. Both the scheduler and the interactive
// refresh endpoints call into it.
package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/trogers1052/portfolio-advisor/internal/analytics"
	"github.com/trogers1052/portfolio-advisor/internal/decision"
	"github.com/trogers1052/portfolio-advisor/internal/models"
	"github.com/trogers1052/portfolio-advisor/internal/risk"
)

// PositionStore is the persistence surface the advisor needs
type PositionStore interface {
	GetAllPositions() ([]*models.Position, error)
	GetDistinctSymbols() ([]string, error)
	UpdatePositionDecision(id int, currentPrice float64, action, reason, riskColor string) error
	CreatePriceHistory(h *models.PriceHistoryDaily) error
}

// QuoteFetcher is the gateway surface the advisor needs
type QuoteFetcher interface {
	GetQuote(ctx context.Context, symbol string) (*models.PriceQuote, error)
	GetQuotes(ctx context.Context, symbols []string) map[string]*models.PriceQuote
}

// Notifier signals that a position's action changed. Fire-and-forget
// from the advisor's perspective.
type Notifier interface {
	PublishActionChanged(ctx context.Context, userID, symbol, oldAction, newAction, reason string) error
}

// Advisor drives the quote -> decision -> persistence pipeline
type Advisor struct {
	store    PositionStore
	quotes   QuoteFetcher
	notifier Notifier
	risk     *risk.Engine
	log      zerolog.Logger
	now      func() time.Time
}

// New creates an advisor. notifier may be nil when notifications are
// disabled.
func New(store PositionStore, quotes QuoteFetcher, notifier Notifier, riskEngine *risk.Engine, log zerolog.Logger) *Advisor {
	return &Advisor{
		store:    store,
		quotes:   quotes,
		notifier: notifier,
		risk:     riskEngine,
		log:      log.With().Str("component", "advisor").Logger(),
		now:      time.Now,
	}
}

// RefreshQuotes warms the gateway cache for every distinct tracked
// ticker. Failed symbols are logged by the gateway and skipped.
func (a *Advisor) RefreshQuotes(ctx context.Context) error {
	symbols, err := a.store.GetDistinctSymbols()
	if err != nil {
		return fmt.Errorf("failed to load tracked symbols: %w", err)
	}
	if len(symbols) == 0 {
		return nil
	}

	quotes := a.quotes.GetQuotes(ctx, symbols)
	a.log.Info().Int("requested", len(symbols)).Int("fetched", len(quotes)).
		Msg("quote refresh complete")
	return nil
}

// RefreshDecisions recomputes every position's decision and writes back
// only what changed. An action flip triggers a notification signal.
func (a *Advisor) RefreshDecisions(ctx context.Context) error {
	positions, err := a.store.GetAllPositions()
	if err != nil {
		return fmt.Errorf("failed to load positions: %w", err)
	}

	updated := 0
	notified := 0
	for _, group := range groupByUser(positions) {
		quotes := a.quotes.GetQuotes(ctx, distinctSymbols(group))

		for _, pos := range group {
			quote, ok := quotes[pos.Symbol]
			if !ok {
				a.log.Warn().Str("symbol", pos.Symbol).Str("user", pos.UserID).
					Msg("no quote for position, decision unchanged")
				continue
			}

			d := decision.Decide(pos, quote)
			newPrice := decimal.NewFromFloat(quote.CurrentPrice)

			changed := !pos.CurrentPrice.Equal(newPrice) ||
				pos.Action != d.Action ||
				pos.Reason != d.Reason
			if !changed {
				continue
			}

			if err := a.store.UpdatePositionDecision(pos.ID, quote.CurrentPrice, d.Action, d.Reason, d.Color); err != nil {
				a.log.Error().Err(err).Int("position", pos.ID).Msg("failed to persist decision")
				continue
			}
			updated++

			if pos.Action != "" && pos.Action != d.Action && a.notifier != nil {
				if err := a.notifier.PublishActionChanged(ctx, pos.UserID, pos.Symbol, pos.Action, d.Action, d.Reason); err != nil {
					a.log.Error().Err(err).Str("symbol", pos.Symbol).
						Msg("failed to publish action change")
				} else {
					notified++
				}
			}

			pos.CurrentPrice = newPrice
			pos.Action = d.Action
			pos.Reason = d.Reason
		}
	}

	a.log.Info().Int("positions", len(positions)).Int("updated", updated).
		Int("notified", notified).Msg("decision refresh complete")
	return nil
}

// DecideAndPersist recomputes one position's decision against the given
// quote, persisting and notifying exactly like a scheduled refresh.
func (a *Advisor) DecideAndPersist(ctx context.Context, pos *models.Position, quote *models.PriceQuote) models.Decision {
	d := decision.Decide(pos, quote)
	newPrice := decimal.NewFromFloat(quote.CurrentPrice)

	changed := !pos.CurrentPrice.Equal(newPrice) ||
		pos.Action != d.Action ||
		pos.Reason != d.Reason
	if !changed {
		return d
	}

	if err := a.store.UpdatePositionDecision(pos.ID, quote.CurrentPrice, d.Action, d.Reason, d.Color); err != nil {
		a.log.Error().Err(err).Int("position", pos.ID).Msg("failed to persist decision")
		return d
	}

	if pos.Action != "" && pos.Action != d.Action && a.notifier != nil {
		if err := a.notifier.PublishActionChanged(ctx, pos.UserID, pos.Symbol, pos.Action, d.Action, d.Reason); err != nil {
			a.log.Error().Err(err).Str("symbol", pos.Symbol).Msg("failed to publish action change")
		}
	}
	return d
}

// RecomputeRisk runs the portfolio risk analysis per owner and logs any
// alerts. Results are returned for interactive callers.
func (a *Advisor) RecomputeRisk(ctx context.Context) (map[string]models.PortfolioRisk, error) {
	positions, err := a.store.GetAllPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	results := make(map[string]models.PortfolioRisk)
	for userID, group := range groupByUser(positions) {
		quotes := a.quotes.GetQuotes(ctx, distinctSymbols(group))

		metrics := make(map[string]*models.VolatilityMetrics, len(quotes))
		for sym, q := range quotes {
			m := analytics.Compute(q, a.now())
			metrics[sym] = &m
		}

		pr := a.risk.AnalyzePortfolio(group, metrics)
		results[userID] = pr

		for _, alert := range pr.Alerts {
			a.log.Warn().Str("user", userID).Str("type", alert.Type).
				Str("severity", alert.Severity).Str("symbol", alert.Symbol).
				Msg(alert.Message)
		}
	}
	return results, nil
}

// PortfolioVolatility aggregates per-position volatility by owner. Each
// symbol is weighted by its share of portfolio market value at the
// current quote; positions without a quote are excluded.
func (a *Advisor) PortfolioVolatility(ctx context.Context) (map[string]models.PortfolioVolatility, error) {
	positions, err := a.store.GetAllPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	results := make(map[string]models.PortfolioVolatility)
	for userID, group := range groupByUser(positions) {
		quotes := a.quotes.GetQuotes(ctx, distinctSymbols(group))

		var weights []analytics.PositionWeight
		for _, pos := range group {
			q, ok := quotes[pos.Symbol]
			if !ok {
				a.log.Warn().Str("symbol", pos.Symbol).Str("user", userID).
					Msg("no quote for position, excluded from portfolio volatility")
				continue
			}
			m := analytics.Compute(q, a.now())
			weights = append(weights, analytics.PositionWeight{
				Symbol:        pos.Symbol,
				AnnualizedPct: m.AnnualizedPct,
				Weight:        pos.Quantity.InexactFloat64() * q.CurrentPrice,
			})
		}
		results[userID] = analytics.ComputePortfolio(weights)
	}
	return results, nil
}

// BackfillHistory records a day-close snapshot for every tracked symbol.
// Runs daily outside the trading window; reruns are idempotent.
func (a *Advisor) BackfillHistory(ctx context.Context) error {
	symbols, err := a.store.GetDistinctSymbols()
	if err != nil {
		return fmt.Errorf("failed to load tracked symbols: %w", err)
	}

	quotes := a.quotes.GetQuotes(ctx, symbols)
	day := a.now().Truncate(24 * time.Hour)

	stored := 0
	for sym, q := range quotes {
		h := &models.PriceHistoryDaily{
			Symbol:     sym,
			Date:       day,
			Close:      q.CurrentPrice,
			High30Day:  q.High30Day,
			High60Day:  q.High60Day,
			Volatility: q.Volatility,
		}
		if err := a.store.CreatePriceHistory(h); err != nil {
			a.log.Error().Err(err).Str("symbol", sym).Msg("failed to store history snapshot")
			continue
		}
		stored++
	}

	a.log.Info().Int("symbols", len(symbols)).Int("stored", stored).
		Msg("history backfill complete")
	return nil
}

// RecomputeVolatility refreshes volatility metrics for all tracked
// symbols and logs the elevated ones. Runs daily outside the window.
func (a *Advisor) RecomputeVolatility(ctx context.Context) error {
	symbols, err := a.store.GetDistinctSymbols()
	if err != nil {
		return fmt.Errorf("failed to load tracked symbols: %w", err)
	}

	quotes := a.quotes.GetQuotes(ctx, symbols)
	for sym, q := range quotes {
		m := analytics.Compute(q, a.now())
		if m.RiskLevel == models.VolRiskHigh || m.RiskLevel == models.VolRiskExtreme {
			a.log.Warn().Str("symbol", sym).Str("risk_level", m.RiskLevel).
				Float64("annualized_pct", m.AnnualizedPct).Msg("elevated volatility")
		}
	}

	portfolios, err := a.PortfolioVolatility(ctx)
	if err != nil {
		return err
	}
	for userID, pv := range portfolios {
		if pv.RiskLevel == models.VolRiskHigh || pv.RiskLevel == models.VolRiskExtreme {
			a.log.Warn().Str("user", userID).Str("risk_level", pv.RiskLevel).
				Float64("weighted_vol_pct", pv.WeightedVolPct).
				Float64("concentration", pv.ConcentrationRisk).
				Msg("elevated portfolio volatility")
		}
	}
	return nil
}

func groupByUser(positions []*models.Position) map[string][]*models.Position {
	groups := make(map[string][]*models.Position)
	for _, p := range positions {
		groups[p.UserID] = append(groups[p.UserID], p)
	}
	return groups
}

func distinctSymbols(positions []*models.Position) []string {
	seen := make(map[string]struct{}, len(positions))
	var symbols []string
	for _, p := range positions {
		if _, ok := seen[p.Symbol]; ok {
			continue
		}
		seen[p.Symbol] = struct{}{}
		symbols = append(symbols, p.Symbol)
	}
	return symbols
}
