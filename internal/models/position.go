package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents a single ticker holding within a user's portfolio
type Position struct {
	ID           int             `json:"id"`
	UserID       string          `json:"user_id"`
	PortfolioID  string          `json:"portfolio_id,omitempty"`
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	EntryPrice   decimal.Decimal `json:"entry_price"`
	StopLoss     *float64        `json:"stop_loss,omitempty"`
	TakeProfit   *float64        `json:"take_profit,omitempty"`
	CurrentPrice decimal.Decimal `json:"current_price,omitempty"`
	Action       string          `json:"action,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	RiskColor    string          `json:"risk_color,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MarketValue returns quantity times current price.
func (p *Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.CurrentPrice)
}
