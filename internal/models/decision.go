package models

// Action constants
const (
	ActionBuy  = "BUY"
	ActionHold = "HOLD"
	ActionSell = "SELL"
)

// Risk color constants
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorRed    = "red"
)

// Decision is the classification of a position against its latest quote
type Decision struct {
	Symbol string `json:"symbol"`
	Action string `json:"action"`
	Reason string `json:"reason"`
	Color  string `json:"color"`
	Score  int    `json:"score"`
}
