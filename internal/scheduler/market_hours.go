package scheduler

import (
	"fmt"
	"time"
)

// TradingWindow defines the active weekday window during which the
// high-frequency refresh jobs run. Hours are local to Location.
type TradingWindow struct {
	Location  *time.Location
	OpenHour  int
	CloseHour int
}

// NewTradingWindow resolves the timezone and builds the window
func NewTradingWindow(timezone string, openHour, closeHour int) (*TradingWindow, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid trading timezone %q: %w", timezone, err)
	}
	if openHour < 0 || closeHour > 23 {
		return nil, fmt.Errorf("trading window hours %d-%d must fall within 0-23", openHour, closeHour)
	}
	if openHour >= closeHour {
		return nil, fmt.Errorf("trading window open hour %d must precede close hour %d", openHour, closeHour)
	}
	return &TradingWindow{
		Location:  loc,
		OpenHour:  openHour,
		CloseHour: closeHour,
	}, nil
}

// Open reports whether the window is active at the given instant
func (w *TradingWindow) Open(now time.Time) bool {
	local := now.In(w.Location)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := local.Hour()
	return hour >= w.OpenHour && hour < w.CloseHour
}
