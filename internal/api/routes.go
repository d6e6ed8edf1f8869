package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Quotes
	api.HandleFunc("/quotes/{symbol}", handler.GetQuote).Methods("GET")
	api.HandleFunc("/quotes/batch", handler.GetQuotes).Methods("POST")

	// Positions
	api.HandleFunc("/positions", handler.GetPositions).Methods("GET")
	api.HandleFunc("/positions", handler.AddPosition).Methods("POST")
	api.HandleFunc("/positions/{id}", handler.RemovePosition).Methods("DELETE")
	api.HandleFunc("/positions/{id}/decide", handler.DecidePosition).Methods("POST")

	// Analytics and risk. The literal portfolio route must come before
	// the {symbol} wildcard.
	api.HandleFunc("/analytics/portfolio", handler.GetPortfolioVolatility).Methods("GET")
	api.HandleFunc("/analytics/{symbol}", handler.GetVolatility).Methods("GET")
	api.HandleFunc("/risk/portfolio", handler.GetPortfolioRisk).Methods("GET")

	// Manual refresh + status
	api.HandleFunc("/refresh/quotes", handler.TriggerQuoteRefresh).Methods("POST")
	api.HandleFunc("/refresh/decisions", handler.TriggerDecisionRefresh).Methods("POST")
	api.HandleFunc("/status", handler.GetStatus).Methods("GET")

	return r
}
