package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/trogers1052/portfolio-advisor/internal/advisor"
	"github.com/trogers1052/portfolio-advisor/internal/analytics"
	"github.com/trogers1052/portfolio-advisor/internal/database"
	"github.com/trogers1052/portfolio-advisor/internal/gateway"
	"github.com/trogers1052/portfolio-advisor/internal/models"
	"github.com/trogers1052/portfolio-advisor/internal/scheduler"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db      *database.DB
	gateway *gateway.Gateway
	advisor *advisor.Advisor
	sched   *scheduler.Scheduler
	log     zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(db *database.DB, gw *gateway.Gateway, adv *advisor.Advisor, sched *scheduler.Scheduler, log zerolog.Logger) *Handler {
	return &Handler{
		db:      db,
		gateway: gw,
		advisor: adv,
		sched:   sched,
		log:     log.With().Str("component", "api").Logger(),
	}
}

// GetQuote handles GET /quotes/{symbol}. A stale quote comes back as a
// 200 with the stale flag set, never as an error.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	quote, err := h.gateway.GetQuote(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, gateway.ErrNoData) {
			http.Error(w, "no data available for "+symbol, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// GetQuotes handles POST /quotes/batch. Partial success is the normal
// case; failed symbols are simply absent from the result.
func (h *Handler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Symbols) == 0 {
		http.Error(w, "symbols are required", http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, h.gateway.GetQuotes(r.Context(), req.Symbols))
}

// GetPositions handles GET /positions?user_id=...
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	var positions []*models.Position
	var err error
	if userID != "" {
		positions, err = h.db.GetPositionsByUser(userID)
	} else {
		positions, err = h.db.GetAllPositions()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, positions)
}

// AddPosition handles POST /positions
func (h *Handler) AddPosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string   `json:"user_id"`
		PortfolioID string   `json:"portfolio_id"`
		Symbol      string   `json:"symbol"`
		Quantity    float64  `json:"quantity"`
		EntryPrice  float64  `json:"entry_price"`
		StopLoss    *float64 `json:"stop_loss"`
		TakeProfit  *float64 `json:"take_profit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Symbol == "" {
		http.Error(w, "user_id and symbol are required", http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 || req.EntryPrice <= 0 {
		http.Error(w, "quantity and entry_price must be positive", http.StatusBadRequest)
		return
	}

	position := &models.Position{
		UserID:      req.UserID,
		PortfolioID: req.PortfolioID,
		Symbol:      req.Symbol,
		Quantity:    decimal.NewFromFloat(req.Quantity),
		EntryPrice:  decimal.NewFromFloat(req.EntryPrice),
		StopLoss:    req.StopLoss,
		TakeProfit:  req.TakeProfit,
	}
	if err := h.db.CreatePosition(position); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, position)
}

// RemovePosition handles DELETE /positions/{id}
func (h *Handler) RemovePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid position id", http.StatusBadRequest)
		return
	}

	if err := h.db.DeletePosition(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DecidePosition handles POST /positions/{id}/decide — an interactive
// recompute of one position's decision against a fresh quote.
func (h *Handler) DecidePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid position id", http.StatusBadRequest)
		return
	}

	position, err := h.db.GetPositionByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	quote, err := h.gateway.GetQuote(r.Context(), position.Symbol)
	if err != nil {
		http.Error(w, "no quote data for "+position.Symbol, http.StatusBadGateway)
		return
	}

	d := h.advisor.DecideAndPersist(r.Context(), position, quote)
	respondJSON(w, http.StatusOK, map[string]any{
		"decision": d,
		"quote":    quote,
	})
}

// GetPortfolioRisk handles GET /risk/portfolio?user_id=...
func (h *Handler) GetPortfolioRisk(w http.ResponseWriter, r *http.Request) {
	results, err := h.advisor.RecomputeRisk(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		pr, ok := results[userID]
		if !ok {
			http.Error(w, "no positions for user", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, pr)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// GetVolatility handles GET /analytics/{symbol}
func (h *Handler) GetVolatility(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	quote, err := h.gateway.GetQuote(r.Context(), symbol)
	if err != nil {
		http.Error(w, "no data available for "+symbol, http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, analytics.Compute(quote, time.Now()))
}

// GetPortfolioVolatility handles GET /analytics/portfolio?user_id=...
func (h *Handler) GetPortfolioVolatility(w http.ResponseWriter, r *http.Request) {
	results, err := h.advisor.PortfolioVolatility(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		pv, ok := results[userID]
		if !ok {
			http.Error(w, "no positions for user", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, pv)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// TriggerQuoteRefresh handles POST /refresh/quotes — the manual
// out-of-band invocation of the scheduled quote refresh.
func (h *Handler) TriggerQuoteRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.advisor.RefreshQuotes(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// TriggerDecisionRefresh handles POST /refresh/decisions
func (h *Handler) TriggerDecisionRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.advisor.RefreshDecisions(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// GetStatus handles GET /status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"providers": h.gateway.ProviderStates(),
		"cache":     h.gateway.CacheStats(),
	}
	if h.sched != nil {
		s := h.sched.Status()
		status["window_open"] = s.WindowOpen
		status["next_run"] = s.NextRun
	}
	respondJSON(w, http.StatusOK, status)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
