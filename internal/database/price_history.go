package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

// CreatePriceHistory records one day-close snapshot, upserting on
// (symbol, date) so backfill reruns are idempotent.
func (db *DB) CreatePriceHistory(h *models.PriceHistoryDaily) error {
	query := `
		INSERT INTO price_history_daily (symbol, date, close, high_30_day, high_60_day, volatility, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, date) DO UPDATE SET
			close = EXCLUDED.close,
			high_30_day = EXCLUDED.high_30_day,
			high_60_day = EXCLUDED.high_60_day,
			volatility = EXCLUDED.volatility
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		h.Symbol, h.Date, h.Close, h.High30Day, h.High60Day, h.Volatility, time.Now(),
	).Scan(&h.ID)

	if err != nil {
		return fmt.Errorf("failed to create price history: %w", err)
	}
	return nil
}

// GetPriceHistory retrieves up to limit snapshots for a symbol, most
// recent first.
func (db *DB) GetPriceHistory(symbol string, limit int) ([]*models.PriceHistoryDaily, error) {
	query := `
		SELECT id, symbol, date, close, high_30_day, high_60_day, volatility, created_at
		FROM price_history_daily
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var history []*models.PriceHistoryDaily
	for rows.Next() {
		var h models.PriceHistoryDaily
		var high30, high60, volatility sql.NullFloat64
		err := rows.Scan(&h.ID, &h.Symbol, &h.Date, &h.Close, &high30, &high60, &volatility, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price history: %w", err)
		}
		if high30.Valid {
			h.High30Day = high30.Float64
		}
		if high60.Valid {
			h.High60Day = high60.Float64
		}
		if volatility.Valid {
			h.Volatility = volatility.Float64
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}
