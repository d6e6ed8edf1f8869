package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

// CreatePosition inserts a new position
func (db *DB) CreatePosition(p *models.Position) error {
	query := `
		INSERT INTO positions (
			user_id, portfolio_id, symbol, quantity, entry_price,
			stop_loss, take_profit, current_price, action, reason, risk_color,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		p.UserID, p.PortfolioID, p.Symbol, p.Quantity, p.EntryPrice,
		p.StopLoss, p.TakeProfit, p.CurrentPrice, p.Action, p.Reason, p.RiskColor,
		now, now,
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetPositionByID retrieves a position by ID
func (db *DB) GetPositionByID(id int) (*models.Position, error) {
	query := selectPositions + ` WHERE id = $1`
	return db.scanSinglePosition(db.conn.QueryRow(query, id))
}

// GetPositionsByUser retrieves all positions owned by a user
func (db *DB) GetPositionsByUser(userID string) ([]*models.Position, error) {
	query := selectPositions + ` WHERE user_id = $1 ORDER BY symbol ASC`
	return db.scanPositions(db.conn.Query(query, userID))
}

// GetAllPositions retrieves every position, grouped by owner
func (db *DB) GetAllPositions() ([]*models.Position, error) {
	query := selectPositions + ` ORDER BY user_id ASC, symbol ASC`
	return db.scanPositions(db.conn.Query(query))
}

// GetDistinctSymbols returns the distinct set of tickers across positions
func (db *DB) GetDistinctSymbols() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT symbol FROM positions ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// UpdatePositionDecision writes back the refreshed price, action, reason
// and risk color for one position.
func (db *DB) UpdatePositionDecision(id int, currentPrice float64, action, reason, riskColor string) error {
	query := `
		UPDATE positions
		SET current_price = $2, action = $3, reason = $4, risk_color = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := db.conn.Exec(query, id, currentPrice, action, reason, riskColor, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update position decision: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("position not found: %d", id)
	}
	return nil
}

// DeletePosition removes a position
func (db *DB) DeletePosition(id int) error {
	result, err := db.conn.Exec(`DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("position not found: %d", id)
	}
	return nil
}

const selectPositions = `
	SELECT id, user_id, portfolio_id, symbol, quantity, entry_price,
	       stop_loss, take_profit, current_price, action, reason, risk_color,
	       created_at, updated_at
	FROM positions`

func (db *DB) scanSinglePosition(row *sql.Row) (*models.Position, error) {
	var p models.Position
	var portfolioID, action, reason, riskColor sql.NullString
	var stopLoss, takeProfit sql.NullFloat64

	err := row.Scan(
		&p.ID, &p.UserID, &portfolioID, &p.Symbol, &p.Quantity, &p.EntryPrice,
		&stopLoss, &takeProfit, &p.CurrentPrice, &action, &reason, &riskColor,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("position not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	applyNullablePositionFields(&p, portfolioID, action, reason, riskColor, stopLoss, takeProfit)
	return &p, nil
}

func (db *DB) scanPositions(rows *sql.Rows, err error) ([]*models.Position, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		var p models.Position
		var portfolioID, action, reason, riskColor sql.NullString
		var stopLoss, takeProfit sql.NullFloat64

		err := rows.Scan(
			&p.ID, &p.UserID, &portfolioID, &p.Symbol, &p.Quantity, &p.EntryPrice,
			&stopLoss, &takeProfit, &p.CurrentPrice, &action, &reason, &riskColor,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		applyNullablePositionFields(&p, portfolioID, action, reason, riskColor, stopLoss, takeProfit)
		positions = append(positions, &p)
	}
	return positions, rows.Err()
}

func applyNullablePositionFields(p *models.Position, portfolioID, action, reason, riskColor sql.NullString, stopLoss, takeProfit sql.NullFloat64) {
	if portfolioID.Valid {
		p.PortfolioID = portfolioID.String
	}
	if action.Valid {
		p.Action = action.String
	}
	if reason.Valid {
		p.Reason = reason.String
	}
	if riskColor.Valid {
		p.RiskColor = riskColor.String
	}
	if stopLoss.Valid {
		p.StopLoss = &stopLoss.Float64
	}
	if takeProfit.Valid {
		p.TakeProfit = &takeProfit.Float64
	}
}
