package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/portfolio-advisor/internal/models"
)

func TestPositionsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	stopLoss := 140.0
	takeProfit := 200.0

	t.Run("CreatePosition creates new position", func(t *testing.T) {
		testDB.TruncateAll(t)

		position := &models.Position{
			UserID:       "alice",
			PortfolioID:  "main",
			Symbol:       "AAPL",
			Quantity:     decimal.NewFromFloat(100),
			EntryPrice:   decimal.NewFromFloat(150.00),
			CurrentPrice: decimal.NewFromFloat(175.00),
			StopLoss:     &stopLoss,
			TakeProfit:   &takeProfit,
		}

		err := testDB.CreatePosition(position)
		require.NoError(t, err)
		assert.NotZero(t, position.ID)
		assert.False(t, position.CreatedAt.IsZero())
		assert.False(t, position.UpdatedAt.IsZero())
	})

	t.Run("GetPositionByID retrieves position", func(t *testing.T) {
		testDB.TruncateAll(t)

		position := &models.Position{
			UserID:     "alice",
			Symbol:     "GOOGL",
			Quantity:   decimal.NewFromFloat(50),
			EntryPrice: decimal.NewFromFloat(130.00),
			StopLoss:   &stopLoss,
		}
		err := testDB.CreatePosition(position)
		require.NoError(t, err)

		retrieved, err := testDB.GetPositionByID(position.ID)
		require.NoError(t, err)
		assert.Equal(t, "GOOGL", retrieved.Symbol)
		assert.True(t, decimal.NewFromFloat(50).Equal(retrieved.Quantity))
		assert.True(t, decimal.NewFromFloat(130.00).Equal(retrieved.EntryPrice))
		require.NotNil(t, retrieved.StopLoss)
		assert.Equal(t, 140.0, *retrieved.StopLoss)
		assert.Nil(t, retrieved.TakeProfit)
	})

	t.Run("GetPositionByID returns error for non-existent ID", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.GetPositionByID(99999)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("GetPositionsByUser filters by owner", func(t *testing.T) {
		testDB.TruncateAll(t)

		for _, p := range []*models.Position{
			{UserID: "alice", Symbol: "MSFT", Quantity: decimal.NewFromInt(25), EntryPrice: decimal.NewFromFloat(370.00)},
			{UserID: "alice", Symbol: "AAPL", Quantity: decimal.NewFromInt(10), EntryPrice: decimal.NewFromFloat(150.00)},
			{UserID: "bob", Symbol: "NVDA", Quantity: decimal.NewFromInt(5), EntryPrice: decimal.NewFromFloat(600.00)},
		} {
			require.NoError(t, testDB.CreatePosition(p))
		}

		positions, err := testDB.GetPositionsByUser("alice")
		require.NoError(t, err)
		require.Len(t, positions, 2)
		assert.Equal(t, "AAPL", positions[0].Symbol, "ordered by symbol")
		assert.Equal(t, "MSFT", positions[1].Symbol)
	})

	t.Run("GetAllPositions returns every position", func(t *testing.T) {
		testDB.TruncateAll(t)

		for _, p := range []*models.Position{
			{UserID: "bob", Symbol: "NVDA", Quantity: decimal.NewFromInt(5), EntryPrice: decimal.NewFromFloat(600.00)},
			{UserID: "alice", Symbol: "AAPL", Quantity: decimal.NewFromInt(10), EntryPrice: decimal.NewFromFloat(150.00)},
		} {
			require.NoError(t, testDB.CreatePosition(p))
		}

		positions, err := testDB.GetAllPositions()
		require.NoError(t, err)
		require.Len(t, positions, 2)
		assert.Equal(t, "alice", positions[0].UserID, "ordered by user then symbol")
	})

	t.Run("GetDistinctSymbols deduplicates across users", func(t *testing.T) {
		testDB.TruncateAll(t)

		for _, p := range []*models.Position{
			{UserID: "alice", Symbol: "AAPL", Quantity: decimal.NewFromInt(10), EntryPrice: decimal.NewFromFloat(150.00)},
			{UserID: "bob", Symbol: "AAPL", Quantity: decimal.NewFromInt(3), EntryPrice: decimal.NewFromFloat(160.00)},
			{UserID: "bob", Symbol: "MSFT", Quantity: decimal.NewFromInt(5), EntryPrice: decimal.NewFromFloat(370.00)},
		} {
			require.NoError(t, testDB.CreatePosition(p))
		}

		symbols, err := testDB.GetDistinctSymbols()
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
	})

	t.Run("UpdatePositionDecision writes back the refresh", func(t *testing.T) {
		testDB.TruncateAll(t)

		position := &models.Position{
			UserID:     "alice",
			Symbol:     "AAPL",
			Quantity:   decimal.NewFromInt(10),
			EntryPrice: decimal.NewFromFloat(150.00),
		}
		require.NoError(t, testDB.CreatePosition(position))

		err := testDB.UpdatePositionDecision(position.ID, 175.50, models.ActionBuy, "above entry", models.ColorGreen)
		require.NoError(t, err)

		retrieved, err := testDB.GetPositionByID(position.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ActionBuy, retrieved.Action)
		assert.Equal(t, "above entry", retrieved.Reason)
		assert.Equal(t, models.ColorGreen, retrieved.RiskColor)
		assert.True(t, decimal.NewFromFloat(175.50).Equal(retrieved.CurrentPrice))
	})

	t.Run("UpdatePositionDecision returns error for non-existent ID", func(t *testing.T) {
		testDB.TruncateAll(t)

		err := testDB.UpdatePositionDecision(99999, 100, models.ActionHold, "neutral signals", models.ColorYellow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("DeletePosition removes position", func(t *testing.T) {
		testDB.TruncateAll(t)

		position := &models.Position{
			UserID:     "alice",
			Symbol:     "AAPL",
			Quantity:   decimal.NewFromInt(10),
			EntryPrice: decimal.NewFromFloat(150.00),
		}
		require.NoError(t, testDB.CreatePosition(position))

		require.NoError(t, testDB.DeletePosition(position.ID))

		_, err := testDB.GetPositionByID(position.ID)
		require.Error(t, err)
	})

	t.Run("DeletePosition returns error for non-existent ID", func(t *testing.T) {
		testDB.TruncateAll(t)

		err := testDB.DeletePosition(99999)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
