package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/insider-tracker/internal/models"
)

func TestGenerate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ds := NewSeeded(42, now).Generate()
	require.Len(t, ds, Size)

	for _, tr := range ds {
		require.NoError(t, tr.Validate())
		assert.Contains(t, Tickers, tr.Ticker)
		assert.Contains(t, Insiders, tr.Insider)
		assert.Contains(t, Titles, tr.Title)
		assert.Contains(t, []models.TradeType{models.Buy, models.Sell}, tr.TradeType)
		assert.GreaterOrEqual(t, tr.Shares, 100.0)
		assert.LessOrEqual(t, tr.Shares, 10000.0)
		assert.GreaterOrEqual(t, tr.Price, 50.0)
		assert.LessOrEqual(t, tr.Price, 500.0)
		assert.Equal(t, tr.Shares*tr.Price, tr.Value)
		assert.False(t, tr.Date.After(now))
		assert.False(t, tr.Date.Before(now.AddDate(0, 0, -30)))
		assert.Empty(t, tr.SecurityType)
		assert.Empty(t, tr.TransactionCode)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, NewSeeded(7, now).Generate(), NewSeeded(7, now).Generate())
}

func TestPackageGenerate(t *testing.T) {
	assert.Len(t, Generate(), Size)
}
