package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeValue(t *testing.T) {
	tests := []struct {
		name          string
		shares, price float64
		want          float64
	}{
		{"both positive", 100, 150, 15000},
		{"zero shares", 0, 150, 0},
		{"zero price", 100, 0, 0},
		{"both zero", 0, 0, 0},
		{"nan price", 100, math.NaN(), 0},
		{"inf shares", math.Inf(1), 10, 0},
		{"product overflows", 1e200, 1e200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeValue(tt.shares, tt.price)
			assert.False(t, math.IsNaN(got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendar(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	got := Calendar(time.Date(2024, 1, 2, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestTradeValidate(t *testing.T) {
	valid := Trade{
		Ticker: "AAPL", Insider: "Tim Cook", Title: "CEO", TradeType: Sell,
		Shares: 10, Price: 2, Value: 20, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Value = 21
	assert.Error(t, bad.Validate())

	bad = valid
	bad.TradeType = "Hold"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Shares = -1
	bad.Value = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Insider = ""
	assert.Error(t, bad.Validate())
}

func TestDatasetHelpers(t *testing.T) {
	d1 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := Dataset{
		{Ticker: "MSFT", TradeType: Sell, Date: d1},
		{Ticker: "AAPL", TradeType: Buy, Date: d2},
		{Ticker: "MSFT", TradeType: Buy, Date: d1},
	}
	assert.Equal(t, []string{"AAPL", "MSFT"}, ds.Tickers())
	assert.Equal(t, []TradeType{Buy, Sell}, ds.TradeTypes())

	lo, hi, ok := ds.DateBounds()
	require.True(t, ok)
	assert.Equal(t, d2, lo)
	assert.Equal(t, d1, hi)

	_, _, ok = Dataset{}.DateBounds()
	assert.False(t, ok)

	c := ds.Clone()
	c[0].Ticker = "X"
	assert.Equal(t, "MSFT", ds[0].Ticker)
}

func TestTradeTypeValid(t *testing.T) {
	for _, tt := range AllTradeTypes() {
		assert.True(t, tt.Valid())
	}
	assert.False(t, TradeType("Hold").Valid())
}
