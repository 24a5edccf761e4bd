package dashboard

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/insider-tracker/internal/filter"
	"github.com/bighogz/insider-tracker/internal/models"
	"github.com/bighogz/insider-tracker/internal/source"
)

func day(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func result() source.Result {
	return source.Result{
		Origin:   source.OriginSEC,
		LoadedAt: day("2024-01-10"),
		Dataset: models.Dataset{
			{Ticker: "AAPL", Insider: "Cook", Title: "CEO", TradeType: models.Buy, Shares: 100, Price: 150, Value: 15000, Date: day("2024-01-01")},
			{Ticker: "AAPL", Insider: "Adams", Title: "Director", TradeType: models.Sell, Shares: 50, Price: 150, Value: 7500, Date: day("2024-01-02")},
			{Ticker: "NVDA", Insider: "Huang", Title: "CEO", TradeType: models.Gift, Shares: 10, Price: 0, Value: 0, Date: day("2024-01-04")},
		},
	}
}

func TestBuildUnfiltered(t *testing.T) {
	p := Build(result(), filter.Criteria{})

	assert.Equal(t, "sec-api", p.Source)
	assert.False(t, p.Synthetic)
	assert.Empty(t, p.Fallback)
	assert.Equal(t, "2024-01-10T00:00:00Z", p.LoadedAt)
	assert.Equal(t, 3, p.Metrics.TotalTrades)
	assert.Equal(t, "$22.50K", p.Metrics.TotalValue)
	assert.Equal(t, "$7.50K", p.Metrics.AverageValue)
	assert.Equal(t, map[models.TradeType]float64{models.Buy: 15000, models.Sell: 7500}, p.BuySell)
	assert.Equal(t, map[models.TradeType]int{models.Buy: 1, models.Sell: 1, models.Gift: 1}, p.Distribution)
	require.Len(t, p.TopTickers, 2)
	assert.Equal(t, "AAPL", p.TopTickers[0].Ticker)
	assert.Len(t, p.Volume, 3)
	assert.Equal(t, []string{"All", "AAPL", "NVDA"}, p.Options.Tickers)
	assert.Equal(t, []string{"All", "Buy", "Gift", "Sell"}, p.Options.TradeTypes)
	assert.Equal(t, "2024-01-01", p.Options.MinDate)
	assert.Equal(t, "2024-01-04", p.Options.MaxDate)
	assert.Equal(t, []Insider{{Name: "Cook", Title: "CEO", Value: 15000}, {Name: "Adams", Title: "Director", Value: 7500}}, p.TopInsiders["AAPL"])

	require.Len(t, p.Rows, 3)
	assert.Equal(t, "$150.00", p.Rows[0].PriceDisplay)
	assert.Equal(t, "$15,000", p.Rows[0].ValueDisplay)
	assert.Equal(t, "2024-01-01", p.Rows[0].Date)
}

func TestBuildFiltered(t *testing.T) {
	c := filter.Criteria{Tickers: []string{"AAPL"}, TradeTypes: []string{"All"}, Start: day("2024-01-02"), End: day("2024-01-02")}
	p := Build(result(), c)

	require.Len(t, p.Rows, 1)
	assert.Equal(t, "Sell", p.Rows[0].TradeType)
	assert.Equal(t, 1, p.Metrics.SellTrades)
	assert.Equal(t, 0, p.Metrics.BuyTrades)
	assert.Len(t, p.Options.Tickers, 3)
}

func TestBuildEmptySelection(t *testing.T) {
	p := Build(result(), filter.Criteria{Tickers: []string{"TSLA"}})
	assert.Equal(t, 0, p.Summary.TotalTrades)
	assert.Equal(t, "$0", p.Metrics.TotalValue)
	assert.NotNil(t, p.Rows)
	assert.Empty(t, p.TopTickers)

	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"rows":[]`)
}

func TestBuildSynthetic(t *testing.T) {
	res := result()
	res.Origin = source.OriginSynthetic
	res.Err = &source.FetchError{Mode: "recent", Kind: source.Transport, Err: errors.New("timeout")}
	p := Build(res, filter.Criteria{})
	assert.True(t, p.Synthetic)
	assert.Equal(t, "transport", p.Fallback)
}
