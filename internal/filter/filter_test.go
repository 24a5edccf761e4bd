package filter

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/insider-tracker/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixture() models.Dataset {
	return models.Dataset{
		{Ticker: "AAPL", Insider: "A", TradeType: models.Buy, Shares: 100, Price: 150, Value: 15000, Date: day("2024-01-01")},
		{Ticker: "AAPL", Insider: "B", TradeType: models.Sell, Shares: 50, Price: 150, Value: 7500, Date: day("2024-01-02").Add(15 * time.Hour)},
		{Ticker: "MSFT", Insider: "C", TradeType: models.Gift, Shares: 10, Price: 0, Value: 0, Date: day("2024-01-03")},
		{Ticker: "NVDA", Insider: "D", TradeType: models.Sell, Shares: 5, Price: 400, Value: 2000, Date: day("2024-01-05")},
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"no constraints", Criteria{}, []string{"A", "B", "C", "D"}},
		{"all keyword", Criteria{Tickers: []string{"All"}, TradeTypes: []string{"All"}}, []string{"A", "B", "C", "D"}},
		{"ticker", Criteria{Tickers: []string{"AAPL"}}, []string{"A", "B"}},
		{"ticker case insensitive", Criteria{Tickers: []string{"nvda"}}, []string{"D"}},
		{"trade type", Criteria{TradeTypes: []string{"Sell"}}, []string{"B", "D"}},
		{"several types", Criteria{TradeTypes: []string{"Buy", "Gift"}}, []string{"A", "C"}},
		{"inclusive single day", Criteria{Tickers: []string{"AAPL"}, TradeTypes: []string{"All"}, Start: day("2024-01-02"), End: day("2024-01-02")}, []string{"B"}},
		{"open start", Criteria{End: day("2024-01-02")}, []string{"A", "B"}},
		{"open end", Criteria{Start: day("2024-01-03")}, []string{"C", "D"}},
		{"no match", Criteria{Tickers: []string{"TSLA"}}, []string{}},
		{"inverted range", Criteria{Start: day("2024-01-05"), End: day("2024-01-01")}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(fixture(), tt.c)
			names := make([]string, 0, len(got))
			for _, tr := range got {
				names = append(names, tr.Insider)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestApplySingleDaySell(t *testing.T) {
	got := Apply(fixture(), Criteria{Tickers: []string{"AAPL"}, TradeTypes: []string{"All"}, Start: day("2024-01-02"), End: day("2024-01-02")})
	require.Len(t, got, 1)
	assert.Equal(t, models.Sell, got[0].TradeType)
	assert.Equal(t, 7500.0, got[0].Value)
}

func TestApplyIdempotentAndPure(t *testing.T) {
	ds := fixture()
	c := Criteria{TradeTypes: []string{"Sell"}, Start: day("2024-01-02")}
	once := Apply(ds, c)
	twice := Apply(once, c)
	assert.Equal(t, once, twice)
	assert.Equal(t, fixture(), ds)

	once[0].Ticker = "XXX"
	assert.Equal(t, "AAPL", ds[1].Ticker)
}

func TestApplyEmpty(t *testing.T) {
	got := Apply(nil, Criteria{Tickers: []string{"AAPL"}})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestValidate(t *testing.T) {
	many := make([]string, 51)
	for i := range many {
		many[i] = "AAPL"
	}
	tests := []struct {
		name    string
		c       Criteria
		wantErr bool
	}{
		{"zero", Criteria{}, false},
		{"valid", Criteria{Tickers: []string{"AAPL", "All"}, TradeTypes: []string{"Award/Exercise", "All"}, Start: day("2024-01-01"), End: day("2024-01-01")}, false},
		{"ticker too long", Criteria{Tickers: []string{"TOOLONG"}}, true},
		{"ticker not letters", Criteria{Tickers: []string{"A1"}}, true},
		{"too many tickers", Criteria{Tickers: many}, true},
		{"unknown trade type", Criteria{TradeTypes: []string{"Short"}}, true},
		{"end before start", Criteria{Start: day("2024-01-02"), End: day("2024-01-01")}, true},
		{"only end", Criteria{End: day("2024-01-01")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	q := url.Values{}
	q.Add("ticker", "AAPL, msft")
	q.Add("ticker", "NVDA")
	q.Add("trade_type", "Buy")
	q.Set("start", "2024-01-01")
	q.Set("end", "2024-01-31")

	c, err := ParseQuery(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "msft", "NVDA"}, c.Tickers)
	assert.Equal(t, []string{"Buy"}, c.TradeTypes)
	assert.Equal(t, day("2024-01-01"), c.Start)
	assert.Equal(t, day("2024-01-31"), c.End)

	c, err = ParseQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Criteria{}, c)

	_, err = ParseQuery(url.Values{"start": {"01/02/2024"}})
	assert.ErrorContains(t, err, "start")
}
