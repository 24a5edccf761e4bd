package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/insider-tracker/internal/models"
	"github.com/bighogz/insider-tracker/internal/sample"
	"github.com/bighogz/insider-tracker/internal/source"
)

var fixedNow = time.Date(2024, 1, 31, 10, 30, 0, 0, time.UTC)

type fakeLoader struct {
	req source.Request
	res source.Result
}

func (f *fakeLoader) Load(ctx context.Context, req source.Request) source.Result {
	f.req = req
	return f.res
}

func day(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func appleLoader() *fakeLoader {
	return &fakeLoader{res: source.Result{
		Origin: source.OriginSEC,
		Dataset: models.Dataset{
			{Ticker: "AAPL", Insider: "Cook", TradeType: models.Buy, Shares: 100, Price: 150, Value: 15000, Date: day("2024-01-01")},
			{Ticker: "AAPL", Insider: "Adams", TradeType: models.Sell, Shares: 50, Price: 150, Value: 7500, Date: day("2024-01-02")},
		},
	}}
}

func TestRunSummary(t *testing.T) {
	fl := appleLoader()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-source", "symbol", "-symbol", "aapl"}, 30, fl, &out, func() time.Time { return fixedNow }))

	assert.Equal(t, source.Request{Mode: source.ModeSymbol, Symbols: []string{"AAPL"}}, fl.req)
	s := out.String()
	assert.Contains(t, s, "Loaded 2 trades from sec-api.")
	assert.Contains(t, s, "Total value:   $22.50K")
	assert.Contains(t, s, " 1. AAPL  $22.50K")
	assert.Contains(t, s, "Distribution: Buy=1 Sell=1")
	assert.Contains(t, s, "insider_trading_20240131_103000.csv")
}

func TestRunFilterAndExport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out.csv")
	xlsxPath := filepath.Join(dir, "out.xlsx")
	var out bytes.Buffer
	args := []string{"-ticker", "AAPL", "-start", "2024-01-02", "-end", "2024-01-02", "-list", "-csv", csvPath, "-xlsx", xlsxPath}
	require.NoError(t, run(context.Background(), args, 30, appleLoader(), &out, time.Now))

	assert.Contains(t, out.String(), "Total trades:  1")
	assert.Contains(t, out.String(), "Adams")
	assert.NotContains(t, out.String(), "Cook")

	body, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "AAPL,Adams,,Sell,50,150,7500,2024-01-02")

	info, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunSynthetic(t *testing.T) {
	fl := &fakeLoader{res: source.Result{
		Origin:  source.OriginSynthetic,
		Dataset: sample.NewSeeded(2, fixedNow).Generate(),
		Err:     &source.FetchError{Mode: "recent", Kind: source.Empty, Err: errors.New("no filings in window")},
	}}
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-days", "7"}, 30, fl, &out, time.Now))
	assert.Equal(t, source.Request{Mode: source.ModeRecent, Days: 7}, fl.req)
	assert.Contains(t, out.String(), "Using synthetic sample data (empty:")
	assert.Contains(t, out.String(), "Total trades:  50")
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	o, err := parseFlags([]string{"-source", "multi", "-symbols", "aapl,msft"}, 30, &stderr)
	require.NoError(t, err)
	assert.Equal(t, source.Request{Mode: source.ModeMulti, Symbols: []string{"AAPL", "MSFT"}}, o.req)
	assert.Equal(t, 10, o.top)

	_, err = parseFlags([]string{"-source", "symbol", "-symbol", "12"}, 30, &stderr)
	assert.Error(t, err)

	_, err = parseFlags([]string{"-trade-type", "Short"}, 30, &stderr)
	assert.ErrorContains(t, err, "invalid filter")

	_, err = parseFlags([]string{"-start", "2024/01/01"}, 30, &stderr)
	assert.Error(t, err)

	_, err = parseFlags([]string{"-bogus"}, 30, &stderr)
	assert.Error(t, err)
}
