// Package dashboard assembles the JSON payload served to the tracker UI.
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/bighogz/insider-tracker/internal/aggregator"
	"github.com/bighogz/insider-tracker/internal/filter"
	"github.com/bighogz/insider-tracker/internal/format"
	"github.com/bighogz/insider-tracker/internal/models"
	"github.com/bighogz/insider-tracker/internal/source"
)

const (
	topTickers  = 10
	topInsiders = 5
)

type Metrics struct {
	TotalTrades  int    `json:"total_trades"`
	BuyTrades    int    `json:"buy_trades"`
	SellTrades   int    `json:"sell_trades"`
	TotalValue   string `json:"total_value"`
	AverageValue string `json:"average_value"`
}

type Options struct {
	Tickers    []string `json:"tickers"`
	TradeTypes []string `json:"trade_types"`
	MinDate    string   `json:"min_date,omitempty"`
	MaxDate    string   `json:"max_date,omitempty"`
}

type Row struct {
	Ticker          string  `json:"ticker"`
	Insider         string  `json:"insider"`
	Title           string  `json:"title"`
	TradeType       string  `json:"trade_type"`
	Shares          float64 `json:"shares"`
	Price           float64 `json:"price"`
	Value           float64 `json:"value"`
	PriceDisplay    string  `json:"price_display"`
	ValueDisplay    string  `json:"value_display"`
	Date            string  `json:"date"`
	SecurityType    string  `json:"security_type,omitempty"`
	TransactionCode string  `json:"transaction_code,omitempty"`
}

type Insider struct {
	Name  string  `json:"name"`
	Title string  `json:"title"`
	Value float64 `json:"value"`
}

type Payload struct {
	Source       string                       `json:"source"`
	Synthetic    bool                         `json:"synthetic"`
	Fallback     string                       `json:"fallback_reason,omitempty"`
	LoadedAt     string                       `json:"loaded_at"`
	Summary      aggregator.Summary           `json:"summary"`
	Metrics      Metrics                      `json:"metrics"`
	BuySell      map[models.TradeType]float64 `json:"buy_sell"`
	Volume       []aggregator.DateValue       `json:"volume"`
	TopTickers   []aggregator.TickerValue     `json:"top_tickers"`
	Distribution map[models.TradeType]int     `json:"distribution"`
	TopInsiders  map[string][]Insider         `json:"top_insiders"`
	Options      Options                      `json:"options"`
	Criteria     filter.Criteria              `json:"criteria"`
	Rows         []Row                        `json:"rows"`
}

// Build filters the loaded dataset by c and summarizes the result. Options
// describe the unfiltered dataset.
func Build(res source.Result, c filter.Criteria) Payload {
	ds := res.Dataset
	filtered := filter.Apply(ds, c)
	summary := aggregator.SummaryStatistics(filtered)

	byType := aggregator.SumValueByTradeType(filtered)
	buySell := map[models.TradeType]float64{
		models.Buy:  byType[models.Buy],
		models.Sell: byType[models.Sell],
	}

	p := Payload{
		Source:    string(res.Origin),
		Synthetic: res.Synthetic(),
		LoadedAt:  res.LoadedAt.UTC().Format(time.RFC3339),
		Summary:   summary,
		Metrics: Metrics{
			TotalTrades:  summary.TotalTrades,
			BuyTrades:    summary.BuyCount,
			SellTrades:   summary.SellCount,
			TotalValue:   format.Currency(summary.TotalValue),
			AverageValue: format.Currency(summary.MeanTradeValue),
		},
		BuySell:      buySell,
		Volume:       aggregator.SumValueByDate(filtered),
		TopTickers:   aggregator.TopTickersByVolume(filtered, topTickers),
		Distribution: aggregator.CountByTradeType(filtered),
		TopInsiders:  topInsidersByTicker(filtered),
		Options:      options(ds),
		Criteria:     c,
		Rows:         rows(filtered),
	}
	if res.Err != nil {
		p.Fallback = source.KindOf(res.Err).String()
	}
	return p
}

func options(ds models.Dataset) Options {
	o := Options{
		Tickers:    append([]string{filter.All}, ds.Tickers()...),
		TradeTypes: []string{filter.All},
	}
	for _, t := range ds.TradeTypes() {
		o.TradeTypes = append(o.TradeTypes, string(t))
	}
	if lo, hi, ok := ds.DateBounds(); ok {
		o.MinDate = lo.Format(models.DateLayout)
		o.MaxDate = hi.Format(models.DateLayout)
	}
	return o
}

func rows(ds models.Dataset) []Row {
	out := make([]Row, 0, len(ds))
	for _, t := range ds {
		out = append(out, Row{
			Ticker:          t.Ticker,
			Insider:         t.Insider,
			Title:           t.Title,
			TradeType:       string(t.TradeType),
			Shares:          t.Shares,
			Price:           t.Price,
			Value:           t.Value,
			PriceDisplay:    fmt.Sprintf("$%.2f", t.Price),
			ValueDisplay:    "$" + format.Number(t.Value),
			Date:            t.Date.Format(models.DateLayout),
			SecurityType:    string(t.SecurityType),
			TransactionCode: t.TransactionCode,
		})
	}
	return out
}

// topInsidersByTicker keeps the highest-value insiders per ticker.
func topInsidersByTicker(ds models.Dataset) map[string][]Insider {
	type key struct{ ticker, name string }
	totals := make(map[key]*Insider)
	byTicker := make(map[string][]*Insider)
	for _, t := range ds {
		k := key{t.Ticker, t.Insider}
		ins, ok := totals[k]
		if !ok {
			ins = &Insider{Name: t.Insider, Title: t.Title}
			totals[k] = ins
			byTicker[t.Ticker] = append(byTicker[t.Ticker], ins)
		}
		ins.Value += t.Value
	}
	out := make(map[string][]Insider, len(byTicker))
	for tk, lst := range byTicker {
		sort.Slice(lst, func(i, j int) bool {
			if lst[i].Value != lst[j].Value {
				return lst[i].Value > lst[j].Value
			}
			return lst[i].Name < lst[j].Name
		})
		if len(lst) > topInsiders {
			lst = lst[:topInsiders]
		}
		flat := make([]Insider, len(lst))
		for i, ins := range lst {
			flat[i] = *ins
		}
		out[tk] = flat
	}
	return out
}
