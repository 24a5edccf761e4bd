// Package aggregator computes summary figures over a trade dataset. Every
// function is pure and accepts an empty dataset.
package aggregator

import (
	"math"
	"sort"
	"time"

	"github.com/bighogz/insider-tracker/internal/models"
)

type DateValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type TickerValue struct {
	Ticker string  `json:"ticker"`
	Value  float64 `json:"value"`
}

type DateRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

type Summary struct {
	TotalTrades       int       `json:"total_trades"`
	TotalValue        float64   `json:"total_value"`
	MeanTradeValue    float64   `json:"mean_trade_value"`
	BuyCount          int       `json:"buy_count"`
	SellCount         int       `json:"sell_count"`
	BuyValue          float64   `json:"buy_value"`
	SellValue         float64   `json:"sell_value"`
	UniqueTickerCount int       `json:"unique_ticker_count"`
	DateRange         DateRange `json:"date_range"`
}

func SumValueByTradeType(ds models.Dataset) map[models.TradeType]float64 {
	out := make(map[models.TradeType]float64)
	for _, t := range ds {
		out[t.TradeType] += value(t)
	}
	return out
}

// SumValueByDate totals value per calendar date, oldest first.
func SumValueByDate(ds models.Dataset) []DateValue {
	byDate := make(map[time.Time]float64)
	for _, t := range ds {
		byDate[models.Calendar(t.Date)] += value(t)
	}
	out := make([]DateValue, 0, len(byDate))
	for d, v := range byDate {
		out = append(out, DateValue{Date: d, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// TopTickersByVolume returns the n tickers with the highest total value.
// Equal totals are ordered by ticker.
func TopTickersByVolume(ds models.Dataset, n int) []TickerValue {
	if n <= 0 {
		return []TickerValue{}
	}
	byTicker := make(map[string]float64)
	for _, t := range ds {
		byTicker[t.Ticker] += value(t)
	}
	out := make([]TickerValue, 0, len(byTicker))
	for tk, v := range byTicker {
		out = append(out, TickerValue{Ticker: tk, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Ticker < out[j].Ticker
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func CountByTradeType(ds models.Dataset) map[models.TradeType]int {
	out := make(map[models.TradeType]int)
	for _, t := range ds {
		out[t.TradeType]++
	}
	return out
}

func SummaryStatistics(ds models.Dataset) Summary {
	var s Summary
	if len(ds) == 0 {
		return s
	}
	tickers := make(map[string]struct{})
	for _, t := range ds {
		v := value(t)
		s.TotalValue += v
		switch t.TradeType {
		case models.Buy:
			s.BuyCount++
			s.BuyValue += v
		case models.Sell:
			s.SellCount++
			s.SellValue += v
		}
		tickers[t.Ticker] = struct{}{}
	}
	s.TotalTrades = len(ds)
	s.MeanTradeValue = s.TotalValue / float64(len(ds))
	s.UniqueTickerCount = len(tickers)
	s.DateRange.Min, s.DateRange.Max, _ = ds.DateBounds()
	return s
}

// DefaultDateRange proposes initial filter bounds: the dataset's own span,
// shortened to the last days days when it is longer. An empty dataset
// yields [now-days, now].
func DefaultDateRange(ds models.Dataset, days int, now time.Time) DateRange {
	if days <= 0 {
		days = 30
	}
	lo, hi, ok := ds.DateBounds()
	if !ok {
		return DateRange{Min: now.AddDate(0, 0, -days), Max: now}
	}
	if limit := hi.AddDate(0, 0, -days); lo.Before(limit) {
		lo = limit
	}
	return DateRange{Min: lo, Max: hi}
}

// value guards the sums against non-finite input.
func value(t models.Trade) float64 {
	if math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
		return 0
	}
	return t.Value
}
