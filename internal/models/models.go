package models

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type TradeType string

const (
	Buy                TradeType = "Buy"
	Sell               TradeType = "Sell"
	AwardExercise      TradeType = "Award/Exercise"
	ConversionExercise TradeType = "Conversion/Exercise"
	Gift               TradeType = "Gift"
	Other              TradeType = "Other"
	Unknown            TradeType = "Unknown"
)

// AllTradeTypes lists every category a normalized trade can carry.
func AllTradeTypes() []TradeType {
	return []TradeType{Buy, Sell, AwardExercise, ConversionExercise, Gift, Other, Unknown}
}

func (t TradeType) Valid() bool {
	for _, v := range AllTradeTypes() {
		if t == v {
			return true
		}
	}
	return false
}

type SecurityType string

const (
	NonDerivative SecurityType = "Non-Derivative"
	Derivative    SecurityType = "Derivative"
)

type Trade struct {
	Ticker          string       `json:"ticker" validate:"required"`
	Insider         string       `json:"insider" validate:"required"`
	Title           string       `json:"title"`
	TradeType       TradeType    `json:"trade_type" validate:"required,oneof=Buy Sell Award/Exercise Conversion/Exercise Gift Other Unknown"`
	Shares          float64      `json:"shares" validate:"gte=0"`
	Price           float64      `json:"price" validate:"gte=0"`
	Value           float64      `json:"value" validate:"gte=0"`
	Date            time.Time    `json:"date" validate:"required"`
	SecurityType    SecurityType `json:"security_type,omitempty"`
	TransactionCode string       `json:"transaction_code,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate reports whether t satisfies the normalized schema.
func (t Trade) Validate() error {
	validateOnce.Do(func() { validate = validator.New() })
	for _, f := range []float64{t.Shares, t.Price, t.Value} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("trade %s: non-finite numeric field", t.Ticker)
		}
	}
	if err := validate.Struct(t); err != nil {
		return err
	}
	if want := ComputeValue(t.Shares, t.Price); math.Abs(want-t.Value) > 1e-6*math.Max(1, want) {
		return fmt.Errorf("trade %s: value %.2f does not match shares*price %.2f", t.Ticker, t.Value, want)
	}
	return nil
}

// ComputeValue returns shares*price, or 0 unless both are non-zero finite
// numbers with a finite product.
func ComputeValue(shares, price float64) float64 {
	if shares == 0 || price == 0 {
		return 0
	}
	if math.IsNaN(shares) || math.IsNaN(price) || math.IsInf(shares, 0) || math.IsInf(price, 0) {
		return 0
	}
	v := shares * price
	if math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Calendar truncates t to its calendar date, expressed as UTC midnight.
func Calendar(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const DateLayout = "2006-01-02"

// Dataset is produced once per load and treated as read-only afterwards.
type Dataset []Trade

func (ds Dataset) Clone() Dataset {
	if ds == nil {
		return nil
	}
	out := make(Dataset, len(ds))
	copy(out, ds)
	return out
}

// Tickers returns the sorted unique tickers present.
func (ds Dataset) Tickers() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, t := range ds {
		if !seen[t.Ticker] {
			seen[t.Ticker] = true
			out = append(out, t.Ticker)
		}
	}
	sort.Strings(out)
	return out
}

// TradeTypes returns the sorted unique trade types present.
func (ds Dataset) TradeTypes() []TradeType {
	seen := make(map[TradeType]bool)
	out := make([]TradeType, 0)
	for _, t := range ds {
		if !seen[t.TradeType] {
			seen[t.TradeType] = true
			out = append(out, t.TradeType)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DateBounds returns the earliest and latest trade dates; ok is false for an empty dataset.
func (ds Dataset) DateBounds() (min, max time.Time, ok bool) {
	for i, t := range ds {
		if i == 0 || t.Date.Before(min) {
			min = t.Date
		}
		if i == 0 || t.Date.After(max) {
			max = t.Date
		}
	}
	return min, max, len(ds) > 0
}
