// Package filter narrows a dataset by ticker, trade type and date range.
package filter

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bighogz/insider-tracker/internal/models"
)

// All in a ticker or trade type list disables that dimension.
const All = "All"

// Criteria selects trades. Empty sets and zero dates mean "no constraint".
type Criteria struct {
	Tickers    []string  `json:"tickers,omitempty" validate:"max=50,dive,min=1,max=5,alpha"`
	TradeTypes []string  `json:"trade_types,omitempty" validate:"dive,oneof=All Buy Sell Award/Exercise Conversion/Exercise Gift Other Unknown"`
	Start      time.Time `json:"start,omitempty"`
	End        time.Time `json:"end,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(func(sl validator.StructLevel) {
			c := sl.Current().Interface().(Criteria)
			if !c.Start.IsZero() && !c.End.IsZero() && models.Calendar(c.End).Before(models.Calendar(c.Start)) {
				sl.ReportError(c.End, "End", "End", "gtefield", "Start")
			}
		}, Criteria{})
	})
	return validate
}

// Validate checks list sizes, ticker shape, trade type names and date order.
func (c Criteria) Validate() error {
	return validatorInstance().Struct(c)
}

// Apply returns the trades of ds matching every constraint in c. ds is not
// modified and the result never aliases it.
func Apply(ds models.Dataset, c Criteria) models.Dataset {
	tickers := set(c.Tickers, strings.ToUpper)
	types := set(c.TradeTypes, func(s string) string { return s })
	var lo, hi time.Time
	if !c.Start.IsZero() {
		lo = models.Calendar(c.Start)
	}
	if !c.End.IsZero() {
		hi = models.Calendar(c.End)
	}

	out := make(models.Dataset, 0, len(ds))
	for _, t := range ds {
		if tickers != nil && !tickers[strings.ToUpper(t.Ticker)] {
			continue
		}
		if types != nil && !types[string(t.TradeType)] {
			continue
		}
		d := models.Calendar(t.Date)
		if !lo.IsZero() && d.Before(lo) {
			continue
		}
		if !hi.IsZero() && d.After(hi) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// set returns nil when vals is empty or selects All.
func set(vals []string, norm func(string) string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, All) {
			return nil
		}
		if v != "" {
			m[norm(v)] = true
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// ParseQuery reads ticker, trade_type, start and end. List parameters may
// repeat or hold comma separated values; dates are YYYY-MM-DD.
func ParseQuery(q url.Values) (Criteria, error) {
	c := Criteria{
		Tickers:    list(q["ticker"]),
		TradeTypes: list(q["trade_type"]),
	}
	var err error
	if c.Start, err = date(q.Get("start")); err != nil {
		return Criteria{}, fmt.Errorf("start: %w", err)
	}
	if c.End, err = date(q.Get("end")); err != nil {
		return Criteria{}, fmt.Errorf("end: %w", err)
	}
	return c, nil
}

func list(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, p := range strings.Split(r, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func date(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(models.DateLayout, s)
}
