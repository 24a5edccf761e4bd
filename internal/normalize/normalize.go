// Package normalize turns raw filings into flat Trade records.
//
// Nothing here returns an error: an unreadable filing yields no trades, an
// unreadable child entry is skipped, and an unreadable field falls back to a
// safe default. Every degradation is logged.
package normalize

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/bighogz/insider-tracker/internal/models"
	"github.com/bighogz/insider-tracker/internal/secapi"
	"github.com/bighogz/insider-tracker/internal/txcode"
)

// Context is the filing-level data shared by all of its entries.
type Context struct {
	Ticker       string
	Insider      string
	Title        string
	SecurityType models.SecurityType
}

// Stats counts what a normalization pass saw.
type Stats struct {
	Filings        int
	FilingsSkipped int
	TablesSkipped  int
	Entries        int
	EntriesSkipped int
	DatesDefaulted int
	Trades         int
}

func (s *Stats) add(o Stats) {
	s.Filings += o.Filings
	s.FilingsSkipped += o.FilingsSkipped
	s.TablesSkipped += o.TablesSkipped
	s.Entries += o.Entries
	s.EntriesSkipped += o.EntriesSkipped
	s.DatesDefaulted += o.DatesDefaulted
	s.Trades += o.Trades
}

type Normalizer struct {
	Now    func() time.Time
	Logger *slog.Logger
}

func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{Now: time.Now, Logger: logger.With(slog.String("component", "normalize"))}
}

// Title derives an insider's title; officer wins over director, then
// ten-percent owner, then other.
func Title(rel secapi.Relationship) string {
	switch {
	case bool(rel.IsOfficer):
		return orDefault(rel.OfficerTitle.String(), "Officer")
	case bool(rel.IsDirector):
		return "Director"
	case bool(rel.IsTenPercentOwner):
		return "10% Owner"
	case bool(rel.IsOther):
		return orDefault(rel.OtherText.String(), "Other")
	}
	return "Unknown"
}

// FilingContext extracts the shared context; SecurityType is left for the caller.
func FilingContext(f secapi.Filing) Context {
	return Context{
		Ticker:  strings.ToUpper(strings.TrimSpace(f.Issuer.TradingSymbol.String())),
		Insider: orDefault(strings.TrimSpace(f.ReportingOwner.Name.String()), "Unknown"),
		Title:   Title(f.ReportingOwner.Relationship),
	}
}

// Entry normalizes one transaction entry. ok is false when raw is not a
// readable entry object.
func (n *Normalizer) Entry(raw json.RawMessage, ctx Context) (models.Trade, bool) {
	t, ok, _ := n.entry(raw, ctx)
	return t, ok
}

func (n *Normalizer) entry(raw json.RawMessage, ctx Context) (trade models.Trade, ok, dateDefaulted bool) {
	var e secapi.Entry
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		n.Logger.Warn("skipping transaction entry that is not an object",
			slog.String("ticker", ctx.Ticker),
			slog.String("security_type", string(ctx.SecurityType)))
		return models.Trade{}, false, false
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		n.Logger.Warn("skipping malformed transaction entry",
			slog.String("ticker", ctx.Ticker),
			slog.String("security_type", string(ctx.SecurityType)),
			slog.String("error", err.Error()))
		return models.Trade{}, false, false
	}

	code := e.Coding.Code.String()
	date, parsed := ParseDate(e.TransactionDate.String())
	if !parsed {
		date = n.now()
		n.Logger.Warn("unparseable transaction date; using current time",
			slog.String("ticker", ctx.Ticker),
			slog.String("transaction_date", e.TransactionDate.String()))
	}
	shares := n.amount(e.Amounts.Shares, "shares", ctx)
	price := n.amount(e.Amounts.PricePerShare, "price_per_share", ctx)
	if p := shares * price; math.IsInf(p, 0) {
		n.Logger.Warn("trade value overflows; using zero",
			slog.String("ticker", ctx.Ticker),
			slog.Float64("shares", shares),
			slog.Float64("price_per_share", price))
	}

	return models.Trade{
		Ticker:          ctx.Ticker,
		Insider:         ctx.Insider,
		Title:           ctx.Title,
		TradeType:       txcode.Map(code, e.Amounts.AcquiredDisposedCode.String()),
		Shares:          shares,
		Price:           price,
		Value:           models.ComputeValue(shares, price),
		Date:            date,
		SecurityType:    ctx.SecurityType,
		TransactionCode: code,
	}, true, !parsed
}

func (n *Normalizer) amount(v secapi.Number, field string, ctx Context) float64 {
	if !v.Valid {
		return 0
	}
	if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) || v.Value < 0 {
		n.Logger.Warn("invalid amount; using zero",
			slog.String("ticker", ctx.Ticker),
			slog.String("field", field),
			slog.Float64("value", v.Value))
		return 0
	}
	return v.Value
}

// filingParts decodes the filing context eagerly and leaves each table raw
// so a malformed table only costs its own entries.
type filingParts struct {
	Issuer             secapi.Issuer         `json:"issuer"`
	ReportingOwner     secapi.ReportingOwner `json:"reportingOwner"`
	NonDerivativeTable json.RawMessage       `json:"nonDerivativeTable"`
	DerivativeTable    json.RawMessage       `json:"derivativeTable"`
}

// Filing normalizes both transaction tables of one raw filing.
func (n *Normalizer) Filing(raw json.RawMessage) (models.Dataset, Stats) {
	st := Stats{Filings: 1}
	var parts filingParts
	if err := json.Unmarshal(raw, &parts); err != nil {
		n.Logger.Warn("skipping malformed filing", slog.String("error", err.Error()))
		st.FilingsSkipped++
		return nil, st
	}
	f := secapi.Filing{Issuer: parts.Issuer, ReportingOwner: parts.ReportingOwner}
	f.NonDerivativeTable = n.table(parts.NonDerivativeTable, models.NonDerivative, &st)
	f.DerivativeTable = n.table(parts.DerivativeTable, models.Derivative, &st)

	base := FilingContext(f)
	out := make(models.Dataset, 0, len(f.NonDerivativeTable.Transactions)+len(f.DerivativeTable.Transactions))
	tables := []struct {
		entries []json.RawMessage
		kind    models.SecurityType
	}{
		{f.NonDerivativeTable.Transactions, models.NonDerivative},
		{f.DerivativeTable.Transactions, models.Derivative},
	}
	for _, tbl := range tables {
		ctx := base
		ctx.SecurityType = tbl.kind
		for _, rawEntry := range tbl.entries {
			st.Entries++
			t, ok, defaulted := n.entry(rawEntry, ctx)
			if !ok {
				st.EntriesSkipped++
				continue
			}
			if defaulted {
				st.DatesDefaulted++
			}
			if err := t.Validate(); err != nil {
				n.Logger.Debug("normalized trade outside schema", slog.String("ticker", t.Ticker), slog.String("error", err.Error()))
			}
			out = append(out, t)
		}
	}
	st.Trades = len(out)
	return out, st
}

func (n *Normalizer) table(raw json.RawMessage, kind models.SecurityType, st *Stats) secapi.Table {
	var t secapi.Table
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return t
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		n.Logger.Warn("skipping malformed transaction table",
			slog.String("security_type", string(kind)),
			slog.String("error", err.Error()))
		st.TablesSkipped++
		return secapi.Table{}
	}
	return t
}

// Filings normalizes a collection and concatenates the results in input order.
func (n *Normalizer) Filings(raws []json.RawMessage) (models.Dataset, Stats) {
	var total Stats
	out := make(models.Dataset, 0)
	for _, raw := range raws {
		ds, st := n.Filing(raw)
		out = append(out, ds...)
		total.add(st)
	}
	return out, total
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

var dateLayouts = []string{
	models.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02-07:00",
	"2006-01-02Z07:00",
}

// ParseDate accepts ISO-like date and datetime strings.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
