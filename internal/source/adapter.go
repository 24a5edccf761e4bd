// Package source retrieves filings and turns them into datasets. Adapters
// report failures as *FetchError; Loader applies the synthetic fallback.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/bighogz/insider-tracker/internal/models"
	"github.com/bighogz/insider-tracker/internal/normalize"
	"github.com/bighogz/insider-tracker/internal/secapi"
	"github.com/bighogz/insider-tracker/internal/symbols"
	"github.com/bighogz/insider-tracker/internal/telemetry"
)

// Querier is the filing search transport.
type Querier interface {
	Query(ctx context.Context, req secapi.Request) (*secapi.Response, error)
}

const (
	modeSymbol = "symbol"
	modeRecent = "recent"
	modeMulti  = "multi"
)

type Adapter struct {
	PageSize     int
	Delay        time.Duration
	MaxSymbols   int
	ClipToWindow bool
	Now          func() time.Time

	querier    Querier
	normalizer *normalize.Normalizer
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *telemetry.Metrics
	sleep      func(context.Context, time.Duration) error
}

type Option func(*Adapter)

func WithLogger(l *slog.Logger) Option { return func(a *Adapter) { a.logger = l } }
func WithTracer(t trace.Tracer) Option { return func(a *Adapter) { a.tracer = t } }
func WithMetrics(m *telemetry.Metrics) Option { return func(a *Adapter) { a.metrics = m } }
func WithPageSize(n int) Option { return func(a *Adapter) { a.PageSize = n } }
func WithDelay(d time.Duration) Option { return func(a *Adapter) { a.Delay = d } }
func WithMaxSymbols(n int) Option { return func(a *Adapter) { a.MaxSymbols = n } }
func WithClipToWindow(clip bool) Option { return func(a *Adapter) { a.ClipToWindow = clip } }
func WithClock(now func() time.Time) Option { return func(a *Adapter) { a.Now = now } }

func NewAdapter(q Querier, n *normalize.Normalizer, opts ...Option) *Adapter {
	a := &Adapter{
		PageSize:   50,
		Delay:      time.Second,
		MaxSymbols: 3,
		Now:        time.Now,
		querier:    q,
		normalizer: n,
		logger:     slog.Default(),
		tracer:     tracenoop.NewTracerProvider().Tracer("source"),
		sleep:      sleepCtx,
	}
	for _, o := range opts {
		o(a)
	}
	a.logger = a.logger.With(slog.String("component", "source"))
	if a.normalizer == nil {
		a.normalizer = normalize.New(a.logger)
	}
	return a
}

func symbolQuery(symbol string) string {
	if symbol == "" {
		return "issuer.tradingSymbol:(" + strings.Join(symbols.DefaultBasket, " OR ") + ")"
	}
	return "issuer.tradingSymbol:" + symbol
}

// BySymbol fetches the first page of filings for symbol, or for the default
// basket when symbol is empty.
func (a *Adapter) BySymbol(ctx context.Context, symbol string) (models.Dataset, error) {
	return a.BySymbolPage(ctx, symbol, 0)
}

func (a *Adapter) BySymbolPage(ctx context.Context, symbol string, page int) (models.Dataset, error) {
	raw := strings.TrimSpace(symbol)
	symbol = symbols.Clean(raw)
	ctx, span := a.tracer.Start(ctx, "source.by_symbol", trace.WithAttributes(
		attribute.String("symbol", symbol), attribute.Int("page", page)))
	defer span.End()

	if raw != "" && symbol == "" {
		err := &FetchError{Mode: modeSymbol, Kind: Empty, Err: fmt.Errorf("%w %q", ErrInvalidSymbol, raw)}
		a.finish(ctx, span, modeSymbol, 0, err)
		return nil, err
	}
	ds, err := a.fetch(ctx, modeSymbol, secapi.NewRequest(symbolQuery(symbol), page, a.PageSize))
	a.finish(ctx, span, modeSymbol, len(ds), err)
	return ds, err
}

// Recent probes for filings whose report period lies in the last days
// days. When the probe finds data the default basket is fetched by symbol;
// the window only constrains the result when ClipToWindow is set.
func (a *Adapter) Recent(ctx context.Context, days int) (models.Dataset, error) {
	if days <= 0 {
		days = 30
	}
	ctx, span := a.tracer.Start(ctx, "source.recent", trace.WithAttributes(attribute.Int("days", days)))
	defer span.End()

	end := a.Now()
	start := end.AddDate(0, 0, -days)
	query := fmt.Sprintf("periodOfReport:[%s TO %s]", start.Format(models.DateLayout), end.Format(models.DateLayout))
	a.logger.InfoContext(ctx, "probing recent filings",
		slog.String("from", start.Format(models.DateLayout)),
		slog.String("to", end.Format(models.DateLayout)))

	ds, err := a.recent(ctx, query, start, end)
	a.finish(ctx, span, modeRecent, len(ds), err)
	return ds, err
}

func (a *Adapter) recent(ctx context.Context, query string, start, end time.Time) (models.Dataset, error) {
	resp, err := a.querier.Query(ctx, secapi.NewRequest(query, 0, a.PageSize))
	if err != nil {
		return nil, classify(modeRecent, err)
	}
	if resp == nil || resp.Transactions == nil {
		return nil, &FetchError{Mode: modeRecent, Kind: Structural, Err: errors.New("response has no transactions collection")}
	}
	if len(*resp.Transactions) == 0 {
		return nil, &FetchError{Mode: modeRecent, Kind: Empty, Err: errors.New("no filings in window")}
	}

	ds, err := a.BySymbol(ctx, "")
	if err != nil {
		return nil, relabel(modeRecent, err)
	}
	if !a.ClipToWindow {
		return ds, nil
	}
	lo, hi := models.Calendar(start), models.Calendar(end)
	clipped := make(models.Dataset, 0, len(ds))
	for _, t := range ds {
		d := models.Calendar(t.Date)
		if !d.Before(lo) && !d.After(hi) {
			clipped = append(clipped, t)
		}
	}
	if len(clipped) == 0 {
		return nil, &FetchError{Mode: modeRecent, Kind: Empty, Err: errors.New("no trades dated inside window")}
	}
	return clipped, nil
}

// Multi fetches up to MaxSymbols symbols one after another, waiting Delay
// between requests. A failing symbol is logged and skipped.
func (a *Adapter) Multi(ctx context.Context, syms []string) (models.Dataset, error) {
	if len(syms) == 0 {
		syms = symbols.DefaultMulti
	}
	if len(syms) > a.MaxSymbols {
		syms = syms[:a.MaxSymbols]
	}
	ctx, span := a.tracer.Start(ctx, "source.multi", trace.WithAttributes(
		attribute.StringSlice("symbols", syms)))
	defer span.End()

	ds, err := a.multi(ctx, syms)
	a.finish(ctx, span, modeMulti, len(ds), err)
	return ds, err
}

func (a *Adapter) multi(ctx context.Context, syms []string) (models.Dataset, error) {
	all := make(models.Dataset, 0)
	var lastErr error
	fetched := 0
	for _, sym := range syms {
		if symbols.Clean(sym) == "" {
			a.logger.WarnContext(ctx, "invalid symbol; skipping", slog.String("symbol", sym))
			lastErr = fmt.Errorf("%w %q", ErrInvalidSymbol, sym)
			continue
		}
		if fetched > 0 && a.Delay > 0 {
			if err := a.sleep(ctx, a.Delay); err != nil {
				lastErr = err
				break
			}
		}
		fetched++
		a.logger.InfoContext(ctx, "fetching symbol", slog.String("symbol", sym))
		ds, err := a.BySymbol(ctx, sym)
		if err != nil {
			a.logger.WarnContext(ctx, "symbol fetch failed; skipping",
				slog.String("symbol", sym), slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		all = append(all, ds...)
	}
	if len(all) == 0 {
		if lastErr == nil {
			lastErr = errors.New("no symbols returned trades")
		}
		return nil, &FetchError{Mode: modeMulti, Kind: Empty, Err: lastErr}
	}
	return all, nil
}

func (a *Adapter) fetch(ctx context.Context, mode string, req secapi.Request) (models.Dataset, error) {
	resp, err := a.querier.Query(ctx, req)
	if err != nil {
		return nil, classify(mode, err)
	}
	if resp == nil || resp.Transactions == nil {
		return nil, &FetchError{Mode: mode, Kind: Structural, Err: errors.New("response has no transactions collection")}
	}
	if len(*resp.Transactions) == 0 {
		return nil, &FetchError{Mode: mode, Kind: Empty, Err: errors.New("no filings found")}
	}

	ds, st := a.normalizer.Filings(*resp.Transactions)
	a.metrics.RecordNormalized(ctx, st.Trades, st.EntriesSkipped)
	a.logger.InfoContext(ctx, "normalized filings",
		slog.String("query", req.Query),
		slog.Int("filings", st.Filings),
		slog.Int("filings_skipped", st.FilingsSkipped),
		slog.Int("tables_skipped", st.TablesSkipped),
		slog.Int("entries", st.Entries),
		slog.Int("entries_skipped", st.EntriesSkipped),
		slog.Int("trades", st.Trades))
	if len(ds) == 0 {
		return nil, &FetchError{Mode: mode, Kind: Empty, Err: errors.New("no valid trades in filings")}
	}
	return ds, nil
}

func (a *Adapter) finish(ctx context.Context, span trace.Span, mode string, n int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("trades", n))
	a.metrics.RecordFetch(ctx, mode, outcome)
}

func classify(mode string, err error) error {
	if errors.Is(err, secapi.ErrMalformed) {
		return &FetchError{Mode: mode, Kind: Structural, Err: err}
	}
	return &FetchError{Mode: mode, Kind: Transport, Err: err}
}

// relabel attributes a nested adapter failure to mode, keeping its kind.
func relabel(mode string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return &FetchError{Mode: mode, Kind: fe.Kind, Err: fe.Err}
	}
	return &FetchError{Mode: mode, Kind: Transport, Err: err}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
