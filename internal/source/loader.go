package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bighogz/insider-tracker/internal/models"
	"github.com/bighogz/insider-tracker/internal/telemetry"
)

type Mode string

const (
	ModeRecent Mode = "recent"
	ModeSymbol Mode = "symbol"
	ModeMulti  Mode = "multi"
	ModeSample Mode = "sample"
)

// ParseMode maps user input to a Mode; unrecognized values select recent.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSymbol:
		return ModeSymbol
	case ModeMulti:
		return ModeMulti
	case ModeSample:
		return ModeSample
	default:
		return ModeRecent
	}
}

type Request struct {
	Mode    Mode
	Symbols []string
	Days    int
}

// Key identifies the request for caching.
func (r Request) Key() string {
	return fmt.Sprintf("%s|%s|%d", r.Mode, strings.Join(r.Symbols, ","), r.Days)
}

type Origin string

const (
	OriginSEC       Origin = "sec-api"
	OriginSynthetic Origin = "synthetic"
)

// Result is what the presentation layer receives. Dataset is never empty;
// Err records why synthetic data was substituted, if it was.
type Result struct {
	Dataset  models.Dataset
	Origin   Origin
	Err      error
	LoadedAt time.Time
}

func (r Result) Synthetic() bool { return r.Origin == OriginSynthetic }

// Generator produces the fallback dataset.
type Generator interface {
	Generate() models.Dataset
}

type Loader struct {
	adapter   *Adapter
	generator Generator
	logger    *slog.Logger
	metrics   *telemetry.Metrics
	now       func() time.Time
}

func NewLoader(a *Adapter, g Generator, logger *slog.Logger, metrics *telemetry.Metrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		adapter:   a,
		generator: g,
		logger:    logger.With(slog.String("component", "loader")),
		metrics:   metrics,
		now:       time.Now,
	}
}

// Load runs the adapter for req.Mode and falls back to synthetic data on any
// failure.
func (l *Loader) Load(ctx context.Context, req Request) Result {
	if req.Mode == ModeSample {
		return Result{Dataset: l.generator.Generate(), Origin: OriginSynthetic, LoadedAt: l.now()}
	}

	ds, err := l.fetch(ctx, req)
	if err == nil && len(ds) > 0 {
		return Result{Dataset: ds, Origin: OriginSEC, LoadedAt: l.now()}
	}
	if err == nil {
		err = &FetchError{Mode: string(req.Mode), Kind: Empty}
	}

	reason := KindOf(err).String()
	l.metrics.RecordFallback(ctx, reason)
	l.logger.WarnContext(ctx, "using synthetic dataset",
		slog.String("mode", string(req.Mode)),
		slog.String("reason", reason),
		slog.String("error", err.Error()))
	return Result{Dataset: l.generator.Generate(), Origin: OriginSynthetic, Err: err, LoadedAt: l.now()}
}

func (l *Loader) fetch(ctx context.Context, req Request) (models.Dataset, error) {
	switch req.Mode {
	case ModeSymbol:
		return l.adapter.BySymbol(ctx, first(req.Symbols))
	case ModeMulti:
		if len(req.Symbols) == 1 {
			return l.adapter.BySymbol(ctx, req.Symbols[0])
		}
		return l.adapter.Multi(ctx, req.Symbols)
	default:
		return l.adapter.Recent(ctx, req.Days)
	}
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
