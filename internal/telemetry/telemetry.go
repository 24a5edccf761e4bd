// Package telemetry wires OpenTelemetry tracing and metrics for the fetch
// pipeline. Metrics are exported in Prometheus format.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	ServiceName = "insider-tracker"
	scopeName   = "github.com/bighogz/insider-tracker"
)

type Options struct {
	Tracing     bool
	Metrics     bool
	TraceWriter io.Writer // stdout when nil
}

type Providers struct {
	Tracer  trace.Tracer
	Metrics *Metrics

	// MetricsHandler serves /metrics; nil when metrics are disabled.
	MetricsHandler http.Handler

	shutdown []func(context.Context) error
}

// Init builds tracer and meter providers. Disabled signals get no-op providers.
func Init(opts Options, logger *slog.Logger) (*Providers, error) {
	res := resource.NewSchemaless(attribute.String("service.name", ServiceName))
	p := &Providers{Tracer: tracenoop.NewTracerProvider().Tracer(scopeName)}

	if opts.Tracing {
		w := opts.TraceWriter
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		p.Tracer = tp.Tracer(scopeName)
		p.shutdown = append(p.shutdown, tp.Shutdown)
	}

	var meter metric.Meter = metricnoop.NewMeterProvider().Meter(scopeName)
	if opts.Metrics {
		reg := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		meter = mp.Meter(scopeName)
		p.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		p.shutdown = append(p.shutdown, mp.Shutdown)
	}

	m, err := NewMetrics(meter)
	if err != nil {
		return nil, err
	}
	p.Metrics = m

	logger.Info("telemetry initialized",
		slog.Bool("tracing", opts.Tracing),
		slog.Bool("metrics", opts.Metrics))
	return p, nil
}

// Noop returns providers that record nothing.
func Noop() *Providers {
	m, _ := NewMetrics(metricnoop.NewMeterProvider().Meter(scopeName))
	return &Providers{
		Tracer:  tracenoop.NewTracerProvider().Tracer(scopeName),
		Metrics: m,
	}
}

func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Metrics holds the pipeline instruments. All methods are nil-safe.
type Metrics struct {
	fetches       metric.Int64Counter
	fallbacks     metric.Int64Counter
	normalized    metric.Int64Counter
	skipped       metric.Int64Counter
	queryDuration metric.Float64Histogram
	cacheLookups  metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	fetches, err := meter.Int64Counter("insider_fetch_total",
		metric.WithDescription("Source adapter calls by mode and outcome"))
	if err != nil {
		return nil, err
	}
	fallbacks, err := meter.Int64Counter("insider_fallback_total",
		metric.WithDescription("Loads served from the synthetic dataset, by reason"))
	if err != nil {
		return nil, err
	}
	normalized, err := meter.Int64Counter("insider_trades_normalized_total",
		metric.WithDescription("Trades produced by the normalizer"))
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("insider_entries_skipped_total",
		metric.WithDescription("Malformed transaction entries skipped"))
	if err != nil {
		return nil, err
	}
	queryDuration, err := meter.Float64Histogram("insider_query_duration_seconds",
		metric.WithDescription("Filing search round trip"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	cacheLookups, err := meter.Int64Counter("insider_cache_lookups_total",
		metric.WithDescription("Load result cache lookups by result"))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		cacheLookups:  cacheLookups,
		fetches:       fetches,
		fallbacks:     fallbacks,
		normalized:    normalized,
		skipped:       skipped,
		queryDuration: queryDuration,
	}, nil
}

func (m *Metrics) RecordFetch(ctx context.Context, mode, outcome string) {
	if m == nil {
		return
	}
	m.fetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) RecordNormalized(ctx context.Context, trades, skipped int) {
	if m == nil {
		return
	}
	m.normalized.Add(ctx, int64(trades))
	m.skipped.Add(ctx, int64(skipped))
}

func (m *Metrics) RecordQuery(ctx context.Context, d time.Duration, status string) {
	if m == nil {
		return
	}
	m.queryDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
