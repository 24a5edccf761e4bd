package source

import (
	"log/slog"

	"github.com/bighogz/insider-tracker/internal/config"
	"github.com/bighogz/insider-tracker/internal/httpclient"
	"github.com/bighogz/insider-tracker/internal/normalize"
	"github.com/bighogz/insider-tracker/internal/sample"
	"github.com/bighogz/insider-tracker/internal/secapi"
	"github.com/bighogz/insider-tracker/internal/telemetry"
)

// FromConfig assembles the SEC client, normalizer, adapter and loader used
// by the binaries.
func FromConfig(cfg *config.Config, logger *slog.Logger, p *telemetry.Providers) *Loader {
	if p == nil {
		p = telemetry.Noop()
	}
	client := secapi.New(cfg.SECAPIKey, cfg.SECAPIURL,
		secapi.WithHTTPClient(httpclient.New(cfg.RequestTimeout)),
		secapi.WithLogger(logger),
		secapi.WithTracer(p.Tracer),
		secapi.WithMetrics(p.Metrics),
	)
	adapter := NewAdapter(client, normalize.New(logger),
		WithLogger(logger),
		WithTracer(p.Tracer),
		WithMetrics(p.Metrics),
		WithPageSize(cfg.PageSize),
		WithDelay(cfg.BatchDelay),
		WithMaxSymbols(cfg.BatchMaxSymbols),
		WithClipToWindow(cfg.ClipToWindow),
	)
	return NewLoader(adapter, sample.New(), logger, p.Metrics)
}
