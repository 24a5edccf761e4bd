package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bighogz/insider-tracker/internal/cache"
	"github.com/bighogz/insider-tracker/internal/config"
	"github.com/bighogz/insider-tracker/internal/logging"
	"github.com/bighogz/insider-tracker/internal/source"
	"github.com/bighogz/insider-tracker/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout).With(slog.String("service", telemetry.ServiceName))
	slog.SetDefault(logger)

	providers, err := telemetry.Init(telemetry.Options{Tracing: cfg.TracingEnabled, Metrics: cfg.MetricsEnabled}, logger)
	if err != nil {
		logger.Error("failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !cfg.HasAPIKey() {
		logger.Warn("SEC_API_KEY not set; responses will use the synthetic dataset")
	}

	srv := &server{
		loader:      source.FromConfig(cfg, logger, providers),
		cache:       cache.New[source.Result](cfg.CacheTTL),
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "api")),
		metrics:     providers.Metrics,
		metricsHTTP: providers.MetricsHandler,
		now:         time.Now,
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout(cfg),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.warm(ctx)
	go func() {
		logger.Info("http server listening", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.String("error", err.Error()))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown", slog.String("error", err.Error()))
	}
}

// writeTimeout covers the slowest load: one request per batch symbol plus
// the delays between them.
func writeTimeout(cfg *config.Config) time.Duration {
	n := time.Duration(cfg.BatchMaxSymbols + 1)
	return n*cfg.RequestTimeout + n*cfg.BatchDelay + 10*time.Second
}
