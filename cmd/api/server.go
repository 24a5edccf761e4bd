package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/bighogz/insider-tracker/internal/cache"
	"github.com/bighogz/insider-tracker/internal/config"
	"github.com/bighogz/insider-tracker/internal/dashboard"
	"github.com/bighogz/insider-tracker/internal/export"
	"github.com/bighogz/insider-tracker/internal/filter"
	"github.com/bighogz/insider-tracker/internal/models"
	"github.com/bighogz/insider-tracker/internal/source"
	"github.com/bighogz/insider-tracker/internal/symbols"
	"github.com/bighogz/insider-tracker/internal/telemetry"
)

const (
	maxDays        = 365
	refreshTimeout = 2 * time.Minute
)

type resultLoader interface {
	Load(ctx context.Context, req source.Request) source.Result
}

type server struct {
	loader      resultLoader
	cache       *cache.Cache[source.Result]
	cfg         *config.Config
	logger      *slog.Logger
	metrics     *telemetry.Metrics
	metricsHTTP http.Handler
	now         func() time.Time
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer(s.logger))
	r.Use(securityHeaders)

	limiter := newIPLimiter(s.cfg.APIRateRPS, s.cfg.APIRateBurst, s.logger)

	r.Get("/", s.serveIndex)
	r.Get("/static/*", s.serveStatic)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", s.handleHealth)
		r.Get("/symbols", s.handleSymbols)
		r.Get("/meta", s.handleMeta)

		r.Group(func(r chi.Router) {
			r.Use(limiter.middleware)
			r.Get("/trades", s.handleTrades)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/export.xlsx", s.handleExportXLSX)
		})
		r.With(adminOrRateLimit(s.cfg.AdminAPIKey, limiter)).Post("/refresh", s.handleRefresh)
	})

	if s.metricsHTTP != nil {
		r.Handle("/metrics", s.metricsHTTP)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, errMethodNotAllowed)
	})
	return r
}

// parseLoad reads source, symbol, symbols and days.
func parseLoad(q url.Values, defaultDays int) (source.Request, error) {
	req := source.Request{Mode: source.ParseMode(q.Get("source"))}

	if raw := strings.TrimSpace(q.Get("symbols")); raw != "" {
		req.Symbols = symbols.Split(raw)
		if len(req.Symbols) == 0 {
			return req, fmt.Errorf("symbols: no valid ticker in %q", raw)
		}
	}
	if raw := strings.TrimSpace(q.Get("symbol")); raw != "" {
		sym := symbols.Clean(raw)
		if !symbols.Valid(sym) {
			return req, fmt.Errorf("symbol: invalid ticker %q", raw)
		}
		req.Symbols = append([]string{sym}, req.Symbols...)
	}

	if req.Mode == source.ModeRecent {
		req.Days = defaultDays
		if raw := q.Get("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return req, fmt.Errorf("days: %w", err)
			}
			req.Days = clamp(n, 1, maxDays)
		}
	}
	if req.Mode != source.ModeSymbol && req.Mode != source.ModeMulti {
		req.Symbols = nil
	}
	return req, nil
}

// load resolves the request parameters and returns the cached or freshly
// loaded dataset. On a bad request it writes the error and returns false.
func (s *server) load(w http.ResponseWriter, r *http.Request) (source.Result, filter.Criteria, bool) {
	q := r.URL.Query()
	req, err := parseLoad(q, s.cfg.RecentDays)
	if err != nil {
		renderError(w, r, errInvalidParameter(err.Error()))
		return source.Result{}, filter.Criteria{}, false
	}
	c, err := filter.ParseQuery(q)
	if err != nil {
		renderError(w, r, errInvalidParameter(err.Error()))
		return source.Result{}, filter.Criteria{}, false
	}
	if err := c.Validate(); err != nil {
		renderError(w, r, errValidation(err))
		return source.Result{}, filter.Criteria{}, false
	}

	ctx := r.Context()
	res, hit := s.cache.Read(req.Key(), false)
	s.metrics.RecordCacheLookup(ctx, hit)
	if !hit {
		res = s.loader.Load(ctx, req)
		// A result cut short by the client going away is not worth keeping.
		if ctx.Err() == nil {
			s.cache.Write(req.Key(), res)
		}
	}
	s.logger.DebugContext(ctx, "dataset ready",
		slog.String("key", req.Key()),
		slog.Bool("cache_hit", hit),
		slog.String("origin", string(res.Origin)),
		slog.Int("trades", len(res.Dataset)))
	return res, c, true
}

type tradesResponse struct {
	Source    string         `json:"source"`
	Synthetic bool           `json:"synthetic"`
	Fallback  string         `json:"fallback_reason,omitempty"`
	Count     int            `json:"count"`
	Trades    models.Dataset `json:"trades"`
}

func (s *server) handleTrades(w http.ResponseWriter, r *http.Request) {
	res, c, ok := s.load(w, r)
	if !ok {
		return
	}
	trades := filter.Apply(res.Dataset, c)
	resp := tradesResponse{
		Source:    string(res.Origin),
		Synthetic: res.Synthetic(),
		Count:     len(trades),
		Trades:    trades,
	}
	if res.Err != nil {
		resp.Fallback = source.KindOf(res.Err).String()
	}
	render.JSON(w, r, resp)
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	res, c, ok := s.load(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, dashboard.Build(res, c))
}

func (s *server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	res, c, ok := s.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(export.FileName(s.now(), "csv")))
	if err := export.WriteCSV(w, filter.Apply(res.Dataset, c)); err != nil {
		s.logger.ErrorContext(r.Context(), "csv export failed", slog.String("error", err.Error()))
	}
}

func (s *server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	res, c, ok := s.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, filter.Apply(res.Dataset, c)); err != nil {
		s.logger.ErrorContext(r.Context(), "xlsx export failed", slog.String("error", err.Error()))
		renderError(w, r, errInternal)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(export.FileName(s.now(), "xlsx")))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string][]string{
		"default_basket": symbols.DefaultBasket,
		"default_multi":  symbols.DefaultMulti,
		"available":      symbols.Available,
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":             "ok",
		"api_key_configured": s.cfg.HasAPIKey(),
	})
}

// handleMeta reports when the dataset for the given load parameters was
// last fetched.
func (s *server) handleMeta(w http.ResponseWriter, r *http.Request) {
	req, err := parseLoad(r.URL.Query(), s.cfg.RecentDays)
	if err != nil {
		renderError(w, r, errInvalidParameter(err.Error()))
		return
	}
	var last *string
	if t := s.cache.CachedAt(req.Key()); t != nil {
		formatted := t.UTC().Format(time.RFC3339)
		last = &formatted
	}
	render.JSON(w, r, map[string]interface{}{"key": req.Key(), "last_updated": last})
}

func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	req, err := parseLoad(r.URL.Query(), s.cfg.RecentDays)
	if err != nil {
		renderError(w, r, errInvalidParameter(err.Error()))
		return
	}
	s.cache.Purge()
	go s.refresh(req)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"status": "refresh started"})
}

func (s *server) refresh(req source.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	res := s.loader.Load(ctx, req)
	s.cache.Write(req.Key(), res)
	s.logger.InfoContext(ctx, "dataset refreshed",
		slog.String("key", req.Key()),
		slog.String("origin", string(res.Origin)),
		slog.Int("trades", len(res.Dataset)))
}

// warm preloads the default dashboard request.
func (s *server) warm(ctx context.Context) {
	req := source.Request{Mode: source.ModeRecent, Days: s.cfg.RecentDays}
	if _, ok := s.cache.Read(req.Key(), false); ok {
		return
	}
	res := s.loader.Load(ctx, req)
	s.cache.Write(req.Key(), res)
}

func (s *server) serveIndex(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{"dashboard.html", "index.html"} {
		if p := safeStaticPath(s.cfg.StaticDir, name); p != "" {
			if _, err := os.Stat(p); err == nil {
				http.ServeFile(w, r, p)
				return
			}
		}
	}
	render.JSON(w, r, map[string]string{"message": "Frontend not found. See /api/dashboard."})
}

func (s *server) serveStatic(w http.ResponseWriter, r *http.Request) {
	sub := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if sub == "" || strings.Contains(sub, "..") {
		renderError(w, r, errNotFound)
		return
	}
	p := safeStaticPath(s.cfg.StaticDir, sub)
	if p == "" {
		renderError(w, r, errNotFound)
		return
	}
	http.ServeFile(w, r, p)
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
