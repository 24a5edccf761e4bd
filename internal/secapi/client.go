// Package secapi is a client for the sec-api.io insider-trading search endpoint.
package secapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/bighogz/insider-tracker/internal/httpclient"
	"github.com/bighogz/insider-tracker/internal/telemetry"
)

const DefaultURL = "https://api.sec-api.io/insider-trading"

// ErrMalformed marks a response body that is not the expected JSON document.
var ErrMalformed = errors.New("secapi: malformed response")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("secapi: unexpected status %d: %s", e.Code, e.Body)
}

type SortOrder struct {
	Order string `json:"order"`
}

// Request is the search payload: a Lucene-style query, an offset/size page
// and a sort order.
type Request struct {
	Query string                 `json:"query"`
	From  int                    `json:"from"`
	Size  int                    `json:"size"`
	Sort  []map[string]SortOrder `json:"sort"`
}

// NewRequest builds a query sorted by filing time, newest first. The API
// does not guarantee that order, so callers must not rely on it.
func NewRequest(query string, page, size int) Request {
	return Request{
		Query: query,
		From:  page * size,
		Size:  size,
		Sort:  []map[string]SortOrder{{"filedAt": {Order: "desc"}}},
	}
}

// Response keeps filings raw; Transactions is nil when the key is absent.
type Response struct {
	Transactions *[]json.RawMessage `json:"transactions"`
}

type Client struct {
	APIKey string
	URL    string

	http    *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *telemetry.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }
func WithTracer(t trace.Tracer) Option { return func(c *Client) { c.tracer = t } }
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(apiKey, url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		APIKey: apiKey,
		URL:    url,
		http:   httpclient.Default,
		logger: slog.Default(),
		tracer: tracenoop.NewTracerProvider().Tracer("secapi"),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With(slog.String("component", "secapi"))
	return c
}

// Query performs one search round trip. Without an API key the request is
// still sent unauthenticated; the server's rejection surfaces as a StatusError.
func (c *Client) Query(ctx context.Context, req Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "secapi.query", trace.WithAttributes(
		attribute.String("query", req.Query),
		attribute.Int("from", req.From),
		attribute.Int("size", req.Size)))
	defer span.End()

	start := time.Now()
	resp, err := c.query(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
		var se *StatusError
		if errors.As(err, &se) {
			status = strconv.Itoa(se.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.metrics.RecordQuery(ctx, time.Since(start), status)
	return resp, err
}

func (c *Client) query(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("secapi: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("secapi: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", c.APIKey)
	} else {
		c.logger.WarnContext(ctx, "no API key configured; sending unauthenticated request")
	}

	c.logger.DebugContext(ctx, "querying filings", slog.String("query", req.Query), slog.Int("from", req.From))
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("secapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &out, nil
}
