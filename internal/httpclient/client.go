package httpclient

import (
	"net/http"
	"time"
)

// New returns an HTTP client with a single bounded per-request timeout.
// There is no retry layer: a timeout surfaces as an error to the caller.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Default is the shared client used when none is injected.
var Default = New(30 * time.Second)
