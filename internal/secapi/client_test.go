package secapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/insider-tracker/internal/httpclient"
	"github.com/bighogz/insider-tracker/internal/logging"
)

func newTestClient(t *testing.T, key string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(key, srv.URL, WithLogger(logging.Discard()))
}

func TestNewRequest(t *testing.T) {
	req := NewRequest("issuer.tradingSymbol:AAPL", 2, 50)
	assert.Equal(t, 100, req.From)
	assert.Equal(t, 50, req.Size)

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"issuer.tradingSymbol:AAPL","from":100,"size":50,"sort":[{"filedAt":{"order":"desc"}}]}`, string(b))
}

func TestClientQuery(t *testing.T) {
	var got Request
	c := newTestClient(t, "k3y", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "k3y", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"total":{"value":1},"transactions":[{"issuer":{"tradingSymbol":"AAPL"}}]}`))
	})

	resp, err := c.Query(context.Background(), NewRequest("issuer.tradingSymbol:AAPL", 0, 50))
	require.NoError(t, err)
	require.NotNil(t, resp.Transactions)
	assert.Len(t, *resp.Transactions, 1)
	assert.Equal(t, "issuer.tradingSymbol:AAPL", got.Query)
}

func TestClientQueryWithoutKey(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"missing key"}`))
	})
	_, err := c.Query(context.Background(), NewRequest("q", 0, 1))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Contains(t, se.Body, "missing key")
}

func TestClientQueryMissingCollection(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total":{"value":0}}`))
	})
	resp, err := c.Query(context.Background(), NewRequest("q", 0, 1))
	require.NoError(t, err)
	assert.Nil(t, resp.Transactions)
}

func TestClientQueryMalformed(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})
	_, err := c.Query(context.Background(), NewRequest("q", 0, 1))
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestClientQueryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	c := New("k", srv.URL,
		WithHTTPClient(httpclient.New(50*time.Millisecond)),
		WithLogger(logging.Discard()))

	_, err := c.Query(context.Background(), NewRequest("q", 0, 1))
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}
