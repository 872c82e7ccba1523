package whttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSendsJSONWithBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"presupuesto":50}`, string(body))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{Timeout: 5 * time.Second})
	require.NoError(t, err)

	res, err := Do(context.Background(), client, &Request{
		Method: http.MethodPost,
		URL:    JoinURL(srv.URL+"/", "/optimizar"),
		Token:  "secret",
		JSON:   map[string]int{"presupuesto": 50},
	})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, `{"ok":true}`, string(res.Body))
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{RetryMax: 3})
	require.NoError(t, err)
	client.RetryWaitMin = time.Millisecond
	client.RetryWaitMax = time.Millisecond

	res, err := Do(context.Background(), client, &Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDoPassesLastResponseThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"down"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{RetryMax: 0})
	require.NoError(t, err)

	res, err := Do(context.Background(), client, &Request{URL: srv.URL})
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, `{"detail":"down"}`, string(res.Body))
}

func TestNewClientRejectsBadProxy(t *testing.T) {
	_, err := NewClient(Options{Proxy: "://nope"})
	assert.Error(t, err)
}
