// Package whttp builds the retrying HTTP clients used to reach the optimizer
// and the remote catalog, and sends JSON requests through them.
package whttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/publicsuffix"
)

const userAgent = "cesta/1.0 (+https://github.com/cesta-app/cesta)"

// Options configures NewClient.
type Options struct {
	// Proxy is an optional HTTP proxy URL, useful for debugging.
	Proxy    string
	Timeout  time.Duration
	RetryMax int
	// Logger receives retry messages. It may be a retryablehttp.Logger or
	// LeveledLogger; nil discards them.
	Logger interface{}
}

// NewClient returns a retrying client with a cookie jar.
func NewClient(opts Options) (*retryablehttp.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	client := retryablehttp.NewClient()
	if opts.Logger != nil {
		client.Logger = opts.Logger
	} else {
		client.Logger = log.New(io.Discard, "", 0)
	}
	if opts.RetryMax >= 0 {
		client.RetryMax = opts.RetryMax
	}
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Jar = jar
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		client.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	return client, nil
}

type Header struct {
	Name  string
	Value string
}

type Request struct {
	Method string
	URL    string
	// Token is sent as a bearer Authorization header when set.
	Token   string
	Headers []Header
	// JSON is marshalled as the request body when non-nil.
	JSON interface{}
}

type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do sends req and reads the whole response body.
func Do(ctx context.Context, client *retryablehttp.Client, req *Request) (*Response, error) {
	var body interface{}
	if req.JSON != nil {
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("could not encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if req.JSON != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// JoinURL appends path to base, tolerating a trailing slash on base.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
