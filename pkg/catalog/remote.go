package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/whttp"
)

// Remote searches the catalog service over HTTP.
type Remote struct {
	baseURL string
	token   string
	client  *retryablehttp.Client
}

type RemoteConfig struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	RetryMax int
	Proxy    string
	Logger   interface{}
}

func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("catalog url is not configured")
	}
	client, err := whttp.NewClient(whttp.Options{
		Proxy:    cfg.Proxy,
		Timeout:  cfg.Timeout,
		RetryMax: cfg.RetryMax,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Remote{baseURL: cfg.BaseURL, token: cfg.Token, client: client}, nil
}

func (r *Remote) Search(ctx context.Context, query string) ([]basket.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	res, err := whttp.Do(ctx, r.client, &whttp.Request{
		URL:   whttp.JoinURL(r.baseURL, "/productos/buscar") + "?q=" + url.QueryEscape(query),
		Token: r.token,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	if !res.OK() {
		return nil, fmt.Errorf("catalog search returned status %d", res.StatusCode)
	}
	products, err := ParseProducts(res.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	return products, nil
}
