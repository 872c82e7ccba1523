// Package optimizer talks to the remote basket optimizer. The optimizer is
// opaque: it receives budget and macro targets and answers with three basket
// versions.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/whttp"
)

// ErrNoBasket is returned when the optimizer answers without any version.
var ErrNoBasket = errors.New("optimizer returned no basket")

type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	RetryMax int
	Proxy    string
	// Logger receives retry messages from the HTTP client.
	Logger interface{}
}

// Request carries the targets of an optimization run.
type Request struct {
	Budget            float64                                 `json:"presupuesto"`
	Protein           float64                                 `json:"proteinas"`
	Kcal              float64                                 `json:"calorias"`
	Carbs             *float64                                `json:"carbohidratos,omitempty"`
	Fat               *float64                                `json:"grasas,omitempty"`
	ExcludeCategories []string                                `json:"excluir_tipos,omitempty"`
	FixedSections     map[basket.SectionName][]basket.Product `json:"secciones_fijas,omitempty"`
	OnlyVersion       basket.VersionKey                       `json:"solo_version,omitempty"`
}

type Client struct {
	cfg  Config
	http *retryablehttp.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("optimizer url is not configured")
	}
	httpClient, err := whttp.NewClient(whttp.Options{
		Proxy:    cfg.Proxy,
		Timeout:  cfg.Timeout,
		RetryMax: cfg.RetryMax,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

func (c *Client) post(ctx context.Context, req Request) (gjson.Result, error) {
	res, err := whttp.Do(ctx, c.http, &whttp.Request{
		Method: "POST",
		URL:    whttp.JoinURL(c.cfg.BaseURL, "/optimizar"),
		Token:  c.cfg.Token,
		JSON:   req,
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("could not reach optimizer: %w", err)
	}
	if !gjson.ValidBytes(res.Body) {
		if !res.OK() {
			return gjson.Result{}, fmt.Errorf("optimizer returned status %d", res.StatusCode)
		}
		return gjson.Result{}, fmt.Errorf("optimizer response: %w", basket.ErrMalformed)
	}
	root := gjson.ParseBytes(res.Body)
	if !res.OK() {
		if msg := errorMessage(root); msg != "" {
			return gjson.Result{}, fmt.Errorf("optimizer returned status %d: %s", res.StatusCode, msg)
		}
		return gjson.Result{}, fmt.Errorf("optimizer returned status %d", res.StatusCode)
	}
	return root, nil
}

// Optimize runs a full optimization and returns the three versions. A version
// the optimizer could not build is present with its Error set.
func (c *Client) Optimize(ctx context.Context, req Request) (basket.Snapshot, error) {
	req.OnlyVersion = ""
	root, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}

	snap := make(basket.Snapshot, len(basket.VersionKeys))
	for _, k := range basket.VersionKeys {
		if r := root.Get(string(k)); r.IsObject() {
			snap[k] = basket.DecodeVersion(r, k)
		}
	}
	if len(snap) == 0 {
		return nil, noBasket(root)
	}
	return snap, nil
}

// Regenerate asks for a single version again. The answer may be wrapped in
// its key or be the bare version object.
func (c *Client) Regenerate(ctx context.Context, req Request, key basket.VersionKey) (basket.Version, error) {
	req.OnlyVersion = key
	root, err := c.post(ctx, req)
	if err != nil {
		return basket.Version{}, err
	}

	r := root.Get(string(key))
	if !r.IsObject() {
		if !root.Get("secciones").Exists() {
			return basket.Version{}, noBasket(root)
		}
		r = root
	}
	return basket.DecodeVersion(r, key), nil
}

func noBasket(root gjson.Result) error {
	if msg := errorMessage(root); msg != "" {
		return fmt.Errorf("%w: %s", ErrNoBasket, msg)
	}
	return ErrNoBasket
}

// errorMessage extracts {"error": "..."} or a FastAPI style {"detail": ...}.
func errorMessage(root gjson.Result) string {
	if e := root.Get("error"); e.Type == gjson.String {
		return e.Str
	}
	detail := root.Get("detail")
	switch {
	case detail.Type == gjson.String:
		return detail.Str
	case detail.IsArray():
		var msgs []string
		for _, d := range detail.Array() {
			if m := d.Get("msg").String(); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
