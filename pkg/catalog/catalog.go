// Package catalog searches products to add to a basket, either in a local
// SQLite catalog or through the remote catalog service.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/cesta-app/cesta/pkg/basket"
)

// ErrNotFound is returned by FindByName when no product has the exact name.
var ErrNotFound = errors.New("product not found")

// Searcher looks products up by free text. An empty result is not an error.
type Searcher interface {
	Search(ctx context.Context, query string) ([]basket.Product, error)
}

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// FindByName searches for name and returns the product whose name matches it
// exactly.
func FindByName(ctx context.Context, s Searcher, name string) (basket.Product, error) {
	products, err := s.Search(ctx, name)
	if err != nil {
		return basket.Product{}, err
	}
	for _, p := range products {
		if p.Name == name {
			return p, nil
		}
	}
	return basket.Product{}, fmt.Errorf("%q: %w", name, ErrNotFound)
}

// ParseProducts reads a product list. It accepts a bare array or an object
// holding the array under "productos", "products" or "resultados".
func ParseProducts(data []byte) ([]basket.Product, error) {
	if !gjson.ValidBytes(data) {
		return nil, basket.ErrMalformed
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		for _, key := range []string{"productos", "products", "resultados"} {
			if r := root.Get(key); r.IsArray() {
				root = r
				break
			}
		}
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("no product list found: %w", basket.ErrMalformed)
	}

	var out []basket.Product
	for _, r := range root.Array() {
		p := basket.DecodeProduct(r)
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
