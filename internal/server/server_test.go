package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/export"
	"github.com/cesta-app/cesta/pkg/optimizer"
)

func product(name, price, category string) basket.Product {
	return basket.Product{Name: name, Price: decimal.RequireFromString(price), Category: category}
}

func seededStore() *basket.Store {
	return basket.NewStore(basket.Snapshot{
		basket.VersionA: {Sections: basket.Sections{
			basket.Breakfast: {product("Leche", "1.20", "lacteo")},
			basket.Lunch:     {product("Pollo", "3.50", "carne")},
		}},
		basket.VersionB: {Sections: basket.Sections{
			basket.Lunch: {product("Pollo", "3.50", "carne"), product("Arroz", "1.05", "cereal")},
		}},
		basket.VersionC: {Sections: basket.Sections{
			basket.Lunch: {product("Lentejas", "1.10", "legumbre")},
		}},
	})
}

type fakeRegenerator struct {
	version basket.Version
	err     error
	got     optimizer.Request
}

func (f *fakeRegenerator) Regenerate(ctx context.Context, req optimizer.Request, key basket.VersionKey) (basket.Version, error) {
	f.got = req
	f.version.Key = key
	return f.version, f.err
}

type staticSearcher map[string][]basket.Product

func (s staticSearcher) Search(ctx context.Context, q string) ([]basket.Product, error) {
	return s[q], nil
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = seededStore()
	}
	s := New(cfg)
	h, err := s.Handler()
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	return res, buf.Bytes()
}

func TestVersions(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	res, body := do(t, http.MethodGet, ts.URL+"/api/versions", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, s.SessionID(), gjson.GetBytes(body, "session").String())
	assert.Equal(t, "4.70", gjson.GetBytes(body, "versions.0.precio_total").Raw)
	assert.Equal(t, int64(3), gjson.GetBytes(body, "versions.#").Int())

	res, body = do(t, http.MethodGet, ts.URL+"/api/versions/b", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "B", gjson.GetBytes(body, "version").String())

	res, _ = do(t, http.MethodGet, ts.URL+"/api/versions/d", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestConcurrentMutationsSaveNewestSnapshotLast(t *testing.T) {
	var (
		mu    sync.Mutex
		saved []int
	)
	store := seededStore()
	_, ts := newTestServer(t, Config{Store: store, OnChange: func(snap basket.Snapshot) error {
		n := len(snap[basket.VersionA].Sections[basket.Dinner])
		// Older snapshots take longer to write.
		time.Sleep(time.Duration(20-n) * time.Millisecond)
		mu.Lock()
		saved = append(saved, n)
		mu.Unlock()
		return nil
	}})
	url := ts.URL + "/api/versions/version_a/sections/cena/items"

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := http.Post(url, "application/json", strings.NewReader(`{"nombre": "Sopa", "precio": 1.30, "tipo": "conserva"}`))
			if assert.NoError(t, err) {
				res.Body.Close()
				assert.Equal(t, http.StatusOK, res.StatusCode)
			}
		}()
	}
	wg.Wait()

	final, ok := store.Version(basket.VersionA)
	require.True(t, ok)
	require.Len(t, final.Sections[basket.Dinner], writers)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, saved, writers)
	assert.Equal(t, writers, saved[len(saved)-1], "last save must hold the final state")
	for i := 1; i < len(saved); i++ {
		assert.GreaterOrEqual(t, saved[i], saved[i-1], "saves went back in time: %v", saved)
	}
}

func TestMutationsRecomputeAndSave(t *testing.T) {
	var (
		mu    sync.Mutex
		saved []basket.Snapshot
	)
	_, ts := newTestServer(t, Config{OnChange: func(snap basket.Snapshot) error {
		mu.Lock()
		saved = append(saved, snap)
		mu.Unlock()
		return nil
	}})
	base := ts.URL + "/api/versions/version_a/sections/comida/items"

	res, body := do(t, http.MethodPost, base, `{"nombre": "Arroz", "precio": 1.05, "tipo": "cereal"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, gjson.GetBytes(body, "applied").Bool())
	assert.Equal(t, "5.75", gjson.GetBytes(body, "version.precio_total").Raw)

	res, body = do(t, http.MethodPut, base+"/0", `{"nombre": "Ternera", "precio": "5,10", "tipo": "carne"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "7.35", gjson.GetBytes(body, "version.precio_total").Raw)
	assert.Equal(t, int64(3), gjson.GetBytes(body, "version.total_productos").Int())

	res, body = do(t, http.MethodDelete, base+"/9", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, gjson.GetBytes(body, "applied").Bool(), "out of range is a no-op")

	res, body = do(t, http.MethodDelete, base+"/1", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "6.30", gjson.GetBytes(body, "version.precio_total").Raw)

	res, _ = do(t, http.MethodPost, base, `{"precio": 1}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res, _ = do(t, http.MethodDelete, base+"/x", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res, _ = do(t, http.MethodPost, ts.URL+"/api/versions/version_a/sections/brunch/items", `{"nombre": "Pan"}`)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, saved, 3, "only applied mutations are saved")
	assert.Equal(t, []string{"Ternera"}, basket.ItemNames(saved[2][basket.VersionA].Sections[basket.Lunch]))
}

func TestCandidatesAislesAndList(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	res, body := do(t, http.MethodGet, ts.URL+"/api/versions/a/sections/comida/candidates", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	groups := gjson.ParseBytes(body).Array()
	require.Len(t, groups, 2)
	assert.Equal(t, "version_b", groups[0].Get("source").String())
	assert.Equal(t, `["Arroz"]`, groups[0].Get("items.#.nombre").Raw)
	assert.Equal(t, `["Lentejas"]`, groups[1].Get("items.#.nombre").Raw)

	res, body = do(t, http.MethodGet, ts.URL+"/api/versions/b/aisles", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, `["Carnes","Cereales y pan"]`, gjson.GetBytes(body, "#.display_name").Raw)
	assert.Equal(t, "3.50", gjson.GetBytes(body, "0.subtotal").Raw)

	res, body = do(t, http.MethodGet, ts.URL+"/api/versions/b/list", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Content-Type"), "text/plain"))
	assert.True(t, strings.HasPrefix(string(body), "🛒 Lista de la compra · Versión B · 4.55€\n"))
}

func TestNutrition(t *testing.T) {
	leche := product("Leche", "1.20", "lacteo")
	leche.Kcal, leche.Protein, leche.Carbs, leche.Fat = 150, 10, 15, 5
	pollo := product("Pollo", "3.50", "carne")
	pollo.Kcal, pollo.Protein, pollo.Fat = 400, 60, 12
	store := basket.NewStore(basket.Snapshot{basket.VersionA: {Sections: basket.Sections{
		basket.Breakfast: {leche},
		basket.Dinner:    {pollo},
	}}})
	_, ts := newTestServer(t, Config{Store: store})

	res, body := do(t, http.MethodGet, ts.URL+"/api/versions/a/nutrition", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int64(550), gjson.GetBytes(body, "macros.kcal").Int())
	assert.Equal(t, int64(280), gjson.GetBytes(body, "kcal_macros.prot").Int())
	assert.Equal(t, int64(60), gjson.GetBytes(body, "kcal_macros.carb").Int())
	assert.Equal(t, int64(153), gjson.GetBytes(body, "kcal_macros.gras").Int())
	assert.Equal(t, `["desayuno","cena"]`, gjson.GetBytes(body, "kcal_comidas.#.seccion").Raw)
	assert.Equal(t, `[150,400]`, gjson.GetBytes(body, "kcal_comidas.#.kcal").Raw)

	res, body = do(t, http.MethodGet, ts.URL+"/api/versions/c/nutrition", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "[]", gjson.GetBytes(body, "kcal_comidas").Raw)
}

func TestDocumentPage(t *testing.T) {
	layout := export.DefaultLayout()
	r, err := export.NewRenderer(layout, 12)
	require.NoError(t, err)
	_, ts := newTestServer(t, Config{Renderer: r, Layout: layout})

	res, body := do(t, http.MethodGet, ts.URL+"/api/versions/a/document/1", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Equal(t, "1", res.Header.Get("X-Page-Count"))
	_, err = png.Decode(bytes.NewReader(body))
	require.NoError(t, err)

	res, _ = do(t, http.MethodGet, ts.URL+"/api/versions/a/document/2", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRegenerate(t *testing.T) {
	regen := &fakeRegenerator{version: basket.Version{Sections: basket.Sections{
		basket.Dinner: {product("Merluza", "4.20", "pescado")},
	}}}
	_, ts := newTestServer(t, Config{Optimizer: regen, Request: optimizer.Request{Budget: 40}})

	res, body := do(t, http.MethodPost, ts.URL+"/api/versions/c/regenerate", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 40.0, regen.got.Budget)
	assert.Equal(t, "4.20", gjson.GetBytes(body, "version.precio_total").Raw)
	assert.Equal(t, `[]`, gjson.GetBytes(body, "version.secciones.comida").Raw)

	regen.err = errors.New("optimizer down")
	res, _ = do(t, http.MethodPost, ts.URL+"/api/versions/c/regenerate", "")
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)

	res, body = do(t, http.MethodGet, ts.URL+"/api/versions/c", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "4.20", gjson.GetBytes(body, "precio_total").Raw, "failures leave the store untouched")
}

func TestSearch(t *testing.T) {
	_, ts := newTestServer(t, Config{Searcher: staticSearcher{
		"pan": {product("Pan de molde", "1.35", "cereal")},
	}})

	res, body := do(t, http.MethodPost, ts.URL+"/api/search", `{"query": "pan"}`)
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	token := gjson.GetBytes(body, "token").Uint()
	assert.NotZero(t, token)

	assert.Eventually(t, func() bool {
		_, body := do(t, http.MethodGet, ts.URL+"/api/search", "")
		return gjson.GetBytes(body, "token").Uint() == token && !gjson.GetBytes(body, "pending").Bool()
	}, 2*time.Second, 10*time.Millisecond)

	_, body = do(t, http.MethodGet, ts.URL+"/api/search", "")
	var got searchResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, []string{"Pan de molde"}, basket.ItemNames(got.Products))
}

func TestBasicAuth(t *testing.T) {
	_, ts := newTestServer(t, Config{Username: "ana", Password: "secreto"})

	res, _ := do(t, http.MethodGet, ts.URL+"/api/versions", "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/versions", nil)
	require.NoError(t, err)
	req.SetBasicAuth("ana", "secreto")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = do(t, http.MethodGet, ts.URL+"/", "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
