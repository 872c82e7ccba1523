package server

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/catalog"
	"github.com/cesta-app/cesta/pkg/export"
	"github.com/cesta-app/cesta/pkg/optimizer"
)

//go:embed web
var WebFS embed.FS

// Regenerator produces a single version again.
type Regenerator interface {
	Regenerate(ctx context.Context, req optimizer.Request, key basket.VersionKey) (basket.Version, error)
}

type Config struct {
	Store *basket.Store
	// Optimizer and Request are used by the regenerate endpoint; a nil
	// Optimizer disables it.
	Optimizer Regenerator
	Request   optimizer.Request
	// Searcher backs the debounced search endpoints; nil disables them.
	Searcher       catalog.Searcher
	SearchDebounce time.Duration
	Renderer       *export.Renderer
	Layout         export.Layout
	Username       string
	Password       string
	// OnChange is called with the full snapshot after every applied mutation,
	// e.g. to save the basket file.
	OnChange func(basket.Snapshot) error
}

type Server struct {
	cfg       Config
	store     *basket.Store
	search    *catalog.Debouncer
	sessionID string
	cancel    func()

	// saveMu orders snapshot and save so the last save holds the newest state.
	saveMu sync.Mutex
}

func New(cfg Config) *Server {
	s := &Server{
		cfg:       cfg,
		store:     cfg.Store,
		sessionID: uuid.NewString(),
	}
	if cfg.Searcher != nil {
		s.search = catalog.NewDebouncer(cfg.Searcher, cfg.SearchDebounce, utils.Log, nil)
	}
	s.cancel = s.store.Subscribe(s.onChange)
	return s
}

func (s *Server) onChange(c basket.Change) {
	utils.Log.WithFields(logrus.Fields{
		"session": s.sessionID,
		"op":      c.Op,
		"version": c.Version,
		"section": c.Section,
		"index":   c.Index,
		"total":   basket.FormatPrice(c.Aggregate.TotalPrice),
		"items":   c.Aggregate.ItemCount,
	}).Info("Basket updated")

	if s.cfg.OnChange == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.cfg.OnChange(s.store.Snapshot()); err != nil {
		utils.Log.Warnf("Could not save basket: %v", err)
	}
}

// SessionID identifies this editing session in logs and responses.
func (s *Server) SessionID() string { return s.sessionID }

// Handler builds the HTTP routes.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API Group
	mux.HandleFunc("GET /api/versions", s.basicAuth(s.handleVersions))
	mux.HandleFunc("GET /api/versions/{version}", s.basicAuth(s.handleVersion))
	mux.HandleFunc("POST /api/versions/{version}/sections/{section}/items", s.basicAuth(s.handleAddItem))
	mux.HandleFunc("PUT /api/versions/{version}/sections/{section}/items/{index}", s.basicAuth(s.handleReplaceItem))
	mux.HandleFunc("DELETE /api/versions/{version}/sections/{section}/items/{index}", s.basicAuth(s.handleRemoveItem))
	mux.HandleFunc("GET /api/versions/{version}/sections/{section}/candidates", s.basicAuth(s.handleCandidates))
	mux.HandleFunc("GET /api/versions/{version}/aisles", s.basicAuth(s.handleAisles))
	mux.HandleFunc("GET /api/versions/{version}/nutrition", s.basicAuth(s.handleNutrition))
	mux.HandleFunc("GET /api/versions/{version}/list", s.basicAuth(s.handleList))
	mux.HandleFunc("GET /api/versions/{version}/document/{page}", s.basicAuth(s.handleDocumentPage))
	mux.HandleFunc("POST /api/versions/{version}/regenerate", s.basicAuth(s.handleRegenerate))
	mux.HandleFunc("POST /api/search", s.basicAuth(s.handleSearch))
	mux.HandleFunc("GET /api/search", s.basicAuth(s.handleSearchResult))

	// Static Files
	webRoot, err := fs.Sub(WebFS, "web")
	if err != nil {
		return nil, err
	}
	fileServer := http.FileServer(http.FS(webRoot))
	mux.Handle("/", s.basicAuthMiddlewareForStatic(fileServer))
	return mux, nil
}

func (s *Server) Start(addr string) error {
	h, err := s.Handler()
	if err != nil {
		return err
	}
	defer s.Close()

	utils.Log.Infof("Starting session %s on %s", s.sessionID, addr)
	return http.ListenAndServe(addr, h)
}

// Close detaches the server from the store and stops pending searches.
func (s *Server) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.search != nil {
		s.search.Stop()
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.Username == "" && s.cfg.Password == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	return ok && user == s.cfg.Username && pass == s.cfg.Password
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) basicAuthMiddlewareForStatic(next http.Handler) http.Handler {
	return s.basicAuth(next.ServeHTTP)
}
