package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/aisle"
	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/export"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Log.Debugf("Could not write response: %v", err)
	}
}

func (s *Server) versionKey(w http.ResponseWriter, r *http.Request) (basket.VersionKey, bool) {
	key, ok := basket.ParseVersionKey(r.PathValue("version"))
	if !ok {
		http.Error(w, "unknown version", http.StatusNotFound)
	}
	return key, ok
}

func (s *Server) sectionName(w http.ResponseWriter, r *http.Request) (basket.SectionName, bool) {
	name, ok := basket.ParseSection(r.PathValue("section"))
	if !ok {
		http.Error(w, "unknown section", http.StatusNotFound)
	}
	return name, ok
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) (basket.Version, bool) {
	key, ok := s.versionKey(w, r)
	if !ok {
		return basket.Version{}, false
	}
	v, ok := s.store.Version(key)
	if !ok {
		http.Error(w, "unknown version", http.StatusNotFound)
	}
	return v, ok
}

type versionsResponse struct {
	Session  string           `json:"session"`
	Versions []basket.Version `json:"versions"`
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionsResponse{
		Session:  s.sessionID,
		Versions: s.store.Snapshot().Ordered(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	v, ok := s.version(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// MutationResponse reports whether an edit was applied and the resulting version.
type MutationResponse struct {
	Applied bool           `json:"applied"`
	Version basket.Version `json:"version"`
}

func (s *Server) mutation(w http.ResponseWriter, r *http.Request, apply func(basket.VersionKey, basket.SectionName) bool) {
	key, ok := s.versionKey(w, r)
	if !ok {
		return
	}
	section, ok := s.sectionName(w, r)
	if !ok {
		return
	}
	applied := apply(key, section)
	v, _ := s.store.Version(key)
	writeJSON(w, http.StatusOK, MutationResponse{Applied: applied, Version: v})
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (basket.Product, bool) {
	var p basket.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return p, false
	}
	if p.Name == "" {
		http.Error(w, "product name is required", http.StatusBadRequest)
		return p, false
	}
	return p, true
}

func index(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "bad index", http.StatusBadRequest)
		return 0, false
	}
	return i, true
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	s.mutation(w, r, func(key basket.VersionKey, section basket.SectionName) bool {
		return s.store.AddItem(key, section, p)
	})
}

func (s *Server) handleReplaceItem(w http.ResponseWriter, r *http.Request) {
	i, ok := index(w, r)
	if !ok {
		return
	}
	p, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	s.mutation(w, r, func(key basket.VersionKey, section basket.SectionName) bool {
		return s.store.ReplaceItem(key, section, i, p)
	})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	i, ok := index(w, r)
	if !ok {
		return
	}
	s.mutation(w, r, func(key basket.VersionKey, section basket.SectionName) bool {
		return s.store.RemoveItem(key, section, i)
	})
}

type candidateGroupJSON struct {
	Source basket.VersionKey `json:"source"`
	Label  string            `json:"label"`
	Items  []basket.Product  `json:"items"`
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	key, ok := s.versionKey(w, r)
	if !ok {
		return
	}
	section, ok := s.sectionName(w, r)
	if !ok {
		return
	}
	groups := []candidateGroupJSON{}
	for _, g := range s.store.Candidates(key, section) {
		groups = append(groups, candidateGroupJSON{Source: g.Source, Label: g.Label, Items: g.Items})
	}
	writeJSON(w, http.StatusOK, groups)
}

type aisleJSON struct {
	Category    string           `json:"category"`
	DisplayName string           `json:"display_name"`
	Emoji       string           `json:"emoji"`
	Items       []basket.Product `json:"items"`
	Subtotal    json.Number      `json:"subtotal"`
}

func (s *Server) handleAisles(w http.ResponseWriter, r *http.Request) {
	v, ok := s.version(w, r)
	if !ok {
		return
	}
	out := []aisleJSON{}
	for _, g := range aisle.ByAisle(v.Sections) {
		out = append(out, aisleJSON{
			Category:    g.Category,
			DisplayName: g.DisplayName,
			Emoji:       g.Emoji,
			Items:       g.Items,
			Subtotal:    json.Number(basket.FormatPrice(g.Subtotal)),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type nutritionResponse struct {
	Macros basket.Macros     `json:"macros"`
	Split  basket.KcalSplit  `json:"kcal_macros"`
	Meals  []basket.MealKcal `json:"kcal_comidas"`
}

func (s *Server) handleNutrition(w http.ResponseWriter, r *http.Request) {
	v, ok := s.version(w, r)
	if !ok {
		return
	}
	meals := v.Sections.KcalByMeal()
	if meals == nil {
		meals = []basket.MealKcal{}
	}
	writeJSON(w, http.StatusOK, nutritionResponse{
		Macros: v.Aggregate.Macros,
		Split:  v.Aggregate.Macros.KcalSplit(),
		Meals:  meals,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	v, ok := s.version(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, export.Text(v))
}

func (s *Server) handleDocumentPage(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Renderer == nil {
		http.Error(w, "document export is not configured", http.StatusNotImplemented)
		return
	}
	v, ok := s.version(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		http.Error(w, "bad page", http.StatusBadRequest)
		return
	}
	doc := export.Paginate(v, s.cfg.Layout)
	if n < 1 || n > len(doc.Pages) {
		http.Error(w, "no such page", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := s.cfg.Renderer.RenderPage(doc.Pages[n-1], &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Page-Count", strconv.Itoa(len(doc.Pages)))
	w.Write(buf.Bytes())
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Optimizer == nil {
		http.Error(w, "optimizer is not configured", http.StatusNotImplemented)
		return
	}
	key, ok := s.versionKey(w, r)
	if !ok {
		return
	}
	v, err := s.cfg.Optimizer.Regenerate(r.Context(), s.cfg.Request, key)
	if err != nil {
		utils.Log.Warnf("Regenerating %s failed: %v", key, err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	applied := s.store.ReplaceVersion(key, v.Sections, v.Error)
	current, _ := s.store.Version(key)
	writeJSON(w, http.StatusOK, MutationResponse{Applied: applied, Version: current})
}

type SearchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Token    uint64           `json:"token"`
	Query    string           `json:"query,omitempty"`
	Products []basket.Product `json:"products"`
	Error    string           `json:"error,omitempty"`
	Pending  bool             `json:"pending"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		http.Error(w, "catalog is not configured", http.StatusNotImplemented)
		return
	}
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// The request context ends with this handler; the search outlives it.
	token := s.search.Query(context.WithoutCancel(r.Context()), req.Query)
	writeJSON(w, http.StatusAccepted, searchResponse{Token: token, Query: req.Query, Products: []basket.Product{}, Pending: true})
}

func (s *Server) handleSearchResult(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		http.Error(w, "catalog is not configured", http.StatusNotImplemented)
		return
	}
	res, ok := s.search.Latest()
	out := searchResponse{Products: []basket.Product{}, Pending: s.search.Pending()}
	if ok {
		out.Token, out.Query = res.Token, res.Query
		if res.Products != nil {
			out.Products = res.Products
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, out)
}
