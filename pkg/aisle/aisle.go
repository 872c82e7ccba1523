// Package aisle regroups basket items by product category, the way a
// shopping list is walked through the shop.
package aisle

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cesta-app/cesta/pkg/basket"
)

// Aisle is a known product category. The zero value is Unknown.
type Aisle int

const (
	Unknown Aisle = iota
	Meat
	Fish
	Vegetables
	Fruit
	Dairy
	Eggs
	Cereals
	Legumes
	Canned
	Treats
)

// FallbackEmoji is used for categories outside the table.
const FallbackEmoji = "📦"

// FallbackCategory names items without a category.
const FallbackCategory = "otros"

type info struct {
	key   string
	name  string
	emoji string
}

// table is indexed by Aisle; the index is also the display order.
var table = [...]info{
	Unknown:    {},
	Meat:       {"carne", "Carnes", "🥩"},
	Fish:       {"pescado", "Pescados", "🐟"},
	Vegetables: {"verdura", "Verduras", "🥦"},
	Fruit:      {"fruta", "Frutas", "🍎"},
	Dairy:      {"lacteo", "Lácteos", "🥛"},
	Eggs:       {"huevo", "Huevos", "🥚"},
	Cereals:    {"cereal", "Cereales y pan", "🌾"},
	Legumes:    {"legumbre", "Legumbres", "🫘"},
	Canned:     {"conserva", "Conservas", "🥫"},
	Treats:     {"capricho", "Caprichos", "🍫"},
}

var byKey = func() map[string]Aisle {
	m := make(map[string]Aisle, len(table))
	for a := Meat; int(a) < len(table); a++ {
		m[table[a].key] = a
	}
	return m
}()

// Lookup resolves a category tag. Unrecognised tags yield Unknown.
func Lookup(category string) Aisle {
	return byKey[strings.ToLower(strings.TrimSpace(category))]
}

// Known reports whether a is part of the fixed table.
func (a Aisle) Known() bool {
	return a > Unknown && int(a) < len(table)
}

// Key returns the category tag of a known aisle.
func (a Aisle) Key() string {
	if !a.Known() {
		return ""
	}
	return table[a].key
}

// Order is the display position; unknown aisles sort after every known one.
func (a Aisle) Order() int {
	if !a.Known() {
		return len(table)
	}
	return int(a)
}

// Group is the set of items of one category.
type Group struct {
	Category    string
	Aisle       Aisle
	DisplayName string
	Emoji       string
	Items       []basket.Product
	Subtotal    decimal.Decimal
}

func newGroup(category string) *Group {
	a := Lookup(category)
	g := &Group{Category: category, Aisle: a}
	if a.Known() {
		g.DisplayName = table[a].name
		g.Emoji = table[a].emoji
	} else {
		g.DisplayName = strings.ToUpper(category)
		g.Emoji = FallbackEmoji
	}
	return g
}

// ByAisle flattens the sections, section-major, and partitions the items by
// category. Groups are ordered by aisle; unknown categories come last in
// order of first appearance.
func ByAisle(sections basket.Sections) []Group {
	var (
		groups []*Group
		index  = make(map[string]*Group)
		sums   = make(map[*Group]decimal.Decimal)
	)
	for _, p := range sections.Flatten() {
		category := strings.TrimSpace(p.Category)
		if category == "" {
			category = FallbackCategory
		}
		key := category
		if a := Lookup(category); a.Known() {
			key = a.Key()
		}
		g, ok := index[key]
		if !ok {
			g = newGroup(category)
			index[key] = g
			groups = append(groups, g)
		}
		g.Items = append(g.Items, p)
		sums[g] = sums[g].Add(p.Price)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Aisle.Order() < groups[j].Aisle.Order()
	})

	out := make([]Group, len(groups))
	for i, g := range groups {
		g.Subtotal = basket.RoundHalfUp(sums[g], 2)
		out[i] = *g
	}
	return out
}
