// Package basket holds the three editable basket versions produced by the
// optimizer and keeps their totals consistent with the items they contain.
package basket

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SectionName identifies a meal slot of a basket.
type SectionName string

const (
	Breakfast SectionName = "desayuno"
	Lunch     SectionName = "comida"
	Snack     SectionName = "merienda"
	Dinner    SectionName = "cena"
)

// SectionNames lists the meal slots in display order.
var SectionNames = []SectionName{Breakfast, Lunch, Snack, Dinner}

var sectionLabels = map[SectionName]string{
	Breakfast: "Desayuno",
	Lunch:     "Comida",
	Snack:     "Merienda",
	Dinner:    "Cena",
}

// Label returns the human readable name of the section.
func (s SectionName) Label() string {
	if l, ok := sectionLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseSection resolves a section name, ignoring case and surrounding spaces.
func ParseSection(s string) (SectionName, bool) {
	name := SectionName(strings.ToLower(strings.TrimSpace(s)))
	_, ok := sectionLabels[name]
	return name, ok
}

// VersionKey identifies one of the three basket versions.
type VersionKey string

const (
	VersionA VersionKey = "version_a"
	VersionB VersionKey = "version_b"
	VersionC VersionKey = "version_c"
)

// VersionKeys lists the version keys in display order.
var VersionKeys = []VersionKey{VersionA, VersionB, VersionC}

// Letter returns "A", "B" or "C".
func (k VersionKey) Letter() string {
	return strings.ToUpper(strings.TrimPrefix(string(k), "version_"))
}

// Label returns the display name of the version, e.g. "Versión A".
func (k VersionKey) Label() string {
	return "Versión " + k.Letter()
}

// ParseVersionKey accepts "a", "B", "version_c" and similar spellings.
func ParseVersionKey(s string) (VersionKey, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "version_") {
		s = "version_" + s
	}
	for _, k := range VersionKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Macros are nutritional quantities. On a Product they are per pack, on an
// Aggregate they are totals.
type Macros struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"prot"`
	Carbs   float64 `json:"carb"`
	Fat     float64 `json:"gras"`
}

// Product is a single catalog item placed in a section. Two products are the
// same item when their names are equal; no other identity is available.
type Product struct {
	Name     string
	Price    decimal.Decimal
	Kcal     float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Category string
	ImageURL string
	Emoji    string
}

// inCents returns p with its price rounded half up to two decimals. Every
// stored price goes through it so section subtotals add up to the total.
func (p Product) inCents() Product {
	p.Price = RoundHalfUp(p.Price, 2)
	return p
}

// Macros returns the per-pack macros of the product.
func (p Product) Macros() Macros {
	return Macros{Kcal: p.Kcal, Protein: p.Protein, Carbs: p.Carbs, Fat: p.Fat}
}

// Sections maps meal slots to their ordered items.
type Sections map[SectionName][]Product

// Clone returns a copy of the mapping and of every item slice.
func (s Sections) Clone() Sections {
	out := make(Sections, len(s))
	for k, v := range s {
		out[k] = append([]Product(nil), v...)
	}
	return out
}

// Names returns the known sections in display order followed by any other
// section present, sorted by name.
func (s Sections) Names() []SectionName {
	names := make([]SectionName, 0, len(s))
	names = append(names, SectionNames...)
	var extra []SectionName
	for k := range s {
		if _, known := sectionLabels[k]; !known {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(names, extra...)
}

// Flatten returns every placement, section-major, in item order.
func (s Sections) Flatten() []Product {
	var out []Product
	for _, name := range s.Names() {
		out = append(out, s[name]...)
	}
	return out
}

// Aggregate holds the derived totals of a version.
type Aggregate struct {
	TotalPrice decimal.Decimal
	ItemCount  int
	Macros     Macros
}

// Equal reports whether two aggregates hold the same totals.
func (a Aggregate) Equal(b Aggregate) bool {
	return a.TotalPrice.Equal(b.TotalPrice) && a.ItemCount == b.ItemCount && a.Macros == b.Macros
}

// Version is one basket candidate.
type Version struct {
	Key       VersionKey
	Label     string
	Sections  Sections
	Aggregate Aggregate
	// Error is set when the optimizer could not produce this version.
	Error string
}

// Snapshot is the state of all three versions at one point in time.
type Snapshot map[VersionKey]Version

// Ordered returns the versions of the snapshot in key order, skipping missing ones.
func (s Snapshot) Ordered() []Version {
	out := make([]Version, 0, len(VersionKeys))
	for _, k := range VersionKeys {
		if v, ok := s[k]; ok {
			out = append(out, v)
		}
	}
	return out
}

// FormatPrice renders an amount with two decimals.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
