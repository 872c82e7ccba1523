package basket

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when a document is not valid JSON.
var ErrMalformed = errors.New("malformed basket document")

// DecodeSnapshot reads the three versions from an optimizer response or a
// basket file. Missing fields are zero; aggregates are recomputed.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}
	root := gjson.ParseBytes(data)
	snap := make(Snapshot, len(VersionKeys))
	for _, k := range VersionKeys {
		r := root.Get(string(k))
		if !r.Exists() {
			continue
		}
		snap[k] = DecodeVersion(r, k)
	}
	return snap, nil
}

// DecodeVersion reads a single version object.
func DecodeVersion(r gjson.Result, key VersionKey) Version {
	sections := make(Sections, len(SectionNames))
	secs := r.Get("secciones")
	for _, name := range SectionNames {
		var items []Product
		for _, item := range secs.Get(string(name)).Array() {
			items = append(items, DecodeProduct(item))
		}
		sections[name] = items
	}
	label := r.Get("label").String()
	if label == "" {
		label = key.Label()
	}
	return Version{
		Key:       key,
		Label:     label,
		Sections:  sections,
		Aggregate: Recompute(sections),
		Error:     r.Get("error").String(),
	}
}

// DecodeProduct reads a product object, accepting the optimizer and catalog
// field names. The price is rounded half up to cents.
func DecodeProduct(r gjson.Result) Product {
	return Product{
		Name:     strings.TrimSpace(first(r, "nombre", "name").String()),
		Price:    RoundHalfUp(decimalFrom(first(r, "precio", "price")), 2),
		Kcal:     first(r, "kcal_pack", "kcal").Float(),
		Protein:  first(r, "prot_pack", "protein_g", "prot").Float(),
		Carbs:    first(r, "carb_pack", "carb_g", "carb").Float(),
		Fat:      first(r, "gras_pack", "fat_g", "gras").Float(),
		Category: strings.TrimSpace(first(r, "tipo", "categoria", "category").String()),
		ImageURL: first(r, "imagen_url", "image_url").String(),
		Emoji:    r.Get("emoji").String(),
	}
}

func first(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func decimalFrom(r gjson.Result) decimal.Decimal {
	var raw string
	switch r.Type {
	case gjson.Number:
		raw = r.Raw
	case gjson.String:
		raw = strings.ReplaceAll(strings.TrimSpace(r.Str), ",", ".")
	default:
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fromFloat(r.Float())
	}
	return d
}

// UnmarshalJSON decodes a product leniently, see DecodeProduct.
func (p *Product) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrMalformed
	}
	*p = DecodeProduct(gjson.ParseBytes(data))
	return nil
}

type productJSON struct {
	Name     string      `json:"nombre"`
	Price    json.Number `json:"precio"`
	Category string      `json:"tipo"`
	Emoji    string      `json:"emoji,omitempty"`
	ImageURL string      `json:"imagen_url,omitempty"`
	Kcal     float64     `json:"kcal_pack"`
	Protein  float64     `json:"prot_pack"`
	Carbs    float64     `json:"carb_pack"`
	Fat      float64     `json:"gras_pack"`
}

// MarshalJSON encodes the product with the optimizer field names.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productJSON{
		Name:     p.Name,
		Price:    json.Number(FormatPrice(p.Price)),
		Category: p.Category,
		Emoji:    p.Emoji,
		ImageURL: p.ImageURL,
		Kcal:     p.Kcal,
		Protein:  p.Protein,
		Carbs:    p.Carbs,
		Fat:      p.Fat,
	})
}

type aggregateJSON struct {
	TotalPrice json.Number `json:"precio_total"`
	ItemCount  int         `json:"total_productos"`
	Macros     Macros      `json:"macros"`
}

// MarshalJSON encodes the aggregate with the optimizer field names.
func (a Aggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(aggregateJSON{
		TotalPrice: json.Number(FormatPrice(a.TotalPrice)),
		ItemCount:  a.ItemCount,
		Macros:     a.Macros,
	})
}

type versionJSON struct {
	Version    string                    `json:"version"`
	Label      string                    `json:"label"`
	TotalPrice json.Number               `json:"precio_total"`
	ItemCount  int                       `json:"total_productos"`
	Macros     Macros                    `json:"macros"`
	Sections   map[SectionName][]Product `json:"secciones"`
	Error      string                    `json:"error,omitempty"`
}

// MarshalJSON encodes the version in the shape DecodeVersion reads.
func (v Version) MarshalJSON() ([]byte, error) {
	sections := make(map[SectionName][]Product, len(SectionNames))
	for _, name := range SectionNames {
		items := v.Sections[name]
		if items == nil {
			items = []Product{}
		}
		sections[name] = items
	}
	return json.Marshal(versionJSON{
		Version:    v.Key.Letter(),
		Label:      v.Label,
		TotalPrice: json.Number(FormatPrice(v.Aggregate.TotalPrice)),
		ItemCount:  v.Aggregate.ItemCount,
		Macros:     v.Aggregate.Macros,
		Sections:   sections,
		Error:      v.Error,
	})
}

// EncodeSnapshot writes the snapshot as an indented JSON document.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}
