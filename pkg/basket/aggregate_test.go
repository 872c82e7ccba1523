package basket

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func item(name, price, category string, kcal, prot, carb, fat float64) Product {
	return Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
		Kcal:     kcal,
		Protein:  prot,
		Carbs:    carb,
		Fat:      fat,
	}
}

func TestRecomputeScenario(t *testing.T) {
	sections := Sections{
		Breakfast: {item("Leche", "1.20", "lacteo", 150, 10, 15, 5)},
		Lunch:     {item("Pollo", "3.50", "carne", 400, 60, 0, 12)},
	}

	got := Recompute(sections)
	if !got.TotalPrice.Equal(decimal.RequireFromString("4.70")) {
		t.Fatalf("total: want 4.70, got %s", got.TotalPrice)
	}
	if got.ItemCount != 2 {
		t.Fatalf("item count: want 2, got %d", got.ItemCount)
	}
	want := Macros{Kcal: 550, Protein: 70, Carbs: 15, Fat: 17}
	if got.Macros != want {
		t.Fatalf("macros: want %+v, got %+v", want, got.Macros)
	}
}

func TestRecomputeEmpty(t *testing.T) {
	for name, sections := range map[string]Sections{
		"nil":            nil,
		"empty":          {},
		"empty sections": {Breakfast: nil, Lunch: {}},
	} {
		got := Recompute(sections)
		if !got.Equal(Aggregate{}) {
			t.Fatalf("%s: expected zero aggregate, got %+v", name, got)
		}
	}
}

func TestRecomputeRounding(t *testing.T) {
	tests := []struct {
		name   string
		prices []string
		want   string
	}{
		{"half cent rounds up", []string{"0.005"}, "0.01"},
		{"below half rounds down", []string{"1.004"}, "1"},
		{"classic binary trap", []string{"2.675"}, "2.68"},
		{"sum before rounding", []string{"0.333", "0.333", "0.333"}, "1"},
		{"many small", []string{"0.10", "0.20"}, "0.3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var items []Product
			for i, p := range tc.prices {
				items = append(items, item(string(rune('a'+i)), p, "", 0, 0, 0, 0))
			}
			got := Recompute(Sections{Snack: items}).TotalPrice
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestRecomputeMacroRounding(t *testing.T) {
	sections := Sections{
		Dinner: {
			item("Huevos", "2.10", "huevo", 100.25, 10.25, 0.04, 3.35),
			item("Pan", "0.90", "cereal", 50.25, 2.0, 20.01, 1.0),
		},
	}
	got := Recompute(sections).Macros
	want := Macros{Kcal: 151, Protein: 12.3, Carbs: 20.1, Fat: 4.4}
	if got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

func TestRecomputeIgnoresInvalidNumbers(t *testing.T) {
	sections := Sections{
		Lunch: {
			{Name: "Sin datos"},
			{Name: "Roto", Kcal: math.NaN(), Protein: math.Inf(1)},
			item("Arroz", "1.05", "cereal", 350, 7, 78, 1),
		},
	}
	got := Recompute(sections)
	if got.ItemCount != 3 {
		t.Fatalf("expected missing-field items to be counted, got %d", got.ItemCount)
	}
	if !got.TotalPrice.Equal(decimal.RequireFromString("1.05")) {
		t.Fatalf("unexpected total %s", got.TotalPrice)
	}
	if got.Macros.Kcal != 350 || got.Macros.Protein != 7 {
		t.Fatalf("unexpected macros %+v", got.Macros)
	}
}

func TestRecomputeItemCountMatchesPlacements(t *testing.T) {
	sections := Sections{
		Breakfast: {item("Leche", "1.20", "lacteo", 0, 0, 0, 0), item("Leche", "1.20", "lacteo", 0, 0, 0, 0)},
		Lunch:     {item("Arroz", "1.05", "cereal", 0, 0, 0, 0)},
		Snack:     nil,
		Dinner:    {item("Atún", "3.10", "conserva", 0, 0, 0, 0), item("Tomate", "0.80", "verdura", 0, 0, 0, 0)},
	}
	placements := 0
	sum := decimal.Zero
	for _, items := range sections {
		placements += len(items)
		for _, p := range items {
			sum = sum.Add(p.Price)
		}
	}
	got := Recompute(sections)
	if got.ItemCount != placements {
		t.Fatalf("want %d placements, got %d", placements, got.ItemCount)
	}
	if !got.TotalPrice.Equal(RoundHalfUp(sum, 2)) {
		t.Fatalf("want %s, got %s", RoundHalfUp(sum, 2), got.TotalPrice)
	}
}

func TestPerDay(t *testing.T) {
	weekly := Macros{Kcal: 16800, Protein: 1050, Carbs: 2100.7, Fat: 490}
	got := weekly.PerDay(7)
	want := Macros{Kcal: 2400, Protein: 150, Carbs: 300.1, Fat: 70}
	if got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}
	if weekly.PerDay(0) != weekly {
		t.Fatalf("zero days should leave macros untouched")
	}
}
