package basket

import "github.com/shopspring/decimal"

// Energy per gram of each macro nutrient, in kcal.
var (
	kcalPerProtein = decimal.NewFromInt(4)
	kcalPerCarb    = decimal.NewFromInt(4)
	kcalPerFat     = decimal.NewFromInt(9)
)

// KcalSplit is the energy contributed by each macro nutrient, in whole kcal.
type KcalSplit struct {
	Protein float64 `json:"prot"`
	Carbs   float64 `json:"carb"`
	Fat     float64 `json:"gras"`
}

// Total returns the energy of the three nutrients together.
func (k KcalSplit) Total() float64 { return k.Protein + k.Carbs + k.Fat }

// KcalSplit converts the macro grams to kcal.
func (m Macros) KcalSplit() KcalSplit {
	kcal := func(grams float64, per decimal.Decimal) float64 {
		return RoundHalfUp(fromFloat(grams).Mul(per), 0).InexactFloat64()
	}
	return KcalSplit{
		Protein: kcal(m.Protein, kcalPerProtein),
		Carbs:   kcal(m.Carbs, kcalPerCarb),
		Fat:     kcal(m.Fat, kcalPerFat),
	}
}

// MealKcal is the energy of the items of one section.
type MealKcal struct {
	Section SectionName `json:"seccion"`
	Label   string      `json:"etiqueta"`
	Kcal    float64     `json:"kcal"`
}

// KcalByMeal sums the kcal of every section in display order. Sections that
// add up to zero are left out.
func (s Sections) KcalByMeal() []MealKcal {
	var out []MealKcal
	for _, name := range s.Names() {
		sum := decimal.Zero
		for _, p := range s[name] {
			sum = sum.Add(fromFloat(p.Kcal))
		}
		kcal := RoundHalfUp(sum, 0)
		if !kcal.IsPositive() {
			continue
		}
		out = append(out, MealKcal{Section: name, Label: name.Label(), Kcal: kcal.InexactFloat64()})
	}
	return out
}
