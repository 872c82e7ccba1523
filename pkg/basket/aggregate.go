package basket

import (
	"math"

	"github.com/shopspring/decimal"
)

var half = decimal.New(5, -1)

// RoundHalfUp rounds d to the given number of decimal places, moving exact
// halves towards positive infinity.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Shift(places).Add(half).Floor().Shift(-places)
}

// Recompute derives the aggregate of a set of sections. It is the only place
// totals are computed. Missing or invalid numeric fields count as zero.
func Recompute(sections Sections) Aggregate {
	var (
		total, kcal, prot, carb, fat decimal.Decimal
		count                        int
	)
	for _, items := range sections {
		for _, p := range items {
			total = total.Add(p.Price)
			kcal = kcal.Add(fromFloat(p.Kcal))
			prot = prot.Add(fromFloat(p.Protein))
			carb = carb.Add(fromFloat(p.Carbs))
			fat = fat.Add(fromFloat(p.Fat))
			count++
		}
	}
	return Aggregate{
		TotalPrice: RoundHalfUp(total, 2),
		ItemCount:  count,
		Macros: Macros{
			Kcal:    RoundHalfUp(kcal, 0).InexactFloat64(),
			Protein: RoundHalfUp(prot, 1).InexactFloat64(),
			Carbs:   RoundHalfUp(carb, 1).InexactFloat64(),
			Fat:     RoundHalfUp(fat, 1).InexactFloat64(),
		},
	}
}

// PerDay spreads the macros over the given number of days using the same
// rounding as Recompute. Weekly baskets are usually shown per day.
func (m Macros) PerDay(days int) Macros {
	if days <= 0 {
		return m
	}
	n := decimal.NewFromInt(int64(days))
	div := func(v float64, places int32) float64 {
		return RoundHalfUp(fromFloat(v).Div(n), places).InexactFloat64()
	}
	return Macros{
		Kcal:    div(m.Kcal, 0),
		Protein: div(m.Protein, 1),
		Carbs:   div(m.Carbs, 1),
		Fat:     div(m.Fat, 1),
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
