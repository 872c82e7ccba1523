// Package profile holds the built-in diet profiles used as defaults for
// optimizer targets.
package profile

import "strings"

// Default is the profile used when none is configured.
const Default = "estandar"

// Profile is a named set of daily macro targets. Carbs and Fat are optional;
// nil leaves them to the optimizer.
type Profile struct {
	Key     string
	Name    string
	Protein float64
	Kcal    float64
	Carbs   *float64
	Fat     *float64
	// Exclude lists categories the optimizer must not pick.
	Exclude []string
}

func grams(v float64) *float64 { return &v }

var profiles = []Profile{
	{Key: "estandar", Name: "⚡ Estándar", Protein: 150, Kcal: 2400},
	{Key: "deportista", Name: "🏋️ Deportista", Protein: 180, Kcal: 2800, Carbs: grams(350), Fat: grams(90)},
	{Key: "deficit", Name: "🥗 Dieta / Déficit", Protein: 150, Kcal: 1800, Carbs: grams(180), Fat: grams(60), Exclude: []string{"capricho"}},
	{Key: "vegano", Name: "🌱 Vegano", Protein: 120, Kcal: 2200, Carbs: grams(300), Fat: grams(70), Exclude: []string{"carne", "pescado", "lacteo", "huevo"}},
	{Key: "vegetariano", Name: "🥚 Vegetariano", Protein: 130, Kcal: 2200, Carbs: grams(280), Fat: grams(70), Exclude: []string{"carne", "pescado"}},
	{Key: "personalizado", Name: "🔧 Personalizado", Protein: 150, Kcal: 2400},
}

// All returns a copy of the built-in profiles in display order.
func All() []Profile {
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = p.clone()
	}
	return out
}

// Lookup finds a profile by key, ignoring case.
func Lookup(key string) (Profile, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range profiles {
		if p.Key == key {
			return p.clone(), true
		}
	}
	return Profile{}, false
}

func (p Profile) clone() Profile {
	if p.Carbs != nil {
		p.Carbs = grams(*p.Carbs)
	}
	if p.Fat != nil {
		p.Fat = grams(*p.Fat)
	}
	p.Exclude = append([]string(nil), p.Exclude...)
	return p
}

// Overrides replaces individual targets of a profile. Nil fields keep the
// profile value.
type Overrides struct {
	Protein *float64
	Kcal    *float64
	Carbs   *float64
	Fat     *float64
	Exclude []string
}

// Apply returns p with the non-nil overrides installed.
func (p Profile) Apply(o Overrides) Profile {
	p = p.clone()
	if o.Protein != nil {
		p.Protein = *o.Protein
	}
	if o.Kcal != nil {
		p.Kcal = *o.Kcal
	}
	if o.Carbs != nil {
		p.Carbs = grams(*o.Carbs)
	}
	if o.Fat != nil {
		p.Fat = grams(*o.Fat)
	}
	if o.Exclude != nil {
		p.Exclude = make([]string, len(o.Exclude))
		copy(p.Exclude, o.Exclude)
	}
	return p
}
