package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/optimizer"
	"github.com/cesta-app/cesta/pkg/profile"
)

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("profile", "p", "", "Diet profile providing default targets (default from profile.default)")
	cmd.Flags().Float64("budget", 0, "Weekly budget in euros")
	cmd.Flags().Float64("protein", 0, "Daily protein target in grams")
	cmd.Flags().Float64("kcal", 0, "Daily calorie target")
	cmd.Flags().Float64("carbs", 0, "Daily carbohydrate target in grams")
	cmd.Flags().Float64("fat", 0, "Daily fat target in grams")
	cmd.Flags().String("exclude", "", "Comma separated categories to exclude (e.g. carne,pescado)")
}

func configOverrides(key string) profile.Overrides {
	var o profile.Overrides
	get := func(name string) *float64 {
		k := "profiles." + key + "." + name
		if !viper.IsSet(k) {
			return nil
		}
		v := viper.GetFloat64(k)
		return &v
	}
	o.Protein = get("proteinas")
	o.Kcal = get("calorias")
	o.Carbs = get("carbohidratos")
	o.Fat = get("grasas")
	if k := "profiles." + key + ".excluir_tipos"; viper.IsSet(k) {
		o.Exclude = viper.GetStringSlice(k)
	}
	return o
}

func flagOverrides(cmd *cobra.Command) profile.Overrides {
	var o profile.Overrides
	get := func(name string) *float64 {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetFloat64(name)
		return &v
	}
	o.Protein = get("protein")
	o.Kcal = get("kcal")
	o.Carbs = get("carbs")
	o.Fat = get("fat")
	if cmd.Flags().Changed("exclude") {
		s, _ := cmd.Flags().GetString("exclude")
		o.Exclude = utils.ParseCSV(s)
		if o.Exclude == nil {
			o.Exclude = []string{}
		}
	}
	return o
}

// requestFromFlags builds the optimizer request from the profile defaults,
// the config overrides and finally the command line flags.
func requestFromFlags(cmd *cobra.Command) (optimizer.Request, error) {
	key, _ := cmd.Flags().GetString("profile")
	if key == "" {
		key = viper.GetString("profile.default")
	}
	p, ok := profile.Lookup(key)
	if !ok {
		return optimizer.Request{}, fmt.Errorf("unknown profile %q (see `cesta profiles`)", key)
	}
	p = p.Apply(configOverrides(p.Key)).Apply(flagOverrides(cmd))

	budget, _ := cmd.Flags().GetFloat64("budget")
	if budget <= 0 {
		return optimizer.Request{}, fmt.Errorf("a positive --budget is required")
	}

	utils.Log.Debugf("Using profile %s: %.0fg protein, %.0f kcal, excluding %v", p.Key, p.Protein, p.Kcal, p.Exclude)
	return optimizer.Request{
		Budget:            budget,
		Protein:           p.Protein,
		Kcal:              p.Kcal,
		Carbs:             p.Carbs,
		Fat:               p.Fat,
		ExcludeCategories: p.Exclude,
	}, nil
}
