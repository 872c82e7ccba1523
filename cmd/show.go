package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cesta-app/cesta/pkg/basket"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [version]",
	Short: "Print the basket versions, or the items of one version",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt("days")

		if len(args) == 0 {
			printSummary(store.Snapshot().Ordered(), days)
			return nil
		}

		key, err := versionArg(args[0])
		if err != nil {
			return err
		}
		v, _ := store.Version(key)
		printVersion(v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Int("days", 7, "Number of days the basket covers, used for per-day macros")
}

func printSummary(versions []basket.Version, days int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "VERSION\tTOTAL\tITEMS\tKCAL/DAY\tPROT/DAY\tCARB/DAY\tFAT/DAY\t")
	for _, v := range versions {
		if v.Error != "" {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\t-\t\n", v.Label)
			continue
		}
		m := v.Aggregate.Macros.PerDay(days)
		fmt.Fprintf(w, "%s\t%s€\t%d\t%.0f\t%.1fg\t%.1fg\t%.1fg\t\n",
			v.Label, basket.FormatPrice(v.Aggregate.TotalPrice), v.Aggregate.ItemCount,
			m.Kcal, m.Protein, m.Carbs, m.Fat)
	}
	w.Flush()

	for _, v := range versions {
		if v.Error != "" {
			printVersionError(v)
		}
	}
}

func printVersion(v basket.Version) {
	if v.Error != "" {
		printVersionError(v)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range v.Sections.Names() {
		items := v.Sections[name]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t\t\t\n", name.Label())
		for i, p := range items {
			fmt.Fprintf(w, "  %d\t%s %s\t%s€\t\n", i, p.Emoji, p.Name, basket.FormatPrice(p.Price))
		}
	}
	w.Flush()
	fmt.Printf("\nTotal: %s€ · %d productos\n", basket.FormatPrice(v.Aggregate.TotalPrice), v.Aggregate.ItemCount)
	printNutrition(os.Stdout, v)
}

func printNutrition(out io.Writer, v basket.Version) {
	split := v.Aggregate.Macros.KcalSplit()
	fmt.Fprintf(out, "\nKcal por macro: proteína %.0f · carbohidratos %.0f · grasa %.0f\n", split.Protein, split.Carbs, split.Fat)
	meals := v.Sections.KcalByMeal()
	if len(meals) == 0 {
		return
	}
	fmt.Fprintln(out, "Kcal por comida:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, m := range meals {
		fmt.Fprintf(w, "  %s\t%.0f\t\n", m.Label, m.Kcal)
	}
	w.Flush()
}
