package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cesta-app/cesta/pkg/basket"
)

// candidatesCmd represents the candidates command
var candidatesCmd = &cobra.Command{
	Use:   "candidates <version> <section>",
	Short: "List substitutes for a section taken from the other versions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := versionArg(args[0])
		if err != nil {
			return err
		}
		section, err := sectionArg(args[1])
		if err != nil {
			return err
		}
		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}

		groups := store.Candidates(key, section)
		if len(groups) == 0 {
			fmt.Println("No candidates: the other versions have nothing new for this section.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t\t\t\n", g.Label)
			for _, p := range g.Items {
				fmt.Fprintf(w, "  %s\t%s€\t%.0f kcal\t\n", p.Name, basket.FormatPrice(p.Price), p.Kcal)
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
}
