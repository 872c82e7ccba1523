package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cesta-app/cesta/pkg/profile"
)

// profilesCmd represents the profiles command
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the diet profiles and their default targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tPROT\tKCAL\tCARB\tFAT\tEXCLUDES\t")
		for _, p := range profile.All() {
			p = p.Apply(configOverrides(p.Key))
			fmt.Fprintf(w, "%s\t%s\t%.0fg\t%.0f\t%s\t%s\t%s\t\n",
				p.Key, p.Name, p.Protein, p.Kcal, optional(p.Carbs), optional(p.Fat), strings.Join(p.Exclude, ","))
		}
		return w.Flush()
	},
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0fg", *v)
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
