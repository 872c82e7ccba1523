package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/export"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list <version>",
	Short: "Print the shopping list of a version grouped by aisle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := versionArg(args[0])
		if err != nil {
			return err
		}
		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}
		v, _ := store.Version(key)
		text := export.Text(v)

		if copyList, _ := cmd.Flags().GetBool("copy"); copyList {
			if err := clipboard.WriteAll(text); err != nil {
				return fmt.Errorf("could not copy to clipboard: %w", err)
			}
			utils.Log.Infof("Shopping list of %s copied to the clipboard", v.Label)
			return nil
		}
		fmt.Print(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("copy", false, "Copy the list to the system clipboard instead of printing it")
}
