package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/basket"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Ask the optimizer for three basket versions",
	Long: `Ask the optimizer for three basket versions and write them to the basket file.

With --only a single version of an existing basket file is regenerated; --keep
lists the sections of that version that must stay as they are.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		client, err := newOptimizer(cmd)
		if err != nil {
			return err
		}
		path := basketPath(cmd)
		ctx := context.Background()

		only, _ := cmd.Flags().GetString("only")
		if only == "" {
			utils.Log.Info("Generating 3 basket versions...")
			snap, err := client.Optimize(ctx, req)
			if err != nil {
				return err
			}
			store := basket.NewStore(snap)
			if err := saveSnapshot(path, store.Snapshot()); err != nil {
				return err
			}
			printSummary(store.Snapshot().Ordered(), 7)
			utils.Log.Infof("Basket saved to %s", path)
			return nil
		}

		key, err := versionArg(only)
		if err != nil {
			return err
		}
		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}
		keep, _ := cmd.Flags().GetString("keep")
		if fixed := utils.ParseCSV(keep); len(fixed) > 0 {
			current, _ := store.Version(key)
			req.FixedSections = make(map[basket.SectionName][]basket.Product, len(fixed))
			for _, s := range fixed {
				name, err := sectionArg(s)
				if err != nil {
					return err
				}
				req.FixedSections[name] = current.Sections[name]
			}
		}

		utils.Log.Infof("Regenerating %s...", key.Label())
		v, err := client.Regenerate(ctx, req, key)
		if err != nil {
			return err
		}
		store.ReplaceVersion(key, v.Sections, v.Error)
		if err := saveSnapshot(path, store.Snapshot()); err != nil {
			return err
		}
		updated, _ := store.Version(key)
		printSummary([]basket.Version{updated}, 7)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addTargetFlags(generateCmd)
	generateCmd.Flags().String("only", "", "Regenerate a single version (a, b or c) of the basket file")
	generateCmd.Flags().String("keep", "", "With --only, comma separated sections to keep fixed")
}

func printVersionError(v basket.Version) {
	fmt.Printf("%s: %s\n", v.Label, v.Error)
}
