package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/catalog"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage and search the product catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import products from a JSON file into the local catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		products, err := catalog.ParseProducts(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		path, err := utils.CatalogPath(viper.GetString("catalog.path"))
		if err != nil {
			return err
		}

		ctx := context.Background()
		return utils.WithFileLock(ctx, path, func() error {
			db, err := catalog.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			added, updated, err := db.Import(ctx, products)
			if err != nil {
				return err
			}
			total, err := db.Count(ctx)
			if err != nil {
				return err
			}
			utils.Log.Infof("Imported %d products into %s: %d added, %d updated, %d in total", len(products), path, added, updated, total)
			return nil
		})
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searcher, closeFn, err := newSearcher(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		products, err := searcher.Search(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if len(products) == 0 {
			fmt.Println("No products found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPRICE\tCATEGORY\tKCAL\tPROT\t")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s€\t%s\t%.0f\t%.1fg\t\n", p.Name, basket.FormatPrice(p.Price), p.Category, p.Kcal, p.Protein)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
}
