package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/export"
)

func pageLayout() export.Layout {
	l := export.DefaultLayout()
	if w := viper.GetFloat64("export.page_width"); w > 0 {
		l.Width = w
	}
	if h := viper.GetFloat64("export.page_height"); h > 0 {
		l.Height = h
	}
	return l
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <version>",
	Short: "Render the shopping list of a version as printable PNG pages",
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

		layout := pageLayout()
		r, err := export.NewRenderer(layout, viper.GetFloat64("export.font_size"))
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("output")
		paths, err := r.RenderFiles(export.Paginate(v, layout), out)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		utils.Log.Infof("%s exported in %d page(s)", v.Label, len(paths))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "lista", "Output directory for the pages")
}
