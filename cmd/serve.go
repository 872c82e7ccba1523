package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cesta-app/cesta/internal/server"
	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/export"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an editing session of the basket file over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, path, err := loadStore(cmd)
		if err != nil {
			return err
		}

		cfg := server.Config{
			Store:          store,
			Layout:         pageLayout(),
			SearchDebounce: viper.GetDuration("search.debounce"),
			Username:       viper.GetString("server.username"),
			Password:       viper.GetString("server.password"),
			OnChange: func(snap basket.Snapshot) error {
				return saveSnapshot(path, snap)
			},
		}

		if cfg.Renderer, err = export.NewRenderer(cfg.Layout, viper.GetFloat64("export.font_size")); err != nil {
			return err
		}

		if req, err := requestFromFlags(cmd); err == nil {
			client, err := newOptimizer(cmd)
			if err != nil {
				return err
			}
			cfg.Optimizer, cfg.Request = client, req
		} else {
			utils.Log.Warnf("Regeneration disabled: %v", err)
		}

		searcher, closeFn, err := newSearcher(cmd)
		if err != nil {
			utils.Log.Warnf("Search disabled: %v", err)
		} else {
			defer closeFn()
			cfg.Searcher = searcher
		}

		listenAddr, _ := cmd.Flags().GetString("listen")
		if listenAddr == "" {
			listenAddr = viper.GetString("server.listen")
		}
		return server.New(cfg).Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addTargetFlags(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default from server.listen)")
}
