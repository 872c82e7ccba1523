package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesta-app/cesta/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	                _        
	  ___ ___  ___| |_ __ _ 
	 / __/ _ \/ __| __/ _' |
	| (_|  __/\__ \ || (_| |
	 \___\___||___/\__\__,_|
	                         
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cesta",
	Short: "Generate and edit weekly shopping baskets that fit your budget and macros.",
	Long: LOGO + `cesta asks the basket optimizer for three versions of a weekly shopping basket,
lets you edit them item by item while keeping prices and macros consistent,
and exports the result as a shopping list grouped by aisle.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cesta.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("basket", "b", "cesta.json", "Basket file holding the three versions")
}

func setDefaults() {
	viper.SetDefault("optimizer.url", "http://localhost:8000")
	viper.SetDefault("optimizer.token", "")
	viper.SetDefault("optimizer.timeout", "60s")
	viper.SetDefault("optimizer.retries", 2)
	viper.SetDefault("catalog.path", "")
	viper.SetDefault("catalog.url", "")
	viper.SetDefault("search.debounce", "300ms")
	viper.SetDefault("profile.default", "estandar")
	viper.SetDefault("export.page_width", 794)
	viper.SetDefault("export.page_height", 1123)
	viper.SetDefault("export.font_size", 13)
	viper.SetDefault("server.listen", "127.0.0.1:8080")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".cesta")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("cesta")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.cesta.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
