package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viralscope/viralscope/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `        _           _
 __   _(_)_ __ __ _| |___  ___ ___  _ __   ___
 \ \ / / | '__/ _' | / __|/ __/ _ \| '_ \ / _ \
  \ V /| | | | (_| | \__ \ (_| (_) | |_) |  __/
   \_/ |_|_|  \__,_|_|___/\___\___/| .__/ \___|
                                   |_|
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "viralscope",
	Short: "A COVID-19 statistics dashboard.",
	Long: LOGO + `viralscope serves real-time COVID-19 statistics with interactive filtering and charts,
and lets you query the same numbers from your command line.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
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
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.viralscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default is $HOME/.config/viralscope/viralscope.sqlite)")
	viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("dbpath"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".viralscope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("viralscope")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setConfigDefaults()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".viralscope.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s\n", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setConfigDefaults() {
	viper.SetDefault("serve.listen", ":8080")
	viper.SetDefault("serve.refresh_interval", 5)
	viper.SetDefault("serve.fetch_delay", "1.5s")
	viper.SetDefault("serve.fail_rate", 0.0)
	viper.SetDefault("serve.jitter", 0.0)
	viper.SetDefault("db.path", "")
	viper.SetDefault("api.username", "")
	viper.SetDefault("api.password", "")
	viper.SetDefault("remote.server", "http://localhost:8080")
}
