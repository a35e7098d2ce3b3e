package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viralscope/viralscope/pkg/sources/mock"
	"github.com/viralscope/viralscope/website/pkg/core"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ViralScope dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		devMode, _ := cmd.Flags().GetBool("dev")

		return core.Run(core.ServerConfig{
			DevMode:         devMode,
			DBPath:          viper.GetString("db.path"),
			ListenAddr:      viper.GetString("serve.listen"),
			RefreshInterval: viper.GetInt("serve.refresh_interval"),
			FetchDelay:      viper.GetDuration("serve.fetch_delay"),
			FailRate:        viper.GetFloat64("serve.fail_rate"),
			Jitter:          viper.GetFloat64("serve.jitter"),
			APIUsername:     viper.GetString("api.username"),
			APIPassword:     viper.GetString("api.password"),
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolP("dev", "d", false, "Enable development mode (HTTP on localhost:7000)")
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Int("refresh-interval", 5, "Minutes between automatic refreshes (0 to start with auto-refresh off)")
	serveCmd.Flags().Duration("fetch-delay", mock.DefaultDelay, "Simulated latency of each data fetch")
	serveCmd.Flags().Float64("fail-rate", 0, "Probability in [0,1] that a fetch fails")
	serveCmd.Flags().Float64("jitter", 0, "Fraction by which counts vary between fetches")
	serveCmd.Flags().StringP("username", "u", "", "Username for API basic auth (optional)")
	serveCmd.Flags().StringP("password", "p", "", "Password for API basic auth (optional)")

	viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("serve.refresh_interval", serveCmd.Flags().Lookup("refresh-interval"))
	viper.BindPFlag("serve.fetch_delay", serveCmd.Flags().Lookup("fetch-delay"))
	viper.BindPFlag("serve.fail_rate", serveCmd.Flags().Lookup("fail-rate"))
	viper.BindPFlag("serve.jitter", serveCmd.Flags().Lookup("jitter"))
	viper.BindPFlag("api.username", serveCmd.Flags().Lookup("username"))
	viper.BindPFlag("api.password", serveCmd.Flags().Lookup("password"))
}
