package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viralscope/viralscope/pkg/client"
	"github.com/viralscope/viralscope/pkg/covid"
)

// remoteCmd represents the remote command
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Query a running ViralScope server",
}

func remoteClient(cmd *cobra.Command) *client.Client {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	retries, _ := cmd.Flags().GetInt("retries")
	user, pass := viper.GetString("api.username"), viper.GetString("api.password")
	if cmd.Flags().Changed("username") {
		user, _ = cmd.Flags().GetString("username")
	}
	if cmd.Flags().Changed("password") {
		pass, _ = cmd.Flags().GetString("password")
	}
	return client.New(viper.GetString("remote.server"), timeout, retries).WithAuth(user, pass)
}

var remoteStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the statistics a server is currently showing",
	RunE: func(cmd *cobra.Command, args []string) error {
		region, _ := cmd.Flags().GetString("region")
		sum, err := remoteClient(cmd).Stats(cmd.Context(), regionFlag(region))
		if err != nil {
			return err
		}
		rs := sum.Rates.Strings()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Region:\t%s (%s)\n", sum.Name, sum.Region)
		fmt.Fprintf(w, "Total cases:\t%s\n", covid.Comma(sum.Stats.TotalCases))
		fmt.Fprintf(w, "Deaths:\t%s\n", covid.Comma(sum.Stats.TotalDeaths))
		fmt.Fprintf(w, "Recovered:\t%s\n", covid.Comma(sum.Stats.TotalRecovered))
		fmt.Fprintf(w, "Active:\t%s\n", covid.Comma(sum.Stats.ActiveCases))
		fmt.Fprintf(w, "Cases per 100K:\t%s\n", rs.CasesPer100k)
		fmt.Fprintf(w, "Mortality rate:\t%s\n", rs.MortalityRate)
		fmt.Fprintf(w, "Recovery rate:\t%s\n", rs.RecoveryRate)
		if !sum.UpdatedAt.IsZero() {
			fmt.Fprintf(w, "Updated:\t%s\n", humanize.Time(sum.UpdatedAt))
		}
		if sum.Loading {
			fmt.Fprintf(w, "Status:\trefresh in progress\n")
		}
		return w.Flush()
	},
}

var remoteSeriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Print the daily series a server generates for a region",
	RunE: func(cmd *cobra.Command, args []string) error {
		region, _ := cmd.Flags().GetString("region")
		days, _ := cmd.Flags().GetInt("days")
		seed, _ := cmd.Flags().GetInt64("seed")
		asJSON, _ := cmd.Flags().GetBool("json")

		points, err := remoteClient(cmd).Series(cmd.Context(), regionFlag(region), days, seed)
		if err != nil {
			return err
		}
		return printSeries(points, asJSON)
	},
}

var remoteCountriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the countries a server tracks",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		res, err := remoteClient(cmd).Countries(cmd.Context(), search)
		if err != nil {
			return err
		}
		if len(res.Countries) == 0 {
			fmt.Printf("No countries match %q.", search)
			if res.Suggestion != "" {
				fmt.Printf(" Did you mean %s?", res.Suggestion)
			}
			fmt.Println()
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		writeCountryTable(w, res.Countries)
		return w.Flush()
	},
}

var remoteRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask a server to fetch fresh data",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := remoteClient(cmd).Refresh(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var remotePingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that a server's dashboard is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := remoteClient(cmd).Ping(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s: HTTP %d, %q in %s\n", viper.GetString("remote.server"), p.StatusCode, p.Title, p.Latency.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteStatsCmd, remoteSeriesCmd, remoteCountriesCmd, remoteRefreshCmd, remotePingCmd)

	remoteCmd.PersistentFlags().String("server", "http://localhost:8080", "Base URL of the ViralScope server")
	remoteCmd.PersistentFlags().StringP("username", "u", "", "Username for API basic auth")
	remoteCmd.PersistentFlags().StringP("password", "p", "", "Password for API basic auth")
	remoteCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Per-request timeout")
	remoteCmd.PersistentFlags().Int("retries", 2, "Retries on connection errors and 5xx responses")
	viper.BindPFlag("remote.server", remoteCmd.PersistentFlags().Lookup("server"))

	remoteStatsCmd.Flags().StringP("region", "r", string(covid.Global), "global or a country code")

	remoteSeriesCmd.Flags().StringP("region", "r", string(covid.Global), "global or a country code")
	remoteSeriesCmd.Flags().IntP("days", "n", 30, "Number of days before today to include")
	remoteSeriesCmd.Flags().Int64("seed", 0, "Random seed (0 lets the server pick)")
	remoteSeriesCmd.Flags().Bool("json", false, "Print JSON instead of a table")

	remoteCountriesCmd.Flags().StringP("search", "s", "", "Case-insensitive match on country name")
}
