package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/viralscope/viralscope/internal/utils"
	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/notify"
	"github.com/viralscope/viralscope/pkg/refresh"
	"github.com/viralscope/viralscope/pkg/sources/mock"
)

// loadDataset runs one refresh against the mock source and returns the
// dataset it produced.
func loadDataset(ctx context.Context, delay time.Duration, failRate float64) (covid.Dataset, error) {
	r, err := refresh.New(refresh.Config{
		Source:  mock.New(mock.Options{Delay: delay, FailRate: failRate}),
		Sink:    notify.LogSink{Log: utils.Log},
		Log:     utils.Log,
		Timeout: 30 * time.Second,
	})
	if err != nil {
		return covid.Dataset{}, err
	}
	if err := r.Refresh(ctx, false); err != nil {
		return covid.Dataset{}, err
	}
	data, _ := r.Current()
	return data, nil
}

func writeCountryTable(w *tabwriter.Writer, countries []covid.CountryRecord) {
	fmt.Fprintln(w, "CODE\tCOUNTRY\tCASES\tDEATHS\tRECOVERED\tACTIVE\tPER 100K\tMORTALITY\tRECOVERY\t")
	for _, c := range countries {
		snap := c.Snapshot()
		rs := covid.ComputeRates(covid.CountsFromCountry(c)).Strings()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			c.Code, c.Name,
			covid.Comma(snap.TotalCases), covid.Comma(snap.TotalDeaths), covid.Comma(snap.TotalRecovered), covid.Comma(snap.ActiveCases),
			rs.CasesPer100k, rs.MortalityRate, rs.RecoveryRate)
	}
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints global and per-country COVID-19 statistics.",
	Long:  "Fetches the current dataset and prints the global totals followed by one row per country with derived rates.",
	RunE: func(cmd *cobra.Command, args []string) error {
		delay, _ := cmd.Flags().GetDuration("fetch-delay")
		failRate, _ := cmd.Flags().GetFloat64("fail-rate")

		data, err := loadDataset(cmd.Context(), delay, failRate)
		if err != nil {
			return fmt.Errorf("could not load data: %w", err)
		}

		global := covid.ComputeRates(covid.CountsFromSnapshot(data.Global)).Strings()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "GLOBAL\tCASES\tDEATHS\tRECOVERED\tACTIVE\tMORTALITY\tRECOVERY\t")
		fmt.Fprintf(w, "\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			covid.Comma(data.Global.TotalCases), covid.Comma(data.Global.TotalDeaths),
			covid.Comma(data.Global.TotalRecovered), covid.Comma(data.Global.ActiveCases),
			global.MortalityRate, global.RecoveryRate)
		fmt.Fprintln(w, " \t \t \t \t \t \t \t")
		writeCountryTable(w, data.Countries)
		w.Flush()

		fmt.Printf("\nUpdated %s\n", data.UpdatedAt.Local().Format(time.RFC1123))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.PersistentFlags().Duration("fetch-delay", 0, "Simulated latency of the data fetch")
	statsCmd.PersistentFlags().Float64("fail-rate", 0, "Probability in [0,1] that the fetch fails")
}
