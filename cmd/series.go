package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/viralscope/viralscope/pkg/covid"
)

func printSeries(points []covid.DailyPoint, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "DATE\tCASES\tDEATHS\tRECOVERED\t")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", p.DateString(), covid.Comma(p.Cases), covid.Comma(p.Deaths), covid.Comma(p.Recovered))
	}
	return w.Flush()
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Print a generated daily series for a region",
	RunE: func(cmd *cobra.Command, args []string) error {
		region, _ := cmd.Flags().GetString("region")
		days, _ := cmd.Flags().GetInt("days")
		seed, _ := cmd.Flags().GetInt64("seed")
		asJSON, _ := cmd.Flags().GetBool("json")

		entity := covid.Global
		if !covid.Entity(region).IsGlobal() {
			c, ok := covid.FindCountry(covid.MockCountries(), region)
			if !ok {
				return fmt.Errorf("unknown region %q", region)
			}
			entity = covid.Entity(c.Code)
		}

		points, err := covid.NewGenerator(seed).Series(entity, days)
		if err != nil {
			return err
		}
		return printSeries(points, asJSON)
	},
}

func init() {
	rootCmd.AddCommand(seriesCmd)
	seriesCmd.Flags().StringP("region", "r", string(covid.Global), "global or a country code")
	seriesCmd.Flags().IntP("days", "n", 30, "Number of days before today to include")
	seriesCmd.Flags().Int64("seed", 0, "Random seed (0 picks one)")
	seriesCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

// regionFlag normalises a region argument for display.
func regionFlag(region string) string {
	if covid.Entity(region).IsGlobal() {
		return string(covid.Global)
	}
	return strings.ToUpper(region)
}
