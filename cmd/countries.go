package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/viralscope/viralscope/pkg/covid"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List tracked countries, optionally filtered by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")

		data, err := loadDataset(cmd.Context(), 0, 0)
		if err != nil {
			return fmt.Errorf("could not load data: %w", err)
		}

		matches := covid.FilterCountries(data.Countries, search)
		if len(matches) == 0 {
			fmt.Printf("No countries match %q.", search)
			if c, ok := covid.SuggestCountry(data.Countries, search); ok {
				fmt.Printf(" Did you mean %s (%s)?", c.Name, c.Code)
			}
			fmt.Println()
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		writeCountryTable(w, matches)
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(countriesCmd)
	countriesCmd.Flags().StringP("search", "s", "", "Case-insensitive match on country name")
}
