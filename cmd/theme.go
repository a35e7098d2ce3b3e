package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viralscope/viralscope/internal/utils"
	"github.com/viralscope/viralscope/pkg/storage"
)

func openDB() (*storage.DB, error) {
	path, err := utils.GetAbsDBPath(viper.GetString("db.path"))
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, nil
}

// themeCmd represents the theme command
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Read or change the dashboard theme",
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		theme, err := db.GetTheme(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(theme)
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:   "set <dark|light>",
	Short: "Store the theme used by the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := storage.ParseTheme(args[0])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		err = utils.WithDBLock(db.Path(), func() error {
			return db.SetTheme(cmd.Context(), theme)
		})
		if err != nil {
			return err
		}
		utils.Log.Infof("Theme set to %s", theme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeGetCmd, themeSetCmd)
}
