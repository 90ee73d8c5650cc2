package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moviecatalog/moviecatalog/internal/config"
)

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as JSON with secrets masked",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.ReadConfig(configPath, func(c *config.Config) {
			if devMode {
				c.DevMode = true
			}
		})
		if err != nil {
			return err //nolint:wrapcheck
		}

		masked := cfg.Masked()

		out, err := config.DumpConfigJSON(&masked)
		if err != nil {
			return err //nolint:wrapcheck
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), out)

		return err //nolint:wrapcheck
	},
}
