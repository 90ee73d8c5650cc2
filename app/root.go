// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/moviecatalog/moviecatalog/internal/config"
	"github.com/moviecatalog/moviecatalog/internal/logger"
)

var (
	configPath string // directory holding main.toml
	devMode    bool

	rootCmd = &cobra.Command{
		Use:   "movie-catalog",
		Short: "Identity and authorization service of the movie catalog",
		Long: `movie-catalog runs the account, role and permission backend of the movie catalog:
registration and login with bearer tokens, role based access control and the admin API
for roles, grants and user role assignment.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() { //nolint:gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "directory containing main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "enable dev mode")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration, applies --dev and initialises the logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.ReadConfig(configPath, func(c *config.Config) {
		if devMode {
			c.DevMode = true
		}
	})
	if err != nil {
		return cfg, err //nolint:wrapcheck
	}

	if err = logger.Init(cfg.Log); err != nil {
		return cfg, err //nolint:wrapcheck
	}

	return cfg, nil
}
