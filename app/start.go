package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/moviecatalog/moviecatalog/internal/daemon"
)

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the movie catalog web service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cfg.DevMode {
			log.Warn().Msg("dev mode enabled")
		}

		d, err := daemon.New(cmd.Context(), &cfg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		log.Info().Int("port", cfg.Webserver.Port).Str("url", cfg.Webserver.URL).Msg("starting web service")

		return d.Start() //nolint:wrapcheck
	},
}
