package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/moviecatalog/moviecatalog/internal/daemon"
)

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate the database, seed default roles and permissions, then exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if sqlDB, dbErr := db.DB(); dbErr == nil {
			defer sqlDB.Close()
		}

		if err = daemon.Migrate(db); err != nil {
			return err //nolint:wrapcheck
		}

		if err = daemon.Seed(cmd.Context(), &cfg, db); err != nil {
			return err //nolint:wrapcheck
		}

		log.Info().Str("engine", cfg.DB.GormEngine).Msg("database ready")

		return nil
	},
}
