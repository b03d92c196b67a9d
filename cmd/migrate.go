package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/soma-campus/soma-backend/internal/db"
	"github.com/soma-campus/soma-backend/internal/server"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is empty")
		}

		d, err := db.Connect(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(d) }()

		if err := server.Migrate(d); err != nil {
			return err
		}
		log.Info("schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
