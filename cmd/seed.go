package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/db"
	"github.com/soma-campus/soma-backend/internal/parties"
	"github.com/soma-campus/soma-backend/internal/seeds"
	"github.com/soma-campus/soma-backend/internal/server"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load starter parties and candidates from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is empty")
		}
		path := cfg.SeedFile
		if seedFile != "" {
			path = seedFile
		}

		f, err := seeds.Load(path)
		if err != nil {
			return err
		}
		d, err := db.Connect(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(d) }()
		if err := server.Migrate(d); err != nil {
			return err
		}

		_, err = seeds.SeedAll(cmd.Context(), parties.NewService(d, log), f, log.With(zap.String("file", path)))
		return err
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file (default from SEED_FILE)")
	rootCmd.AddCommand(seedCmd)
}
