package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/config"
	"github.com/soma-campus/soma-backend/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "soma",
	Short:         "SOMA campus backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. With no subcommand the server starts.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "soma: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = serveCmd.RunE
}

// setup loads configuration and builds the logger shared by every command.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
