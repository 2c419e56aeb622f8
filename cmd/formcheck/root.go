package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/formcheck/internal/config"
	"github.com/ayusman/formcheck/internal/logging"
	"github.com/ayusman/formcheck/internal/store"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "formcheck",
	Short:         "Real-time exercise form feedback and rep counting",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logging.Setup(logging.Params{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			ToStdout:   cfg.Log.Stdout,
			FormatJSON: cfg.Log.JSON,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the TOML config file (default "+config.DefaultPath()+")")
}

// openStore opens the database in the configured data directory.
func openStore() (*store.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
