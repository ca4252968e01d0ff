package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/citypredict/config"
	"github.com/kilianp07/citypredict/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "citypredict",
	Short:        "Smart city prediction service",
	SilenceUsage: true,
	RunE:         runServe,

	// A missing .env is not an error.
	PersistentPreRun: func(*cobra.Command, []string) { _ = godotenv.Load() },
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration file. The default file may be absent,
// in which case defaults and K_ environment overrides apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}
