// Package commands implements the pharmamesh CLI: run the analysis pipeline,
// validate the configuration and optionally deliver the report by email.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pharmamesh/config"
	"github.com/hupe1980/pharmamesh/logging"
)

const Version = "0.1.0"

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "pharmamesh",
	Short: "Pharmamesh - multi-agent pharmaceutical data analysis",
	Long: `Pharmamesh runs a fixed multi-agent analysis pipeline over pharmaceutical
quality data: CAPA records, the investigation knowledge graph and clinical
trial documents, consolidated into a single report.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI, printing any terminal error to stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json or text (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

// loadConfig builds the effective configuration from the config file, the
// environment and the CLI flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// buildLogger constructs the pipeline logger from the log section.
func buildLogger(cfg config.Config) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}
