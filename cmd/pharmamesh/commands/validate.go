package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and report warnings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cmd.Println("Configuration is valid.")
		cmd.Printf("  Model provider: %s\n", cfg.Model.Provider)
		cmd.Printf("  CAPA file:      %s\n", pathStatus(cfg.Data.CapaFile))
		cmd.Printf("  Email mode:     %s\n", emailMode(cfg.Email.MockMode))

		for _, warning := range cfg.Warnings() {
			cmd.Printf("  Warning: %s\n", warning)
		}

		return nil
	},
}

func pathStatus(path string) string {
	if path == "" {
		return "(not configured)"
	}

	if _, err := os.Stat(path); err != nil {
		return path + " (not accessible)"
	}

	return path
}

func emailMode(mock bool) string {
	if mock {
		return "mock (recorded, not sent)"
	}

	return "smtp"
}
