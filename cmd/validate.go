package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lelborn/lelborn/internal/render"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Checks the configuration and SVG templates without calling GitHub",
	Run: func(cmd *cobra.Command, args []string) {
		logger, cfg := setup(cmd)
		if err := cfg.Validate(); err != nil {
			fail("Configuration validation failed", err)
		}
		dark, light := cfg.Templates()
		if err := render.NewUpdater(dark, light, logger).Validate(); err != nil {
			fail("SVG file validation failed", err)
		}

		source := cfg.Path()
		if cfg.FromDefaults() {
			source = "built-in defaults"
		}
		color.New(color.FgGreen).Fprintf(os.Stdout, "Configuration OK (%s) for user %s\n", source, cfg.Username())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
