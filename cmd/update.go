package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lelborn/lelborn/internal/format"
	"github.com/lelborn/lelborn/internal/render"
	"github.com/lelborn/lelborn/internal/report"
	"github.com/lelborn/lelborn/internal/usecase"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Collects GitHub statistics and rewrites the profile SVGs",
	Long: `Validates the configuration and templates, collects every statistic,
substitutes them into the dark and light SVG templates and prints a
performance summary with API usage.

Nothing is written when collection fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger, cfg := setup(cmd)
		if err := cfg.Validate(); err != nil {
			fail("Configuration validation failed", err)
		}
		dark, light := cfg.Templates()
		updater := render.NewUpdater(dark, light, logger)
		if err := updater.Validate(); err != nil {
			fail("SVG file validation failed", err)
		}

		color.New(color.FgCyan).Fprintln(os.Stdout, "Starting GitHub Profile Generator...")
		color.New(color.FgCyan).Fprintln(os.Stdout, strings.Repeat("=", 50))

		githubGateway := newGateway(cfg, logger)
		aggregator := usecase.NewAggregator(githubGateway, cfg, logger)

		now := time.Now()
		stats, timings, err := aggregator.Collect(ctx, now)
		if err != nil {
			fail("Error during profile generation", err)
		}

		repl := render.BuildReplacements(stats, render.ValuesFromConfig(cfg), format.BuildTimestamp(now, cfg.Location()))
		results := updater.Update(repl)

		reporter := report.New(os.Stdout)
		reporter.Templates(results)
		reporter.Summary(stats)
		reporter.Timings(timings)
		reporter.APIUsage(githubGateway.QueryCounts())

		color.New(color.FgCyan).Fprintln(os.Stdout, strings.Repeat("=", 50))
		if failed := render.Failed(results); len(failed) > 0 {
			color.New(color.FgYellow).Fprintf(os.Stdout, "Profile generation completed with %d skipped template(s)\n", len(failed))
			return
		}
		color.New(color.FgGreen).Fprintln(os.Stdout, "Profile generation completed successfully!")
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
