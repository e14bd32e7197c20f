package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/lelborn/lelborn/internal/domain"
	"github.com/lelborn/lelborn/internal/usecase"
)

type statsOutput struct {
	Stats   domain.Stats    `json:"stats"`
	Timings []domain.Timing `json:"timings"`
	Queries map[string]int  `json:"queries"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Collects GitHub statistics and outputs them as JSON",
	Long:  `Collects the same statistics as update and prints them in JSON format without touching the SVG templates.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger, cfg := setup(cmd)
		if err := cfg.Validate(); err != nil {
			fail("Configuration validation failed", err)
		}

		githubGateway := newGateway(cfg, logger)
		aggregator := usecase.NewAggregator(githubGateway, cfg, logger)

		stats, timings, err := aggregator.Collect(ctx, time.Now())
		if err != nil {
			fail("Failed to collect stats", err)
		}

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(statsOutput{
			Stats:   stats,
			Timings: timings,
			Queries: githubGateway.QueryCounts(),
		}, "", "  ")
		if err != nil {
			fail("Failed to marshal results to JSON", err)
		}

		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
