// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lelborn/lelborn/internal/config"
	"github.com/lelborn/lelborn/internal/gateway"
	"github.com/lelborn/lelborn/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "profile-stats",
	Short: "A CLI tool to render GitHub statistics into profile SVGs.",
	Long: `profile-stats collects a user's GitHub statistics (stars, repositories,
followers, commits and lines of code) and writes them into the dark and
light profile SVG templates.

Running it without a subcommand performs the update.`,
	Run: updateCmd.Run,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to the profile configuration file")
}

// setup builds the logger and loads the configuration shared by every command.
func setup(cmd *cobra.Command) (*logrus.Logger, *config.Config) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := logging.New(verbose, os.Stderr)

	config.LoadDotEnv(logger)
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, logger)
	if err != nil {
		fail("Failed to load configuration", err)
	}
	return logger, cfg
}

func newGateway(cfg *config.Config, logger *logrus.Logger) *gateway.GitHubGateway {
	g, err := gateway.NewGitHubGateway(gateway.Options{
		Token:            cfg.Token(),
		Username:         cfg.Username(),
		GraphQLURL:       cfg.GraphQLURL(),
		RESTURL:          cfg.RESTURL(),
		PageSize:         cfg.PageSize(),
		BatchSize:        cfg.BatchSize(),
		BatchPause:       cfg.BatchPause(),
		CommitsPerRepo:   cfg.CommitsPerRepo(),
		MaxRateLimitWait: cfg.MaxRateLimitWait(),
	}, logger)
	if err != nil {
		fail("Failed to create GitHub gateway", err)
	}
	return g
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
