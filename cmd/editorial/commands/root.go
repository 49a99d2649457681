package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"publishingCore/cmd/app"
	"publishingCore/internal/config"
)

var (
	// Global flags
	dbURL      string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "editorial",
	Short: "Maintenance tool for the publishing editorial core",
	Long: `editorial runs maintenance tasks against the publishing database:
schema migration, health checks, notification cleanup and guideline checks.

Connection settings come from the environment (or a .env file); --db overrides DATABASE_URL.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// open loads the configuration and wires the application.
func open() (*app.App, error) {
	cfg := config.LoadConfig()
	if dbURL != "" {
		cfg.DB.URL = dbURL
	}
	return app.New(cfg)
}
