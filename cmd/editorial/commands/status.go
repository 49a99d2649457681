package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type statusReport struct {
	Healthy bool   `json:"healthy"`
	Tables  int    `json:"tables"`
	DBName  string `json:"dbName"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the database connection and schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := open()
		if err != nil {
			return err
		}
		defer a.Close()

		report := statusReport{DBName: a.Config.DB.DbNAME}
		if err := a.DB.HealthCheck(); err != nil {
			return fmt.Errorf("database is not healthy: %w", err)
		}
		report.Healthy = true

		report.Tables, err = a.Services.Tables.CountTables(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return json.NewEncoder(out).Encode(report)
		}

		fmt.Fprintf(out, "database: %s\n", report.DBName)
		fmt.Fprintf(out, "healthy:  %t\n", report.Healthy)
		fmt.Fprintf(out, "tables:   %d\n", report.Tables)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
