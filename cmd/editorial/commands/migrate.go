package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrationsPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema migration",
	Long: `Apply the SQL schema to the database. The migration only creates missing
tables and indexes, so running it twice is harmless.

Examples:
  editorial migrate
  editorial migrate --path migrations/001_create_tables.sql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := open()
		if err != nil {
			return err
		}
		defer a.Close()

		path := migrationsPath
		if path == "" {
			path = a.Config.MigrationsPath
		}

		if err := a.DB.RunMigrations(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrationsPath, "path", "", "Migration file (defaults to MIGRATIONS_PATH)")
}
