package commands

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var retention time.Duration

var cleanupCmd = &cobra.Command{
	Use:   "cleanup-notifications",
	Short: "Delete notifications older than the retention period",
	Long: `Delete notifications older than the retention period.

Examples:
  editorial cleanup-notifications                  # uses NOTIFICATION_RETENTION (default 720h)
  editorial cleanup-notifications --older-than 168h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := open()
		if err != nil {
			return err
		}
		defer a.Close()

		keep := retention
		if keep == 0 {
			keep = a.Config.NotificationRetention
		}

		deleted, err := a.Services.Notification.CleanupOld(cmd.Context(), keep)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s notifications created before %s\n",
			humanize.Comma(deleted), humanize.Time(time.Now().Add(-keep)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().DurationVar(&retention, "older-than", 0, "Retention period (defaults to NOTIFICATION_RETENTION)")
}
