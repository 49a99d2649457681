package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	articleID     string
	publicationID string
)

var complianceCmd = &cobra.Command{
	Use:   "check-compliance",
	Short: "Score an article against a publication's guidelines",
	Long: `Score an article against a publication's guidelines without submitting it.

Examples:
  editorial check-compliance --article <id> --publication <id>
  editorial check-compliance --article <id> --publication <id> --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := open()
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Services.Compliance.CheckCompliance(cmd.Context(), articleID, publicationID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Fprintf(out, "score: %d  compliant: %t\n\n", report.Score, report.Compliant)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "GUIDELINE\tCATEGORY\tREQUIRED\tRESULT\tDETAIL")
		for _, r := range report.Results {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", r.Title, r.Category, r.Required, r.Result, r.Detail)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(complianceCmd)
	complianceCmd.Flags().StringVar(&articleID, "article", "", "Article ID")
	complianceCmd.Flags().StringVar(&publicationID, "publication", "", "Publication ID")
	_ = complianceCmd.MarkFlagRequired("article")
	_ = complianceCmd.MarkFlagRequired("publication")
}
