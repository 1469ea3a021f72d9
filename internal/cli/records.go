// Package cli provides the command-line interface for the copy-trading engine.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"polymarket-copytrader/internal/models"
	"polymarket-copytrader/internal/store"
)

// addRecordCommands adds copy record query commands.
func addRecordCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRecordsCmd(app))
}

func newRecordsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Query the copy record audit trail",
		Long: `Query the copy record audit trail.

Every evaluated source trade leaves exactly one record: copied, skipped
with a reason, or failed at execution.`,
		Example: `  copytrader records --follow follow_a1b2c3
  copytrader records --decision SKIPPED --days 7
  copytrader records --limit 50 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			followID, _ := cmd.Flags().GetString("follow")
			decision, _ := cmd.Flags().GetString("decision")
			days, _ := cmd.Flags().GetInt("days")
			limit, _ := cmd.Flags().GetInt("limit")

			filter := store.RecordFilter{
				FollowID: followID,
				Decision: models.CopyDecision(decision),
				Limit:    limit,
			}
			if days > 0 {
				filter.StartDate = time.Now().AddDate(0, 0, -days)
			}

			records, err := app.Store.GetCopyRecords(cmd.Context(), filter)
			if err != nil {
				output.Error("Failed to query records: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Dim("No records")
				return nil
			}

			output.Bold("%-20s %-22s %-8s %-22s %10s %12s", "TIME", "FOLLOW", "RESULT", "REASON", "SIZE", "VALUE")
			for _, r := range records {
				reason := r.Reason
				if reason == "" {
					reason = "-"
				}
				output.Printf("%-20s %-22s %-8s %-22s %10s %12s\n",
					FormatTime(r.Timestamp), r.FollowID, r.Decision, reason,
					FormatShares(r.CopiedSize), FormatUSD(r.CopiedValue))
			}
			return nil
		},
	}
	cmd.Flags().String("follow", "", "filter by follow id")
	cmd.Flags().String("decision", "", "filter by decision (COPIED, SKIPPED, FAILED)")
	cmd.Flags().Int("days", 0, "only records from the last N days")
	cmd.Flags().Int("limit", 100, "max records to return")
	return cmd
}
