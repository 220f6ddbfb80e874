package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/automation-sync/internal/model"
	"github.com/nhle/automation-sync/internal/store"
	"github.com/nhle/automation-sync/internal/theme"
)

// HistoryCmd returns the command that lists the sync ledger.
func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent synchronization results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			showRuns, _ := cmd.Flags().GetBool("runs")

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			ledger, err := e.openLedger()
			if err != nil {
				return err
			}
			if ledger == nil {
				return fmt.Errorf("history is disabled (history.enabled: false)")
			}
			defer ledger.Close()

			if showRuns {
				return printRuns(cmd, ledger, limit)
			}

			filter := store.SyncFilter{Limit: limit}
			if cmd.Flags().Changed("case") {
				caseID, _ := cmd.Flags().GetInt("case")
				filter.CaseID = &caseID
			}
			if cmd.Flags().Changed("run") {
				runID, _ := cmd.Flags().GetString("run")
				filter.RunID = &runID
			}
			if updatedOnly, _ := cmd.Flags().GetBool("updated"); updatedOnly {
				action := model.SyncActionUpdated
				filter.Action = &action
			}

			records, err := ledger.GetSyncRecords(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No sync records found")
				return nil
			}

			fmt.Fprintf(out, "Found %d record(s):\n\n", len(records))
			for _, r := range records {
				fmt.Fprintf(out, "%s  %-8d %s  %s → %s  %s\n",
					theme.MutedStyle.Render(r.SyncedAt.Local().Format(time.DateTime)),
					r.CaseID,
					theme.ActionStyle(r.Action).Render(fmt.Sprintf("%-9s", r.Action)),
					theme.AutomationStatusStyle(r.PreviousStatus).Render(orDash(r.PreviousStatus)),
					theme.AutomationStatusStyle(r.NewStatus).Render(orDash(r.NewStatus)),
					r.TestName,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "maximum number of entries")
	cmd.Flags().Int("case", 0, "only show records for this test case id")
	cmd.Flags().String("run", "", "only show records for this run id")
	cmd.Flags().Bool("updated", false, "only show records that changed a work item")
	cmd.Flags().Bool("runs", false, "list runs instead of records")

	return cmd
}

func printRuns(cmd *cobra.Command, ledger store.Store, limit int) error {
	runs, err := ledger.GetRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found")
		return nil
	}

	for _, run := range runs {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(out, "%s  %s  tests=%d updated=%d errors=%d  %s\n",
			theme.MutedStyle.Render(run.StartedAt.Local().Format(time.DateTime)),
			run.ID,
			run.TestsSeen, run.Updated, run.Errors,
			finished,
		)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
