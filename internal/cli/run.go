package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/automation-sync/internal/model"
	"github.com/nhle/automation-sync/internal/reporter"
	"github.com/nhle/automation-sync/internal/store"
	"github.com/nhle/automation-sync/internal/sync"
	"github.com/nhle/automation-sync/internal/theme"
)

// errSyncFailed is returned when at least one test failed to synchronize.
var errSyncFailed = errors.New("some tests failed to synchronize")

// RunCmd returns the command that synchronizes a go test -json stream.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Synchronize test cases from a go test -json stream",
		Long: `Read go test -json output from stdin (or --input) and mark every linked
test case as automated.

Example:
  go test -json ./... | automation-sync run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			failFast, _ := cmd.Flags().GetBool("fail-fast")
			passthrough, _ := cmd.Flags().GetBool("passthrough")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var r io.Reader = cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("opening input %s: %w", input, err)
				}
				defer f.Close()
				r = f
			}
			if passthrough {
				r = io.TeeReader(r, cmd.OutOrStdout())
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			return runSync(ctx, cmd, e, r, failFast)
		},
	}

	cmd.Flags().StringP("input", "i", "", "read events from file instead of stdin")
	cmd.Flags().Bool("fail-fast", false, "stop at the first test that fails to synchronize")
	cmd.Flags().Bool("passthrough", false, "echo the event stream to stdout")

	return cmd
}

// runSync wires reporter, ledger and runner for one stream.
func runSync(ctx context.Context, cmd *cobra.Command, e *env, r io.Reader, failFast bool) error {
	rep, err := e.newReporter()
	if err != nil {
		return err
	}

	ledger, err := e.openLedger()
	if err != nil {
		return err
	}
	var run model.Run
	if ledger != nil {
		defer ledger.Close()
		run, err = ledger.CreateRun(ctx, model.Run{OrgURL: e.cfg.Azure.OrgURL})
		if err != nil {
			return err
		}
		rep.SetRecorder(ledger.ForRun(run.ID))
	}

	runner := sync.NewRunner(rep, e.logger)
	runner.FailFast = failFast

	summary, runErr := runner.Run(ctx, r, reporter.RunInfo{
		Label: "go test -json",
		Suite: "go test",
	})

	stats := rep.Stats()
	if ledger != nil {
		errCount := 0
		if summary != nil {
			errCount = len(summary.Failures)
		}
		if runErr != nil {
			errCount++
		}
		// Use a fresh context so an interrupted run is still closed out.
		finishErr := ledger.FinishRun(context.WithoutCancel(ctx), run.ID, store.RunStats{
			TestsSeen: stats.TestsSeen,
			Updated:   stats.Updated,
			Errors:    errCount,
		})
		if finishErr != nil {
			e.logger.Printf("closing run %s: %v", run.ID, finishErr)
		}
	}

	if runErr != nil {
		return runErr
	}

	fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(summary, stats))
	if summary.Failed() {
		return fmt.Errorf("%w: %d failure(s)", errSyncFailed, len(summary.Failures))
	}
	return nil
}

// renderSummary formats the end-of-run report.
func renderSummary(summary *sync.Summary, stats reporter.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", theme.HeaderStyle.Render("automation-sync"))
	fmt.Fprintf(&b, "tests seen:   %d\n", stats.TestsSeen)
	fmt.Fprintf(&b, "linked cases: %d\n", stats.Linked)
	fmt.Fprintf(&b, "updated:      %s\n", theme.ActionStyle(model.SyncActionUpdated).Render(fmt.Sprint(stats.Updated)))
	fmt.Fprintf(&b, "unchanged:    %d", stats.Unchanged)
	if summary.Malformed > 0 {
		fmt.Fprintf(&b, "\n%s", theme.MutedStyle.Render(fmt.Sprintf("skipped %d non-JSON line(s)", summary.Malformed)))
	}
	for _, f := range summary.Failures {
		fmt.Fprintf(&b, "\n%s %s: %v", theme.ErrorStyle.Render("✗"), f.Test.Name, f.Err)
	}
	return theme.SummaryStyle.Render(b.String())
}
