package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/automation-sync/internal/caseid"
	"github.com/nhle/automation-sync/internal/reporter"
)

// SyncCmd returns the command that synchronizes a single title.
func SyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sync [title]",
		Short:   "Synchronize the test case linked from one test title",
		Example: `  automation-sync sync "login flow [1234]"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			title := args[0]

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			rep, err := e.newReporter()
			if err != nil {
				return err
			}

			if err := rep.OnBegin(ctx, reporter.RunInfo{Label: "sync", Suite: title}); err != nil {
				return err
			}
			if err := rep.OnTestBegin(ctx, reporter.TestCase{Name: title, Title: title}); err != nil {
				return err
			}
			rep.OnEnd(ctx)

			stats := rep.Stats()
			out := cmd.OutOrStdout()
			switch {
			case stats.Linked == 0:
				fmt.Fprintln(out, "No test case id found in title")
			case stats.Updated > 0:
				fmt.Fprintf(out, "✓ Marked test case %s as automated\n", caseid.Extract(title)[0])
			default:
				fmt.Fprintf(out, "Test case %s already up to date\n", caseid.Extract(title)[0])
			}
			return nil
		},
	}
}
