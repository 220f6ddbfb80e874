package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nhle/automation-sync/internal/caseid"
)

// IDsCmd returns the command that prints the case ids found in a title.
func IDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ids [title]",
		Short: "Print the test case ids embedded in a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ids := caseid.Extract(args[0])

			if len(ids) == 0 {
				fmt.Fprintln(out, "No test case ids found")
				return nil
			}

			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			if len(ids) > 1 {
				warn := color.New(color.FgYellow).Sprint("warning:")
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d ids found; sync requires exactly one\n", warn, len(ids))
			}
			return nil
		},
	}
}
