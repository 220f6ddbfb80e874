// Package cli implements the automation-sync command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/nhle/automation-sync/internal/model"
)

// NewRootCmd builds the root command with every subcommand attached.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "automation-sync",
		Short:   "Mark Azure DevOps test cases automated from go test runs",
		Version: version,
		Long: `automation-sync reads a go test -json stream, finds the test case id
embedded in each test title (e.g. "login flow [1234]"), and flips the linked
Azure DevOps work item from "Not Automated" to "Automated".`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", model.DefaultConfigPath(), "path to config file")

	rootCmd.AddCommand(RunCmd())
	rootCmd.AddCommand(SyncCmd())
	rootCmd.AddCommand(IDsCmd())
	rootCmd.AddCommand(AuthCmd())
	rootCmd.AddCommand(HistoryCmd())

	return rootCmd
}
