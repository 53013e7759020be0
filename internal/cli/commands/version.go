package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the `version` command.
func NewVersionCommand(version, buildDate, gitCommit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display Foundry's version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "foundry v%s (%s, %s)\n", version, gitCommit, buildDate)
		},
	}
}
