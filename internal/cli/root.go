// Package cli provides the command-line interface for Foundry.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/foundrydata/foundry/internal/cli/cliconfig"
	"github.com/foundrydata/foundry/internal/cli/commands"
	"github.com/spf13/cobra"
)

// Version information (set at build time via -ldflags).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd builds the root `foundry` command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "foundry",
		Short: "Foundry - compiles and runs a model/Kafka-Connect pipeline project",
		Long: `Foundry compiles a project of SQL models and Kafka Connect declarations
into a single dependency graph, renders every artifact (model SQL, connector
config, SMT pipelines), and executes the graph level-by-level.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := cliconfig.Load(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(cliconfig.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	root.PersistentFlags().StringP("project", "C", "", "project directory (default: search upward from cwd)")
	root.PersistentFlags().StringP("output", "o", "", "output format: auto|text|markdown|json")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	_ = root.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(commands.NewCompileCommand())
	root.AddCommand(commands.NewRunCommand())
	root.AddCommand(commands.NewDAGCommand())
	root.AddCommand(commands.NewListCommand())
	root.AddCommand(commands.NewValidateCommand())
	root.AddCommand(commands.NewDoctorCommand())
	root.AddCommand(commands.NewServeCommand())
	root.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))

	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
