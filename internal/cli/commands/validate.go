package commands

import (
	"fmt"

	"github.com/foundrydata/foundry/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the `validate` command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the project for load, resolve, and cycle errors without executing it",
		Long: `Validate loads and compiles the project the same way "compile" does, but
reports every collected diagnostic instead of the manifest: load warnings
(files that could not be read or parsed), resolver warnings (e.g. ambiguous
source tables), resolver errors (unknown ref()/source() targets, broken
Kafka cross-references, preset cycles), and DAG cycles.

Exits non-zero if any fatal error was found.`,
		Example: `  # Validate the project in the current directory
  foundry validate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd)
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command) error {
	ctx := NewCommandContext(cmd)
	r := ctx.Renderer

	cr, err := ctx.Engine.Compile(ctx.Cfg.ProjectDir)
	if cr == nil {
		return err
	}

	warnCount := len(cr.LoadWarnings)
	errCount := 0
	if cr.Diagnostics != nil {
		warnCount += len(cr.Diagnostics.Warnings)
		errCount = len(cr.Diagnostics.Errors)
	}
	if err != nil && errCount == 0 {
		errCount = 1 // a cycle or graph-build error not carried in Diagnostics
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		result := map[string]any{
			"valid":    errCount == 0,
			"warnings": warnCount,
			"errors":   errCount,
		}
		if jerr := r.JSON(result); jerr != nil {
			return jerr
		}
	default:
		reportLoadWarnings(r, cr.LoadWarnings)
		reportDiagnostics(r, cr.Diagnostics)
		if err != nil {
			r.ErrorLine(err.Error())
		}
		if errCount == 0 {
			r.Println(fmt.Sprintf("valid: %d node(s), %d warning(s)", len(cr.Manifest), warnCount))
		}
	}

	if errCount > 0 {
		return fmt.Errorf("validation failed with %d error(s)", errCount)
	}
	return nil
}
