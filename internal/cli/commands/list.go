package commands

import (
	"fmt"
	"strings"

	"github.com/foundrydata/foundry/internal/cli/output"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewListCommand creates the `list` command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every compiled node and its dependencies",
		Long: `List every node the compiler produced: models, connectors, pipelines,
SMTs, predicates, jobs, and the source-table leaves they depend on.

Output adapts to environment:
  - Terminal: a table
  - Piped/scripted: markdown
  - --output json: the full manifest`,
		Example: `  # List every node (auto-detect output format)
  foundry list

  # List as JSON
  foundry list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
	return cmd
}

func runList(cmd *cobra.Command) error {
	ctx := NewCommandContext(cmd)
	r := ctx.Renderer

	cr, err := ctx.Engine.Compile(ctx.Cfg.ProjectDir)
	if cr == nil {
		return err
	}
	reportLoadWarnings(r, cr.LoadWarnings)
	if err != nil {
		reportDiagnostics(r, cr.Diagnostics)
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(cr.Manifest)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Nodes (%d total)", len(cr.Manifest))))
		r.Println("")
		for _, n := range cr.Manifest {
			r.Println(output.FormatHeader(2, n.Name))
			r.Println(output.FormatKeyValue("Kind", n.Kind))
			r.Println(output.FormatKeyValue("Executable", fmt.Sprintf("%t", n.Executable)))
			if len(n.DependsOn) > 0 {
				r.Println(output.FormatKeyValue("Depends on", strings.Join(n.DependsOn, ", ")))
			}
			r.Println("")
		}
		return nil
	default:
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Kind", "Executable", "Depends on"})
		for _, n := range cr.Manifest {
			t.AppendRow(table.Row{n.Name, n.Kind, n.Executable, strings.Join(n.DependsOn, ", ")})
		}
		r.Header(1, fmt.Sprintf("Nodes (%d total)", len(cr.Manifest)))
		t.Render()
		return nil
	}
}
