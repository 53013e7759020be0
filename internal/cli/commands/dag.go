package commands

import (
	"fmt"
	"strings"

	"github.com/foundrydata/foundry/internal/cli/output"
	"github.com/foundrydata/foundry/internal/compiler"
	"github.com/spf13/cobra"
)

// NewDAGCommand creates the `dag` command.
func NewDAGCommand() *cobra.Command {
	var dot bool

	cmd := &cobra.Command{
		Use:   "dag",
		Short: "Show the compiled dependency graph",
		Long: `Display the dependency graph grouped by execution level: every node in a
level can run concurrently, and a level only starts once the previous one
has fully succeeded.

Output adapts to environment:
  - Terminal: styled, level-grouped output
  - Piped/scripted: markdown
  - --output json: the full manifest
  - --dot: a Graphviz digraph, regardless of --output`,
		Example: `  # Show the DAG grouped by level
  foundry dag

  # Render a Graphviz digraph
  foundry dag --dot | dot -Tsvg -o dag.svg`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDAG(cmd, dot)
		},
	}

	cmd.Flags().BoolVar(&dot, "dot", false, "render a Graphviz DOT digraph instead")
	return cmd
}

func runDAG(cmd *cobra.Command, dot bool) error {
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

	if dot {
		r.Println(compiler.ManifestDOT(cr.Graph))
		return nil
	}

	levels, err := cr.Graph.GetExecutionLevels()
	if err != nil {
		return fmt.Errorf("computing execution levels: %w", err)
	}

	edgeCount := 0
	for _, n := range cr.Manifest {
		edgeCount += len(n.DependsOn)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(cr.Manifest)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Dependency Graph"))
		r.Println(output.FormatKeyValue("Nodes", fmt.Sprintf("%d", cr.Graph.NodeCount())))
		r.Println(output.FormatKeyValue("Edges", fmt.Sprintf("%d", edgeCount)))
		for i, level := range levels {
			r.Println(output.FormatHeader(2, fmt.Sprintf("Level %d", i)))
			for _, name := range level {
				deps := cr.Graph.GetParents(name)
				r.Println(output.FormatKeyValue(name, strings.Join(deps, ", ")))
			}
		}
		return nil
	default:
		styles := ctx.Renderer.Styles()
		r.Header(1, fmt.Sprintf("Dependency Graph (%d nodes, %d edges)", cr.Graph.NodeCount(), edgeCount))
		for i, level := range levels {
			r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
			for _, name := range level {
				deps := cr.Graph.GetParents(name)
				if len(deps) > 0 {
					r.Printf("  %s  <- %s\n", name, strings.Join(deps, ", "))
				} else {
					r.Printf("  %s\n", name)
				}
			}
		}
		return nil
	}
}
