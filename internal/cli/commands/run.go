package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foundrydata/foundry/internal/cli/output"
	"github.com/foundrydata/foundry/internal/history"
	"github.com/spf13/cobra"
)

// historyDBPath is where a project's run history lives, mirroring the
// teacher's convention of a dotfile database alongside the project root
// (internal/cli/config.DefaultStateFile).
const historyDBPath = ".foundry/history.db"

// RunOptions holds the `run` command's flags.
type RunOptions struct {
	Select     string
	Connection string
	Cluster    string
}

// NewRunCommand creates the `run` command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile and execute the project's DAG level-by-level",
		Long: `Run compiles the project, then executes every executable node in
topological order: models against the warehouse adapter, connectors against
Kafka Connect, and jobs as external processes. All nodes in one level run
concurrently; a level only starts once every node in the previous level has
succeeded.`,
		Example: `  # Run the full DAG
  foundry run

  # Run everything downstream of a model (the model itself excluded)
  foundry run --select 'staging_orders>'

  # Run against a named connection profile entry
  foundry run --connection warehouse_prod`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Select, "select", "s", "", "subgraph selector (empty runs everything)")
	cmd.Flags().StringVar(&opts.Connection, "connection", "", "named connection to run models against (default: the profile's only connection)")
	cmd.Flags().StringVar(&opts.Cluster, "cluster", "", "named kafka cluster to deploy connectors against")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	ctx := NewCommandContext(cmd)
	r := ctx.Renderer
	execCtx := cmd.Context()
	if execCtx == nil {
		execCtx = context.Background()
	}

	cr, err := ctx.Engine.Compile(ctx.Cfg.ProjectDir)
	if cr == nil {
		return err
	}
	reportLoadWarnings(r, cr.LoadWarnings)
	if err != nil {
		reportDiagnostics(r, cr.Diagnostics)
		return err
	}

	ex, closeAdapter, err := buildExecutors(execCtx, ctx, cr.Project.Catalog, opts.Connection, opts.Cluster)
	if err != nil {
		return fmt.Errorf("preparing executors: %w", err)
	}
	defer func() { _ = closeAdapter() }()

	store, hr, err := startHistoryRun(execCtx, ctx.Cfg.ProjectDir, cr.Project.Config.Name, opts.Select)
	if err != nil {
		ctx.Logger.Warn("run history unavailable, continuing without it", "error", err)
	} else {
		defer func() { _ = store.Close() }()
		ex = wrapWithHistory(ex, store, hr.ID)
	}

	start := time.Now()
	r.Header(1, fmt.Sprintf("Running %d node(s)", len(cr.Manifest)))
	runErr := ctx.Engine.Run(execCtx, cr, opts.Select, ex)
	elapsed := time.Since(start)

	if store != nil {
		status := history.StatusSuccess
		msg := ""
		if runErr != nil {
			status = history.StatusFailed
			msg = runErr.Error()
		}
		_ = store.CompleteRun(execCtx, hr.ID, status, msg)
	}

	if runErr != nil {
		r.ErrorLine(runErr.Error())
		return runErr
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(map[string]any{
			"nodes":       len(cr.Manifest),
			"duration_ms": elapsed.Milliseconds(),
			"status":      "success",
		})
	default:
		r.Printf("Completed in %s\n", elapsed.Round(time.Millisecond))
		return nil
	}
}

// startHistoryRun opens the project's history database (creating the
// enclosing .foundry/ directory if needed) and records a new running Run.
func startHistoryRun(ctx context.Context, projectDir, project, selector string) (*history.Store, *history.Run, error) {
	path := filepath.Join(projectDir, historyDBPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating history directory: %w", err)
	}
	store, err := history.Open(path)
	if err != nil {
		return nil, nil, err
	}
	run, err := store.StartRun(ctx, project, selector)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, run, nil
}
