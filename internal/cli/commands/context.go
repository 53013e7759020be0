// Package commands implements each `foundry` subcommand, wiring the
// cliconfig-resolved invocation settings into an engine.Engine, an
// output.Renderer, and (for run) real engine.Executors collaborators
// (spec.md §6, grounded on the teacher's internal/cli/commands/setup.go
// CommandContext pattern).
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/cli/cliconfig"
	"github.com/foundrydata/foundry/internal/cli/output"
	"github.com/foundrydata/foundry/internal/engine"
	"github.com/foundrydata/foundry/internal/jobrunner"
	"github.com/foundrydata/foundry/internal/kafkaconnect"
	"github.com/foundrydata/foundry/internal/warehouse"
	"github.com/foundrydata/foundry/internal/warehouse/duckdb"
	"github.com/foundrydata/foundry/internal/warehouse/postgres"
	"github.com/spf13/cobra"
)

// CommandContext holds the dependencies every subcommand needs.
type CommandContext struct {
	Cfg      *cliconfig.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the current cliconfig and
// cmd's own streams, so tests can swap cmd.SetOut/SetErr without touching
// global state.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := cliconfig.GetCurrent()
	logger := cliconfig.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   engine.New(logger),
		Renderer: r,
	}
}

// selectWarehouseAdapter picks a warehouse.Adapter for name out of cat's
// connection profile. An empty name resolves to the profile's only
// connection; a profile with none falls back to an in-memory DuckDB
// database, the zero-config default for `foundry run` against a fresh
// project (SPEC_FULL.md §11).
func selectWarehouseAdapter(cat *catalog.Catalog, name string) (warehouse.Adapter, error) {
	if cat.Connections == nil || len(cat.Connections.Connections) == 0 {
		return duckdb.New(""), nil
	}

	if name == "" {
		if len(cat.Connections.Connections) != 1 {
			return nil, fmt.Errorf("connections.yml declares %d connections, specify one with --connection", len(cat.Connections.Connections))
		}
		for only := range cat.Connections.Connections {
			name = only
		}
	}

	def, ok := cat.Connections.Connections[name]
	if !ok {
		return nil, fmt.Errorf("unknown connection %q", name)
	}

	switch def.AdapterType {
	case "", "duckdb":
		return duckdb.New(def.Database), nil
	case "postgres":
		return postgres.New(warehouse.Config{
			Host:     def.Host,
			Port:     def.Port,
			User:     def.User,
			Password: def.Password,
			Database: def.Database,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported adapter_type %q", def.AdapterType)
	}
}

// selectKafkaCluster picks a *catalog.KafkaClusterSpec for name, defaulting
// to the catalog's only cluster when name is empty.
func selectKafkaCluster(cat *catalog.Catalog, name string) (*catalog.KafkaClusterSpec, error) {
	if len(cat.Clusters) == 0 {
		return nil, fmt.Errorf("project declares no kafka clusters")
	}
	if name == "" {
		if len(cat.Clusters) != 1 {
			return nil, fmt.Errorf("project declares %d kafka clusters, specify one with --cluster", len(cat.Clusters))
		}
		for only := range cat.Clusters {
			name = only
		}
	}
	cluster, ok := cat.Clusters[name]
	if !ok {
		return nil, fmt.Errorf("unknown kafka cluster %q", name)
	}
	return cluster, nil
}

// buildExecutors assembles the real engine.Executors a `run` invocation
// dispatches to: a warehouse adapter (connected), a Kafka Connect client
// (only if the project declares a cluster), and a process job runner. The
// returned close func disconnects the warehouse adapter and must be called
// once the run completes.
func buildExecutors(execCtx context.Context, ctx *CommandContext, cat *catalog.Catalog, connection, cluster string) (engine.Executors, func() error, error) {
	adapter, err := selectWarehouseAdapter(cat, connection)
	if err != nil {
		return engine.Executors{}, nil, err
	}
	if err := adapter.Connect(execCtx); err != nil {
		return engine.Executors{}, nil, fmt.Errorf("connecting warehouse adapter: %w", err)
	}

	ex := engine.Executors{
		Models: warehouse.NewExecutor(adapter),
		Jobs:   &jobrunner.Runner{Stdout: ctx.Renderer.Writer(), Stderr: ctx.Renderer.Writer()},
	}

	if len(cat.Clusters) > 0 {
		spec, err := selectKafkaCluster(cat, cluster)
		if err != nil {
			return engine.Executors{}, nil, err
		}
		ex.Connectors = kafkaconnect.NewClient(fmt.Sprintf("http://%s:%d", spec.ConnectHost, spec.ConnectPort))
	}

	return ex, adapter.Close, nil
}
