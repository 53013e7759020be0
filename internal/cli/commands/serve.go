package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/foundrydata/foundry/internal/compiler"
	"github.com/foundrydata/foundry/internal/engine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the `serve` command.
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compiled manifest over a read-only HTTP API",
		Long: `Serve compiles the project once and exposes the result over a small
read-only HTTP API for the graph visualizer (spec.md §6 "out of scope"
collaborator) or any other tool that wants the manifest without shelling
out to "foundry compile --output json":

  GET /manifest      the full manifest as JSON
  GET /dag.dot       a Graphviz digraph
  GET /healthz       liveness probe`,
		Example: `  # Serve the manifest on :4000
  foundry serve --port 4000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 4000, "port to listen on")
	return cmd
}

func runServe(cmd *cobra.Command, port int) error {
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

	mux := chi.NewRouter()
	mux.Use(middleware.Logger, middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Get("/manifest", manifestHandler(cr))
	mux.Get("/dag.dot", dotHandler(cr))

	addr := fmt.Sprintf(":%d", port)
	ctx.Logger.Info("serving manifest", "addr", fmt.Sprintf("http://localhost%s", addr))
	srv := &http.Server{Addr: addr, Handler: mux}

	execCtx := cmd.Context()
	if execCtx == nil {
		execCtx = context.Background()
	}
	go func() {
		<-execCtx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func manifestHandler(cr *engine.CompileResult) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(cr.Manifest)
	}
}

func dotHandler(cr *engine.CompileResult) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(compiler.ManifestDOT(cr.Graph)))
	}
}
