package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foundrydata/foundry/internal/cli/output"
	"github.com/foundrydata/foundry/internal/engine"
	"github.com/foundrydata/foundry/internal/resolver"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// CompileOptions holds the `compile` command's flags.
type CompileOptions struct {
	Watch bool
}

// NewCompileCommand creates the `compile` command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Parse, resolve, and render every model and connector artifact",
		Long: `Compile loads the project, resolves ref()/source() references and every
Kafka cross-reference, builds the dependency graph, and renders each node's
artifact (model SQL or Kafka Connect config) without executing anything.

Output adapts to environment:
  - Terminal: styled summary
  - Piped/scripted: markdown (agent-friendly)
  - --output json: the full manifest`,
		Example: `  # Compile the project in the current directory
  foundry compile

  # Compile and print the manifest as JSON
  foundry compile --output json

  # Recompile whenever a project file changes
  foundry compile --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompile(cmd, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "recompile on every project file change")
	return cmd
}

func runCompile(cmd *cobra.Command, opts *CompileOptions) error {
	ctx := NewCommandContext(cmd)
	r := ctx.Renderer

	if opts.Watch {
		return watchCompile(cmd.Context(), ctx)
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

	return renderManifest(r, cr)
}

func renderManifest(r *output.Renderer, cr *engine.CompileResult) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(cr.Manifest)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Compiled %d node(s)", len(cr.Manifest))))
		for _, n := range cr.Manifest {
			r.Println(output.FormatHeader(2, n.Name))
			r.Println(output.FormatKeyValue("Kind", n.Kind))
			r.Println(output.FormatKeyValue("Executable", fmt.Sprintf("%t", n.Executable)))
		}
		return nil
	default:
		r.Header(1, fmt.Sprintf("Compiled %d node(s)", len(cr.Manifest)))
		for _, n := range cr.Manifest {
			r.Printf("  %s (%s)\n", n.Name, n.Kind)
		}
		return nil
	}
}

func reportLoadWarnings(r *output.Renderer, warnings []error) {
	for _, w := range warnings {
		r.Warning(w.Error())
	}
}

// reportDiagnostics prints every fatal resolver error to stderr, most
// useful detail first, for `compile`/`validate` to share.
func reportDiagnostics(r *output.Renderer, diags *resolver.Diagnostics) {
	if diags == nil {
		return
	}
	for _, w := range diags.Warnings {
		r.Warning(w.Error())
	}
	for _, e := range diags.Errors {
		r.ErrorLine(e.Error())
	}
}

// watchCompile recompiles the project whenever a file under it changes,
// following the teacher's docs.DevServer watch loop: a recursive watcher
// over the project directory, debounced so a burst of saves triggers one
// recompile.
func watchCompile(ctx context.Context, cmdCtx *CommandContext) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r := cmdCtx.Renderer

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addWatchDirs(watcher, cmdCtx.Cfg.ProjectDir); err != nil {
		return fmt.Errorf("watching project directory: %w", err)
	}

	compileOnce := func() {
		cr, err := cmdCtx.Engine.Compile(cmdCtx.Cfg.ProjectDir)
		if cr == nil {
			r.ErrorLine(err.Error())
			return
		}
		reportLoadWarnings(r, cr.LoadWarnings)
		if err != nil {
			reportDiagnostics(r, cr.Diagnostics)
			return
		}
		if rerr := renderManifest(r, cr); rerr != nil {
			r.ErrorLine(rerr.Error())
		}
	}

	compileOnce()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(150*time.Millisecond, func() {
				r.Println(fmt.Sprintf("--- change detected: %s ---", filepath.Base(event.Name)))
				compileOnce()
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Warning(err.Error())
		}
	}
}

// addWatchDirs recursively adds dir and every non-hidden subdirectory to
// watcher, matching the teacher's watchDir helper.
func addWatchDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if name != "." && len(name) > 0 && name[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
