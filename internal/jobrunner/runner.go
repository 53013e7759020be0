// Package jobrunner launches declarative external-process jobs
// (catalog.JobDecl) as out-of-process collaborators (spec.md §6).
package jobrunner

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/dag"
)

// Runner implements engine.JobRunner by invoking a job's declared
// module/path as a child process in its declared workspace directory,
// following the teacher's own `os/exec` launch pattern (`internal/cli/
// commands/ui.go`) for spawning an external tool and waiting on it.
type Runner struct {
	// Stdout/Stderr, when set, receive the child process's output. Both
	// default to discarding output when nil.
	Stdout, Stderr interface {
		Write(p []byte) (int, error)
	}
}

// RunJob runs n's job to completion, returning its exit error if any.
func (r *Runner) RunJob(ctx context.Context, n *dag.Node) error {
	job, ok := n.Data.(*catalog.JobDecl)
	if !ok {
		return fmt.Errorf("job node %q carries no JobDecl", n.Name)
	}
	if job.ModuleOrPath == "" {
		return fmt.Errorf("job %q: no module_or_path configured", job.Name)
	}

	cmd := exec.CommandContext(ctx, job.ModuleOrPath)
	if job.Workspace != "" {
		cmd.Dir = job.Workspace
	}
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("job %q: %w", job.Name, err)
	}
	return nil
}
