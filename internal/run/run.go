// Package run implements the run façade: it binds a frozen catalog, a plan
// and loaded configuration, and offers the sinks a front end dispatches to
// (show the plan as text or as a graph, emit the build script to stdout or
// a directory, or emit-then-execute the external build executor).
package run

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/orcaman/writerseeker"
	"golang.org/x/xerrors"

	"github.com/opflow/opflow/internal/catalog"
	"github.com/opflow/opflow/internal/config"
	"github.com/opflow/opflow/internal/emit"
	"github.com/opflow/opflow/internal/plan"
	"github.com/opflow/opflow/internal/report"
)

// ExecutorFailureError reports that the external build executor exited
// non-zero. The scratch directory is always left in place when this occurs.
type ExecutorFailureError struct {
	Ninja string
	Err   error
}

func (e *ExecutorFailureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ninja, e.Err)
}

func (e *ExecutorFailureError) Unwrap() error { return e.Err }

// Run binds a catalog, a plan computed against it, and loaded configuration.
type Run struct {
	Catalog *catalog.Catalog
	Plan    *plan.Plan
	Config  *config.Config
}

// New returns a Run façade ready to be dispatched to one of its sinks.
func New(cat *catalog.Catalog, p *plan.Plan, cfg *config.Config) *Run {
	return &Run{Catalog: cat, Plan: p, Config: cfg}
}

// Show prints the plan's textual representation to out.
func (r *Run) Show(out io.Writer) error {
	return report.Show(out, r.Catalog, r.Plan, report.IsTerminal(out))
}

// ShowDot prints the plan's GraphViz representation to out.
func (r *Run) ShowDot(out io.Writer) error {
	return report.ShowDot(out, r.Catalog, r.Plan)
}

// EmitToStdout streams the build script to standard output.
func (r *Run) EmitToStdout() error {
	return r.emit(os.Stdout)
}

// EmitToDir ensures dir exists and atomically writes build.ninja inside it.
func (r *Run) EmitToDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return xerrors.Errorf("creating build dir: %w", err)
	}

	var buf writerseeker.WriterSeeker
	if err := r.emit(&buf); err != nil {
		return err
	}
	data, err := io.ReadAll(buf.BytesReader())
	if err != nil {
		return xerrors.Errorf("reading staged script: %w", err)
	}

	ninjaPath := filepath.Join(dir, "build.ninja")
	if err := renameio.WriteFile(ninjaPath, data, 0o644); err != nil {
		return xerrors.Errorf("writing %s: %w", ninjaPath, err)
	}
	return nil
}

// EmitAndRun writes build.ninja to dir and then invokes the configured
// external build executor there. On success the directory is removed
// unless it existed before this run started or the configuration says to
// keep it; a failed run always leaves the directory in place.
func (r *Run) EmitAndRun(dir string) error {
	keep := r.Config.Global.KeepBuildDir
	ninjaExe := r.Config.Global.Ninja
	lastStdout := len(r.Plan.Steps) > 0 && r.Plan.Steps[len(r.Plan.Steps)-1].Op == r.Catalog.StdoutOp

	_, statErr := os.Stat(dir)
	staleDir := statErr == nil

	if err := r.EmitToDir(dir); err != nil {
		return err
	}

	args := []string(nil)
	if lastStdout {
		args = append(args, "--quiet")
	}
	cmd := exec.Command(ninjaExe, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &ExecutorFailureError{Ninja: ninjaExe, Err: err}
	}

	if !keep && !staleDir {
		if err := os.RemoveAll(dir); err != nil {
			return xerrors.Errorf("removing build dir: %w", err)
		}
	}
	return nil
}

// emit writes the full build script to out: de-duplicated setup stanzas (in
// first-encountered order across the plan's steps), then the ordered build
// edges, then the default target.
func (r *Run) emit(out io.Writer) error {
	e := emit.New(out, r.Config, r.Plan.Workdir)

	done := map[catalog.SetupRef]bool{}
	for _, step := range r.Plan.Steps {
		op, ok := r.Catalog.Operation(step.Op)
		if !ok {
			return xerrors.Errorf("plan references unknown operation %v", step.Op)
		}
		for _, setupRef := range op.Setups {
			if done[setupRef] {
				continue
			}
			done[setupRef] = true
			setup, ok := r.Catalog.Setup(setupRef)
			if !ok {
				return xerrors.Errorf("plan references unknown setup %v", setupRef)
			}
			if _, err := fmt.Fprintf(out, "# %s\n", setup.Name); err != nil {
				return err
			}
			if err := setup.Emit(e); err != nil {
				return xerrors.Errorf("setup %q: %w", setup.Name, err)
			}
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
	}

	if err := e.Comment("build targets"); err != nil {
		return err
	}
	lastFile := r.Plan.Start
	for _, step := range r.Plan.Steps {
		op, _ := r.Catalog.Operation(step.Op)
		if err := op.Emit(e, lastFile, step.Output); err != nil {
			return xerrors.Errorf("operation %q: %w", op.Name, err)
		}
		lastFile = step.Output
	}

	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "default %s\n", lastFile)
	return err
}
