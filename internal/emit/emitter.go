// Package emit implements the streaming build-script emitter: the stateful
// object passed to setup and build callbacks that writes Ninja syntax to a
// byte sink and exposes the primitives those callbacks need (config lookups,
// path relativization, embedding helper files).
package emit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opflow/opflow/internal/config"
	"github.com/opflow/opflow/internal/pathutil"
)

// Emitter owns a byte sink, a reference to the loaded configuration, and the
// working directory that the emitted script will run from.
type Emitter struct {
	out     io.Writer
	cfg     *config.Config
	workdir string
}

// New returns an Emitter that writes to out, resolves config_val/config_or
// lookups against cfg, and treats workdir as the directory the emitted
// script will be executed from.
func New(out io.Writer, cfg *config.Config, workdir string) *Emitter {
	return &Emitter{out: out, cfg: cfg, workdir: workdir}
}

// Var emits a Ninja variable declaration: "name = value\n".
func (e *Emitter) Var(name, value string) error {
	_, err := fmt.Fprintf(e.out, "%s = %s\n", name, value)
	return err
}

// Rule emits a Ninja rule definition: "rule name\n  command = command\n".
func (e *Emitter) Rule(name, command string) error {
	if _, err := fmt.Fprintf(e.out, "rule %s\n", name); err != nil {
		return err
	}
	_, err := fmt.Fprintf(e.out, "  command = %s\n", command)
	return err
}

// Build emits a Ninja build edge with a single input and output.
func (e *Emitter) Build(rule, input, output string) error {
	return e.BuildCmd(output, rule, []string{input}, nil)
}

// BuildCmd emits a Ninja build edge: "build target: rule dep1 dep2 … [| implicit1 …]\n".
func (e *Emitter) BuildCmd(target, rule string, deps, implicitDeps []string) error {
	if _, err := fmt.Fprintf(e.out, "build %s: %s", target, rule); err != nil {
		return err
	}
	for _, dep := range deps {
		if _, err := fmt.Fprintf(e.out, " %s", dep); err != nil {
			return err
		}
	}
	if len(implicitDeps) > 0 {
		if _, err := io.WriteString(e.out, " |"); err != nil {
			return err
		}
		for _, dep := range implicitDeps {
			if _, err := fmt.Fprintf(e.out, " %s", dep); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(e.out, "\n")
	return err
}

// Arg emits an indented argument line attaching to the preceding rule or
// build edge: "  name = value\n".
func (e *Emitter) Arg(name, value string) error {
	_, err := fmt.Fprintf(e.out, "  %s = %s\n", name, value)
	return err
}

// Comment emits a Ninja comment line: "# text\n".
func (e *Emitter) Comment(text string) error {
	_, err := fmt.Fprintf(e.out, "# %s\n", text)
	return err
}

// ConfigVal fetches a required configuration value, failing with a
// MissingConfig error if key is absent.
func (e *Emitter) ConfigVal(key string) (string, error) {
	val, ok := e.cfg.Get(key)
	if !ok {
		return "", &config.MissingConfigError{Key: key}
	}
	return val, nil
}

// ConfigOr fetches a configuration value, falling back to def on any
// extraction failure.
func (e *Emitter) ConfigOr(key, def string) string {
	val, ok := e.cfg.Get(key)
	if !ok {
		return def
	}
	return val
}

// ConfigVar emits a Ninja variable backed by a required config lookup.
func (e *Emitter) ConfigVar(name, key string) error {
	val, err := e.ConfigVal(key)
	if err != nil {
		return err
	}
	return e.Var(name, val)
}

// ConfigVarOr emits a Ninja variable backed by a config lookup, or def.
func (e *Emitter) ConfigVarOr(name, key, def string) error {
	return e.Var(name, e.ConfigOr(key, def))
}

// ExternalPath relativizes an external path onto one valid inside workdir.
func (e *Emitter) ExternalPath(p string) (string, error) {
	return pathutil.Relativize(p, e.workdir)
}

// AddFile writes contents to workdir/name on the filesystem, for setups that
// need to ship helper scripts or generated config alongside build.ninja.
func (e *Emitter) AddFile(name string, contents []byte) error {
	return os.WriteFile(filepath.Join(e.workdir, name), contents, 0o644)
}

// Filename writes path itself to the sink as raw bytes, with none of Ninja's
// `$`/`:`/space escaping applied — for callbacks that need to splice a
// literal path into the script outside of a build/arg line.
func (e *Emitter) Filename(path string) error {
	_, err := io.WriteString(e.out, path)
	return err
}
