// Package report implements the plan reporter: a human-readable textual
// dump of a plan, and a GraphViz "dot" dump of the catalog's state graph
// with the plan highlighted.
package report

import (
	"fmt"
	"io"

	"github.com/mattn/go-isatty"

	"github.com/opflow/opflow/internal/catalog"
	"github.com/opflow/opflow/internal/plan"
)

// fdWriter is implemented by *os.File; report uses it to decide whether to
// emphasize highlighted plan entries with ANSI bold.
type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether w is a terminal, for callers deciding whether
// to ask Show for emphasized output.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

const (
	bold  = "\x1b[1m"
	reset = "\x1b[0m"
)

// Show prints the textual representation of p: "start: <path>" followed by
// one "<op-handle>: <op-name> -> <file>" line per step, with "(stdin)"/
// "(stdout)" in place of the name for the reserved pseudo-operations.
// When emphasize is true (the caller determined out is a terminal), step
// lines are bolded.
func Show(out io.Writer, cat *catalog.Catalog, p *plan.Plan, emphasize bool) error {
	if _, err := fmt.Fprintf(out, "start: %s\n", p.Start); err != nil {
		return err
	}
	for _, step := range p.Steps {
		op, _ := cat.Operation(step.Op)
		name := op.Name
		switch step.Op {
		case cat.StdinOp:
			name = "(stdin)"
		case cat.StdoutOp:
			name = "(stdout)"
		}
		line := fmt.Sprintf("%v: %s -> %s", step.Op, name, step.Output)
		if emphasize {
			line = bold + line + reset
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// ShowDot prints a GraphViz digraph whose nodes are every user-registered
// state and whose edges are every user-registered operation, with the
// states and operations touched by p rendered highlighted.
func ShowDot(out io.Writer, cat *catalog.Catalog, p *plan.Plan) error {
	if _, err := fmt.Fprintln(out, "digraph plan {"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, "  node[shape=box];"); err != nil {
		return err
	}

	filenames := map[catalog.StateRef]string{}
	usedOps := map[catalog.OpRef]bool{}
	if len(p.Steps) > 0 {
		firstOp, _ := cat.Operation(p.Steps[0].Op)
		filenames[firstOp.Input] = p.Start
	}
	for _, step := range p.Steps {
		op, _ := cat.Operation(step.Op)
		filenames[op.Output] = step.Output
		usedOps[step.Op] = true
	}

	for _, stateRef := range cat.States() {
		state, _ := cat.State(stateRef)
		if filename, ok := filenames[stateRef]; ok {
			fmt.Fprintf(out, "  %v [label=\"%s\\n%s\" penwidth=3 fillcolor=gray style=filled];\n",
				stateRef, state.Name, filename)
		} else {
			fmt.Fprintf(out, "  %v [label=\"%s\"];\n", stateRef, state.Name)
		}
	}

	for _, opRef := range cat.Operations() {
		op, _ := cat.Operation(opRef)
		emph := ""
		if usedOps[opRef] {
			emph = " penwidth=3"
		}
		fmt.Fprintf(out, "  %v -> %v [label=\"%s\"%s];\n", op.Input, op.Output, op.Name, emph)
	}

	_, err := fmt.Fprintln(out, "}")
	return err
}
