// Package catalog implements the entity store and catalog builder: the
// append-only registries of states, operations and setups a caller assembles
// before freezing them into an immutable Catalog that the planner and
// emitter consume.
package catalog

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/opflow/opflow/internal/emit"
)

// StateRef is a small, copyable, comparable handle to a State. It is only
// meaningful within the Catalog that issued it.
type StateRef int

func (r StateRef) String() string { return fmt.Sprintf("state%d", int(r)) }

// OpRef is a handle to an Operation.
type OpRef int

func (r OpRef) String() string { return fmt.Sprintf("op%d", int(r)) }

// SetupRef is a handle to a Setup.
type SetupRef int

func (r SetupRef) String() string { return fmt.Sprintf("setup%d", int(r)) }

// State is a named file format, identified by a set of filename extensions.
// Extensions[0] is the primary extension used when generating filenames.
type State struct {
	Name       string
	Extensions []string
}

func (s State) hasExt(ext string) bool {
	return slices.Contains(s.Extensions, ext)
}

// PrimaryExt returns the extension used to name files in this state.
func (s State) PrimaryExt() string {
	if len(s.Extensions) == 0 {
		return ""
	}
	return s.Extensions[0]
}

// EmitSetupFunc writes a setup's build-script preamble.
type EmitSetupFunc func(e *emit.Emitter) error

// EmitBuildFunc writes the build edge(s) for one operation's application,
// translating a single input filename into a single output filename.
type EmitBuildFunc func(e *emit.Emitter, input, output string) error

// Setup is a named piece of shared build-script preamble.
type Setup struct {
	Name string
	Emit EmitSetupFunc
}

// Operation is a directed edge in the state graph: a named transformation
// from Input to Output, depending on zero or more Setups, realized by Emit.
type Operation struct {
	Name   string
	Input  StateRef
	Output StateRef
	Setups []SetupRef
	Emit   EmitBuildFunc
}

// Builder accumulates states, setups and operations during configuration.
// Call Freeze to obtain an immutable Catalog.
type Builder struct {
	states store[State]
	setups store[Setup]
	ops    store[Operation]
}

// NewBuilder returns an empty catalog builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddState registers a new file format.
func (b *Builder) AddState(name string, extensions []string) StateRef {
	return StateRef(b.states.push(State{Name: name, Extensions: extensions}))
}

// AddSetup registers a named piece of build-script preamble.
func (b *Builder) AddSetup(name string, emitSetup EmitSetupFunc) SetupRef {
	return SetupRef(b.setups.push(Setup{Name: name, Emit: emitSetup}))
}

// AddOperation registers a general operation between two states.
func (b *Builder) AddOperation(name string, setups []SetupRef, input, output StateRef, emitBuild EmitBuildFunc) OpRef {
	return OpRef(b.ops.push(Operation{
		Name:   name,
		Input:  input,
		Output: output,
		Setups: append([]SetupRef(nil), setups...),
		Emit:   emitBuild,
	}))
}

// AddRule is a convenience for operations whose build step is exactly
// "invoke a named Ninja rule with one input and one output".
func (b *Builder) AddRule(setups []SetupRef, input, output StateRef, ruleName string) OpRef {
	return b.AddOperation(ruleName, setups, input, output, func(e *emit.Emitter, input, output string) error {
		return e.Build(ruleName, input, output)
	})
}

const (
	stdinCaptureRule = "stdin-capture"
	stdoutShowRule   = "stdout-show"
)

// Freeze returns the immutable Catalog, additionally registering the
// reserved stdin/stdout pseudo-endpoints: two null states with no
// extensions, and the two built-in operations StdinOp/StdoutOp that bridge
// them to the real state graph.
func (b *Builder) Freeze() *Catalog {
	numStates := b.states.len()
	numOps := b.ops.len()

	states := append([]State(nil), b.states.entries...)
	setups := append([]Setup(nil), b.setups.entries...)
	ops := append([]Operation(nil), b.ops.entries...)

	nullIn := StateRef(len(states))
	states = append(states, State{Name: "null-in"})
	nullOut := StateRef(len(states))
	states = append(states, State{Name: "null-out"})

	stdinSetup := SetupRef(len(setups))
	setups = append(setups, Setup{
		Name: "stdin capture",
		Emit: func(e *emit.Emitter) error {
			if err := e.Rule(stdinCaptureRule, "cat > $out"); err != nil {
				return err
			}
			return e.Arg("pool", "console")
		},
	})
	stdoutSetup := SetupRef(len(setups))
	setups = append(setups, Setup{
		Name: "stdout show",
		Emit: func(e *emit.Emitter) error {
			if err := e.Rule(stdoutShowRule, "cat $in"); err != nil {
				return err
			}
			return e.Arg("pool", "console")
		},
	})

	stdinOp := OpRef(len(ops))
	ops = append(ops, Operation{
		Name:   "(stdin)",
		Input:  nullIn,
		Output: nullIn,
		Setups: []SetupRef{stdinSetup},
		Emit: func(e *emit.Emitter, input, output string) error {
			// cat > $out reads the process's own stdin; it has no input
			// file, so the edge declares no dependency.
			return e.BuildCmd(output, stdinCaptureRule, nil, nil)
		},
	})
	stdoutOp := OpRef(len(ops))
	ops = append(ops, Operation{
		Name:   "(stdout)",
		Input:  nullOut,
		Output: nullOut,
		Setups: []SetupRef{stdoutSetup},
		Emit: func(e *emit.Emitter, input, output string) error {
			return e.Build(stdoutShowRule, input, output)
		},
	})

	return &Catalog{
		states:    states,
		setups:    setups,
		ops:       ops,
		numStates: numStates,
		numOps:    numOps,
		NullIn:    nullIn,
		NullOut:   nullOut,
		StdinOp:   stdinOp,
		StdoutOp:  stdoutOp,
	}
}

// Catalog is the frozen triple of states, operations and setups, plus the
// two distinguished stdin/stdout operations. Immutable after Freeze.
type Catalog struct {
	states []State
	setups []Setup
	ops    []Operation

	// numStates and numOps are the counts of user-registered states/
	// operations, i.e. excluding the reserved null states and stdin/stdout
	// operations appended at the end during Freeze.
	numStates int
	numOps    int

	NullIn   StateRef
	NullOut  StateRef
	StdinOp  OpRef
	StdoutOp OpRef
}

// State resolves a handle to its data.
func (c *Catalog) State(ref StateRef) (State, bool) {
	if int(ref) < 0 || int(ref) >= len(c.states) {
		return State{}, false
	}
	return c.states[ref], true
}

// Operation resolves a handle to its data.
func (c *Catalog) Operation(ref OpRef) (Operation, bool) {
	if int(ref) < 0 || int(ref) >= len(c.ops) {
		return Operation{}, false
	}
	return c.ops[ref], true
}

// Setup resolves a handle to its data.
func (c *Catalog) Setup(ref SetupRef) (Setup, bool) {
	if int(ref) < 0 || int(ref) >= len(c.setups) {
		return Setup{}, false
	}
	return c.setups[ref], true
}

// States returns the handles of every user-registered state, in
// registration order, excluding the reserved null states.
func (c *Catalog) States() []StateRef {
	out := make([]StateRef, c.numStates)
	for i := range out {
		out[i] = StateRef(i)
	}
	return out
}

// Operations returns the handles of every user-registered operation, in
// registration order, excluding the reserved stdin/stdout operations.
func (c *Catalog) Operations() []OpRef {
	out := make([]OpRef, c.numOps)
	for i := range out {
		out[i] = OpRef(i)
	}
	return out
}

// GetState looks up a state by name. Names need not be globally unique; the
// first match wins.
func (c *Catalog) GetState(name string) (StateRef, bool) {
	for i, s := range c.states[:c.numStates] {
		if s.Name == name {
			return StateRef(i), true
		}
	}
	return 0, false
}

// GuessState infers a state from a path's filename extension.
func (c *Catalog) GuessState(path string) (StateRef, bool) {
	ext := extOf(path)
	if ext == "" {
		return 0, false
	}
	for i, s := range c.states[:c.numStates] {
		if s.hasExt(ext) {
			return StateRef(i), true
		}
	}
	return 0, false
}

// extOf returns the extension of path without its leading dot, or "" if
// path has none.
func extOf(path string) string {
	dot := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			break
		}
		if path[i] == '.' {
			dot = i
			break
		}
	}
	if dot < 0 || dot == len(path)-1 {
		return ""
	}
	return path[dot+1:]
}
