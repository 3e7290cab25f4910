// Package plan implements the planner: given a Request, it finds an
// operation chain from a start state to an end state honoring ordered
// waypoints, and assigns a filename to every step's output.
package plan

import (
	"errors"

	"github.com/opflow/opflow/internal/catalog"
)

// ErrNoPath is returned when no operation sequence connects the requested
// states under the waypoint constraints.
var ErrNoPath = errors.New("no path between requested states")

// Request describes one planning task.
type Request struct {
	StartState catalog.StateRef
	EndState   catalog.StateRef

	// StartFile is the path to read from; "" means read from stdin.
	StartFile string
	// EndFile is the path to write to; "" means write to stdout.
	EndFile string

	// Waypoints are operations the plan must traverse, in order.
	Waypoints []catalog.OpRef

	// Workdir is the directory the emitted script will run from.
	Workdir string
}

// Step is one link in a Plan: applying Op produces the file named Output.
type Step struct {
	Op     catalog.OpRef
	Output string
}

// Plan is the result of planning: the chain of operations and filenames
// that satisfy a Request. The first step's input is Start; each subsequent
// step's input is the previous step's Output.
type Plan struct {
	Start   string
	Steps   []Step
	Workdir string
}
