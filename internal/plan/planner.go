package plan

import (
	"path/filepath"
	"strings"

	"github.com/opflow/opflow/internal/catalog"
	"github.com/opflow/opflow/internal/pathutil"
)

// Make finds an operation chain satisfying req and assigns filenames to
// every step. It fails with ErrNoPath if any segment of the waypoint-ordered
// traversal cannot be connected.
func Make(cat *catalog.Catalog, req Request) (*Plan, error) {
	var allOps []catalog.OpRef
	cur := req.StartState

	for _, w := range req.Waypoints {
		wOp, ok := cat.Operation(w)
		if !ok {
			return nil, ErrNoPath
		}
		segment, err := bfsToOp(cat, cur, w)
		if err != nil {
			return nil, err
		}
		allOps = append(allOps, segment...)
		allOps = append(allOps, w)
		cur = wOp.Output
	}

	finalSegment, err := bfsToState(cat, cur, req.EndState)
	if err != nil {
		return nil, err
	}
	allOps = append(allOps, finalSegment...)

	return assignFilenames(cat, req, allOps)
}

// assignFilenames implements §4.2's filename-assignment rules.
func assignFilenames(cat *catalog.Catalog, req Request, allOps []catalog.OpRef) (*Plan, error) {
	var steps []Step
	var start string
	var stem string

	if req.StartFile != "" {
		rel, err := pathutil.Relativize(req.StartFile, req.Workdir)
		if err != nil {
			return nil, err
		}
		start = rel
		stem = stemOf(rel)
	} else {
		start = "/dev/stdin"
		stem = "stdin"

		firstInput := req.StartState
		if len(allOps) > 0 {
			firstOp, _ := cat.Operation(allOps[0])
			firstInput = firstOp.Input
		}
		inState, _ := cat.State(firstInput)
		steps = append(steps, Step{
			Op:     cat.StdinOp,
			Output: stem + "." + inState.PrimaryExt(),
		})
	}

	for _, opRef := range allOps {
		op, _ := cat.Operation(opRef)
		outState, _ := cat.State(op.Output)
		steps = append(steps, Step{
			Op:     opRef,
			Output: stem + "." + outState.PrimaryExt(),
		})
	}

	if req.EndFile != "" {
		if len(allOps) > 0 {
			rel, err := pathutil.Relativize(req.EndFile, req.Workdir)
			if err != nil {
				return nil, err
			}
			steps[len(steps)-1].Output = rel
		}
		// Zero real steps: the requested end file is not realized; the
		// emitted script defaults to the input file instead (§9).
	} else {
		steps = append(steps, Step{Op: cat.StdoutOp, Output: "_stdout"})
	}

	return &Plan{Start: start, Steps: steps, Workdir: req.Workdir}, nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}
