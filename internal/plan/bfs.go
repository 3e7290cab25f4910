package plan

import (
	"github.com/opflow/opflow/internal/catalog"
)

// bfsToState performs a unit-weight directed BFS from start to target over
// the catalog's operation graph, in registration order, and returns the
// operation chain connecting them. An empty, non-nil chain means start
// already equals target.
func bfsToState(cat *catalog.Catalog, start, target catalog.StateRef) ([]catalog.OpRef, error) {
	if start == target {
		return []catalog.OpRef{}, nil
	}

	visited := map[catalog.StateRef]bool{start: true}
	breadcrumb := map[catalog.StateRef]catalog.OpRef{}
	queue := []catalog.StateRef{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur == target {
			return buildPath(cat, breadcrumb, start, cur), nil
		}

		for _, opRef := range cat.Operations() {
			op, _ := cat.Operation(opRef)
			if op.Input != cur || visited[op.Output] {
				continue
			}
			visited[op.Output] = true
			breadcrumb[op.Output] = opRef
			queue = append(queue, op.Output)
		}
	}

	return nil, ErrNoPath
}

// bfsToOp performs the same search, but terminates the moment the target
// operation is discovered as an outgoing edge of the state being expanded,
// returning the chain leading up to (but not including) target.
func bfsToOp(cat *catalog.Catalog, start catalog.StateRef, target catalog.OpRef) ([]catalog.OpRef, error) {
	targetOp, ok := cat.Operation(target)
	if !ok {
		return nil, ErrNoPath
	}
	if start == targetOp.Input {
		return []catalog.OpRef{}, nil
	}

	visited := map[catalog.StateRef]bool{start: true}
	breadcrumb := map[catalog.StateRef]catalog.OpRef{}
	queue := []catalog.StateRef{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, opRef := range cat.Operations() {
			op, _ := cat.Operation(opRef)
			if op.Input != cur {
				continue
			}
			if opRef == target {
				return buildPath(cat, breadcrumb, start, cur), nil
			}
			if !visited[op.Output] {
				visited[op.Output] = true
				breadcrumb[op.Output] = opRef
				queue = append(queue, op.Output)
			}
		}
	}

	return nil, ErrNoPath
}

// buildPath walks the breadcrumb map backward from end to start and returns
// the forward operation chain.
func buildPath(cat *catalog.Catalog, breadcrumb map[catalog.StateRef]catalog.OpRef, start, end catalog.StateRef) []catalog.OpRef {
	var rev []catalog.OpRef
	cur := end
	for cur != start {
		op, ok := breadcrumb[cur]
		if !ok {
			return nil
		}
		rev = append(rev, op)
		opData, _ := cat.Operation(op)
		cur = opData.Input
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	if rev == nil {
		rev = []catalog.OpRef{}
	}
	return rev
}
