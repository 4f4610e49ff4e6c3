package transform

import "github.com/matzehuels/claimgraph/pkg/dag"

// BreakCycles makes g acyclic by reversing every DFS back edge and returns
// the number of edges it touched. Self-loops are dropped. The search starts
// from sources in insertion order, then from any node left unvisited, so
// mutual claims (A vouches for B, B for A) keep the edge that was seen
// first pointing down.
//
// The search is iterative; long claim chains do not grow the goroutine
// stack.
func BreakCycles(g *dag.DAG) int {
	type frame struct {
		id       string
		children []string
		next     int
	}

	const (
		unseen = iota
		onPath
		done
	)
	state := make(map[string]int, g.NodeCount())
	var back [][2]string

	visit := func(root string) {
		stack := []frame{{id: root, children: g.Children(root)}}
		state[root] = onPath
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.children) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}
			child := top.children[top.next]
			top.next++
			switch state[child] {
			case unseen:
				state[child] = onPath
				stack = append(stack, frame{id: child, children: g.Children(child)})
			case onPath:
				back = append(back, [2]string{top.id, child})
			}
		}
	}

	for _, n := range g.Sources() {
		if state[n.ID] == unseen {
			visit(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if state[n.ID] == unseen {
			visit(n.ID)
		}
	}

	for _, e := range back {
		if e[0] == e[1] {
			g.RemoveEdge(e[0], e[1])
		} else {
			g.ReverseEdge(e[0], e[1])
		}
	}
	return len(back)
}
