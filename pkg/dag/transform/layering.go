package transform

import "github.com/matzehuels/claimgraph/pkg/dag"

// TopoOrder returns the node ids of g in topological order, breaking ties
// by insertion order. Nodes on a cycle are missing from the result.
func TopoOrder(g *dag.DAG) []string {
	nodes := g.Nodes()
	pending := make(map[string]int, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if pending[n.ID] = g.InDegree(n.ID); pending[n.ID] == 0 {
			order = append(order, n.ID)
		}
	}
	for i := 0; i < len(order); i++ {
		for _, child := range g.Children(order[i]) {
			pending[child]--
			if pending[child] == 0 {
				order = append(order, child)
			}
		}
	}
	return order
}

// AssignLayers places each node one row below its deepest parent, with
// sources on row 0. Existing rows are overwritten. Nodes on a cycle stay on
// row 0; run [BreakCycles] first.
func AssignLayers(g *dag.DAG) {
	rows := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		rows[n.ID] = 0
	}
	for _, id := range TopoOrder(g) {
		for _, child := range g.Children(id) {
			rows[child] = max(rows[child], rows[id]+1)
		}
	}
	g.SetRows(rows)
}
