package transform

import (
	"fmt"

	"github.com/matzehuels/claimgraph/pkg/dag"
)

// Subdivide replaces every edge spanning more than one row with a chain of
// [dag.NodeKindVirtual] nodes, one per intermediate row:
//
//	Before: alice (row 0) → claim (row 3)
//	After:  alice → e1~1 → e1~2 → claim
//
// Each virtual node records the input edge id in EdgeID, and every segment
// of the chain keeps the original edge's ID and Reversed flag. Virtual ids
// have the form "<edge>~<row>" with a numeric suffix on collision.
//
// Edges going upwards (which only occur if [AssignLayers] was skipped) and
// edges between nodes on the same row are left alone.
func Subdivide(g *dag.DAG) {
	gen := newIDGen(g.Nodes())

	var long []dag.Edge
	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		if dst.Row > src.Row+1 {
			long = append(long, e)
		}
	}

	for _, e := range long {
		g.RemoveEdge(e.From, e.To)
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)

		base := e.ID
		if base == "" {
			base = e.From + "-" + e.To
		}
		prev := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			id := gen.next(base, row)
			mustAdd(g.AddNode(dag.Node{ID: id, Row: row, Kind: dag.NodeKindVirtual, EdgeID: e.ID}))
			mustAdd(g.AddEdge(dag.Edge{From: prev, To: id, ID: e.ID, Reversed: e.Reversed}))
			prev = id
		}
		mustAdd(g.AddEdge(dag.Edge{From: prev, To: dst.ID, ID: e.ID, Reversed: e.Reversed}))
	}
}

func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s~%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
