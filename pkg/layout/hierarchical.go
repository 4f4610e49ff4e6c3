package layout

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/claimgraph/pkg/dag"
	"github.com/matzehuels/claimgraph/pkg/dag/transform"
	"github.com/matzehuels/claimgraph/pkg/graph"
)

// Hierarchical is a layered layout. Nodes are ranked by longest path from
// the sources after reversing cycle edges, ordered within each rank by
// barycenter sweeps, then spaced on a grid with every rank centered on the
// widest one.
type Hierarchical struct {
	NodeWidth  float64
	NodeHeight float64
	NodeSep    float64 // gap between neighbours in a rank
	RankSep    float64 // gap between ranks
	MarginX    float64
	MarginY    float64
	Passes     int
}

// DefaultHierarchical returns the layout used by the browser canvas:
// 172×36 nodes, 250 separation on both axes, 250 margin.
func DefaultHierarchical() Hierarchical {
	return Hierarchical{
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		NodeSep:    DefaultNodeSep,
		RankSep:    DefaultRankSep,
		MarginX:    DefaultMargin,
		MarginY:    DefaultMargin,
		Passes:     transform.DefaultPasses,
	}
}

// Name implements [Strategy].
func (h Hierarchical) Name() string { return string(KindHierarchical) }

// Layout implements [Strategy].
func (h Hierarchical) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) ([]Placed, error) {
	return instrument(ctx, h.Name(), len(nodes), func() ([]Placed, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nodes = distinct(nodes)
		if len(nodes) == 0 {
			return []Placed{}, nil
		}

		g := buildDAG(nodes, edges)
		transform.BreakCycles(g)
		transform.AssignLayers(g)
		transform.Subdivide(g)
		orders := transform.Barycentric{Passes: h.Passes}.OrderRows(g)

		centers := h.centers(g, orders, dir)
		out := make([]Placed, len(nodes))
		for i, n := range nodes {
			c := centers[n.ID]
			out[i] = Placed{
				Node:   n,
				X:      c.X - h.NodeWidth/2,
				Y:      c.Y - h.NodeHeight/2,
				Width:  h.NodeWidth,
				Height: h.NodeHeight,
			}
		}
		return out, nil
	})
}

// buildDAG inserts nodes sorted by id and edges sorted by endpoints, so the
// result does not depend on input order. Self-loops, parallel edges and
// edges with unknown endpoints are skipped.
func buildDAG(nodes []graph.Node, edges []graph.Edge) *dag.DAG {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	slices.Sort(ids)

	g := dag.New()
	for _, id := range ids {
		_ = g.AddNode(dag.Node{ID: id})
	}

	sorted := slices.Clone(edges)
	slices.SortFunc(sorted, func(a, b graph.Edge) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Target, b.Target), cmp.Compare(a.ID, b.ID))
	})
	for _, e := range sorted {
		if e.Source == e.Target || g.HasEdge(e.Source, e.Target) {
			continue
		}
		_ = g.AddEdge(dag.Edge{From: e.Source, To: e.Target, ID: e.ID})
	}
	return g
}

// centers computes the center of every node, virtual ones included.
func (h Hierarchical) centers(g *dag.DAG, orders map[int][]string, dir Direction) map[string]graph.Point {
	rows := g.RowIDs()

	// Extent of a node along the rank axis and across it.
	along, across := h.NodeWidth, h.NodeHeight
	sepAlong, sepAcross := h.NodeSep, h.RankSep
	marginAlong, marginAcross := h.MarginX, h.MarginY
	if dir == DirectionLR {
		along, across = h.NodeHeight, h.NodeWidth
		marginAlong, marginAcross = h.MarginY, h.MarginX
	}

	step := along + sepAlong
	widest := 0
	for _, r := range rows {
		widest = max(widest, len(orders[r]))
	}
	maxSpan := float64(widest-1) * step

	out := make(map[string]graph.Point, g.NodeCount())
	for rank, r := range rows {
		ids := orders[r]
		span := float64(len(ids)-1) * step
		offset := marginAlong + along/2 + (maxSpan-span)/2
		c := marginAcross + across/2 + float64(rank)*(across+sepAcross)
		for i, id := range ids {
			a := offset + float64(i)*step
			if dir == DirectionLR {
				out[id] = graph.Point{X: c, Y: a}
			} else {
				out[id] = graph.Point{X: a, Y: c}
			}
		}
	}
	return out
}
