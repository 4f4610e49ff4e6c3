package layout

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/claimgraph/pkg/graph"
)

// Topology is what a renderer-owned engine sees: ids ranked by degree,
// the edges between them, and the box every node occupies.
type Topology struct {
	// Nodes are sorted by degree, highest first, ties by id. Nodes[0] is
	// the root for radial engines.
	Nodes      []RankedNode
	Edges      [][2]string
	Direction  Direction
	NodeWidth  float64
	NodeHeight float64
	Padding    float64
}

// Root returns the highest-degree node id, or "" for an empty topology.
func (t Topology) Root() string {
	if len(t.Nodes) == 0 {
		return ""
	}
	return t.Nodes[0].ID
}

// RankedNode is a node id with its degree in the laid-out graph.
type RankedNode struct {
	ID     string
	Degree int
}

// Engine computes node centers for a topology. It may omit nodes; the
// caller places those itself.
type Engine interface {
	Place(ctx context.Context, t Topology) (map[string]graph.Point, error)
}

// Concentric delegates placement to Engine and fills in any node the
// engine did not place (or placed at a non-finite point) on a ring around
// the others. A nil Engine places every node on concentric rings, highest
// degree in the center.
type Concentric struct {
	Engine     Engine
	Label      string
	NodeWidth  float64
	NodeHeight float64
	Padding    float64

	// Fit translates the result so the top-left corner sits at Padding.
	Fit bool
}

// Name implements [Strategy].
func (c Concentric) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return string(KindConcentric)
}

// Layout implements [Strategy].
func (c Concentric) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) ([]Placed, error) {
	return instrument(ctx, c.Name(), len(nodes), func() ([]Placed, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nodes = distinct(nodes)
		if len(nodes) == 0 {
			return []Placed{}, nil
		}

		w, h := orDefault(c.NodeWidth, DefaultNodeWidth), orDefault(c.NodeHeight, DefaultNodeHeight)
		topo := c.topology(nodes, edges, dir, w, h)

		points := map[string]graph.Point{}
		if c.Engine != nil {
			placed, err := c.Engine.Place(ctx, topo)
			if err != nil {
				return nil, fmt.Errorf("%s engine: %w", c.Name(), err)
			}
			for _, n := range topo.Nodes {
				if p, ok := placed[n.ID]; ok && finite(p) {
					points[n.ID] = p
				}
			}
		}
		fillRings(points, topo)

		out := make([]Placed, len(nodes))
		for i, n := range nodes {
			p := points[n.ID]
			out[i] = Placed{Node: n, X: p.X - w/2, Y: p.Y - h/2, Width: w, Height: h}
		}
		if c.Fit {
			fit(out, c.Padding)
		}
		return out, nil
	})
}

func (c Concentric) topology(nodes []graph.Node, edges []graph.Edge, dir Direction, w, h float64) Topology {
	known := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.ID] = struct{}{}
	}

	degree := make(map[string]int, len(nodes))
	seen := make(map[[2]string]struct{}, len(edges))
	var pairs [][2]string
	for _, e := range edges {
		_, okS := known[e.Source]
		_, okT := known[e.Target]
		pair := [2]string{e.Source, e.Target}
		if !okS || !okT || e.Source == e.Target {
			continue
		}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
		degree[e.Source]++
		degree[e.Target]++
	}
	slices.SortFunc(pairs, func(a, b [2]string) int {
		return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
	})

	ranked := make([]RankedNode, 0, len(nodes))
	for id := range known {
		ranked = append(ranked, RankedNode{ID: id, Degree: degree[id]})
	}
	slices.SortFunc(ranked, func(a, b RankedNode) int {
		return cmp.Or(cmp.Compare(b.Degree, a.Degree), cmp.Compare(a.ID, b.ID))
	})

	return Topology{
		Nodes:      ranked,
		Edges:      pairs,
		Direction:  dir,
		NodeWidth:  w,
		NodeHeight: h,
		Padding:    c.Padding,
	}
}

// fillRings places every ranked node missing from points. With nothing
// placed yet the first node goes to the origin and the rest fill rings of
// growing radius; otherwise missing nodes share one ring just outside the
// bounding circle of the placed ones.
func fillRings(points map[string]graph.Point, t Topology) {
	var missing []string
	for _, n := range t.Nodes {
		if _, ok := points[n.ID]; !ok {
			missing = append(missing, n.ID)
		}
	}
	if len(missing) == 0 {
		return
	}

	spacing := math.Hypot(t.NodeWidth, t.NodeHeight) + t.Padding/2
	if len(points) == 0 {
		points[missing[0]] = graph.Point{}
		rest := missing[1:]
		for ring := 1; len(rest) > 0; ring++ {
			capacity := 6 * ring
			n := min(capacity, len(rest))
			placeOnRing(points, rest[:n], graph.Point{}, float64(ring)*spacing)
			rest = rest[n:]
		}
		return
	}

	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	center := graph.Point{X: cx / float64(len(points)), Y: cy / float64(len(points))}
	radius := 0.0
	for _, p := range points {
		radius = max(radius, math.Hypot(p.X-center.X, p.Y-center.Y))
	}
	// A ring must be long enough to hold every missing node.
	radius = max(radius+spacing, spacing*float64(len(missing))/(2*math.Pi))
	placeOnRing(points, missing, center, radius)
}

func placeOnRing(points map[string]graph.Point, ids []string, center graph.Point, radius float64) {
	for i, id := range ids {
		angle := 2*math.Pi*float64(i)/float64(len(ids)) - math.Pi/2
		points[id] = graph.Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
}

func fit(placed []Placed, padding float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range placed {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
	}
	for i := range placed {
		placed[i].X += padding - minX
		placed[i].Y += padding - minY
	}
}

func finite(p graph.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
