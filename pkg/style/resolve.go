package style

import (
	"math"
	"strings"

	"github.com/matzehuels/claimgraph/pkg/graph"
)

// Resolver maps nodes and edges to their visual style.
// A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	theme Theme
}

// NewResolver validates theme and returns a resolver over a private copy of it.
func NewResolver(theme Theme) (*Resolver, error) {
	if _, ok := theme.Edges[DefaultEdgeKey]; !ok {
		return nil, ErrNoDefaultEdgeStyle
	}
	return &Resolver{theme: theme.clone()}, nil
}

// Default returns a resolver over [DefaultTheme].
func Default() *Resolver {
	r, err := NewResolver(DefaultTheme())
	if err != nil {
		panic(err)
	}
	return r
}

// ResolveNode returns the style of n.
func (r *Resolver) ResolveNode(n graph.Node) NodeStyle {
	key := n.EntityType.Key()

	shape, ok := r.theme.Shapes[key]
	if !ok {
		shape = r.theme.DefaultShape
	}
	border, ok := r.theme.Borders[key]
	if !ok {
		border = r.theme.DefaultBorder
	}

	return NodeStyle{
		Shape:  shape.Shape,
		Width:  shape.Width,
		Height: shape.Height,
		Color:  r.nodeColor(n, key),
		Border: border,
	}
}

func (r *Resolver) nodeColor(n graph.Node, key string) string {
	if n.ClaimType == "rated" && n.Stars != nil {
		return r.theme.RatingGradient[StarBucket(*n.Stars)]
	}
	if n.IsClaim() {
		if mentionsImpact(n.ClaimType) || mentionsImpact(n.Label) {
			return r.theme.ImpactColor
		}
		return r.theme.ClaimColor
	}
	if n.EntityType == graph.EntityPerson {
		return r.theme.PersonColor
	}
	if c, ok := r.theme.EntityColors[key]; ok {
		return c
	}
	return r.theme.NeutralColor
}

// ResolveEdge returns the style of e, falling back to the default entry.
func (r *Resolver) ResolveEdge(e graph.Edge) EdgeStyle {
	if s, ok := r.theme.Edges[strings.ToLower(e.Relation)]; ok {
		return s
	}
	return r.theme.Edges[DefaultEdgeKey]
}

// Theme returns a copy of the resolver's theme.
func (r *Resolver) Theme() Theme { return r.theme.clone() }

// StarBucket maps a star rating to a gradient index in [0, 4].
// NaN maps to 0.
func StarBucket(stars float64) int {
	if math.IsNaN(stars) {
		return 0
	}
	b := math.Floor(stars)
	switch {
	case b < 0:
		return 0
	case b > 4:
		return 4
	default:
		return int(b)
	}
}

func mentionsImpact(s string) bool {
	return strings.Contains(strings.ToLower(s), "impact")
}
