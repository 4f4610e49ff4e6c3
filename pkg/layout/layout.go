package layout

import (
	"context"
	"strings"
	"time"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/observability"
)

// Default node box and spacing, matching the browser canvas.
const (
	DefaultNodeWidth  = 172.0
	DefaultNodeHeight = 36.0
	DefaultNodeSep    = 250.0
	DefaultRankSep    = 250.0
	DefaultMargin     = 250.0
)

// Direction is the flow direction of a hierarchical layout.
type Direction string

const (
	DirectionTB Direction = "TB"
	DirectionLR Direction = "LR"
)

// ParseDirection accepts "TB" or "LR" in any case; empty means TB.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TB":
		return DirectionTB, nil
	case "LR":
		return DirectionLR, nil
	}
	return "", errs.New(errs.ErrCodeInvalidLayout, "unknown direction %q (want TB or LR)", s)
}

// Placed is a node with its computed box.
type Placed struct {
	Node   graph.Node `json:"node"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

// Center returns the midpoint of the box.
func (p Placed) Center() graph.Point {
	return graph.Point{X: p.X + p.Width/2, Y: p.Y + p.Height/2}
}

// Strategy positions a set of nodes.
type Strategy interface {
	// Name identifies the strategy in logs and hooks.
	Name() string

	// Layout returns one Placed per distinct node id, in input order.
	// Edges whose endpoints are not among nodes are ignored.
	Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) ([]Placed, error)
}

// Kind names a layout strategy.
type Kind string

const (
	KindHierarchical Kind = "hierarchical"
	KindConcentric   Kind = "concentric"
	KindForce        Kind = "force"
)

// Kinds lists the canonical strategy names.
func Kinds() []Kind { return []Kind{KindHierarchical, KindConcentric, KindForce} }

// Parse maps a strategy name or alias to its Kind. "dagre" is an alias for
// hierarchical, "circle" for concentric and "neato" for force.
func Parse(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hierarchical", "dagre":
		return KindHierarchical, nil
	case "concentric", "circle":
		return KindConcentric, nil
	case "force", "neato":
		return KindForce, nil
	}
	return "", errs.New(errs.ErrCodeInvalidLayout, "unknown layout %q (want hierarchical, concentric or force)", name)
}

// Options configures [New]. Zero values fall back to the defaults above.
type Options struct {
	NodeWidth  float64
	NodeHeight float64
	NodeSep    float64
	RankSep    float64
	Margin     float64

	// Engine places nodes for the concentric and force kinds. When nil the
	// built-in ring placement is used.
	Engine Engine
}

// New builds the strategy for kind.
func New(kind Kind, opts Options) (Strategy, error) {
	switch kind {
	case KindHierarchical:
		h := DefaultHierarchical()
		h.NodeWidth = orDefault(opts.NodeWidth, h.NodeWidth)
		h.NodeHeight = orDefault(opts.NodeHeight, h.NodeHeight)
		h.NodeSep = orDefault(opts.NodeSep, h.NodeSep)
		h.RankSep = orDefault(opts.RankSep, h.RankSep)
		h.MarginX = orDefault(opts.Margin, h.MarginX)
		h.MarginY = orDefault(opts.Margin, h.MarginY)
		return h, nil
	case KindConcentric, KindForce:
		return Concentric{
			Engine:     opts.Engine,
			Label:      string(kind),
			NodeWidth:  orDefault(opts.NodeWidth, DefaultNodeWidth),
			NodeHeight: orDefault(opts.NodeHeight, DefaultNodeHeight),
			Padding:    orDefault(opts.Margin, DefaultMargin),
			Fit:        true,
		}, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidLayout, "unknown layout kind %q", kind)
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// instrument reports start and completion of a layout run to the
// registered hooks.
func instrument(ctx context.Context, name string, n int, fn func() ([]Placed, error)) ([]Placed, error) {
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, name, n)
	start := time.Now()
	placed, err := fn()
	hooks.OnLayoutComplete(ctx, name, time.Since(start), err)
	return placed, err
}

// distinct returns nodes with later duplicates of an id removed.
func distinct(nodes []graph.Node) []graph.Node {
	seen := make(map[string]struct{}, len(nodes))
	out := make([]graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}
