package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/layout"
)

// Program is a Graphviz layout program usable as a [layout.Engine].
type Program string

const (
	ProgramTwopi Program = "twopi" // radial, root in the center
	ProgramCirco Program = "circo"
	ProgramNeato Program = "neato" // spring model
)

// ProgramFor returns the Graphviz program backing a layout kind:
// twopi for concentric and neato for force.
func ProgramFor(kind layout.Kind) Program {
	if kind == layout.KindForce {
		return ProgramNeato
	}
	return ProgramTwopi
}

// Graphviz places nodes by running a Graphviz program in-process.
type Graphviz struct {
	Program Program
}

// NewGraphviz returns an engine running program.
func NewGraphviz(program Program) *Graphviz {
	return &Graphviz{Program: program}
}

var _ layout.Engine = (*Graphviz)(nil)

// Place implements [layout.Engine]. Graphviz sees opaque ids n0, n1, ... in
// topology order, so arbitrary node ids are safe.
func (e *Graphviz) Place(ctx context.Context, t layout.Topology) (map[string]graph.Point, error) {
	if len(t.Nodes) == 0 {
		return map[string]graph.Point{}, nil
	}

	src, alias := TopologyDOT(t)

	xdot, err := runGraphviz(ctx, e.layout(), graphviz.XDOT, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Program, err)
	}

	positions := ParsePositions(xdot)
	out := make(map[string]graph.Point, len(positions))
	for short, p := range positions {
		if id, ok := alias[short]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (e *Graphviz) layout() graphviz.Layout {
	switch e.Program {
	case ProgramCirco:
		return graphviz.CIRCO
	case ProgramNeato:
		return graphviz.NEATO
	default:
		return graphviz.TWOPI
	}
}

// TopologyDOT writes t as an undirected graph with node ids replaced by
// n0, n1, ... and returns the alias-to-id mapping.
func TopologyDOT(t layout.Topology) (string, map[string]string) {
	alias := make(map[string]string, len(t.Nodes))
	short := make(map[string]string, len(t.Nodes))
	for i, n := range t.Nodes {
		a := "n" + strconv.Itoa(i)
		alias[a] = n.ID
		short[n.ID] = a
	}

	sep := t.Padding / pointsPerInch
	if sep <= 0 {
		sep = 1
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [root=%q, overlap=false, ranksep=%s, mindist=%s];\n", "n0", num(sep), num(sep))
	fmt.Fprintf(&buf, "  node [shape=box, fixedsize=true, width=%s, height=%s, label=\"\"];\n",
		num(t.NodeWidth/pointsPerInch), num(t.NodeHeight/pointsPerInch))
	for i := range t.Nodes {
		fmt.Fprintf(&buf, "  n%d;\n", i)
	}
	for _, e := range t.Edges {
		fmt.Fprintf(&buf, "  %s -- %s;\n", short[e[0]], short[e[1]])
	}
	buf.WriteString("}\n")
	return buf.String(), alias
}

var (
	nodeStmtRe = regexp.MustCompile(`(?m)^\s*(n\d+)\s+\[([^\]]*)\]`)
	posAttrRe  = regexp.MustCompile(`\bpos="(-?[0-9.eE+]+),(-?[0-9.eE+]+)!?"`)
)

// ParsePositions reads node positions from Graphviz DOT output, flipping Y
// into layout space. Edge statements and nodes without pos are ignored.
func ParsePositions(out []byte) map[string]graph.Point {
	positions := make(map[string]graph.Point)
	for _, m := range nodeStmtRe.FindAllSubmatch(out, -1) {
		pm := posAttrRe.FindSubmatch(m[2])
		if pm == nil {
			continue
		}
		x, errX := strconv.ParseFloat(string(pm[1]), 64)
		y, errY := strconv.ParseFloat(string(pm[2]), 64)
		if errX != nil || errY != nil {
			continue
		}
		positions[string(m[1])] = graph.Point{X: x, Y: -y}
	}
	return positions
}
