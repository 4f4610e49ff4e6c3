package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/layout"
	"github.com/matzehuels/claimgraph/pkg/style"
)

// pointsPerInch converts layout pixels to Graphviz inches.
const pointsPerInch = 72.0

// Node is a positioned, styled node.
type Node struct {
	layout.Placed
	Style    style.NodeStyle
	Selected bool
}

// Edge is a styled edge.
type Edge struct {
	graph.Edge
	Style    style.EdgeStyle
	Selected bool
}

// Diagram is everything needed to draw a scene.
type Diagram struct {
	Nodes []Node
	Edges []Edge
}

// Options configures [ToDOT].
type Options struct {
	// EdgeLabels prints each edge's relation next to it.
	EdgeLabels bool

	// FontSize is the node label size in points; 0 means 14.
	FontSize float64
}

// ToDOT returns DOT source that pins every node at the center of its
// placed box. Edges whose endpoints are not in the diagram are skipped.
// Selected elements get a thicker outline.
func ToDOT(d Diagram, opts Options) string {
	fontSize := opts.FontSize
	if fontSize <= 0 {
		fontSize = 14
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	fmt.Fprintf(&buf, "  node [style=filled, fixedsize=true, fontname=\"Helvetica\", fontsize=%s];\n", num(fontSize))
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("\n")

	known := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		known[n.Node.ID] = struct{}{}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Node.ID, strings.Join(nodeAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		_, okS := known[e.Source]
		_, okT := known[e.Target]
		if !okS || !okT {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e, opts), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n Node) []string {
	c := n.Center()
	w, h := n.Width, n.Height
	if n.Style.Width > 0 && n.Style.Height > 0 {
		w, h = n.Style.Width, n.Style.Height
	}
	shape, extra := dotShape(n.Style.Shape)

	attrs := []string{
		fmt.Sprintf("label=%q", n.Node.Label),
		fmt.Sprintf("pos=\"%s,%s!\"", num(c.X), num(-c.Y)),
		fmt.Sprintf("width=%s", num(w/pointsPerInch)),
		fmt.Sprintf("height=%s", num(h/pointsPerInch)),
		fmt.Sprintf("shape=%s", shape),
	}
	if extra != "" {
		attrs = append(attrs, fmt.Sprintf("style=%q", extra))
	}
	if n.Style.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Style.Color))
	}
	if n.Style.Border != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", n.Style.Border))
	}
	if n.Selected {
		attrs = append(attrs, "penwidth=3")
	}
	if n.Node.URI != "" {
		attrs = append(attrs, fmt.Sprintf("URL=%q", n.Node.URI))
	}
	return attrs
}

func edgeAttrs(e Edge, opts Options) []string {
	width := e.Style.Width
	if width <= 0 {
		width = 1
	}
	if e.Selected {
		width *= 2
	}
	attrs := []string{
		fmt.Sprintf("penwidth=%s", num(width)),
		fmt.Sprintf("arrowhead=%s", dotArrow(e.Style.ArrowShape)),
	}
	if e.Style.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", e.Style.Color))
	}
	if e.Style.LineStyle == style.LineDashed {
		attrs = append(attrs, "style=dashed")
	}
	if opts.EdgeLabels && e.Relation != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Relation))
	}
	return attrs
}

// dotShape maps a theme shape to a Graphviz shape plus extra style.
func dotShape(shape string) (string, string) {
	switch shape {
	case style.ShapeRoundRectangle:
		return "box", "rounded,filled"
	case style.ShapeRectangle:
		return "box", ""
	case style.ShapeDiamond:
		return "diamond", ""
	case style.ShapeStar:
		return "star", ""
	case style.ShapeRoundTriangle:
		return "triangle", "rounded,filled"
	default:
		return "ellipse", ""
	}
}

func dotArrow(shape string) string {
	switch shape {
	case style.ArrowChevron, style.ArrowVee:
		return "vee"
	case style.ArrowNone:
		return "none"
	case style.ArrowTriangleTee:
		return "normaltee"
	case style.ArrowCircle:
		return "dot"
	default:
		return "normal"
	}
}

// num formats a float without trailing zeros.
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
