package dag

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNonConsecutiveRows is returned by [DAG.Validate] when an edge
	// connects nodes that are not in adjacent rows.
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive rows")
)

// NodeKind distinguishes claim-graph nodes from nodes inserted by layout.
type NodeKind int

const (
	// NodeKindRegular is a node of the input graph.
	NodeKindRegular NodeKind = iota
	// NodeKindVirtual is a bend point on an edge spanning several rows.
	NodeKindVirtual
)

// Node is a vertex with an assigned row.
type Node struct {
	ID   string
	Row  int
	Kind NodeKind

	// EdgeID is the id of the input edge a virtual node belongs to.
	EdgeID string
}

// IsVirtual reports whether the node was inserted by subdivision.
func (n Node) IsVirtual() bool { return n.Kind == NodeKindVirtual }

// Edge is a directed connection. ID names the input edge it came from;
// Reversed is set when cycle breaking flipped its direction.
type Edge struct {
	From     string
	To       string
	ID       string
	Reversed bool
}

// DAG is a directed graph organized into rows.
//
// The zero value is not usable; use [New]. A DAG is not safe for concurrent use.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	rows     map[int][]*Node
}

// New creates an empty graph.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		rows:     make(map[int][]*Node),
	}
}

// AddNode adds a node and indexes it by its Row.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	d.nodes[n.ID] = node
	d.order = append(d.order, n.ID)
	d.rows[n.Row] = append(d.rows[n.Row], node)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Parallel edges
// are allowed.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// HasEdge reports whether an edge from→to exists.
func (d *DAG) HasEdge(from, to string) bool {
	return slices.Contains(d.outgoing[from], to)
}

// RemoveEdge removes the first edge from→to and returns it.
func (d *DAG) RemoveEdge(from, to string) (Edge, bool) {
	i := slices.IndexFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	if i < 0 {
		return Edge{}, false
	}
	e := d.edges[i]
	d.edges = slices.Delete(d.edges, i, i+1)
	if j := slices.Index(d.outgoing[from], to); j >= 0 {
		d.outgoing[from] = slices.Delete(d.outgoing[from], j, j+1)
	}
	if j := slices.Index(d.incoming[to], from); j >= 0 {
		d.incoming[to] = slices.Delete(d.incoming[to], j, j+1)
	}
	return e, true
}

// ReverseEdge flips the first edge from→to, toggling its Reversed flag.
// If the opposite edge already exists the edge is dropped instead, so a
// reversal never introduces a parallel edge.
func (d *DAG) ReverseEdge(from, to string) bool {
	e, ok := d.RemoveEdge(from, to)
	if !ok {
		return false
	}
	if d.HasEdge(to, from) {
		return true
	}
	_ = d.AddEdge(Edge{From: to, To: from, ID: e.ID, Reversed: !e.Reversed})
	return true
}

// Nodes returns all nodes in insertion order.
func (d *DAG) Nodes() []*Node {
	out := make([]*Node, len(d.order))
	for i, id := range d.order {
		out[i] = d.nodes[id]
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Children returns the targets of edges leaving id. The slice is read-only.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the sources of edges entering id. The slice is read-only.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Sources returns nodes without incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var out []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			out = append(out, d.nodes[id])
		}
	}
	return out
}

// SetRows updates row assignments and rebuilds the row index. Nodes absent
// from rows keep their current row. Within a row, nodes stay in insertion order.
func (d *DAG) SetRows(rows map[string]int) {
	d.rows = make(map[int][]*Node)
	for _, id := range d.order {
		n := d.nodes[id]
		if r, ok := rows[id]; ok {
			n.Row = r
		}
		d.rows[n.Row] = append(d.rows[n.Row], n)
	}
}

// NodesInRow returns the nodes assigned to row, in insertion order.
func (d *DAG) NodesInRow(row int) []*Node { return d.rows[row] }

// RowIDs returns all row indices in ascending order.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// MaxRow returns the highest row index, or 0 if the graph is empty.
func (d *DAG) MaxRow() int {
	ids := d.RowIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// Validate checks that every edge connects consecutive rows. Rows grow
// strictly along every edge of such a graph, so it is also acyclic.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		from, to := d.nodes[e.From], d.nodes[e.To]
		if to.Row-from.Row != 1 {
			return fmt.Errorf("%w: %s (row %d) -> %s (row %d)", ErrNonConsecutiveRows, e.From, from.Row, e.To, to.Row)
		}
	}
	return nil
}

// PosMap maps each id to its index in ids.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
