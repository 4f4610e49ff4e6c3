package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/claimgraph/pkg/graph"
)

// ErrPageRegression is returned by [State.SetPage] when the new page is
// lower than the recorded one.
var ErrPageRegression = errors.New("expansion page cannot decrease")

// MergePolicy decides what happens when a merged node id already exists.
type MergePolicy int

const (
	// FirstSeenWins ignores later records for an existing id.
	FirstSeenWins MergePolicy = iota

	// FillMissing copies fields that are empty on the stored node from the
	// later record into a new node value. Non-empty fields are never replaced.
	FillMissing
)

// ParseMergePolicy converts a config string into a policy.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch s {
	case "", "first-seen", "first_seen":
		return FirstSeenWins, nil
	case "fill-missing", "fill_missing":
		return FillMissing, nil
	default:
		return FirstSeenWins, fmt.Errorf("unknown merge policy %q", s)
	}
}

func (p MergePolicy) String() string {
	if p == FillMissing {
		return "fill-missing"
	}
	return "first-seen"
}

// Option configures a [State].
type Option func(*State)

// WithLogger sets the logger used for dropped-edge warnings.
func WithLogger(l *log.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPolicy sets the duplicate-node policy.
func WithPolicy(p MergePolicy) Option {
	return func(s *State) { s.policy = p }
}

// State is the graph of a single view plus its expansion bookkeeping.
type State struct {
	nodes     map[string]*graph.Node
	edges     map[string]*graph.Edge
	nodeOrder []string
	edgeOrder []string
	pages     map[string]int
	degree    map[string]int

	policy MergePolicy
	logger *log.Logger
}

// New creates an empty state.
func New(opts ...Option) *State {
	s := &State{
		nodes:  make(map[string]*graph.Node),
		edges:  make(map[string]*graph.Edge),
		pages:  make(map[string]int),
		degree: make(map[string]int),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// Merge
// =============================================================================

// DroppedEdge describes an edge rejected by [State.Merge].
type DroppedEdge struct {
	Edge    graph.Edge
	Missing []string // endpoint ids absent from state and batch
}

// MergeResult reports what a merge changed.
type MergeResult struct {
	AddedNodes []string
	AddedEdges []string
	Updated    []string // nodes replaced under FillMissing
	Dropped    []DroppedEdge
}

// Changed reports whether the merge modified the state.
func (r MergeResult) Changed() bool {
	return len(r.AddedNodes) > 0 || len(r.AddedEdges) > 0 || len(r.Updated) > 0
}

// Merge adds nodes and edges that are not yet present. Nodes are merged
// before edges, so an edge may reference a node of the same batch.
func (s *State) Merge(nodes []graph.Node, edges []graph.Edge) MergeResult {
	var res MergeResult

	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		existing, ok := s.nodes[n.ID]
		if !ok {
			v := n
			s.nodes[n.ID] = &v
			s.nodeOrder = append(s.nodeOrder, n.ID)
			res.AddedNodes = append(res.AddedNodes, n.ID)
			continue
		}
		if s.policy == FillMissing {
			if merged, changed := fillMissing(*existing, n); changed {
				s.nodes[n.ID] = &merged
				res.Updated = append(res.Updated, n.ID)
			}
		}
	}

	for _, e := range edges {
		if e.ID == "" {
			continue
		}
		if _, ok := s.edges[e.ID]; ok {
			continue
		}
		if missing := s.missingEndpoints(e); len(missing) > 0 {
			s.logger.Warn("dropping edge with unknown endpoint",
				"edge", e.ID, "source", e.Source, "target", e.Target, "missing", missing)
			res.Dropped = append(res.Dropped, DroppedEdge{Edge: e, Missing: missing})
			continue
		}
		v := e
		s.edges[e.ID] = &v
		s.edgeOrder = append(s.edgeOrder, e.ID)
		s.degree[e.Source]++
		if e.Target != e.Source {
			s.degree[e.Target]++
		}
		res.AddedEdges = append(res.AddedEdges, e.ID)
	}

	return res
}

// MergeFragment is shorthand for Merge(f.Nodes, f.Edges).
func (s *State) MergeFragment(f graph.Fragment) MergeResult {
	return s.Merge(f.Nodes, f.Edges)
}

func (s *State) missingEndpoints(e graph.Edge) []string {
	var missing []string
	if _, ok := s.nodes[e.Source]; !ok {
		missing = append(missing, e.Source)
	}
	if _, ok := s.nodes[e.Target]; !ok && e.Target != e.Source {
		missing = append(missing, e.Target)
	}
	return missing
}

func fillMissing(old, later graph.Node) (graph.Node, bool) {
	out := old
	changed := false
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fill(&out.URI, later.URI)
	fill(&out.Image, later.Image)
	fill(&out.Thumbnail, later.Thumbnail)
	fill(&out.ClaimType, later.ClaimType)
	if out.Stars == nil && later.Stars != nil {
		out.Stars, changed = later.Stars, true
	}
	if out.Confidence == nil && later.Confidence != nil {
		out.Confidence, changed = later.Confidence, true
	}
	if out.EntityType == graph.EntityUnknown && later.EntityType != graph.EntityUnknown && later.EntityType != "" {
		out.EntityType, changed = later.EntityType, true
	}
	return out, changed
}

// =============================================================================
// Queries
// =============================================================================

// Node returns the stored node with the given id.
func (s *State) Node(id string) (*graph.Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Edge returns the stored edge with the given id.
func (s *State) Edge(id string) (*graph.Edge, bool) {
	e, ok := s.edges[id]
	return e, ok
}

// HasNode reports whether a node with the given id exists.
func (s *State) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// NodeCount returns the number of nodes.
func (s *State) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges.
func (s *State) EdgeCount() int { return len(s.edges) }

// Degree returns the number of edges touching id. Self-loops count once.
func (s *State) Degree(id string) int { return s.degree[id] }

// Nodes returns copies of all nodes in insertion order.
func (s *State) Nodes() []graph.Node {
	out := make([]graph.Node, len(s.nodeOrder))
	for i, id := range s.nodeOrder {
		out[i] = *s.nodes[id]
	}
	return out
}

// Edges returns copies of all edges in insertion order.
func (s *State) Edges() []graph.Edge {
	out := make([]graph.Edge, len(s.edgeOrder))
	for i, id := range s.edgeOrder {
		out[i] = *s.edges[id]
	}
	return out
}

// Snapshot returns the current graph as a fragment.
func (s *State) Snapshot() graph.Fragment {
	return graph.Fragment{Nodes: s.Nodes(), Edges: s.Edges()}
}

// Neighbors returns the ids adjacent to id in edge insertion order.
func (s *State) Neighbors(id string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, eid := range s.edgeOrder {
		e := s.edges[eid]
		other := ""
		switch id {
		case e.Source:
			other = e.Target
		case e.Target:
			other = e.Source
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// =============================================================================
// Expansion Pages
// =============================================================================

// Page returns the last expanded page of id, or 0.
func (s *State) Page(id string) int { return s.pages[id] }

// SetPage records the expansion page of id. Pages never decrease.
func (s *State) SetPage(id string, page int) error {
	if page < s.pages[id] {
		return fmt.Errorf("%w: node %s at page %d, got %d", ErrPageRegression, id, s.pages[id], page)
	}
	s.pages[id] = page
	return nil
}

// Pages returns a copy of the expansion page map.
func (s *State) Pages() map[string]int {
	return maps.Clone(s.pages)
}

// =============================================================================
// Serialization
// =============================================================================

type stateJSON struct {
	Nodes []graph.Node   `json:"nodes"`
	Edges []graph.Edge   `json:"edges"`
	Pages map[string]int `json:"expansionPageByNodeId"`
}

// MarshalJSON encodes the graph and its expansion pages.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{Nodes: s.Nodes(), Edges: s.Edges(), Pages: s.Pages()})
}
