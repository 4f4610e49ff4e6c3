package graph

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// Entity Types
// =============================================================================

// EntityType is the category of a node. Values are always upper case.
type EntityType string

// Known entity types. Anything else read from a payload is preserved as-is
// (upper-cased) and styled with the neutral default.
const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityClaim        EntityType = "CLAIM"
	EntityImpact       EntityType = "IMPACT"
	EntityEvent        EntityType = "EVENT"
	EntityDocument     EntityType = "DOCUMENT"
	EntityProduct      EntityType = "PRODUCT"
	EntityPlace        EntityType = "PLACE"
	EntityOther        EntityType = "OTHER"
	EntityUnknown      EntityType = "UNKNOWN"
)

// ParseEntityType upper-cases s. Empty input yields [EntityUnknown].
func ParseEntityType(s string) EntityType {
	s = strings.TrimSpace(s)
	if s == "" {
		return EntityUnknown
	}
	return EntityType(strings.ToUpper(s))
}

// String returns the entity type as stored.
func (t EntityType) String() string { return string(t) }

// Key returns the lowercase lookup key used by style tables.
func (t EntityType) Key() string { return strings.ToLower(string(t)) }

// =============================================================================
// Node
// =============================================================================

// Node is an entity or claim in a claim graph.
//
// Nodes are values. Components that hold nodes (the store in particular)
// never modify a node after publishing it; changes produce a new value.
type Node struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	URI        string          `json:"uri,omitempty"`
	EntityType EntityType      `json:"entityType"`
	Image      string          `json:"image,omitempty"`
	Thumbnail  string          `json:"thumbnail,omitempty"`
	ClaimType  string          `json:"claimType,omitempty"`
	Stars      *float64        `json:"stars,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

// IsClaim reports whether the node represents a claim.
func (n Node) IsClaim() bool { return n.EntityType == EntityClaim }

// HasStars reports whether a numeric rating is attached.
func (n Node) HasStars() bool { return n.Stars != nil }

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed relation between two nodes, identified by id.
type Edge struct {
	ID       string          `json:"id"`
	Source   string          `json:"source"`
	Target   string          `json:"target"`
	Relation string          `json:"relation"`
	ClaimID  string          `json:"claimId,omitempty"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// Endpoints returns the source and target ids.
func (e Edge) Endpoints() (string, string) { return e.Source, e.Target }

// =============================================================================
// Fragment
// =============================================================================

// Fragment is a normalized batch of nodes and edges. Node ids are unique
// within a fragment. Edge endpoints are non-empty but may name nodes outside
// the fragment that are expected to be known to the receiver already.
type Fragment struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty reports whether the fragment carries no nodes and no edges.
func (f Fragment) Empty() bool { return len(f.Nodes) == 0 && len(f.Edges) == 0 }

// NodeIDs returns the ids of all nodes in fragment order.
func (f Fragment) NodeIDs() []string {
	ids := make([]string, len(f.Nodes))
	for i, n := range f.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Restrict returns a copy of f containing only the nodes accepted by keep.
// Edges touching a rejected node are removed; edges to nodes outside f are
// kept.
func (f Fragment) Restrict(keep func(Node) bool) Fragment {
	out := Fragment{Nodes: []Node{}, Edges: []Edge{}}
	rejected := make(map[string]struct{})
	for _, n := range f.Nodes {
		if keep(n) {
			out.Nodes = append(out.Nodes, n)
		} else {
			rejected[n.ID] = struct{}{}
		}
	}
	for _, e := range f.Edges {
		_, badS := rejected[e.Source]
		_, badT := rejected[e.Target]
		if !badS && !badT {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// MarshalJSON writes empty slices as [] rather than null.
func (f Fragment) MarshalJSON() ([]byte, error) {
	type alias Fragment
	a := alias(f)
	if a.Nodes == nil {
		a.Nodes = []Node{}
	}
	if a.Edges == nil {
		a.Edges = []Edge{}
	}
	return json.Marshal(a)
}

// =============================================================================
// Geometry
// =============================================================================

// Point is a position in layout space. Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
