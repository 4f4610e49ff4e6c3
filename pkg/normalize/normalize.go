package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/graph"
)

// ErrUnsupportedShape is returned when a payload is neither a node object,
// a node array, nor a {nodes, edges} object.
var ErrUnsupportedShape = errors.New("unsupported payload shape")

// =============================================================================
// Shape Detection
// =============================================================================

// Shape identifies which of the three upstream payload forms was received.
type Shape int

const (
	ShapeUnknown    Shape = iota
	ShapeFlat             // {"nodes": [...], "edges": [...]}
	ShapeNodeList         // [{..., "edgesFrom": [...]}, ...]
	ShapeSingleNode       // {..., "edgesFrom": [...], "edgesTo": [...]}
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeNodeList:
		return "node-list"
	case ShapeSingleNode:
		return "single-node"
	default:
		return "unknown"
	}
}

// DetectShape inspects the top level of payload without decoding it fully.
func DetectShape(payload []byte) (Shape, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return ShapeUnknown, ErrUnsupportedShape
	}
	switch payload[0] {
	case '[':
		return ShapeNodeList, nil
	case '{':
		var top map[string]json.RawMessage
		if err := json.Unmarshal(payload, &top); err != nil {
			return ShapeUnknown, err
		}
		_, hasNodes := top["nodes"]
		_, hasEdges := top["edges"]
		if hasNodes || hasEdges {
			return ShapeFlat, nil
		}
		return ShapeSingleNode, nil
	default:
		return ShapeUnknown, ErrUnsupportedShape
	}
}

// =============================================================================
// Normalization
// =============================================================================

// Result is the outcome of [Parse].
type Result struct {
	graph.Fragment

	// Shape is the detected payload shape.
	Shape Shape

	// Skipped counts edges dropped because an endpoint id could not be
	// read from the record.
	Skipped int
}

// Normalize converts a claim API payload of any supported shape into a
// canonical fragment. Malformed JSON and unsupported shapes are reported as
// INVALID_FORMAT errors.
func Normalize(payload []byte) (graph.Fragment, error) {
	r, err := Parse(payload)
	if err != nil {
		return graph.Fragment{}, err
	}
	return r.Fragment, nil
}

// NormalizeValue normalizes an already-decoded payload such as a map or a
// slice of maps.
func NormalizeValue(v any) (graph.Fragment, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return graph.Fragment{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "payload is not JSON encodable")
	}
	return Normalize(data)
}

// Parse is like [Normalize] but also reports the detected shape and the
// number of dropped edges.
func Parse(payload []byte) (Result, error) {
	shape, err := DetectShape(payload)
	if err != nil {
		return Result{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unreadable graph payload")
	}

	b := newBuilder()
	switch shape {
	case ShapeFlat:
		var flat struct {
			Nodes []RawNode `json:"nodes"`
			Edges []RawEdge `json:"edges"`
		}
		if err := json.Unmarshal(payload, &flat); err != nil {
			return Result{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unreadable graph payload")
		}
		for _, n := range flat.Nodes {
			b.addRawNode(n)
		}
		for _, e := range flat.Edges {
			b.addRawEdge(e)
		}
	case ShapeNodeList:
		var list []RawNode
		if err := json.Unmarshal(payload, &list); err != nil {
			return Result{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unreadable graph payload")
		}
		for _, n := range list {
			b.addRawNode(n)
		}
	case ShapeSingleNode:
		var n RawNode
		if err := json.Unmarshal(payload, &n); err != nil {
			return Result{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unreadable graph payload")
		}
		b.addRawNode(n)
	}

	frag, skipped := b.finish()
	return Result{Fragment: frag, Shape: shape, Skipped: skipped}, nil
}

// =============================================================================
// Builder
// =============================================================================

type builder struct {
	nodes   []graph.Node
	seen    map[string]struct{}
	pending []graph.Edge
}

func newBuilder() *builder {
	return &builder{seen: make(map[string]struct{})}
}

// addRawNode collects a node and its embedded neighbours and edges.
func (b *builder) addRawNode(r RawNode) {
	parent, ok := toNode(r)
	if ok {
		b.addNode(parent)
	}

	for _, e := range r.EdgesFrom {
		end := b.addEmbeddedNode(e.EndNode)
		source := first(string(e.StartNodeID), embeddedID(e.StartNode), parent.ID)
		target := first(string(e.EndNodeID), end)
		b.addEmbeddedEdge(e, source, target)
	}
	// edgesTo lists claims made about this node. They still run from the
	// claim's start node to its end node; the edge is not flipped to point
	// away from the parent.
	for _, e := range r.EdgesTo {
		start := b.addEmbeddedNode(e.StartNode)
		source := first(string(e.StartNodeID), start)
		target := first(string(e.EndNodeID), embeddedID(e.EndNode), parent.ID)
		b.addEmbeddedEdge(e, source, target)
	}
}

// addNode keeps the first node seen for an id.
func (b *builder) addNode(n graph.Node) {
	if _, dup := b.seen[n.ID]; dup {
		return
	}
	b.seen[n.ID] = struct{}{}
	b.nodes = append(b.nodes, n)
}

func (b *builder) addEmbeddedNode(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var r RawNode
	if err := json.Unmarshal(raw, &r); err != nil {
		return ""
	}
	n, ok := toNode(r)
	if !ok {
		return ""
	}
	b.addNode(n)
	return n.ID
}

func (b *builder) addEmbeddedEdge(e RawEmbedded, source, target string) {
	relation := first(e.Label, e.Claim.Claim)
	b.pending = append(b.pending, graph.Edge{
		ID:       edgeID(string(e.ID), source, relation, target),
		Source:   source,
		Target:   target,
		Relation: relation,
		ClaimID:  string(e.ClaimID),
		Raw:      e.raw,
	})
}

func (b *builder) addRawEdge(e RawEdge) {
	source := first(string(e.Source), string(e.StartNodeID))
	target := first(string(e.Target), string(e.EndNodeID))
	relation := first(e.Relation, e.Label)
	b.pending = append(b.pending, graph.Edge{
		ID:       edgeID(string(e.ID), source, relation, target),
		Source:   source,
		Target:   target,
		Relation: relation,
		ClaimID:  string(e.ClaimID),
		Raw:      e.raw,
	})
}

// finish drops duplicate edges and edges without an endpoint id. Endpoints
// that name no node of this payload are kept: a neighbour page may omit the
// node it was requested for, and the store resolves them against everything
// merged so far.
func (b *builder) finish() (graph.Fragment, int) {
	frag := graph.Fragment{Nodes: b.nodes, Edges: make([]graph.Edge, 0, len(b.pending))}
	if frag.Nodes == nil {
		frag.Nodes = []graph.Node{}
	}
	edgeSeen := make(map[string]struct{}, len(b.pending))
	skipped := 0
	for _, e := range b.pending {
		if e.Source == "" || e.Target == "" {
			skipped++
			continue
		}
		if _, dup := edgeSeen[e.ID]; dup {
			continue
		}
		edgeSeen[e.ID] = struct{}{}
		frag.Edges = append(frag.Edges, e)
	}
	return frag, skipped
}

// =============================================================================
// Field Mapping
// =============================================================================

func toNode(r RawNode) (graph.Node, bool) {
	uri := first(r.NodeURI, r.URI)
	id := first(string(r.ID), uri)
	if id == "" {
		return graph.Node{}, false
	}

	claimType := first(r.ClaimType, r.Claim.Claim)
	stars := r.Stars.ptr()
	if stars == nil {
		stars = r.Claim.Stars.ptr()
	}
	confidence := r.Confidence.ptr()
	if confidence == nil {
		confidence = r.Claim.Confidence.ptr()
	}
	// A bare star rating is a rating claim.
	if claimType == "" && stars != nil {
		claimType = "rated"
	}

	thumbnail := stripQuery(r.Thumbnail)
	return graph.Node{
		ID:         id,
		Label:      Label(r.DisplayName, r.Name, uri, id),
		URI:        uri,
		EntityType: graph.ParseEntityType(first(r.EntityType, r.EntType)),
		Image:      first(stripQuery(r.Image), thumbnail),
		Thumbnail:  thumbnail,
		ClaimType:  claimType,
		Stars:      stars,
		Confidence: confidence,
		Raw:        r.raw,
	}, true
}

func embeddedID(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var probe struct {
		ID      flexString `json:"id"`
		NodeURI string     `json:"nodeUri"`
		URI     string     `json:"uri"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return first(string(probe.ID), probe.NodeURI, probe.URI)
}

func edgeID(id, source, relation, target string) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("%s-%s-%s", source, relation, target)
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}
