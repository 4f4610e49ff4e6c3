package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// =============================================================================
// Wire Types
// =============================================================================

// RawNode is a node record as returned by the claim API.
type RawNode struct {
	ID          flexString      `json:"id"`
	NodeURI     string          `json:"nodeUri"`
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	EntityType  string          `json:"entityType"`
	EntType     string          `json:"entType"`
	Image       string          `json:"image"`
	Thumbnail   string          `json:"thumbnail"`
	Stars       flexFloat       `json:"stars"`
	Confidence  flexFloat       `json:"confidence"`
	ClaimType   string          `json:"claimType"`
	Claim       rawClaim        `json:"claim"`
	EdgesFrom   []RawEmbedded   `json:"edgesFrom"`
	EdgesTo     []RawEmbedded   `json:"edgesTo"`
	raw         json.RawMessage `json:"-"`
}

// RawEmbedded is an edge record embedded in a node's edgesFrom or edgesTo
// list. It carries its neighbouring node inline.
type RawEmbedded struct {
	ID          flexString      `json:"id"`
	ClaimID     flexString      `json:"claimId"`
	StartNodeID flexString      `json:"startNodeId"`
	EndNodeID   flexString      `json:"endNodeId"`
	Label       string          `json:"label"`
	Claim       rawClaim        `json:"claim"`
	StartNode   json.RawMessage `json:"startNode"`
	EndNode     json.RawMessage `json:"endNode"`
	raw         json.RawMessage `json:"-"`
}

// RawEdge is an edge record of the flat {nodes, edges} shape.
type RawEdge struct {
	ID          flexString      `json:"id"`
	Source      flexString      `json:"source"`
	Target      flexString      `json:"target"`
	StartNodeID flexString      `json:"startNodeId"`
	EndNodeID   flexString      `json:"endNodeId"`
	Label       string          `json:"label"`
	Relation    string          `json:"relation"`
	ClaimID     flexString      `json:"claimId"`
	raw         json.RawMessage `json:"-"`
}

func (n *RawNode) UnmarshalJSON(data []byte) error {
	type alias RawNode
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = RawNode(a)
	n.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (e *RawEmbedded) UnmarshalJSON(data []byte) error {
	type alias RawEmbedded
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = RawEmbedded(a)
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (e *RawEdge) UnmarshalJSON(data []byte) error {
	type alias RawEdge
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = RawEdge(a)
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

// =============================================================================
// Tolerant Scalars
// =============================================================================

// flexString accepts a JSON string or number. Null leaves it empty.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

// flexFloat accepts a JSON number or a numeric string. Null or an
// unparseable string leaves it unset.
type flexFloat struct {
	set bool
	v   float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = flexFloat{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = flexFloat{set: true, v: v}
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat{set: true, v: v}
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.v
	return &v
}

// rawClaim is the claim attached to a node or embedded edge. The API sends
// either the claim verb as a string or a claim object.
type rawClaim struct {
	Claim      string    `json:"claim"`
	Stars      flexFloat `json:"stars"`
	Confidence flexFloat `json:"confidence"`
}

func (c *rawClaim) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = rawClaim{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &c.Claim)
	}
	type alias rawClaim
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = rawClaim(a)
	return nil
}
