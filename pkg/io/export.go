package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/claimgraph/pkg/graph"
)

type wireGraph struct {
	Nodes []wireNode `json:"nodes"`
	Edges []wireEdge `json:"edges"`
}

type wireNode struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri,omitempty"`
	EntType    string   `json:"entType,omitempty"`
	Image      string   `json:"image,omitempty"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	ClaimType  string   `json:"claimType,omitempty"`
	Stars      *float64 `json:"stars,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type wireEdge struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Target  string `json:"target"`
	Label   string `json:"label"`
	ClaimID string `json:"claimId,omitempty"`
}

func toWire(f graph.Fragment) wireGraph {
	out := wireGraph{
		Nodes: make([]wireNode, len(f.Nodes)),
		Edges: make([]wireEdge, len(f.Edges)),
	}
	for i, n := range f.Nodes {
		out.Nodes[i] = wireNode{
			ID:         n.ID,
			Name:       n.Label,
			URI:        n.URI,
			EntType:    string(n.EntityType),
			Image:      n.Image,
			Thumbnail:  n.Thumbnail,
			ClaimType:  n.ClaimType,
			Stars:      n.Stars,
			Confidence: n.Confidence,
		}
	}
	for i, e := range f.Edges {
		out.Edges[i] = wireEdge{ID: e.ID, Source: e.Source, Target: e.Target, Label: e.Relation, ClaimID: e.ClaimID}
	}
	return out
}

// WriteJSON encodes f in the flat wire shape and writes it to w.
// The output can be re-imported with [ReadJSON] or served by [FileSource].
func WriteJSON(f graph.Fragment, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toWire(f)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes f to a JSON file at path.
func ExportJSON(f graph.Fragment, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
