package io

import (
	"context"
	"encoding/json"
	"sync"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/normalize"
)

// FileSource serves a saved graph file as a fetch.Source.
//
// The root argument of Graph and ClaimGraph is ignored: the file is the
// whole universe. Neighbors and ExpandClaim page through the edges
// incident to the node, in file order.
type FileSource struct {
	path string

	once  sync.Once
	raw   []byte
	frag  graph.Fragment
	nodes map[string]graph.Node
	err   error
}

// NewFileSource returns a source reading path on first use.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) load() error {
	s.once.Do(func() {
		s.raw, s.err = readFile(s.path)
		if s.err != nil {
			return
		}
		s.frag, s.err = normalize.Normalize(s.raw)
		s.nodes = make(map[string]graph.Node, len(s.frag.Nodes))
		for _, n := range s.frag.Nodes {
			s.nodes[n.ID] = n
		}
	})
	return s.err
}

// Graph returns the file contents.
func (s *FileSource) Graph(ctx context.Context, _ string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.raw, nil
}

// ClaimGraph returns the file contents.
func (s *FileSource) ClaimGraph(ctx context.Context, claimID string) ([]byte, error) {
	return s.Graph(ctx, claimID)
}

// Neighbors returns page of the edges incident to nodeID with their
// endpoints. Pages are 1-based; a limit of zero or less returns all edges
// on page 1.
func (s *FileSource) Neighbors(ctx context.Context, nodeID string, page, limit int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	if _, ok := s.nodes[nodeID]; !ok {
		return nil, errs.New(errs.ErrCodeNodeNotFound, "node %s is not in %s", nodeID, s.path)
	}

	var incident []graph.Edge
	for _, e := range s.frag.Edges {
		if e.Source == nodeID || e.Target == nodeID {
			incident = append(incident, e)
		}
	}
	incident = pageOf(incident, page, limit)

	out := graph.Fragment{Nodes: []graph.Node{s.nodes[nodeID]}, Edges: incident}
	seen := map[string]bool{nodeID: true}
	for _, e := range incident {
		for _, id := range []string{e.Source, e.Target} {
			if !seen[id] {
				seen[id] = true
				out.Nodes = append(out.Nodes, s.nodes[id])
			}
		}
	}
	return json.Marshal(toWire(out))
}

// ExpandClaim is Neighbors for claim nodes.
func (s *FileSource) ExpandClaim(ctx context.Context, claimID string, page, limit int) ([]byte, error) {
	return s.Neighbors(ctx, claimID, page, limit)
}

func pageOf[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		if page <= 1 {
			return items
		}
		return nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := min(start+limit, len(items))
	return items[start:end]
}
