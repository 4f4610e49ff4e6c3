package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/normalize"
)

// maxFileBytes bounds what ReadJSON will read.
const maxFileBytes = 64 << 20

// ReadJSON decodes a graph payload from r.
//
// Any payload shape accepted by [normalize.Normalize] is allowed, so a raw
// API response saved to disk imports as well as a file written by
// [WriteJSON]. Edges whose endpoints are missing are dropped, as they are
// for live responses.
func ReadJSON(r io.Reader) (graph.Fragment, error) {
	data, err := readAll(r)
	if err != nil {
		return graph.Fragment{}, err
	}
	return normalize.Normalize(data)
}

// ImportJSON reads the JSON file at path and returns the decoded graph.
func ImportJSON(path string) (graph.Fragment, error) {
	data, err := readFile(path)
	if err != nil {
		return graph.Fragment{}, err
	}
	f, err := normalize.Normalize(data)
	if err != nil {
		return graph.Fragment{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	data, err := readAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) > maxFileBytes {
		return nil, fmt.Errorf("graph file exceeds %d bytes", maxFileBytes)
	}
	return data, nil
}
