// Package io provides JSON import and export for claim graphs.
//
// # Overview
//
// Graphs are written in the flat wire shape served by the claim API:
//
//	{
//	  "nodes": [
//	    {"id": "1", "name": "Alice", "entType": "PERSON"},
//	    {"id": "2", "name": "Acme", "entType": "ORGANIZATION"}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source": "1", "target": "2", "label": "works_for"}
//	  ]
//	}
//
// so an exported graph reads back through the same normalization as a live
// response. [ReadJSON] accepts every payload shape the normalizer accepts,
// not only the flat one.
//
// # Offline exploration
//
// [FileSource] serves a saved graph as a [fetch.Source]. The initial load
// returns the whole file and each expansion returns the edges incident to
// the expanded node, a page at a time, so an exported exploration can be
// re-explored without network access.
//
// [fetch.Source]: github.com/matzehuels/claimgraph/pkg/fetch.Source
package io
