// Package explore grows a claim graph on demand.
//
// A [View] owns one graph for one viewer. It ties together the pieces that
// make up an exploration session:
//
//   - a [store.State] holding the merged nodes, edges and per-node pages
//   - a [Controller] that fetches the next page of a node's neighbours,
//     normalizes it and merges it
//   - a [layout.Strategy] re-run over the whole graph after every merge
//   - a [Machine] translating gestures into effects
//
// # Expansion
//
// Each node moves through three states: collapsed (page 0), expanding
// (fetch in flight) and expanded at page n. A failed fetch leaves the page
// and the store untouched so a retry asks for the same page again. A node
// never has two fetches in flight; the second call returns
// [ErrExpansionInFlight].
//
// Fetches run without holding any lock. Completions are merged in the
// order they arrive; merges are idempotent, so two different nodes may
// expand concurrently. Once a view is closed, completions are discarded.
//
// # Gestures
//
// Left-clicking a node or edge selects it and opens its detail; right-click
// expands a node without touching the selection; Escape closes an open
// detail; clicking the background clears everything. The [Machine] holds no
// graph data; [View.Dispatch] applies the effects it returns.
package explore
