// Package normalize converts claim API payloads into canonical graph fragments.
//
// Upstream endpoints return graph data in three shapes:
//
//   - Flat: {"nodes": [...], "edges": [...]}
//   - Node list: [{"id": 1, "edgesFrom": [...], "edgesTo": [...]}, ...]
//   - Single node: {"id": 1, "edgesFrom": [...], "edgesTo": [...]}
//
// [Normalize] detects the shape once, at the boundary, and reduces every
// shape to the same [graph.Fragment]. Describing the same logical graph in
// any of the three shapes yields the same node ids, edge ids and labels.
//
// # Labels
//
// Every node leaves the normalizer with a non-empty label. The fallback
// chain is displayName, name, the subject URI, the last segment of the id,
// and finally "Unknown". See [Label] for the URI rules.
//
// # Deduplication
//
// The first record seen for a node id wins. Embedded neighbour nodes repeated
// across edges never overwrite an entry already collected. Edges with the same
// id are likewise kept once.
//
// # Dangling Edges
//
// An edge whose source or target id cannot be read is dropped silently;
// [Result.Skipped] reports how many. An edge may name a node that is not in
// the payload, typically the node a neighbour page was requested for. Such
// edges are kept and left to the graph store, which drops and logs those
// whose endpoint is still unknown after the merge.
package normalize
