// Package store holds the graph state of one exploration view.
//
// A [State] accumulates normalized fragments through [State.Merge]. Merging
// is additive and idempotent: nodes and edges are keyed by id, a second
// record for an existing id never replaces the first, and merging the same
// fragment twice leaves the state unchanged.
//
// Published node and edge values are never modified. Renderers may keep the
// pointers returned by [State.Node] and compare them across merges to detect
// what changed. The [FillMissing] policy upgrades sparse records by storing a
// new value under the same id, leaving the old pointer untouched.
//
// Edges whose endpoints are neither in the state nor in the merged batch are
// dropped and logged at warn level. This is a recoverable condition.
//
// The state also records the expansion page of each node, which only moves
// forward.
//
// A State is not safe for concurrent use. The explore package serializes
// access per view.
package store
