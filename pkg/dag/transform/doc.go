// Package transform prepares a claim graph for hierarchical layout.
//
// # Overview
//
// The steps run in a fixed order, each modifying the [dag.DAG] in place:
//
//  1. [BreakCycles] reverses back edges so the graph becomes acyclic
//  2. [AssignLayers] puts every node on a row by longest path from a source
//  3. [Subdivide] replaces edges spanning several rows with chains of
//     virtual nodes so every edge joins consecutive rows
//  4. an [Orderer] such as [Barycentric] arranges each row left to right
//
// # Cycle Breaking
//
// Claim graphs routinely contain mutual endorsements. Unlike a dependency
// tower, the layout must still draw every edge, so back edges are reversed
// rather than removed. A reversed edge keeps its id and is flagged with
// [dag.Edge.Reversed]; the layout flips its bend points back afterwards.
//
// # Determinism
//
// Every step walks nodes in insertion order and breaks ties by that order,
// so the same input graph always yields the same rows and orderings.
//
// # Usage
//
//	transform.BreakCycles(g)
//	transform.AssignLayers(g)
//	transform.Subdivide(g)
//	orders := transform.Barycentric{Passes: 8}.OrderRows(g)
package transform
