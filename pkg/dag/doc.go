// Package dag provides the layered directed graph used by the hierarchical
// claim-graph layout.
//
// # Overview
//
// The hierarchical layout follows the Sugiyama scheme: break cycles, assign
// every node to a row (rank), replace edges spanning several rows with chains
// of virtual nodes, then order each row to reduce crossings. This package
// holds the graph that those steps operate on; the steps themselves live in
// the transform subpackage.
//
// Claim graphs are not acyclic in general (two people vouching for each other
// is common), so a [DAG] accepts any directed graph and only [DAG.Validate]
// insists on acyclicity and consecutive rows.
//
// # Determinism
//
// Every query that returns several nodes does so in insertion order, never in
// map order. Callers that insert nodes in a stable order (the layout package
// sorts ids first) get identical results on every run.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "alice"})
//	g.AddNode(dag.Node{ID: "bob"})
//	g.AddEdge(dag.Edge{From: "alice", To: "bob", ID: "e1"})
//
// # Node Kinds
//
//   - [NodeKindRegular]: a node of the claim graph
//   - [NodeKindVirtual]: a bend point inserted by subdivision; it carries the
//     id of the edge it belongs to in [Node.EdgeID]
//
// # Crossings
//
// [CountCrossings] and [CountLayerCrossings] count edge crossings between
// adjacent rows in O(E log V) using a Fenwick tree, which the ordering step
// uses to keep the best sweep.
package dag
