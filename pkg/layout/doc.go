// Package layout assigns 2D positions to claim-graph nodes.
//
// Two interchangeable strategies implement [Strategy]:
//
//   - [Hierarchical] is a deterministic layered (Sugiyama) layout built on
//     [github.com/matzehuels/claimgraph/pkg/dag]. Identical input always
//     yields identical coordinates regardless of the order nodes arrive in.
//   - [Concentric] hands the topology to a renderer-owned [Engine] (Graphviz
//     twopi, circo or neato in practice) and only fixes up what the engine
//     leaves out. With no engine it places nodes on concentric rings by
//     degree.
//
// Both return one [Placed] per distinct input node id, in input order. An
// empty graph lays out to an empty slice without error, and nodes without
// edges still get finite coordinates.
//
// Positions are top-left corners: the layout computes a center and
// subtracts half the node's width and height.
//
// Select a strategy by name with [Parse] and [New]:
//
//	kind, err := layout.Parse("dagre") // KindHierarchical
//	s, err := layout.New(kind, layout.Options{})
//	placed, err := s.Layout(ctx, nodes, edges, layout.DirectionTB)
package layout
