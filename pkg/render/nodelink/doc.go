// Package nodelink draws claim graphs as node-link diagrams with Graphviz.
//
// # Overview
//
// The package has two roles:
//
//   - Rendering: [ToDOT] turns a laid-out, styled [Diagram] into DOT source
//     with every node pinned at its computed position, and [RenderSVG]
//     renders DOT in-process.
//   - Placement: [Graphviz] implements [layout.Engine] by running twopi,
//     circo or neato on the topology the concentric strategy supplies and
//     reading back node centers.
//
// # Usage
//
//	dot := nodelink.ToDOT(diagram, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// As a layout engine:
//
//	strategy := layout.Concentric{Engine: nodelink.NewGraphviz(nodelink.ProgramTwopi)}
//
// # Coordinates
//
// Layout space has Y growing downward; Graphviz has Y growing upward. Both
// directions of conversion flip the sign of Y.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], a WebAssembly build of
// Graphviz, so no system installation is needed.
package nodelink
