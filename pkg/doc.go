// Package pkg provides the core libraries for claimgraph, an engine that
// builds claim graphs from a claim API and grows them interactively.
//
// # Overview
//
// A claim graph links people, organizations and other entities through
// claims (ratings, endorsements, validations) and the impacts those claims
// record. Exploration starts from one root, either an entity URI or a claim
// id, and grows one page of neighbours at a time when the user expands a
// node. The pkg directory is organized into four areas:
//
//  1. Data: [graph], [normalize] and [store]
//  2. Exploration: [explore] and [fetch]
//  3. Presentation: [layout], [dag], [style] and [render/nodelink]
//  4. Plumbing: [pipeline], [io], [cache], [config], [errors], [observability]
//
// # Architecture
//
// The typical data flow through claimgraph:
//
//	Claim API (or a saved graph file)
//	         ↓
//	    [fetch] package (HTTP, retries, rate limit, cache)
//	         ↓
//	    [normalize] package (wire shapes → nodes and edges)
//	         ↓
//	    [store] package (additive, idempotent merge)
//	         ↓
//	    [explore] package (load, expand, interaction, notices)
//	         ↓
//	    [layout] + [style] packages (positions and appearance)
//	         ↓
//	    DOT/SVG/JSON output, or a live scene over HTTP
//
// # Quick Start
//
// Open a view, expand a node and take a laid-out snapshot:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/claimgraph/pkg/explore"
//	    "github.com/matzehuels/claimgraph/pkg/fetch"
//	)
//
//	// 1. Connect to the claim API
//	client, _ := fetch.NewClient("https://claims.example.com/api")
//
//	// 2. Load the graph around an entity
//	view, _ := explore.Open(ctx, client, "https://example.com/people/alice", explore.ViewOptions{
//	    Options: explore.DefaultOptions(),
//	})
//	defer view.Close()
//
//	// 3. Right-click a node to load its neighbours
//	view.Dispatch(ctx, explore.Event{Kind: explore.RightClickNode, Target: "42"})
//
//	// 4. Lay out and style the current graph
//	scene, _ := view.Snapshot(ctx)
//
// # Main Packages
//
// ## Data
//
// [graph] - Nodes, edges and fragments. Entity types, claim metadata and the
// raw payload of every record.
//
// [normalize] - Converts the API's payload shapes (flat node and edge lists,
// node lists, single nodes) into fragments, deriving labels and edge ids.
//
// [store] - The accumulated graph of one view. Merges never replace a
// published record; the fill-missing policy upgrades sparse ones.
//
// ## Exploration
//
// [explore] - The controller that loads roots and expands nodes under size
// limits, the interaction machine that maps gestures to effects, and the
// view that ties both to layout and subscriptions.
//
// [fetch] - HTTP client for the claim API with timeouts, exponential backoff,
// rate limiting and response caching.
//
// ## Presentation
//
// [layout] - Hierarchical, concentric and force strategies. Concentric and
// force placement can be delegated to Graphviz.
//
// [dag] - Layered graph and Sugiyama transforms behind the hierarchical
// layout: cycle breaking, layering, subdivision and crossing reduction.
//
// [style] - Theme-driven node and edge appearance by entity type, claim type
// and star rating.
//
// [render/nodelink] - DOT generation and SVG rendering through Graphviz.
//
// ## Plumbing
//
// [pipeline] - Load, expand, lay out and render in one call. Used by the CLI
// render and layout commands.
//
// [io] - The graph file format and a file-backed source for offline
// exploration.
//
// [cache] - Response caches: null, file, Redis and MongoDB.
//
// [config] - Defaults, TOML or YAML file and CLAIMGRAPH_* environment.
//
// [errors] - Coded errors with user-facing messages and HTTP status mapping.
//
// [observability] - Hooks for fetch, expansion, layout and cache events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/explore/...     # Specific package
//	go test -run Example          # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/graph
// [normalize]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/normalize
// [store]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/store
// [explore]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/explore
// [fetch]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/fetch
// [layout]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/layout
// [dag]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/dag
// [style]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/style
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/claimgraph/pkg/observability
package pkg
