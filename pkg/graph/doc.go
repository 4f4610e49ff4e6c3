// Package graph defines the canonical claim-graph model shared by every
// engine component.
//
// Upstream claim APIs return nodes and edges in several shapes. The
// normalize package reduces all of them to a [Fragment] of [Node] and [Edge]
// values defined here, the store package accumulates fragments into a view,
// and the layout and style packages annotate snapshots of that view.
//
// # Core Types
//
//   - [Node]: an entity or claim with a display label that is never empty
//   - [Edge]: a directed, labelled relation between two node ids
//   - [EntityType]: the closed set of entity categories, upper-cased
//   - [Fragment]: a normalized batch of nodes and edges
//   - [Point]: a 2D coordinate produced by a layout strategy
//
// # Visual Fields
//
// Nodes and edges carry no colour, shape or width. Visual attributes are a
// pure function of entity type, claim type, stars and relation, resolved by
// the style package whenever a snapshot is rendered.
//
// # Serialization
//
// Fragments marshal to the same flat node-link JSON that the upstream
// `/api/graph` endpoints return:
//
//	{
//	  "nodes": [{"id": "1", "label": "Alice", "entityType": "PERSON"}],
//	  "edges": [{"id": "e1", "source": "1", "target": "2", "relation": "rated"}]
//	}
package graph
