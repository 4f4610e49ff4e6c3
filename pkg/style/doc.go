// Package style resolves the visual attributes of claim-graph nodes and edges.
//
// Styling is a pure function of a node's or edge's semantic fields and an
// immutable [Theme]. Nothing in this package holds mutable state, so the
// same input always yields the same [NodeStyle] or [EdgeStyle], and a theme
// can be swapped per view or per test.
//
// # Node Colour Precedence
//
// The first matching rule wins:
//
//  1. Rating: claim type "rated" with stars set. A five-bucket red-to-green
//     gradient indexed by floor(stars), clamped to [0, 4].
//  2. Impact claim: a CLAIM whose claim type or label mentions "impact".
//  3. Any other CLAIM: the claim accent.
//  4. PERSON: the person accent.
//  5. Otherwise the entity colour table keyed by lowercased entity type,
//     falling back to the neutral colour.
//
// # Edge Styles
//
// Edge styles come from a table keyed by relation. A theme must carry a
// "default" entry, which [NewResolver] enforces, so resolution never fails.
package style
