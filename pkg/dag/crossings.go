package dag

import (
	"maps"
	"slices"
)

// CountCrossings returns the total number of crossings for the given row
// orders, summed over each pair of consecutive rows present in orders.
func CountCrossings(g *DAG, orders map[int][]string) int {
	rows := slices.Sorted(maps.Keys(orders))
	total := 0
	for i := 0; i+1 < len(rows); i++ {
		if rows[i+1] != rows[i]+1 {
			continue
		}
		total += CountLayerCrossings(g, orders[rows[i]], orders[rows[i+1]])
	}
	return total
}

// CountLayerCrossings counts crossings between edges from upper to lower.
//
// Edges (u1,v1) and (u2,v2) cross when pos(u1) < pos(u2) and pos(v1) > pos(v2).
// Sorting edges by upper position turns this into counting inversions of the
// lower positions, done with a Fenwick tree in O(E log V).
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	lowerPos := PosMap(lower)

	type span struct{ u, l int }
	spans := make([]span, 0, len(upper))
	for i, id := range upper {
		for _, child := range g.Children(id) {
			if p, ok := lowerPos[child]; ok {
				spans = append(spans, span{i, p})
			}
		}
	}
	if len(spans) < 2 {
		return 0
	}
	slices.SortFunc(spans, func(a, b span) int {
		if a.u != b.u {
			return a.u - b.u
		}
		return a.l - b.l
	})

	tree := make([]int, len(lower)+1)
	crossings, seen := 0, 0
	for _, s := range spans {
		atMost := 0
		for i := s.l + 1; i > 0; i -= i & -i {
			atMost += tree[i]
		}
		crossings += seen - atMost
		seen++
		for i := s.l + 1; i < len(tree); i += i & -i {
			tree[i]++
		}
	}
	return crossings
}
