package transform

import (
	"maps"
	"slices"

	"github.com/matzehuels/claimgraph/pkg/dag"
)

// DefaultPasses is the number of sweeps [Barycentric] runs when Passes is zero.
const DefaultPasses = 8

// Orderer arranges the nodes of each row left to right.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// Barycentric is the classic Sugiyama barycenter heuristic. Each pass sorts
// every row by the mean position of its neighbours in the previous row,
// alternating top-down and bottom-up. The ordering with the fewest crossings
// seen so far is returned; the initial order (insertion order) counts as a
// candidate, so the result is never worse than the input.
type Barycentric struct {
	Passes int
}

// OrderRows implements [Orderer].
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	rows := g.RowIDs()
	orders := make(map[int][]string, len(rows))
	for _, r := range rows {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	if len(rows) < 2 {
		return orders
	}

	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	best := cloneOrders(orders)
	bestScore := dag.CountCrossings(g, orders)

	for pass := 0; pass < passes && bestScore > 0; pass++ {
		if pass%2 == 0 {
			for i := 1; i < len(rows); i++ {
				orders[rows[i]] = sortByBarycenter(orders[rows[i]], orders[rows[i-1]], g.Parents)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				orders[rows[i]] = sortByBarycenter(orders[rows[i]], orders[rows[i+1]], g.Children)
			}
		}
		if score := dag.CountCrossings(g, orders); score < bestScore {
			best, bestScore = cloneOrders(orders), score
		}
	}
	return best
}

// sortByBarycenter orders row by the mean position of each node's
// neighbours in fixed. Nodes with no neighbours keep their current index as
// their weight. The sort is stable.
func sortByBarycenter(row, fixed []string, neighbours func(string) []string) []string {
	pos := dag.PosMap(fixed)
	weight := make(map[string]float64, len(row))
	for i, id := range row {
		sum, n := 0.0, 0
		for _, nb := range neighbours(id) {
			if p, ok := pos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			weight[id] = float64(i)
			continue
		}
		weight[id] = sum / float64(n)
	}

	out := slices.Clone(row)
	slices.SortStableFunc(out, func(a, b string) int {
		switch wa, wb := weight[a], weight[b]; {
		case wa < wb:
			return -1
		case wa > wb:
			return 1
		}
		return 0
	})
	return out
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := maps.Clone(orders)
	for r, ids := range out {
		out[r] = slices.Clone(ids)
	}
	return out
}
