package layout

import (
	"context"
	"errors"
	"math"
	"testing"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/graph"
)

func nodes(ids ...string) []graph.Node {
	out := make([]graph.Node, len(ids))
	for i, id := range ids {
		out[i] = graph.Node{ID: id, Label: id}
	}
	return out
}

func edge(src, dst string) graph.Edge {
	return graph.Edge{ID: src + "-" + dst, Source: src, Target: dst, Relation: "rated"}
}

func byID(placed []Placed) map[string]Placed {
	m := make(map[string]Placed, len(placed))
	for _, p := range placed {
		m[p.Node.ID] = p
	}
	return m
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"", KindHierarchical},
		{"hierarchical", KindHierarchical},
		{"dagre", KindHierarchical},
		{"Concentric", KindConcentric},
		{"circle", KindConcentric},
		{"force", KindForce},
		{" neato ", KindForce},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	_, err := Parse("spiral")
	if errs.GetCode(err) != errs.ErrCodeInvalidLayout {
		t.Errorf("Parse(spiral) code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidLayout)
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"": DirectionTB, "tb": DirectionTB, "LR": DirectionLR} {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDirection("BT"); err == nil {
		t.Error("ParseDirection(BT) expected error")
	}
}

func TestNew(t *testing.T) {
	for _, k := range Kinds() {
		s, err := New(k, Options{})
		if err != nil {
			t.Fatalf("New(%q) error: %v", k, err)
		}
		if s.Name() != string(k) {
			t.Errorf("New(%q).Name() = %q", k, s.Name())
		}
	}
	if _, err := New("bogus", Options{}); err == nil {
		t.Error("New(bogus) expected error")
	}
}

func TestStrategies_EmptyAndIsolated(t *testing.T) {
	ctx := context.Background()
	for _, k := range Kinds() {
		s, _ := New(k, Options{})
		t.Run(string(k), func(t *testing.T) {
			placed, err := s.Layout(ctx, nil, nil, DirectionTB)
			if err != nil {
				t.Fatalf("Layout(empty) error: %v", err)
			}
			if len(placed) != 0 {
				t.Errorf("Layout(empty) = %d nodes, want 0", len(placed))
			}

			in := nodes("a", "b", "c", "d")
			placed, err = s.Layout(ctx, in, []graph.Edge{edge("a", "b"), edge("a", "ghost")}, DirectionTB)
			if err != nil {
				t.Fatalf("Layout() error: %v", err)
			}
			if len(placed) != len(in) {
				t.Fatalf("Layout() = %d nodes, want %d", len(placed), len(in))
			}
			for i, p := range placed {
				if p.Node.ID != in[i].ID {
					t.Errorf("placed[%d] = %q, want %q", i, p.Node.ID, in[i].ID)
				}
				if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
					t.Errorf("node %q has non-finite position (%v, %v)", p.Node.ID, p.X, p.Y)
				}
			}
		})
	}
}

func TestHierarchical_RankSpacing(t *testing.T) {
	h := DefaultHierarchical()
	placed, err := h.Layout(context.Background(), nodes("a", "b", "c"),
		[]graph.Edge{edge("a", "b"), edge("b", "c")}, DirectionTB)
	if err != nil {
		t.Fatal(err)
	}
	m := byID(placed)

	step := h.NodeHeight + h.RankSep
	if got := m["b"].Y - m["a"].Y; got != step {
		t.Errorf("rank gap a→b = %v, want %v", got, step)
	}
	if got := m["c"].Y - m["b"].Y; got != step {
		t.Errorf("rank gap b→c = %v, want %v", got, step)
	}
	if m["a"].X != m["b"].X {
		t.Errorf("chain should be vertical: a.X=%v b.X=%v", m["a"].X, m["b"].X)
	}
	if m["a"].X != h.MarginX || m["a"].Y != h.MarginY {
		t.Errorf("a = (%v, %v), want margins (%v, %v)", m["a"].X, m["a"].Y, h.MarginX, h.MarginY)
	}
	if m["a"].Width != DefaultNodeWidth || m["a"].Height != DefaultNodeHeight {
		t.Errorf("size = %vx%v", m["a"].Width, m["a"].Height)
	}
}

func TestHierarchical_NodeSepAndCentering(t *testing.T) {
	h := DefaultHierarchical()
	placed, _ := h.Layout(context.Background(), nodes("root", "x", "y"),
		[]graph.Edge{edge("root", "x"), edge("root", "y")}, DirectionTB)
	m := byID(placed)

	if got := math.Abs(m["y"].X - m["x"].X); got != h.NodeWidth+h.NodeSep {
		t.Errorf("sibling gap = %v, want %v", got, h.NodeWidth+h.NodeSep)
	}
	mid := (m["x"].X + m["y"].X) / 2
	if m["root"].X != mid {
		t.Errorf("root.X = %v, want centered %v", m["root"].X, mid)
	}
}

func TestHierarchical_LeftToRight(t *testing.T) {
	h := DefaultHierarchical()
	placed, _ := h.Layout(context.Background(), nodes("a", "b"), []graph.Edge{edge("a", "b")}, DirectionLR)
	m := byID(placed)

	if m["a"].Y != m["b"].Y {
		t.Errorf("LR chain should be horizontal: a.Y=%v b.Y=%v", m["a"].Y, m["b"].Y)
	}
	if m["b"].X <= m["a"].X {
		t.Errorf("b.X = %v should be right of a.X = %v", m["b"].X, m["a"].X)
	}
}

func TestHierarchical_DeterministicAcrossInputOrder(t *testing.T) {
	h := DefaultHierarchical()
	edges := []graph.Edge{edge("a", "b"), edge("b", "c"), edge("c", "a"), edge("a", "d"), edge("d", "e"), edge("b", "e")}

	first, err := h.Layout(context.Background(), nodes("a", "b", "c", "d", "e"), edges, DirectionTB)
	if err != nil {
		t.Fatal(err)
	}
	reversedEdges := make([]graph.Edge, len(edges))
	for i, e := range edges {
		reversedEdges[len(edges)-1-i] = e
	}
	second, err := h.Layout(context.Background(), nodes("e", "d", "c", "b", "a"), reversedEdges, DirectionTB)
	if err != nil {
		t.Fatal(err)
	}

	want, got := byID(first), byID(second)
	for id, p := range want {
		if got[id].X != p.X || got[id].Y != p.Y {
			t.Errorf("%s = (%v, %v), want (%v, %v)", id, got[id].X, got[id].Y, p.X, p.Y)
		}
	}
}

func TestHierarchical_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DefaultHierarchical().Layout(ctx, nodes("a"), nil, DirectionTB)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Layout() error = %v, want context.Canceled", err)
	}
}

type fakeEngine struct {
	got    Topology
	points map[string]graph.Point
	err    error
}

func (f *fakeEngine) Place(_ context.Context, t Topology) (map[string]graph.Point, error) {
	f.got = t
	return f.points, f.err
}

func TestConcentric_RanksByDegree(t *testing.T) {
	eng := &fakeEngine{points: map[string]graph.Point{}}
	c := Concentric{Engine: eng}

	_, err := c.Layout(context.Background(), nodes("leaf", "hub", "other"),
		[]graph.Edge{edge("hub", "leaf"), edge("hub", "other"), edge("hub", "leaf")}, DirectionTB)
	if err != nil {
		t.Fatal(err)
	}

	if eng.got.Root() != "hub" {
		t.Errorf("Root() = %q, want hub", eng.got.Root())
	}
	if len(eng.got.Edges) != 2 {
		t.Errorf("Edges = %v, want parallel edges collapsed to 2", eng.got.Edges)
	}
	if eng.got.Nodes[1].ID != "leaf" || eng.got.Nodes[2].ID != "other" {
		t.Errorf("ties should break by id: %v", eng.got.Nodes)
	}
}

func TestConcentric_FillsMissingCoordinates(t *testing.T) {
	eng := &fakeEngine{points: map[string]graph.Point{
		"a": {X: 0, Y: 0},
		"b": {X: math.NaN(), Y: 1},
	}}
	c := Concentric{Engine: eng, NodeWidth: 10, NodeHeight: 10}

	placed, err := c.Layout(context.Background(), nodes("a", "b", "c"), nil, DirectionTB)
	if err != nil {
		t.Fatal(err)
	}
	m := byID(placed)

	if m["a"].X != -5 || m["a"].Y != -5 {
		t.Errorf("a = (%v, %v), want engine position minus half size", m["a"].X, m["a"].Y)
	}
	for _, id := range []string{"b", "c"} {
		p := m[id].Center()
		if !finite(p) {
			t.Errorf("%s not filled: %+v", id, p)
		}
		if math.Hypot(p.X, p.Y) == 0 {
			t.Errorf("%s placed on top of a", id)
		}
	}
}

func TestConcentric_EngineError(t *testing.T) {
	c := Concentric{Engine: &fakeEngine{err: errors.New("boom")}}

	if _, err := c.Layout(context.Background(), nodes("a"), nil, DirectionTB); err == nil {
		t.Error("Layout() expected engine error")
	}
}

func TestConcentric_BuiltinRingsFit(t *testing.T) {
	c := Concentric{Fit: true, Padding: 20}
	placed, err := c.Layout(context.Background(), nodes("a", "b", "c", "d", "e", "f", "g", "h"), []graph.Edge{edge("a", "b")}, DirectionTB)
	if err != nil {
		t.Fatal(err)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	seen := map[graph.Point]string{}
	for _, p := range placed {
		minX, minY = min(minX, p.X), min(minY, p.Y)
		pt := graph.Point{X: math.Round(p.X), Y: math.Round(p.Y)}
		if other, dup := seen[pt]; dup {
			t.Errorf("%s and %s share position %v", p.Node.ID, other, pt)
		}
		seen[pt] = p.Node.ID
	}
	if math.Abs(minX-20) > 1e-9 || math.Abs(minY-20) > 1e-9 {
		t.Errorf("top-left = (%v, %v), want (20, 20)", minX, minY)
	}
}
