package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/layout"
)

func testTopology() layout.Topology {
	return layout.Topology{
		Nodes:      []layout.RankedNode{{ID: "hub", Degree: 2}, {ID: "a b", Degree: 1}, {ID: "c", Degree: 1}},
		Edges:      [][2]string{{"hub", "a b"}, {"hub", "c"}},
		NodeWidth:  72,
		NodeHeight: 36,
		Padding:    144,
	}
}

func TestTopologyDOT(t *testing.T) {
	src, alias := TopologyDOT(testTopology())

	if alias["n0"] != "hub" || alias["n1"] != "a b" || alias["n2"] != "c" {
		t.Errorf("alias = %v", alias)
	}
	for _, want := range []string{
		`root="n0"`,
		"width=1, height=0.5",
		"ranksep=2",
		"n0 -- n1;",
		"n0 -- n2;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("TopologyDOT() missing %q\n%s", want, src)
		}
	}
}

func TestParsePositions(t *testing.T) {
	out := []byte(`graph G {
	graph [bb="0,0,300,200", root=n0];
	node [fixedsize=true, label="", shape=box];
	n0	[height=0.5, pos="150,100", width=1];
	n1	[height=0.5,
		pos="27,-18.5", width=1];
	n2	[height=0.5, width=1];
	n0 -- n1	[pos="150,100 80,50"];
}
`)
	got := ParsePositions(out)

	want := map[string]graph.Point{
		"n0": {X: 150, Y: -100},
		"n1": {X: 27, Y: 18.5},
	}
	if len(got) != len(want) {
		t.Fatalf("ParsePositions() = %v, want %v", got, want)
	}
	for id, p := range want {
		if got[id] != p {
			t.Errorf("ParsePositions()[%s] = %v, want %v", id, got[id], p)
		}
	}
}

func TestProgramFor(t *testing.T) {
	if ProgramFor(layout.KindForce) != ProgramNeato {
		t.Error("force should use neato")
	}
	if ProgramFor(layout.KindConcentric) != ProgramTwopi {
		t.Error("concentric should use twopi")
	}
}

func TestGraphvizPlace(t *testing.T) {
	if testing.Short() {
		t.Skip("runs graphviz")
	}
	e := NewGraphviz(ProgramTwopi)

	got, err := e.Place(context.Background(), testTopology())
	if err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	for _, id := range []string{"hub", "a b", "c"} {
		if _, ok := got[id]; !ok {
			t.Errorf("Place() missing %q: %v", id, got)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("runs graphviz")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(testDiagram(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "Alice") {
		t.Errorf("RenderSVG() output missing content: %.200s", svg)
	}
}
