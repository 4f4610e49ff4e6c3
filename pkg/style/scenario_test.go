package style_test

import (
	"testing"

	"github.com/matzehuels/claimgraph/pkg/normalize"
	"github.com/matzehuels/claimgraph/pkg/style"
)

func TestRatedNeighbourScenario(t *testing.T) {
	payload := []byte(`{
		"nodes": [
			{"id": "1", "name": "Alice", "entType": "PERSON"},
			{"id": "2", "name": "", "uri": "https://example.com/bob", "stars": 4}
		],
		"edges": [{"id": "e1", "source": "1", "target": "2", "label": "rated"}]
	}`)

	f, err := normalize.Normalize(payload)
	if err != nil {
		t.Fatal(err)
	}
	r := style.Default()
	theme := style.DefaultTheme()

	bob := f.Nodes[1]
	if bob.Label != "Bob" {
		t.Errorf("label = %q, want Bob", bob.Label)
	}
	if got := r.ResolveNode(bob).Color; got != theme.RatingGradient[4] {
		t.Errorf("color = %v, want 4-star bucket %v", got, theme.RatingGradient[4])
	}
	if got := r.ResolveEdge(f.Edges[0]); got != theme.Edges["rated"] {
		t.Errorf("edge style = %+v, want rated entry", got)
	}
}
