package normalize_test

import (
	"fmt"

	"github.com/matzehuels/claimgraph/pkg/normalize"
)

func ExampleNormalize() {
	payload := []byte(`{
		"id": 1,
		"name": "Alice",
		"entType": "PERSON",
		"edgesFrom": [{
			"id": 7, "startNodeId": 1, "endNodeId": 2, "label": "is_vouched_for",
			"endNode": {"id": 2, "nodeUri": "https://example.com/bob"}
		}]
	}`)

	f, err := normalize.Normalize(payload)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, n := range f.Nodes {
		fmt.Printf("%s %s %s\n", n.ID, n.Label, n.EntityType)
	}
	for _, e := range f.Edges {
		fmt.Printf("%s: %s -%s-> %s\n", e.ID, e.Source, e.Relation, e.Target)
	}
	// Output:
	// 1 Alice PERSON
	// 2 Bob UNKNOWN
	// 7: 1 -is_vouched_for-> 2
}

func ExampleLabel() {
	fmt.Println(normalize.Label("", "", "https://www.farmraiser.com", "455"))
	fmt.Println(normalize.Label("", "", "not a uri", "claims/42"))
	fmt.Println(normalize.Label("", "", "", ""))
	// Output:
	// www.farmraiser.com
	// 42
	// Unknown
}
