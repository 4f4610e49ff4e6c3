package graph

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		in   string
		want EntityType
	}{
		{"person", EntityPerson},
		{"PERSON", EntityPerson},
		{" Organization ", EntityOrganization},
		{"claim", EntityClaim},
		{"", EntityUnknown},
		{"spaceship", EntityType("SPACESHIP")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseEntityType(tt.in); got != tt.want {
				t.Errorf("ParseEntityType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEntityTypeKey(t *testing.T) {
	if got := EntityOrganization.Key(); got != "organization" {
		t.Errorf("Key() = %q, want organization", got)
	}
}

func TestFragmentRestrict(t *testing.T) {
	f := Fragment{
		Nodes: []Node{{ID: "1"}, {ID: "2"}, {ID: "3"}},
		Edges: []Edge{
			{ID: "a", Source: "1", Target: "2"},
			{ID: "b", Source: "2", Target: "3"},
			{ID: "c", Source: "0", Target: "1"},
		},
	}

	got := f.Restrict(func(n Node) bool { return n.ID != "3" })
	if len(got.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(got.Nodes))
	}
	var ids []string
	for _, e := range got.Edges {
		ids = append(ids, e.ID)
	}
	if strings.Join(ids, ",") != "a,c" {
		t.Errorf("edges = %v, want [a c]", ids)
	}
	if len(f.Nodes) != 3 {
		t.Error("Restrict must not modify the receiver")
	}
}

func TestFragmentMarshalEmpty(t *testing.T) {
	data, err := json.Marshal(Fragment{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"nodes":[],"edges":[]}` {
		t.Errorf("Marshal(Fragment{}) = %s", data)
	}
}

func TestNodeJSONOmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(Node{ID: "1", Label: "Alice", EntityType: EntityPerson})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"1","label":"Alice","entityType":"PERSON"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}
