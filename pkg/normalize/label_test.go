package normalize

import "testing"

func TestLabel(t *testing.T) {
	tests := []struct {
		name                     string
		displayName, nm, uri, id string
		want                     string
	}{
		{"display name wins", "Dr. Alice", "alice", "https://example.com/alice", "1", "Dr. Alice"},
		{"name", "", "Alice", "https://example.com/alice", "1", "Alice"},
		{"uri path segment", "", "", "https://example.com/bob", "2", "Bob"},
		{"uri trailing slash", "", "", "https://example.com/people/carol/", "3", "Carol"},
		{"uri host only", "", "", "https://www.farmraiser.com", "455", "www.farmraiser.com"},
		{"uri root path", "", "", "http://bcorporation.net/", "417", "bcorporation.net"},
		{"uri percent encoded", "", "", "https://example.com/d%C3%A9j%C3%A0", "4", "Déjà"},
		{"opaque did", "", "", "did:web:example.com", "5", "example.com"},
		{"unparseable uri falls through", "", "", "http://[::1", "claims/42", "42"},
		{"relative uri falls through", "", "", "just-text", "7", "7"},
		{"scraper error name", "", "Not Acceptable!", "https://example.com/eve", "8", "Eve"},
		{"scraper error without uri", "", "Not Acceptable", "", "9", "9"},
		{"whitespace name", "", "   ", "", "10", "10"},
		{"id path", "", "", "", "nodes/abc/", "abc"},
		{"nothing", "", "", "", "", UnknownLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Label(tt.displayName, tt.nm, tt.uri, tt.id)
			if got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
			if got == "" {
				t.Error("Label() must never be empty")
			}
		})
	}
}

func TestStripQuery(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://img.example.com/a.png?Signature=xyz&Expires=1", "https://img.example.com/a.png"},
		{"https://img.example.com/a.png", "https://img.example.com/a.png"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripQuery(tt.in); got != tt.want {
			t.Errorf("stripQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
