package normalize

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnknownLabel is the label of a node with no usable name, URI or id.
const UnknownLabel = "Unknown"

// scraperErrors are names produced when the upstream scraper hit an HTTP
// error page instead of the subject. They carry no information.
var scraperErrors = map[string]bool{
	"Not Acceptable":  true,
	"Not Acceptable!": true,
}

// Label derives the display label of a node. The first non-empty candidate
// wins:
//
//  1. displayName
//  2. name
//  3. the subject URI (see [uriLabel])
//  4. the last path segment of the id
//  5. [UnknownLabel]
//
// URI parse failures fall through to the next candidate.
func Label(displayName, name, uri, id string) string {
	if s := cleanName(displayName); s != "" {
		return s
	}
	if s := cleanName(name); s != "" {
		return s
	}
	if s := uriLabel(uri); s != "" {
		return s
	}
	if s := lastSegment(id); s != "" {
		return s
	}
	return UnknownLabel
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if scraperErrors[s] {
		return ""
	}
	return s
}

// uriLabel names a subject from its URI. A URI with a path is named by its
// last non-empty path segment with the first letter upper-cased, so
// "https://example.com/bob" becomes "Bob". A URI without a path is named by
// its hostname. Strings that are not absolute URIs yield "".
func uriLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return ""
	}
	if seg := lastSegment(u.EscapedPath()); seg != "" {
		return titleFirst(seg)
	}
	if host := u.Hostname(); host != "" {
		return host
	}
	// Opaque URIs such as did:web:example.com or urn:isbn:123.
	return lastOpaqueSegment(u.Opaque)
}

// lastSegment returns the last non-empty "/"-separated segment of s,
// percent-decoded when possible.
func lastSegment(s string) string {
	parts := strings.Split(strings.TrimSpace(s), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(parts[i])
		if seg == "" {
			continue
		}
		if dec, err := url.PathUnescape(seg); err == nil {
			seg = dec
		}
		if seg = strings.TrimSpace(seg); seg != "" {
			return seg
		}
	}
	return ""
}

func lastOpaqueSegment(s string) string {
	parts := strings.Split(s, ":")
	for i := len(parts) - 1; i >= 0; i-- {
		if seg := strings.TrimSpace(parts[i]); seg != "" {
			return seg
		}
	}
	return ""
}

func titleFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// stripQuery removes the query string of an image URL. Upstream thumbnails
// are pre-signed links whose signature expires.
func stripQuery(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i]
	}
	return s
}
