package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds identifiers accepted from HTTP paths and CLI arguments.
const maxIDLength = 512

// ValidateID validates a node, claim or view identifier received from a caller.
// Identifiers are opaque but must be non-empty, reasonably short and free of
// control characters, since they are interpolated into upstream URL paths.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidID, "identifier cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "identifier too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "identifier contains invalid control characters")
		}
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "identifier cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateRoot validates the root of an exploration. Roots are either a
// subject URI or a plain identifier; URIs must use http(s).
func ValidateRoot(root string) error {
	if strings.Contains(root, "://") {
		return ValidateURL(root)
	}
	return ValidateID(root)
}
