// Package sanitize reduces untrusted text to a character subset that is
// safe to pass as a subprocess argument or use as a filename component.
package sanitize

import (
	"strings"
	"unicode"
)

// Text returns s restricted to letters, digits, spaces, hyphens and
// underscores, with surrounding whitespace trimmed. Every value that ends
// up on the handwrite command line or inside a storage path must pass
// through here first.
func Text(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// IsClean reports whether s is non-empty and already in sanitized form.
// Retrieval endpoints use this to reject keys that would sanitize to
// something other than what the client sent.
func IsClean(s string) bool {
	return s != "" && Text(s) == s
}
