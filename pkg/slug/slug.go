package slug

import (
	"strings"

	gosimple "github.com/gosimple/slug"
)

// Generate creates a URL-friendly slug from the given name. Accented
// characters are transliterated to ASCII.
//
// Examples:
//   - "Pleťová kozmetika" → "pletova-kozmetika"
//   - "Nezaradené" → "nezaradene"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	return gosimple.Make(strings.TrimSpace(name))
}

// Set builds a lookup of normalized slugs. Empty entries are skipped.
func Set(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if s := Generate(v); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}
