// Package splitter turns one translation result into the caption fragments
// it encodes.
package splitter

import "strings"

// DefaultDelimiter separates fragments in a translation result.
const DefaultDelimiter = "||"

// Split breaks result on delim, trims whitespace from each piece, and drops
// empty pieces. An empty delim uses DefaultDelimiter.
func Split(result, delim string) []string {
	if delim == "" {
		delim = DefaultDelimiter
	}
	parts := strings.Split(result, delim)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
