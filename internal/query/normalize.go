package query

import (
	"regexp"
	"strings"
)

var splitRegex = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// normalize lowercases q, splits on non-alphanumeric runs, drops terms of
// length <= minLen, and dedupes while preserving first-seen order (spec
// §4.8 step 1).
func normalize(q string, minLen int) []string {
	lower := strings.ToLower(q)
	parts := splitRegex.Split(lower, -1)

	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || len(p) <= minLen {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
