package llm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalizeConcept applies concept normalization: Unicode NFC,
// lowercase, collapsed whitespace, stripped leading/trailing punctuation.
func normalizeConcept(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	s = collapseWhitespace(s)
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	return s
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// normalizeList normalizes every entry, drops empties, and dedupes while
// preserving first-seen order.
func normalizeList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		n := normalizeConcept(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (b ConceptBlob) normalized() ConceptBlob {
	return ConceptBlob{
		PrimaryConcepts: normalizeList(b.PrimaryConcepts),
		TechnicalTerms:  normalizeList(b.TechnicalTerms),
		RelatedConcepts: normalizeList(b.RelatedConcepts),
		Categories:      normalizeList(b.Categories),
	}
}
