package concept

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// FuzzyJaccardThreshold is the picked, tunable word-set Jaccard similarity
// a multi-word concept must clear against a chunk's words to count as a
// fuzzy match (open question, resolved in DESIGN.md).
const FuzzyJaccardThreshold = 0.6

var onlyPunctuation = regexp.MustCompile(`^[\p{P}\p{S}\s]+$`)

// DocConcepts is the input to the matcher: one document's full concept
// blob plus its categories. The categories are attached to a chunk as a
// whole when at least one primary-tier concept matches it.
type DocConcepts struct {
	Primary    []string
	Technical  []string
	Related    []string
	Categories []string
}

// all returns every concept name in the document, in tier order.
func (d DocConcepts) all() []string {
	out := make([]string, 0, len(d.Primary)+len(d.Technical)+len(d.Related))
	out = append(out, d.Primary...)
	out = append(out, d.Technical...)
	out = append(out, d.Related...)
	return out
}

// Matcher assigns a document's concepts to individual chunks.
type Matcher struct{}

// NewMatcher builds a Matcher. It holds no state; a value receiver would do
// as well, but a named type keeps parity with the rest of the package's
// constructor convention.
func NewMatcher() *Matcher { return &Matcher{} }

// Match scans chunkText for every concept declared by the owning document
// and returns the matched concepts, the categories those matches imply, and
// a density score. It is deterministic and order-independent in doc.
func (m *Matcher) Match(doc DocConcepts, chunkText string) MatchResult {
	lowerText := strings.ToLower(chunkText)
	words := tokenize(lowerText)
	wordSet := toSet(words)

	var matched []string
	matchedPrimary := make(map[string]bool)
	seen := make(map[string]bool)

	for _, c := range doc.all() {
		if seen[c] {
			continue
		}
		if onlyPunctuation.MatchString(c) {
			continue
		}
		if matchesConcept(c, lowerText, wordSet) {
			seen[c] = true
			matched = append(matched, c)
		}
	}
	for _, c := range doc.Primary {
		if seen[c] {
			matchedPrimary[c] = true
		}
	}

	if len(matched) == 0 {
		return MatchResult{ConceptDensity: 0}
	}

	categories := doc.Categories
	if len(matchedPrimary) == 0 {
		categories = nil
	}

	density := conceptDensity(len(matched), len(chunkText))

	return MatchResult{
		Concepts:          matched,
		ConceptCategories: categories,
		ConceptDensity:    density,
	}
}

// conceptDensity implements the density formula: min(1.0,
// matched_concepts_count / max(1, expected_density_divisor(len))). The
// divisor grows with chunk length so longer chunks need proportionally
// more matches to reach full density.
func conceptDensity(matchedCount int, textLen int) float64 {
	divisor := expectedDensityDivisor(textLen)
	if divisor < 1 {
		divisor = 1
	}
	d := float64(matchedCount) / float64(divisor)
	return math.Min(1.0, d)
}

// expectedDensityDivisor is monotone in chunk length: roughly one expected
// concept per 100 characters, floored at 1.
func expectedDensityDivisor(textLen int) int {
	d := textLen / 100
	if d < 1 {
		d = 1
	}
	return d
}

// matchesConcept reports whether concept c is present in chunk text: a
// single-word concept must appear as a word-bounded, case-insensitive
// substring; a multi-word concept additionally accepts a fuzzy Jaccard
// match over the chunk's word set when an exact substring match fails.
func matchesConcept(c string, lowerText string, wordSet map[string]struct{}) bool {
	cWords := strings.Fields(c)
	if len(cWords) == 0 {
		return false
	}

	if wordBoundedSubstring(lowerText, c) {
		return true
	}

	if len(cWords) == 1 {
		return false
	}

	present := 0
	for _, w := range cWords {
		if _, ok := wordSet[w]; ok {
			present++
		}
	}
	if present == 0 {
		return false
	}
	union := len(wordSet) + len(cWords) - present
	if union == 0 {
		return false
	}
	jaccard := float64(present) / float64(len(cWords))
	// every word present is required; the similarity gate takes the larger
	// of word coverage and set-level Jaccard against the chunk. Coverage is
	// 1.0 once every word is present, so the gate then always passes.
	setJaccard := float64(present) / float64(union)
	return present == len(cWords) && math.Max(jaccard, setJaccard) >= FuzzyJaccardThreshold
}

// wordBoundedSubstring reports whether needle occurs in haystack at a word
// boundary on both sides (treats regex metacharacters in needle literally).
func wordBoundedSubstring(haystack, needle string) bool {
	pattern := `(^|\PL)` + regexp.QuoteMeta(needle) + `($|\PL)`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return strings.Contains(haystack, needle)
	}
	return re.MatchString(haystack)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r == '\'' || isWordRune(r))
	})
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 127
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Statistics computes aggregate concept coverage over a batch of matched
// chunks.
func Statistics(results []MatchResult) Stats {
	stats := Stats{TotalChunks: len(results)}
	counts := make(map[string]int)
	var totalConcepts int

	for _, r := range results {
		if len(r.Concepts) > 0 {
			stats.ChunksWithConcepts++
		}
		totalConcepts += len(r.Concepts)
		for _, c := range r.Concepts {
			counts[c]++
		}
	}

	if stats.TotalChunks > 0 {
		stats.AvgConceptsPerChunk = float64(totalConcepts) / float64(stats.TotalChunks)
	}

	stats.TopConcepts = topN(counts, 10)
	return stats
}

func topN(counts map[string]int, n int) []ConceptCount {
	out := make([]ConceptCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, ConceptCount{Name: name, Chunks: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chunks != out[j].Chunks {
			return out[i].Chunks > out[j].Chunks
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
