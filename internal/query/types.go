// Package query implements the Query Expander: it normalizes a
// raw query string into original terms, unions corpus-grounded concept-table
// expansion and lexical-network expansion, and produces a single weighted
// term bag the Hybrid Search Service scores against.
package query

import "context"

// Config holds the Query Expander's tunables, all exposed via
// internal/config's QueryConfig so every weight/threshold named in spec
// §4.8 is operator-overridable.
type Config struct {
	// CorpusNeighbors is Kc, the number of nearest concepts retrieved from
	// the concept table during corpus-grounded expansion.
	CorpusNeighbors int
	// ThematicSimilarityFloor is the minimum vector similarity for a
	// thematic concept to be added.
	ThematicSimilarityFloor float64
	// TerminologySimilarityFloor is the minimum vector similarity for a
	// terminology concept to be added (no related-concept expansion).
	TerminologySimilarityFloor float64
	// CorpusTermWeight is the 0.8 coefficient applied to a retrieved
	// concept's similarity score.
	CorpusTermWeight float64
	// RelatedExpansionDiscount is the extra 0.75 factor applied when
	// expanding a thematic concept's related_concepts.
	RelatedExpansionDiscount float64
	// MaxRelatedPerConcept caps how many related concepts are pulled in per
	// retrieved thematic concept (spec: up to 4).
	MaxRelatedPerConcept int
	// LexicalTermWeight is the 0.6 coefficient applied to lexical-network
	// expansions.
	LexicalTermWeight float64
	// MinTermLength is the longest normalized term length that is dropped
	// (terms of length <= this value are dropped).
	MinTermLength int
}

// DefaultConfig returns the query expander's default tuning.
func DefaultConfig() Config {
	return Config{
		CorpusNeighbors:            15,
		ThematicSimilarityFloor:    0.3,
		TerminologySimilarityFloor: 0.6,
		CorpusTermWeight:           0.8,
		RelatedExpansionDiscount:   0.75,
		MaxRelatedPerConcept:       4,
		LexicalTermWeight:          0.6,
		MinTermLength:              2,
	}
}

// ConceptCandidate is one nearest-neighbor hit from the concept table,
// carrying just the fields the expander needs.
type ConceptCandidate struct {
	Name            string
	Kind            string // "thematic" | "terminology" | "related" | "category"
	RelatedConcepts []string
	Similarity      float64 // s in [0,1]
}

// ConceptIndex looks up the corpus-grounded nearest concepts for a query
// embedding. Satisfied by a thin adapter over the concepts table
// (internal/repo).
type ConceptIndex interface {
	NearestConcepts(ctx context.Context, vector []float32, k int) ([]ConceptCandidate, error)
}

// LexicalExpander looks up synonym/hypernym terms for a single word.
// Satisfied by internal/concept's LexicalClient, adapted to a term-only
// contract (the expander only ever looks up single original terms, never
// whole concept phrases).
type LexicalExpander interface {
	Expand(ctx context.Context, term string) (synonyms []string, hypernyms []string, err error)
}

// Embedder embeds the normalized query text for corpus-grounded lookup.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Expansion is the Query Expander's output.
type Expansion struct {
	OriginalTerms []string
	CorpusTerms   []string
	WordnetTerms  []string
	AllTerms      []string
	Weights       map[string]float64
}
