package query

import (
	"context"
	"log/slog"
	"strings"
)

// Expander produces a weighted bag of terms for a raw query string (spec
// §4.8). concepts and lexical are both optional: a nil or failing concepts
// index degrades to original + lexical terms only; a nil lexical expander
// simply contributes no wordnet terms. Neither failure is ever surfaced as
// an error — the expander always returns a (possibly partial) Expansion.
type Expander struct {
	concepts ConceptIndex
	lexical  LexicalExpander
	embedder Embedder
	cfg      Config
}

// NewExpander builds an Expander. A zero-value cfg is replaced with
// DefaultConfig.
func NewExpander(concepts ConceptIndex, lexical LexicalExpander, embedder Embedder, cfg Config) *Expander {
	if cfg.CorpusNeighbors <= 0 {
		cfg = DefaultConfig()
	}
	return &Expander{concepts: concepts, lexical: lexical, embedder: embedder, cfg: cfg}
}

// Expand runs the full §4.8 pipeline: normalize, corpus-grounded expansion
// via the concept table, lexical-network expansion, then combine by
// per-term max weight. An empty query (no surviving terms) returns a
// completely empty Expansion.
func (e *Expander) Expand(ctx context.Context, rawQuery string) Expansion {
	original := normalize(rawQuery, e.cfg.MinTermLength)

	weights := make(map[string]float64, len(original)*2)
	for _, t := range original {
		weights[t] = 1.0
	}

	// Both expansion passes only append a term to their "added" list the
	// first time they see it absent from weights, so corpusTerms and
	// wordnetTerms come out disjoint from original (and from each other)
	// by construction.
	corpusTerms := e.expandCorpus(ctx, strings.Join(original, " "), weights)
	wordnetTerms := e.expandLexical(ctx, original, weights)

	all := make([]string, 0, len(original)+len(corpusTerms)+len(wordnetTerms))
	all = append(all, original...)
	all = append(all, corpusTerms...)
	all = append(all, wordnetTerms...)

	if len(original) == 0 {
		return Expansion{Weights: map[string]float64{}}
	}

	return Expansion{
		OriginalTerms: original,
		CorpusTerms:   corpusTerms,
		WordnetTerms:  wordnetTerms,
		AllTerms:      all,
		Weights:       weights,
	}
}

// expandCorpus embeds the full normalized query and retrieves the top Kc
// nearest concepts from the concept table, adding thematic/terminology hits
// per the similarity floors and related-concept fan-out.
// Returns the corpus term names added (in first-seen order); weights is
// mutated in place with each added term's max-combined weight.
func (e *Expander) expandCorpus(ctx context.Context, normalizedQuery string, weights map[string]float64) []string {
	if e.concepts == nil || e.embedder == nil {
		return nil
	}

	vec, err := e.embedder.Embed(ctx, normalizedQuery)
	if err != nil {
		slog.Warn("query expander: embed failed, skipping corpus expansion", slog.Any("error", err))
		return nil
	}

	candidates, err := e.concepts.NearestConcepts(ctx, vec, e.cfg.CorpusNeighbors)
	if err != nil {
		slog.Warn("query expander: concept table unreachable, skipping corpus expansion", slog.Any("error", err))
		return nil
	}

	var added []string
	addTerm := func(name string, weight float64) {
		if _, ok := weights[name]; !ok {
			added = append(added, name)
		}
		if weight > weights[name] {
			weights[name] = weight
		}
	}

	for _, c := range candidates {
		switch c.Kind {
		case "thematic", "category":
			if c.Similarity < e.cfg.ThematicSimilarityFloor {
				continue
			}
			w := e.cfg.CorpusTermWeight * c.Similarity
			addTerm(c.Name, w)

			relW := w * e.cfg.RelatedExpansionDiscount
			n := e.cfg.MaxRelatedPerConcept
			for i, rel := range c.RelatedConcepts {
				if i >= n {
					break
				}
				addTerm(rel, relW)
			}
		case "terminology":
			if c.Similarity < e.cfg.TerminologySimilarityFloor {
				continue
			}
			addTerm(c.Name, e.cfg.CorpusTermWeight*c.Similarity)
		default:
			// "related" concepts are never added directly, only as the
			// related_concepts fan-out of a matched thematic concept.
		}
	}
	return added
}

// expandLexical looks up synonyms and hypernyms for every original term
// Original terms are never replaced; added terms carry
// weight 0.6 * sourceWeight, bounded to 1.0.
func (e *Expander) expandLexical(ctx context.Context, original []string, weights map[string]float64) []string {
	if e.lexical == nil {
		return nil
	}

	var added []string
	for _, term := range original {
		syn, hyper, err := e.lexical.Expand(ctx, term)
		if err != nil {
			continue
		}
		sourceWeight := weights[term]
		if sourceWeight > 1.0 {
			sourceWeight = 1.0
		}
		w := e.cfg.LexicalTermWeight * sourceWeight

		for _, t := range append(syn, hyper...) {
			if t == "" || t == term {
				continue
			}
			if _, ok := weights[t]; !ok {
				added = append(added, t)
			}
			if w > weights[t] {
				weights[t] = w
			}
		}
	}
	return added
}
