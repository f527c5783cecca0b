package search

import (
	"context"
	"math"
	"sort"

	"github.com/concept-rag/conceptrag/internal/query"
	"github.com/concept-rag/conceptrag/internal/store"
)

// scored is one candidate row mid-scoring: its final Hit plus the raw
// (unnormalized) BM25 score the min-max normalization pass needs.
type scored struct {
	hit     Hit
	bm25Raw float64
}

// Search runs the hybrid scoring procedure over coll and
// returns the top limit hits, descending by score with ties broken by
// s_vec then row id.
func (s *Service) Search(ctx context.Context, coll store.Collection, queryText string, expansion query.Expansion, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 1
	}

	vec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	k := s.cfg.Overfetch
	if limit > k {
		k = limit
	}

	candidates, err := coll.VectorSearch(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	originalSet := toSet(expansion.OriginalTerms)
	concepts := toSet(expansion.AllTerms)
	stats := coll.Stats()

	rows := make([]scored, 0, len(candidates))

	for _, c := range candidates {
		if math.IsNaN(float64(c.Distance)) {
			continue // dropped: NaN distance
		}
		row, ok, err := coll.Row(ctx, c.ID)
		if err != nil || !ok {
			continue
		}

		sVec := clamp01(float64(c.Score))
		tokens := store.Tokenize(row.Text)
		bm25Raw := store.WeightedBM25(tokens, expansion.Weights, stats, s.cfg.BM25K1, s.cfg.BM25B)
		sConcept := conceptOverlap(row.Concepts, concepts, len(expansion.AllTerms))
		sWordnet := wordnetFraction(tokens, expansion.WordnetTerms, expansion.Weights)

		sig := Signals{Vec: sVec, Concept: sConcept, Wordnet: sWordnet}
		if coll.IsCatalog() && titleHit(row.Title, originalSet) {
			sig.Title = s.cfg.TitleBoost
		}

		rows = append(rows, scored{hit: Hit{Row: row, Signals: sig}, bm25Raw: bm25Raw})
	}

	bm25Norm := minMaxNormalize(bm25Raws(rows))
	w := s.cfg.Weights
	for i := range rows {
		sig := &rows[i].hit.Signals
		sig.BM25 = bm25Norm[i]
		rows[i].hit.Score = w.Vec*sig.Vec + w.BM25*sig.BM25 + w.Concept*sig.Concept + w.Wordnet*sig.Wordnet + sig.Title
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].hit.Score != rows[j].hit.Score {
			return rows[i].hit.Score > rows[j].hit.Score
		}
		if rows[i].hit.Signals.Vec != rows[j].hit.Signals.Vec {
			return rows[i].hit.Signals.Vec > rows[j].hit.Signals.Vec
		}
		return rows[i].hit.Row.ID < rows[j].hit.Row.ID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}

	hits := make([]Hit, len(rows))
	for i, r := range rows {
		hits[i] = r.hit
	}
	return hits, nil
}

func bm25Raws(rows []scored) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.bm25Raw
	}
	return out
}

// minMaxNormalize rescales v into [0,1] ("scores min-max
// normalized per query"). A flat set (all values equal, including the
// empty-weights zero case) normalizes to all zeros.
func minMaxNormalize(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) == 0 {
		return out
	}
	min, max := v[0], v[0]
	for _, x := range v[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	if max == min {
		return out // all zero
	}
	for i, x := range v {
		out[i] = (x - min) / (max - min)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

// conceptOverlap computes the Jaccard-like overlap of a row's declared
// concepts against the expander's all_terms, divided by |all_terms| (spec
// §4.9's s_concept). Concept names are frequently multi-word phrases while
// all_terms is a bag of single normalized words, so a concept counts as
// matched when any of its words is present in all_terms (word-level
// containment rather than whole-string equality). A concept-less row, or
// an empty term bag, scores 0.
func conceptOverlap(rowConcepts []string, allTerms map[string]struct{}, allTermsLen int) float64 {
	if len(rowConcepts) == 0 || allTermsLen == 0 {
		return 0
	}
	matched := 0
	for _, c := range rowConcepts {
		for _, word := range store.Tokenize(c) {
			if _, ok := allTerms[word]; ok {
				matched++
				break
			}
		}
	}
	return clamp01(float64(matched) / float64(allTermsLen))
}

// wordnetFraction computes the fraction of wordnet_terms appearing
// word-bounded in the row's tokenized text, weighted by each term's
// expander weight (s_wordnet).
func wordnetFraction(tokens []string, wordnetTerms []string, weights map[string]float64) float64 {
	if len(wordnetTerms) == 0 {
		return 0
	}
	present := toSet(tokens)
	var sum float64
	for _, t := range wordnetTerms {
		if _, ok := present[t]; ok {
			sum += weights[t]
		}
	}
	return clamp01(sum / float64(len(wordnetTerms)))
}

// titleHit reports whether any original query term appears in title as a
// whole word (s_title, catalog collections only).
func titleHit(title string, originalTerms map[string]struct{}) bool {
	if title == "" || len(originalTerms) == 0 {
		return false
	}
	for _, tok := range store.Tokenize(title) {
		if _, ok := originalTerms[tok]; ok {
			return true
		}
	}
	return false
}
