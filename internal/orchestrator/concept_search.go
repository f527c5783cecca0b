package orchestrator

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/concept-rag/conceptrag/internal/store"
)

// FuzzyConceptJaccardThreshold is the minimum word-set Jaccard similarity a
// concept table name must clear against the query term to count as a fuzzy
// match when an exact lookup misses (mirroring the matcher's
// own fuzzy-match threshold, see DESIGN.md).
const FuzzyConceptJaccardThreshold = 0.6

// ConceptHit is one concept_search result.
type ConceptHit struct {
	SourcePath     string   `json:"source_path"`
	Text           string   `json:"text"`
	Concepts       []string `json:"concepts"`
	ConceptDensity float64  `json:"concept_density"`
}

// ConceptSearch performs an exact-or-fuzzy lookup of name in the concept
// table, then returns every chunk tagged with any matching concept, sorted
// by concept_density descending with ties broken by chunk vector
// similarity to the matched concept's embedding. This is a membership
// query, not a hybrid-scored search.
func (o *Orchestrator) ConceptSearch(ctx context.Context, name string, limit int) ([]ConceptHit, error) {
	if limit <= 0 {
		limit = 10
	}

	matches, err := o.resolveConcepts(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	type chunkRef struct {
		chunk *store.ChunkRecord
		refEmbedding []float32
	}
	seen := make(map[uint64]chunkRef)
	for _, c := range matches {
		rows, err := o.chunks.ByConcept(ctx, c.Name)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if _, ok := seen[row.ID]; !ok {
				seen[row.ID] = chunkRef{chunk: row, refEmbedding: c.Embedding}
			}
		}
	}

	refs := make([]chunkRef, 0, len(seen))
	for _, r := range seen {
		refs = append(refs, r)
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].chunk.ConceptDensity != refs[j].chunk.ConceptDensity {
			return refs[i].chunk.ConceptDensity > refs[j].chunk.ConceptDensity
		}
		return cosineSimilarity(refs[i].chunk.Embedding, refs[i].refEmbedding) >
			cosineSimilarity(refs[j].chunk.Embedding, refs[j].refEmbedding)
	})

	if len(refs) > limit {
		refs = refs[:limit]
	}

	out := make([]ConceptHit, len(refs))
	for i, r := range refs {
		out[i] = ConceptHit{
			SourcePath:     r.chunk.SourcePath,
			Text:           r.chunk.Text,
			Concepts:       r.chunk.Concepts,
			ConceptDensity: r.chunk.ConceptDensity,
		}
	}
	return out, nil
}

// resolveConcepts looks up name exactly; on a miss it falls back to a
// fuzzy word-set Jaccard match over every concept name in the table.
func (o *Orchestrator) resolveConcepts(ctx context.Context, name string) ([]*store.ConceptRecord, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if exact, ok, err := o.concepts.ByName(ctx, lower); err != nil {
		return nil, err
	} else if ok {
		return []*store.ConceptRecord{exact}, nil
	}

	all, err := o.concepts.All(ctx)
	if err != nil {
		return nil, err
	}

	needle := toWordSet(lower)
	var fuzzy []*store.ConceptRecord
	for _, c := range all {
		if jaccard(needle, toWordSet(c.Name)) >= FuzzyConceptJaccardThreshold {
			fuzzy = append(fuzzy, c)
		}
	}
	return fuzzy, nil
}

func toWordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
