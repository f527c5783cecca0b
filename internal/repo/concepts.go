package repo

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/query"
	"github.com/concept-rag/conceptrag/internal/store"
)

// ConceptsRepository accesses the concepts table.
type ConceptsRepository struct {
	adapter *store.Adapter
}

// NewConceptsRepository builds a ConceptsRepository over adapter.
func NewConceptsRepository(adapter *store.Adapter) *ConceptsRepository {
	return &ConceptsRepository{adapter: adapter}
}

// ByName looks up one concept by its exact name. The store lowercases name
// before the lookup, so the match is case-insensitive.
func (r *ConceptsRepository) ByName(ctx context.Context, name string) (*store.ConceptRecord, bool, error) {
	return r.adapter.SQL().GetConceptByName(ctx, name)
}

// All returns every concept/category row, used for the fuzzy fallback in
// concept_search when an exact name lookup misses.
func (r *ConceptsRepository) All(ctx context.Context) ([]*store.ConceptRecord, error) {
	return r.adapter.SQL().AllConcepts(ctx)
}

// ScanByKind returns a page of concept/category rows ordered by name,
// backing the two category-browsing scan operations.
func (r *ConceptsRepository) ScanByKind(ctx context.Context, kind store.ConceptKind, cursor string, limit int) ([]*store.ConceptRecord, string, error) {
	return r.adapter.SQL().ScanConcepts(ctx, kind, cursor, limit)
}

// Replace atomically replaces the entire concepts table and rebuilds its
// vector index and BM25 statistics, used by a full Concept Index Builder
// run (idempotent rebuild, garbage-collects concepts no
// document references anymore).
func (r *ConceptsRepository) Replace(ctx context.Context, records []*store.ConceptRecord) error {
	if err := r.adapter.SQL().ReplaceConcepts(ctx, records); err != nil {
		return err
	}

	ids := make([]uint64, 0, len(records))
	vectors := make([][]float32, 0, len(records))
	for _, rec := range records {
		if len(rec.Embedding) == 0 {
			continue
		}
		ids = append(ids, rec.ID)
		vectors = append(vectors, rec.Embedding)
	}

	vec := r.adapter.VectorStore(store.TableConcepts)
	for _, existing := range vec.AllIDs() {
		_ = vec.Delete(ctx, []uint64{existing})
	}
	if len(ids) > 0 {
		if err := vec.Add(ctx, ids, vectors); err != nil {
			return err
		}
	}

	stats := store.NewBM25Stats()
	for _, rec := range records {
		stats.Add(rec.ID, store.Tokenize(rec.Name))
	}
	*r.adapter.BM25Stats(store.TableConcepts) = *stats
	return nil
}

// NearestConcepts implements query.ConceptIndex: the corpus-grounded
// expansion step retrieves the Kc nearest concepts to a query
// embedding from this table.
func (r *ConceptsRepository) NearestConcepts(ctx context.Context, vector []float32, k int) ([]query.ConceptCandidate, error) {
	hits, err := r.adapter.VectorStore(store.TableConcepts).Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	out := make([]query.ConceptCandidate, 0, len(hits))
	for _, h := range hits {
		rec, ok, err := r.adapter.SQL().GetConcept(ctx, h.ID)
		if err != nil || !ok {
			continue
		}
		out = append(out, query.ConceptCandidate{
			Name:            rec.Name,
			Kind:            string(rec.Kind),
			RelatedConcepts: rec.RelatedConcepts,
			Similarity:      float64(h.Score),
		})
	}
	return out, nil
}

// Collection returns the concepts table's searchable-collection view.
func (r *ConceptsRepository) Collection() store.Collection {
	return r.adapter.Collection(store.TableConcepts)
}

var _ query.ConceptIndex = (*ConceptsRepository)(nil)
