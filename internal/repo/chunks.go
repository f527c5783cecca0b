package repo

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/store"
)

// ChunksRepository accesses the chunks table.
type ChunksRepository struct {
	adapter *store.Adapter
}

// NewChunksRepository builds a ChunksRepository over adapter.
func NewChunksRepository(adapter *store.Adapter) *ChunksRepository {
	return &ChunksRepository{adapter: adapter}
}

// InsertBatch writes a document's chunk rows and their vector embeddings in
// one call, and folds their text into the chunks table's BM25 statistics.
func (r *ChunksRepository) InsertBatch(ctx context.Context, chunks []*store.ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.adapter.SQL().InsertChunks(ctx, chunks); err != nil {
		return err
	}

	ids := make([]uint64, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		ids = append(ids, c.ID)
		vectors = append(vectors, c.Embedding)
	}
	if len(ids) > 0 {
		if err := r.adapter.VectorStore(store.TableChunks).Add(ctx, ids, vectors); err != nil {
			return err
		}
	}

	stats := r.adapter.BM25Stats(store.TableChunks)
	for _, c := range chunks {
		stats.Add(c.ID, store.Tokenize(c.Text))
	}
	return nil
}

// All returns every chunk row, used by a full concept-index rebuild.
func (r *ChunksRepository) All(ctx context.Context) ([]*store.ChunkRecord, error) {
	return r.adapter.SQL().AllChunks(ctx)
}

// ByContentHash returns every chunk belonging to one document.
func (r *ChunksRepository) ByContentHash(ctx context.Context, hash string) ([]*store.ChunkRecord, error) {
	return r.adapter.SQL().ChunksByContentHash(ctx, hash)
}

// BySourcePath returns every chunk for a document by its source path.
func (r *ChunksRepository) BySourcePath(ctx context.Context, path string) ([]*store.ChunkRecord, error) {
	return r.adapter.SQL().ChunksBySourcePath(ctx, path)
}

// ByConcept returns every chunk tagged with the given concept name
// (case-insensitive exact match), the membership query behind
// concept_search.
func (r *ChunksRepository) ByConcept(ctx context.Context, name string) ([]*store.ChunkRecord, error) {
	return r.adapter.SQL().ChunksByConcept(ctx, name)
}

// DeleteByContentHash removes every chunk belonging to one document, part
// of whole-document purge.
func (r *ChunksRepository) DeleteByContentHash(ctx context.Context, hash string) error {
	chunks, err := r.ByContentHash(ctx, hash)
	if err != nil {
		return err
	}
	if err := r.adapter.SQL().DeleteChunksByContentHash(ctx, hash); err != nil {
		return err
	}
	ids := make([]uint64, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	if len(ids) > 0 {
		_ = r.adapter.VectorStore(store.TableChunks).Delete(ctx, ids)
	}
	for _, id := range ids {
		r.adapter.BM25Stats(store.TableChunks).Remove(id)
	}
	return nil
}

// Collection returns the chunks table's searchable-collection view.
func (r *ChunksRepository) Collection() store.Collection {
	return r.adapter.Collection(store.TableChunks)
}
