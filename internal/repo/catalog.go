// Package repo implements the domain-layer Repositories: thin
// accessors over the Storage Adapter, each scoped to one of the three named
// tables, exposing the lookups the Search Orchestrator needs without
// leaking SQL or vector-store details upward.
package repo

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/store"
)

// CatalogRepository accesses the catalog table.
type CatalogRepository struct {
	adapter *store.Adapter
}

// NewCatalogRepository builds a CatalogRepository over adapter.
func NewCatalogRepository(adapter *store.Adapter) *CatalogRepository {
	return &CatalogRepository{adapter: adapter}
}

// ByHash looks up a document by content hash, used for the ingestion
// pipeline's skip-if-unchanged check.
func (r *CatalogRepository) ByHash(ctx context.Context, hash string) (*store.CatalogRecord, bool, error) {
	return r.adapter.SQL().GetCatalogByHash(ctx, hash)
}

// BySourcePath looks up a document by its unique locator.
func (r *CatalogRepository) BySourcePath(ctx context.Context, path string) (*store.CatalogRecord, bool, error) {
	return r.adapter.SQL().GetCatalogBySourcePath(ctx, path)
}

// ByTitle looks up a document by title or source path substring, used by
// extract_concepts.
func (r *CatalogRepository) ByTitle(ctx context.Context, query string) (*store.CatalogRecord, bool, error) {
	return r.adapter.SQL().GetCatalogByTitle(ctx, query)
}

// ByID looks up a document by its primary id.
func (r *CatalogRepository) ByID(ctx context.Context, id uint64) (*store.CatalogRecord, bool, error) {
	return r.adapter.SQL().GetCatalog(ctx, id)
}

// All returns every catalog row.
func (r *CatalogRepository) All(ctx context.Context) ([]*store.CatalogRecord, error) {
	return r.adapter.SQL().AllCatalog(ctx)
}

// Upsert writes a document's catalog row and its vector embedding,
// replacing any prior row with the same source_path (re-ingest). Title/BM25
// statistics are refreshed so the hybrid scorer's title signal and weighted
// BM25 see the new text immediately.
func (r *CatalogRepository) Upsert(ctx context.Context, rec *store.CatalogRecord) error {
	if err := r.adapter.SQL().InsertCatalog(ctx, rec); err != nil {
		return err
	}
	if len(rec.Embedding) > 0 {
		if err := r.adapter.VectorStore(store.TableCatalog).Add(ctx, []uint64{rec.ID}, [][]float32{rec.Embedding}); err != nil {
			return err
		}
	}
	r.adapter.BM25Stats(store.TableCatalog).Add(rec.ID, store.Tokenize(rec.Summary))
	return nil
}

// Delete removes a document's catalog row and its vector/BM25
// contributions (whole-document purge: only whole-doc
// deletion is supported).
func (r *CatalogRepository) Delete(ctx context.Context, sourcePath string) error {
	existing, ok, err := r.BySourcePath(ctx, sourcePath)
	if err != nil || !ok {
		return err
	}
	if err := r.adapter.SQL().DeleteCatalogBySourcePath(ctx, sourcePath); err != nil {
		return err
	}
	_ = r.adapter.VectorStore(store.TableCatalog).Delete(ctx, []uint64{existing.ID})
	r.adapter.BM25Stats(store.TableCatalog).Remove(existing.ID)
	return nil
}

// Collection returns the catalog table's searchable-collection view, for
// the Hybrid Search Service.
func (r *CatalogRepository) Collection() store.Collection {
	return r.adapter.Collection(store.TableCatalog)
}
