package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concept-rag/conceptrag/internal/chunk"
	"github.com/concept-rag/conceptrag/internal/extract"
	"github.com/concept-rag/conceptrag/internal/llm"
	"github.com/concept-rag/conceptrag/internal/store"
)

type fakeCatalogStore struct {
	byHash map[string]*store.CatalogRecord
	all    []*store.CatalogRecord
	deleted []string
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{byHash: make(map[string]*store.CatalogRecord)}
}

func (f *fakeCatalogStore) ByHash(ctx context.Context, hash string) (*store.CatalogRecord, bool, error) {
	r, ok := f.byHash[hash]
	return r, ok, nil
}

func (f *fakeCatalogStore) Upsert(ctx context.Context, rec *store.CatalogRecord) error {
	f.byHash[rec.ContentHash] = rec
	f.all = append(f.all, rec)
	return nil
}

func (f *fakeCatalogStore) Delete(ctx context.Context, sourcePath string) error {
	f.deleted = append(f.deleted, sourcePath)
	kept := f.all[:0]
	for _, r := range f.all {
		if r.SourcePath == sourcePath {
			delete(f.byHash, r.ContentHash)
			continue
		}
		kept = append(kept, r)
	}
	f.all = kept
	return nil
}

func (f *fakeCatalogStore) All(ctx context.Context) ([]*store.CatalogRecord, error) {
	return f.all, nil
}

type fakeChunkStore struct {
	byHash  map[string][]*store.ChunkRecord
	all     []*store.ChunkRecord
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{byHash: make(map[string][]*store.ChunkRecord)}
}

func (f *fakeChunkStore) InsertBatch(ctx context.Context, chunks []*store.ChunkRecord) error {
	for _, c := range chunks {
		f.byHash[c.ContentHash] = append(f.byHash[c.ContentHash], c)
		f.all = append(f.all, c)
	}
	return nil
}

func (f *fakeChunkStore) DeleteByContentHash(ctx context.Context, hash string) error {
	delete(f.byHash, hash)
	kept := f.all[:0]
	for _, c := range f.all {
		if c.ContentHash != hash {
			kept = append(kept, c)
		}
	}
	f.all = kept
	return nil
}

func (f *fakeChunkStore) All(ctx context.Context) ([]*store.ChunkRecord, error) {
	return f.all, nil
}

type fakeConceptStore struct {
	replaced []*store.ConceptRecord
	calls    int
}

func (f *fakeConceptStore) Replace(ctx context.Context, records []*store.ConceptRecord) error {
	f.replaced = records
	f.calls++
	return nil
}

type fakeExtractor struct {
	results map[string]extract.DocResult
}

func (f *fakeExtractor) Run(ctx context.Context, docs []extract.Document) []extract.DocResult {
	out := make([]extract.DocResult, len(docs))
	for i, d := range docs {
		out[i] = f.results[d.Source]
	}
	return out
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func blob(primary ...string) *llm.ConceptBlob {
	return &llm.ConceptBlob{PrimaryConcepts: primary}
}

func newTestPipeline(catalog *fakeCatalogStore, chunks *fakeChunkStore, concepts *fakeConceptStore, extractor Extractor) *Pipeline {
	return New(catalog, chunks, concepts, extractor, fakeEmbedder{}, nil, nil, DefaultConfig())
}

func TestPipeline_IngestsNewDocumentAndRebuildsConcepts(t *testing.T) {
	catalog := newFakeCatalogStore()
	chunks := newFakeChunkStore()
	concepts := &fakeConceptStore{}
	extractor := &fakeExtractor{results: map[string]extract.DocResult{
		"doc1.txt": {Source: "doc1.txt", Hash: "h1", Concepts: blob("attention mechanisms")},
	}}

	p := newTestPipeline(catalog, chunks, concepts, extractor)
	docs := []Document{
		{SourcePath: "doc1.txt", ContentHash: "h1", Pages: []chunk.PageRecord{{Text: "transformers use attention mechanisms extensively.", SourcePath: "doc1.txt", PageIndex: 0}}},
	}

	report, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1.txt"}, report.Ingested)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Failed)
	assert.Len(t, catalog.all, 1)
	assert.NotEmpty(t, chunks.all)
	assert.Equal(t, 1, concepts.calls)
}

func TestPipeline_SkipsAlreadyIngestedHash(t *testing.T) {
	catalog := newFakeCatalogStore()
	catalog.byHash["h1"] = &store.CatalogRecord{ID: 1, SourcePath: "doc1.txt", ContentHash: "h1"}
	catalog.all = append(catalog.all, catalog.byHash["h1"])
	chunks := newFakeChunkStore()
	concepts := &fakeConceptStore{}
	extractor := &fakeExtractor{}

	p := newTestPipeline(catalog, chunks, concepts, extractor)
	docs := []Document{{SourcePath: "doc1.txt", ContentHash: "h1", Pages: nil}}

	report, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1.txt"}, report.Skipped)
	assert.Empty(t, report.Ingested)
}

func TestPipeline_ExtractionFailureIsReportedAndNotIngested(t *testing.T) {
	catalog := newFakeCatalogStore()
	chunks := newFakeChunkStore()
	concepts := &fakeConceptStore{}
	extractor := &fakeExtractor{results: map[string]extract.DocResult{
		"doc1.txt": {Source: "doc1.txt", Hash: "h1", Err: errors.New("llm timeout")},
	}}

	p := newTestPipeline(catalog, chunks, concepts, extractor)
	docs := []Document{
		{SourcePath: "doc1.txt", ContentHash: "h1", Pages: []chunk.PageRecord{{Text: "some text", SourcePath: "doc1.txt"}}},
	}

	report, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	require.Contains(t, report.Failed, "doc1.txt")
	assert.Empty(t, report.Ingested)
	assert.Empty(t, catalog.all)
}

type failingChunkStore struct {
	*fakeChunkStore
}

func (f *failingChunkStore) InsertBatch(ctx context.Context, chunks []*store.ChunkRecord) error {
	return errors.New("disk full")
}

func TestPipeline_RollsBackPartialWriteOnFailure(t *testing.T) {
	catalog := newFakeCatalogStore()
	chunks := &failingChunkStore{fakeChunkStore: newFakeChunkStore()}
	concepts := &fakeConceptStore{}
	extractor := &fakeExtractor{results: map[string]extract.DocResult{
		"doc1.txt": {Source: "doc1.txt", Hash: "h1", Concepts: blob("x")},
	}}

	p := newTestPipeline(catalog, chunks, concepts, extractor)
	docs := []Document{
		{SourcePath: "doc1.txt", ContentHash: "h1", Pages: []chunk.PageRecord{{Text: "some text about x", SourcePath: "doc1.txt"}}},
	}

	report, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	require.Contains(t, report.Failed, "doc1.txt")
	assert.Empty(t, catalog.all, "catalog row must be rolled back when chunk write fails")
}

func TestCatalogAndChunkIDsAreDeterministic(t *testing.T) {
	assert.Equal(t, catalogID("h1"), catalogID("h1"))
	assert.NotEqual(t, catalogID("h1"), catalogID("h2"))
	assert.Equal(t, chunkID("h1", 0), chunkID("h1", 0))
	assert.NotEqual(t, chunkID("h1", 0), chunkID("h1", 1))
}
