// Package index implements the ingestion pipeline: it turns a stream of
// loader-provided documents into catalog, chunk and concept-table rows,
// coordinating the chunker, the parallel extraction coordinator, the
// embedding service, the concept matcher/enricher/builder and the
// repositories, with per-document atomicity.
package index

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/chunk"
	"github.com/concept-rag/conceptrag/internal/concept"
	"github.com/concept-rag/conceptrag/internal/extract"
	"github.com/concept-rag/conceptrag/internal/store"
)

// Document is one upstream document, already loaded and hashed
// ("{ source_path, content_hash, records: [{page_index, text}] }").
type Document struct {
	SourcePath  string
	ContentHash string
	Pages       []chunk.PageRecord
}

// CatalogStore is the subset of repo.CatalogRepository the pipeline needs.
type CatalogStore interface {
	ByHash(ctx context.Context, hash string) (*store.CatalogRecord, bool, error)
	Upsert(ctx context.Context, rec *store.CatalogRecord) error
	Delete(ctx context.Context, sourcePath string) error
	All(ctx context.Context) ([]*store.CatalogRecord, error)
}

// ChunkStore is the subset of repo.ChunksRepository the pipeline needs.
type ChunkStore interface {
	InsertBatch(ctx context.Context, chunks []*store.ChunkRecord) error
	DeleteByContentHash(ctx context.Context, hash string) error
	All(ctx context.Context) ([]*store.ChunkRecord, error)
}

// ConceptStore is the subset of repo.ConceptsRepository the pipeline needs.
type ConceptStore interface {
	Replace(ctx context.Context, records []*store.ConceptRecord) error
}

// Embedder embeds catalog summaries, chunk text and concept names.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Extractor runs concept extraction for a batch of documents. Satisfied by
// internal/extract's Coordinator.
type Extractor interface {
	Run(ctx context.Context, docs []extract.Document) []extract.DocResult
}

// Summarizer produces a short prose summary of a document's full text,
// used to populate the catalog record's summary field.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Config configures the pipeline.
type Config struct {
	Chunking chunk.Options
}

// DefaultConfig returns the pipeline's default chunking tuning.
func DefaultConfig() Config {
	return Config{Chunking: chunk.DefaultOptions()}
}

// Pipeline runs the full ingestion flow over a batch of documents.
type Pipeline struct {
	catalog    CatalogStore
	chunks     ChunkStore
	concepts   ConceptStore
	extractor  Extractor
	embedder   Embedder
	summarizer Summarizer
	lexical    concept.LexicalClient
	matcher    *concept.Matcher
	builder    *concept.Builder
	enricher   *concept.Enricher
	chunker    *chunk.Chunker
	cfg        Config
}

// New builds a Pipeline. summarizer and lexical may be nil: a nil
// summarizer leaves catalog summaries empty, a nil lexical client skips
// concept enrichment.
func New(catalog CatalogStore, chunks ChunkStore, concepts ConceptStore, extractor Extractor, embedder Embedder, summarizer Summarizer, lexical concept.LexicalClient, cfg Config) *Pipeline {
	if cfg.Chunking.WindowSize <= 0 {
		cfg = DefaultConfig()
	}
	var builderEmbedder concept.Embedder
	if embedder != nil {
		builderEmbedder = embedder
	}
	return &Pipeline{
		catalog:    catalog,
		chunks:     chunks,
		concepts:   concepts,
		extractor:  extractor,
		embedder:   embedder,
		summarizer: summarizer,
		lexical:    lexical,
		matcher:    concept.NewMatcher(),
		builder:    concept.NewBuilder(builderEmbedder),
		enricher:   concept.NewEnricher(lexical),
		chunker:    chunk.NewChunker(cfg.Chunking),
		cfg:        cfg,
	}
}

// Report summarizes one ingestion run.
type Report struct {
	Ingested []string
	Skipped  []string
	Failed   map[string]error
}
