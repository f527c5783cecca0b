// Package store provides the persistence layer for the engine: an HNSW
// vector index, a weighted-BM25 keyword index, and SQLite-backed columnar
// tables for the three named tables (catalog, chunks, concepts).
package store

import (
	"context"
	"fmt"
	"time"
)

// TableName identifies one of the three logical tables the engine persists.
type TableName string

const (
	TableCatalog  TableName = "catalog"
	TableChunks   TableName = "chunks"
	TableConcepts TableName = "concepts"
)

// ConceptBlob is the structured primary/technical/related/categories blob
// attached to a catalog record by the concept extractor.
type ConceptBlob struct {
	Primary    []string `json:"primary"`
	Technical  []string `json:"technical"`
	Related    []string `json:"related"`
	Categories []string `json:"categories"`
}

// CatalogRecord is one row of the catalog table: one per ingested document.
type CatalogRecord struct {
	ID          uint64      `json:"id"`
	SourcePath  string      `json:"source_path"`
	ContentHash string      `json:"content_hash"`
	Summary     string      `json:"summary"`
	Concepts    ConceptBlob `json:"concepts"`
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	Year        string      `json:"year"`
	Publisher   string      `json:"publisher"`
	ISBN        string      `json:"isbn"`
	Embedding   []float32   `json:"embedding"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ChunkRecord is one row of the chunks table: one per text window.
type ChunkRecord struct {
	ID                uint64    `json:"id"`
	SourcePath        string    `json:"source_path"`
	ContentHash       string    `json:"content_hash"`
	Text              string    `json:"text"`
	Concepts          []string  `json:"concepts"`
	ConceptCategories []string  `json:"concept_categories"`
	ConceptDensity    float64   `json:"concept_density"`
	Embedding         []float32 `json:"embedding"`
}

// ConceptKind tags a concept record with the tier it was declared at, or as
// a browsing category. Category takes precedence over thematic (see
// DESIGN.md open-question decision for §4.6).
type ConceptKind string

const (
	ConceptKindThematic   ConceptKind = "thematic"
	ConceptKindTerminology ConceptKind = "terminology"
	ConceptKindRelated    ConceptKind = "related"
	ConceptKindCategory   ConceptKind = "category"
)

// ConceptRecord is one row of the concepts table: one per unique lowercase
// concept name, global across the corpus.
type ConceptRecord struct {
	ID              uint64      `json:"id"`
	Name            string      `json:"name"`
	Kind            ConceptKind `json:"kind"`
	DocumentCount   int         `json:"document_count"`
	ChunkCount      int         `json:"chunk_count"`
	CatalogIDs      []uint64    `json:"catalog_ids"`
	RelatedConcepts []string    `json:"related_concepts"`
	Synonyms        []string    `json:"synonyms"`
	BroaderTerms    []string    `json:"broader_terms"`
	NarrowerTerms   []string    `json:"narrower_terms"`
	Embedding       []float32   `json:"embedding"`
	Weight          int         `json:"weight"`

	// ParentCategories/ChildCategories/RelatedCategories are populated only
	// for Kind == ConceptKindCategory, supporting the hierarchical browsing
	// operations of §4.10.
	ParentCategories  []string `json:"parent_categories,omitempty"`
	ChildCategories   []string `json:"child_categories,omitempty"`
	RelatedCategories []string `json:"related_categories,omitempty"`
}

// VectorResult is a single hit from a vector-knn lookup.
type VectorResult struct {
	ID       uint64
	Distance float32 // lower is more similar
	Score    float32 // normalized similarity in [0,1]
}

// VectorStoreConfig configures an HNSW vector index for one table.
type VectorStoreConfig struct {
	// Dimensions is the fixed embedding dimension D for this database.
	Dimensions int
	// Metric is the distance metric: "cos" (cosine) or "l2" (euclidean).
	Metric string
	// M is HNSW max connections per layer.
	M int
	// EfSearch is HNSW query-time search width.
	EfSearch int
}

// DefaultVectorStoreConfig returns sensible defaults for a vector store of
// the given dimension.
func DefaultVectorStoreConfig(dimensions int) VectorStoreConfig {
	return VectorStoreConfig{
		Dimensions: dimensions,
		Metric:     "cos",
		M:          16,
		EfSearch:   64,
	}
}

// VectorStore provides nearest-neighbor search over fixed-dimension vectors
// keyed by a 64-bit row id. One instance backs each of the three tables.
type VectorStore interface {
	Add(ctx context.Context, ids []uint64, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]VectorResult, error)
	Delete(ctx context.Context, ids []uint64) error
	AllIDs() []uint64
	Contains(id uint64) bool
	Count() int
	Save(path string) error
	Load(path string) error
	Close() error
}

// ErrDimensionMismatch indicates a vector embedding whose length does not
// match the database's fixed dimension D.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// BM25Config configures the weighted-BM25 scorer (§4.9).
type BM25Config struct {
	K1             float64
	B              float64
	StopWords      []string
	MinTokenLength int
}

// DefaultBM25Config returns the default BM25 parameters.
func DefaultBM25Config() BM25Config {
	return BM25Config{
		K1:             1.2,
		B:              0.75,
		StopWords:      DefaultStopWords,
		MinTokenLength: 3,
	}
}

// TextDocument is a single text field indexed for keyword search: used both
// by the optional Bleve backend (BM25Index) and to feed corpus statistics
// into the BM25Stats used by the hybrid scorer.
type TextDocument struct {
	ID   uint64
	Text string
}

// BM25Result is a single hit from a plain (unweighted) keyword search.
type BM25Result struct {
	ID           uint64
	Score        float64
	MatchedTerms []string
}

// IndexStats reports size information about a keyword index.
type IndexStats struct {
	DocumentCount int
}

// BM25Index is the optional plain-keyword search backend (Bleve-backed),
// kept as an ambient pluggable BM25 backend for standalone keyword
// lookups; the hybrid scorer's s_bm25 signal does not go through this
// interface (see BM25Stats / WeightedBM25 in bm25stats.go).
type BM25Index interface {
	Index(ctx context.Context, docs []TextDocument) error
	Search(ctx context.Context, query string, limit int) ([]BM25Result, error)
	Delete(ctx context.Context, ids []uint64) error
	Stats() IndexStats
	Close() error
}
