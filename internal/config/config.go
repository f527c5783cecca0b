// Package config loads and validates conceptrag's runtime configuration.
//
// Configuration layers, lowest to highest precedence: built-in defaults,
// a YAML file (only when a path is passed explicitly), then
// environment variable overrides (CONCEPTRAG_*).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete conceptrag engine configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Chunking   ChunkingConfig   `yaml:"chunking" json:"chunking"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`
	Concepts   ConceptsConfig   `yaml:"concepts" json:"concepts"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Query      QueryConfig      `yaml:"query" json:"query"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts" json:"timeouts"`
}

// ChunkingConfig configures the fixed-window chunker.
type ChunkingConfig struct {
	// WindowSize is the target chunk size in characters (W).
	WindowSize int `yaml:"window_size" json:"window_size"`
	// Overlap is the number of trailing characters shared between adjacent
	// chunks (O).
	Overlap int `yaml:"overlap" json:"overlap"`
}

// ExtractionConfig configures the Concept Extractor and the Parallel
// Extraction Coordinator.
type ExtractionConfig struct {
	// ShortDocThreshold is Tshort, the character count below which a
	// document is extracted in a single LLM call.
	ShortDocThreshold int `yaml:"short_doc_threshold" json:"short_doc_threshold"`
	// Concurrency is C, the number of worker slots in the coordinator.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// MinRequestIntervalMS is I, the minimum milliseconds between any two
	// outgoing LLM requests enforced by the rate limiter.
	MinRequestIntervalMS int `yaml:"min_request_interval_ms" json:"min_request_interval_ms"`
	// RateLimiterHighWaterMark is the queue depth at which the coordinator
	// stops accepting new documents (backpressure).
	RateLimiterHighWaterMark int `yaml:"rate_limiter_high_water_mark" json:"rate_limiter_high_water_mark"`
	// RateLimiterLowWaterMark is the queue depth the coordinator must drain
	// below before it resumes accepting new documents.
	RateLimiterLowWaterMark int `yaml:"rate_limiter_low_water_mark" json:"rate_limiter_low_water_mark"`
	// Model is the LLM model identifier used for concept extraction.
	Model string `yaml:"model" json:"model"`
}

// ConceptsConfig configures the Concept-Chunk Matcher, Concept Enricher, and
// Concept Index Builder.
type ConceptsConfig struct {
	// FuzzyMatchThreshold is the minimum word-set Jaccard similarity for a
	// multi-word concept to fuzzy-match a chunk (open question, resolved in DESIGN.md).
	FuzzyMatchThreshold float64 `yaml:"fuzzy_match_threshold" json:"fuzzy_match_threshold"`
	// MaxSynonyms, MaxBroaderTerms, MaxNarrowerTerms cap lexical-network
	// enrichment (S=5, H=3, N=5).
	MaxSynonyms     int `yaml:"max_synonyms" json:"max_synonyms"`
	MaxBroaderTerms int `yaml:"max_broader_terms" json:"max_broader_terms"`
	MaxNarrowerTerms int `yaml:"max_narrower_terms" json:"max_narrower_terms"`
	// MaxRelatedConcepts is R, the number of co-occurring concepts retained
	// per concept record.
	MaxRelatedConcepts int `yaml:"max_related_concepts" json:"max_related_concepts"`
	// LexicalEndpoint is the base URL of the external lexical-network
	// service (synonyms/hypernyms/hyponyms). Empty disables concept
	// enrichment and query-time lexical-network expansion, degrading
	// gracefully rather than failing ingestion or search.
	LexicalEndpoint string `yaml:"lexical_endpoint" json:"lexical_endpoint"`
}

// EmbeddingsConfig configures the Embedding Service.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "static" (deterministic
	// hand-rolled hash features) or "http" (a local embedding server).
	Provider string `yaml:"provider" json:"provider"`
	// Dimensions is D, the fixed embedding dimension for this database.
	Dimensions int `yaml:"dimensions" json:"dimensions"`
	// Endpoint is the HTTP embedding server URL, used when Provider="http".
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// CacheSize is the number of (text -> vector) entries kept in the LRU
	// embedding cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// QueryConfig configures the Query Expander.
type QueryConfig struct {
	// CorpusNeighbors is Kc, the number of nearest concepts retrieved from
	// the concept table during corpus-grounded expansion.
	CorpusNeighbors int `yaml:"corpus_neighbors" json:"corpus_neighbors"`
	// ThematicSimilarityFloor and TerminologySimilarityFloor are the
	// per-kind similarity thresholds applied during corpus-grounded expansion.
	ThematicSimilarityFloor    float64 `yaml:"thematic_similarity_floor" json:"thematic_similarity_floor"`
	TerminologySimilarityFloor float64 `yaml:"terminology_similarity_floor" json:"terminology_similarity_floor"`
	// MaxRelatedExpansions caps how many of a matched concept's related
	// concepts are also added (4 by default).
	MaxRelatedExpansions int `yaml:"max_related_expansions" json:"max_related_expansions"`
}

// SearchConfig configures the Hybrid Search Service.
type SearchConfig struct {
	// VecWeight, BM25Weight, ConceptWeight, WordnetWeight are the convex
	// combination weights; they should sum to 1.0.
	VecWeight     float64 `yaml:"vec_weight" json:"vec_weight"`
	BM25Weight    float64 `yaml:"bm25_weight" json:"bm25_weight"`
	ConceptWeight float64 `yaml:"concept_weight" json:"concept_weight"`
	WordnetWeight float64 `yaml:"wordnet_weight" json:"wordnet_weight"`
	// TitleBoost is the raw boost applied outside the convex combination
	// when an original term matches the row's title as a whole word.
	TitleBoost float64 `yaml:"title_boost" json:"title_boost"`
	// BM25K1 and BM25B are the standard BM25 tuning parameters.
	BM25K1 float64 `yaml:"bm25_k1" json:"bm25_k1"`
	BM25B  float64 `yaml:"bm25_b" json:"bm25_b"`
	// OverfetchFactor is L, the over-fetch multiplier for vector-knn before
	// ranking and truncating to the requested limit.
	OverfetchFactor int `yaml:"overfetch_factor" json:"overfetch_factor"`
}

// StorageConfig configures the storage adapter.
type StorageConfig struct {
	// DataDir is the directory holding the three persisted tables.
	DataDir string `yaml:"data_dir" json:"data_dir"`
	// BM25Backend selects "bleve" or "sqlite" for the keyword index.
	BM25Backend string `yaml:"bm25_backend" json:"bm25_backend"`
	// VectorM, VectorEfConstruction, VectorEfSearch tune the HNSW graphs
	// backing all three vector columns.
	VectorM              int `yaml:"vector_m" json:"vector_m"`
	VectorEfConstruction int `yaml:"vector_ef_construction" json:"vector_ef_construction"`
	VectorEfSearch       int `yaml:"vector_ef_search" json:"vector_ef_search"`
	// Driver selects the SQLite binding backing the metadata store: "pure"
	// (modernc.org/sqlite, no CGO) or "cgo" (mattn/go-sqlite3).
	Driver string `yaml:"driver" json:"driver"`
}

// TimeoutsConfig configures external-call timeouts.
type TimeoutsConfig struct {
	LLM       time.Duration `yaml:"llm" json:"llm"`
	Lexical   time.Duration `yaml:"lexical" json:"lexical"`
	Embedding time.Duration `yaml:"embedding" json:"embedding"`
}

// Default returns the engine configuration with its built-in defaults.
func Default() *Config {
	home, err := os.UserHomeDir()
	dataDir := filepath.Join(os.TempDir(), "conceptrag")
	if err == nil {
		dataDir = filepath.Join(home, ".conceptrag", "data")
	}

	return &Config{
		Version: 1,
		Chunking: ChunkingConfig{
			WindowSize: 500,
			Overlap:    10,
		},
		Extraction: ExtractionConfig{
			ShortDocThreshold:        400_000,
			Concurrency:              3,
			MinRequestIntervalMS:     250,
			RateLimiterHighWaterMark: 50,
			RateLimiterLowWaterMark:  10,
			Model:                    "claude-3-5-haiku-latest",
		},
		Concepts: ConceptsConfig{
			FuzzyMatchThreshold: 0.6,
			MaxSynonyms:         5,
			MaxBroaderTerms:     3,
			MaxNarrowerTerms:    5,
			MaxRelatedConcepts:  10,
			LexicalEndpoint:     "",
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "static",
			Dimensions: 384,
			CacheSize:  4096,
		},
		Query: QueryConfig{
			CorpusNeighbors:            15,
			ThematicSimilarityFloor:    0.3,
			TerminologySimilarityFloor: 0.6,
			MaxRelatedExpansions:       4,
		},
		Search: SearchConfig{
			VecWeight:       0.45,
			BM25Weight:      0.30,
			ConceptWeight:   0.20,
			WordnetWeight:   0.05,
			TitleBoost:      10.0,
			BM25K1:          1.2,
			BM25B:           0.75,
			OverfetchFactor: 50,
		},
		Storage: StorageConfig{
			DataDir:              dataDir,
			BM25Backend:          "sqlite",
			VectorM:              32,
			VectorEfConstruction: 128,
			VectorEfSearch:       64,
			Driver:               "pure",
		},
		Timeouts: TimeoutsConfig{
			LLM:       120 * time.Second,
			Lexical:   5 * time.Second,
			Embedding: 30 * time.Second,
		},
	}
}

// Load reads the default configuration, overlays the YAML file at path
// (skipped if path is empty or the file does not exist), then applies
// CONCEPTRAG_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks internal consistency of the configuration.
func (c *Config) Validate() error {
	if c.Chunking.WindowSize <= 0 {
		return fmt.Errorf("chunking.window_size must be positive")
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.WindowSize {
		return fmt.Errorf("chunking.overlap must be in [0, window_size)")
	}
	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive")
	}
	sum := c.Search.VecWeight + c.Search.BM25Weight + c.Search.ConceptWeight + c.Search.WordnetWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("search weights must sum to ~1.0, got %.4f", sum)
	}
	if c.Extraction.Concurrency <= 0 {
		c.Extraction.Concurrency = runtime.NumCPU()
	}
	return nil
}

// applyEnvOverrides applies CONCEPTRAG_* environment variables on top of cfg.
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("CONCEPTRAG_VEC_WEIGHT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.VecWeight = f
		}
	}
	if v, ok := os.LookupEnv("CONCEPTRAG_BM25_WEIGHT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.BM25Weight = f
		}
	}
	if v, ok := os.LookupEnv("CONCEPTRAG_CONCEPT_WEIGHT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.ConceptWeight = f
		}
	}
	if v, ok := os.LookupEnv("CONCEPTRAG_WORDNET_WEIGHT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.WordnetWeight = f
		}
	}
	if v, ok := os.LookupEnv("CONCEPTRAG_EXTRACTION_CONCURRENCY"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Extraction.Concurrency = n
		}
	}
	if v, ok := os.LookupEnv("CONCEPTRAG_DATA_DIR"); ok && v != "" {
		cfg.Storage.DataDir = v
	}
}

// LLMAPIKeyFromEnv returns the mandatory LLM service credential.
// Its absence is a fatal error at ingestion time but is never consulted at
// query time, since query is fully local.
func LLMAPIKeyFromEnv() (string, error) {
	key := os.Getenv("CONCEPTRAG_LLM_API_KEY")
	if key == "" {
		return "", fmt.Errorf("CONCEPTRAG_LLM_API_KEY is not set")
	}
	return key, nil
}
