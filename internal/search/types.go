// Package search implements the Hybrid Search Service: it
// combines dense vector similarity, weighted BM25, concept-membership
// overlap, lexical-network bonus, and title matching into a single ranked
// result set over any store.Collection.
package search

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/store"
)

// Weights are the convex-combination coefficients. They must
// sum to 1.0; s_title is applied outside the combination.
type Weights struct {
	Vec     float64
	BM25    float64
	Concept float64
	Wordnet float64
}

// DefaultWeights returns the default weighting.
func DefaultWeights() Weights {
	return Weights{Vec: 0.45, BM25: 0.30, Concept: 0.20, Wordnet: 0.05}
}

// Config configures the hybrid scorer.
type Config struct {
	Weights Weights
	// BM25K1, BM25B are the standard BM25 tuning parameters.
	BM25K1, BM25B float64
	// Overfetch is L, the vector-knn over-fetch multiplier before scoring.
	Overfetch int
	// TitleBoost is the raw (unnormalized) score added for a title hit.
	TitleBoost float64
}

// DefaultConfig returns the hybrid search service's default tuning.
func DefaultConfig() Config {
	return Config{
		Weights:    DefaultWeights(),
		BM25K1:     1.2,
		BM25B:      0.75,
		Overfetch:  50,
		TitleBoost: 10.0,
	}
}

// Signals exposes each of the five component scores for debugging (a hit's
// external interface: "signals: {vec, bm25, concept, wordnet, title}").
type Signals struct {
	Vec     float64
	BM25    float64
	Concept float64
	Wordnet float64
	Title   float64
}

// Hit is one ranked result.
type Hit struct {
	Row     store.Row
	Score   float64
	Signals Signals
}

// Embedder embeds the raw query string for the vector-knn lookup.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service is the Hybrid Search Service.
type Service struct {
	embedder Embedder
	cfg      Config
}

// NewService builds a Service. A zero-value cfg.Overfetch is replaced with
// DefaultConfig's values.
func NewService(embedder Embedder, cfg Config) *Service {
	if cfg.Overfetch <= 0 {
		cfg = DefaultConfig()
	}
	return &Service{embedder: embedder, cfg: cfg}
}
