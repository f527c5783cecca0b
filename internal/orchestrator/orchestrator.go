// Package orchestrator implements the Search Orchestrator:
// the five public search operations, layered on top of the Repositories,
// the Query Expander and the Hybrid Search Service, plus the two
// category-browsing scan operations.
package orchestrator

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/errors"
	"github.com/concept-rag/conceptrag/internal/query"
	"github.com/concept-rag/conceptrag/internal/repo"
	"github.com/concept-rag/conceptrag/internal/search"
	"github.com/concept-rag/conceptrag/internal/store"
)

// PreviewLength is N, the number of leading characters of a catalog
// record's summary exposed as a search hit's preview.
const PreviewLength = 280

// Embedder embeds text for both the hybrid search service and the query
// expander's corpus-grounded lookup.
type Embedder interface {
	search.Embedder
	query.Embedder
}

// Orchestrator wires the three repositories, the hybrid scorer and the
// query expander into the five public search operations.
type Orchestrator struct {
	catalog  *repo.CatalogRepository
	chunks   *repo.ChunksRepository
	concepts *repo.ConceptsRepository
	expander *query.Expander
	hybrid   *search.Service
}

// New builds an Orchestrator. lexical may be nil, in which case query
// expansion never contributes wordnet terms.
func New(catalog *repo.CatalogRepository, chunks *repo.ChunksRepository, concepts *repo.ConceptsRepository, embedder Embedder, lexical query.LexicalExpander, queryCfg query.Config, searchCfg search.Config) *Orchestrator {
	return &Orchestrator{
		catalog:  catalog,
		chunks:   chunks,
		concepts: concepts,
		expander: query.NewExpander(concepts, lexical, embedder, queryCfg),
		hybrid:   search.NewService(embedder, searchCfg),
	}
}

// Signals mirrors search.Signals as an output DTO ("signals:
// {vec, bm25, concept, wordnet, title}").
type Signals struct {
	Vec     float64 `json:"vec"`
	BM25    float64 `json:"bm25"`
	Concept float64 `json:"concept"`
	Wordnet float64 `json:"wordnet"`
	Title   float64 `json:"title,omitempty"`
}

func toSignals(s search.Signals) Signals {
	return Signals{Vec: s.Vec, BM25: s.BM25, Concept: s.Concept, Wordnet: s.Wordnet, Title: s.Title}
}

func runHybrid(ctx context.Context, o *Orchestrator, coll store.Collection, queryText string, limit int) ([]search.Hit, error) {
	expansion := o.expander.Expand(ctx, queryText)
	hits, err := o.hybrid.Search(ctx, coll, queryText, expansion, limit)
	if err != nil {
		return nil, errors.SearchError("hybrid search failed", err)
	}
	return hits, nil
}
