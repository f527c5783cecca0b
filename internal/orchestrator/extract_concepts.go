package orchestrator

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/errors"
)

// ConceptBlob is the extract_concepts response: "{ source_path,
// primary_concepts[], technical_terms[], related_concepts[], categories[],
// summary }".
type ConceptBlob struct {
	SourcePath      string   `json:"source_path"`
	PrimaryConcepts []string `json:"primary_concepts"`
	TechnicalTerms  []string `json:"technical_terms"`
	RelatedConcepts []string `json:"related_concepts"`
	Categories      []string `json:"categories"`
	Summary         string   `json:"summary"`
}

// ExtractConcepts looks up a document by title or source path and returns
// its already-extracted concept blob. Not a search operation; exposed
// because it shares the catalog repository.
func (o *Orchestrator) ExtractConcepts(ctx context.Context, documentQuery string) (*ConceptBlob, error) {
	rec, ok, err := o.catalog.ByTitle(ctx, documentQuery)
	if err != nil {
		return nil, errors.RepositoryError("catalog", "catalog lookup failed", err)
	}
	if !ok {
		return nil, errors.ConceptNotFoundError(documentQuery)
	}
	return &ConceptBlob{
		SourcePath:      rec.SourcePath,
		PrimaryConcepts: rec.Concepts.Primary,
		TechnicalTerms:  rec.Concepts.Technical,
		RelatedConcepts: rec.Concepts.Related,
		Categories:      rec.Concepts.Categories,
		Summary:         rec.Summary,
	}, nil
}
