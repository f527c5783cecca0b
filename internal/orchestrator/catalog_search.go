package orchestrator

import "context"

// CatalogHit is one catalog_search result.
type CatalogHit struct {
	SourcePath      string   `json:"source_path"`
	Title           string   `json:"title"`
	Preview         string   `json:"preview"`
	Score           float64  `json:"score"`
	Signals         Signals  `json:"signals"`
	MatchedConcepts []string `json:"matched_concepts"`
}

// CatalogSearch runs the hybrid scorer against the catalog collection with
// title boost active.
func (o *Orchestrator) CatalogSearch(ctx context.Context, queryText string, limit int) ([]CatalogHit, error) {
	if limit <= 0 {
		limit = 5
	}
	hits, err := runHybrid(ctx, o, o.catalog.Collection(), queryText, limit)
	if err != nil {
		return nil, err
	}

	out := make([]CatalogHit, len(hits))
	for i, h := range hits {
		out[i] = CatalogHit{
			SourcePath:      h.Row.SourcePath,
			Title:           h.Row.Title,
			Preview:         preview(h.Row.Text, PreviewLength),
			Score:           h.Score,
			Signals:         toSignals(h.Signals),
			MatchedConcepts: h.Row.Concepts,
		}
	}
	return out, nil
}

func preview(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n])
}
