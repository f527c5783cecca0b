package orchestrator

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/errors"
	"github.com/concept-rag/conceptrag/internal/search"
)

// ChunkHit is one broad_chunks_search or chunks_search result: like
// CatalogHit but with the raw chunk text instead of a preview, and no
// title field. The title signal is passed through as reported; the chunks
// collection never sets it.
type ChunkHit struct {
	SourcePath      string   `json:"source_path"`
	Text            string   `json:"text"`
	Score           float64  `json:"score"`
	Signals         Signals  `json:"signals"`
	MatchedConcepts []string `json:"matched_concepts"`
}

// BroadChunksSearch runs the hybrid scorer against the whole chunks
// collection, unrestricted by document.
func (o *Orchestrator) BroadChunksSearch(ctx context.Context, queryText string, limit int) ([]ChunkHit, error) {
	if limit <= 0 {
		limit = 10
	}
	hits, err := runHybrid(ctx, o, o.chunks.Collection(), queryText, limit)
	if err != nil {
		return nil, err
	}
	return toChunkHits(hits), nil
}

// ChunksSearch runs the hybrid scorer against the chunks collection,
// restricted to rows belonging to sourcePath. The hybrid
// service has no per-document filter, so this over-fetches and filters the
// candidate set by source_path before truncating to limit.
func (o *Orchestrator) ChunksSearch(ctx context.Context, queryText, sourcePath string, limit int) ([]ChunkHit, error) {
	if limit <= 0 {
		limit = 5
	}
	if sourcePath == "" {
		return nil, errors.ValidationError("source_path is required", nil)
	}

	// Over-fetch generously so filtering to one document still leaves
	// enough candidates to fill limit.
	hits, err := runHybrid(ctx, o, o.chunks.Collection(), queryText, limit*10)
	if err != nil {
		return nil, err
	}

	filtered := hits[:0]
	for _, h := range hits {
		if h.Row.SourcePath == sourcePath {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return toChunkHits(filtered), nil
}

func toChunkHits(hits []search.Hit) []ChunkHit {
	out := make([]ChunkHit, len(hits))
	for i, h := range hits {
		out[i] = ChunkHit{
			SourcePath:      h.Row.SourcePath,
			Text:            h.Row.Text,
			Score:           h.Score,
			Signals:         toSignals(h.Signals),
			MatchedConcepts: h.Row.Concepts,
		}
	}
	return out
}
