package orchestrator

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/store"
)

// CategoryPage is one page of BrowseCategories results.
type CategoryPage struct {
	Categories []CategorySummary `json:"categories"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// CategorySummary is one category row, trimmed to what a category listing
// needs.
type CategorySummary struct {
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
	ChunkCount    int    `json:"chunk_count"`
}

// BrowseCategories scans the concept table's category-kind rows ordered by
// name, paginated by cursor.
func (o *Orchestrator) BrowseCategories(ctx context.Context, cursor string, limit int) (*CategoryPage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, next, err := o.concepts.ScanByKind(ctx, store.ConceptKindCategory, cursor, limit)
	if err != nil {
		return nil, err
	}

	out := make([]CategorySummary, len(rows))
	for i, r := range rows {
		out[i] = CategorySummary{Name: r.Name, DocumentCount: r.DocumentCount, ChunkCount: r.ChunkCount}
	}
	return &CategoryPage{Categories: out, NextCursor: next}, nil
}

// CategoryChildren returns the child categories declared under categoryName
// along with each child's own summary row, backing a drill-down UI.
func (o *Orchestrator) CategoryChildren(ctx context.Context, categoryName string) ([]CategorySummary, error) {
	parent, ok, err := o.concepts.ByName(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	if !ok || len(parent.ChildCategories) == 0 {
		return nil, nil
	}

	out := make([]CategorySummary, 0, len(parent.ChildCategories))
	for _, name := range parent.ChildCategories {
		child, ok, err := o.concepts.ByName(ctx, name)
		if err != nil || !ok {
			continue
		}
		out = append(out, CategorySummary{Name: child.Name, DocumentCount: child.DocumentCount, ChunkCount: child.ChunkCount})
	}
	return out, nil
}
