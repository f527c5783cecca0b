package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/en" // registers the "en" analyzer
	"github.com/blevesearch/bleve/v2/mapping"
	bsearch "github.com/blevesearch/bleve/v2/search"
)

// BleveBM25Index wraps Bleve v2 as the optional plain-keyword search
// backend, switched on by the Adapter's Config.EnableBleve. It is not on the path
// of the hybrid scorer's weighted s_bm25 signal (see bm25stats.go); it
// exists as an ambient pluggable BM25 backend and for standalone keyword
// lookups over a table's text field.
type BleveBM25Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	closed bool
}

type bleveDocument struct {
	Text string `json:"text"`
}

// NewBleveBM25Index creates an in-memory Bleve index over a table's text
// field using Bleve's standard English analyzer.
func NewBleveBM25Index() (*BleveBM25Index, error) {
	m, err := newIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("create index mapping: %w", err)
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("create in-memory index: %w", err)
	}
	return &BleveBM25Index{index: idx}, nil
}

func newIndexMapping() (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = "en"
	return m, nil
}

// Index adds or replaces documents in the index.
func (b *BleveBM25Index) Index(ctx context.Context, docs []TextDocument) error {
	if len(docs) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("index is closed")
	}

	batch := b.index.NewBatch()
	for _, doc := range docs {
		id := strconv.FormatUint(doc.ID, 10)
		if err := batch.Index(id, bleveDocument{Text: doc.Text}); err != nil {
			return fmt.Errorf("index document %d: %w", doc.ID, err)
		}
	}
	return b.index.Batch(batch)
}

// Search returns documents matching query, scored by Bleve's BM25 ranking.
func (b *BleveBM25Index) Search(ctx context.Context, queryStr string, limit int) ([]BM25Result, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}
	if strings.TrimSpace(queryStr) == "" {
		return []BM25Result{}, nil
	}

	q := bleve.NewMatchQuery(queryStr)
	q.SetField("text")
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.IncludeLocations = true

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]BM25Result, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		results = append(results, BM25Result{
			ID:           id,
			Score:        hit.Score,
			MatchedTerms: matchedTerms(hit),
		})
	}
	return results, nil
}

// Delete removes documents from the index.
func (b *BleveBM25Index) Delete(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("index is closed")
	}
	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(strconv.FormatUint(id, 10))
	}
	return b.index.Batch(batch)
}

// Stats returns index statistics.
func (b *BleveBM25Index) Stats() IndexStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return IndexStats{}
	}
	count, _ := b.index.DocCount()
	return IndexStats{DocumentCount: int(count)}
}

func (b *BleveBM25Index) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}

func matchedTerms(hit *bsearch.DocumentMatch) []string {
	terms := make(map[string]struct{})
	for field, locations := range hit.Locations {
		if field != "text" {
			continue
		}
		for term := range locations {
			terms[term] = struct{}{}
		}
	}
	result := make([]string, 0, len(terms))
	for term := range terms {
		result = append(result, term)
	}
	return result
}

var _ BM25Index = (*BleveBM25Index)(nil)
