package concept

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderMergesDeclarationsAndChunkCounts(t *testing.T) {
	b := NewBuilder(nil)
	decls := []Declaration{
		{CatalogID: "doc1", Primary: []string{"caching"}, Technical: []string{"redis"}, Categories: []string{"infrastructure"}},
		{CatalogID: "doc2", Primary: []string{"caching"}, Related: []string{"latency"}},
	}
	matches := []ChunkMatch{
		{CatalogID: "doc1", Concepts: []string{"caching", "redis"}},
		{CatalogID: "doc2", Concepts: []string{"caching"}},
	}

	records := b.Build(context.Background(), decls, matches)
	byName := indexByName(records)

	caching := byName["caching"]
	require.Equal(t, 2, caching.DocumentCount)
	require.Equal(t, 2, caching.ChunkCount)
	require.Equal(t, 4, caching.Weight)
	require.Equal(t, KindThematic, caching.Kind)

	redis := byName["redis"]
	require.Equal(t, KindTerminology, redis.Kind)
	require.Equal(t, 1, redis.ChunkCount)
}

func TestBuilderRelatedConceptsRankedByCoOccurrence(t *testing.T) {
	b := NewBuilder(nil)
	decls := []Declaration{
		{CatalogID: "doc1", Primary: []string{"caching", "latency", "redis"}},
		{CatalogID: "doc2", Primary: []string{"caching", "latency"}},
	}
	records := b.Build(context.Background(), decls, nil)
	byName := indexByName(records)

	require.Equal(t, []string{"latency", "redis"}, byName["caching"].RelatedConcepts)
}

func TestBuilderIsIdempotent(t *testing.T) {
	b := NewBuilder(nil)
	decls := []Declaration{{CatalogID: "doc1", Primary: []string{"caching"}}}
	r1 := b.Build(context.Background(), decls, nil)
	r2 := NewBuilder(nil).Build(context.Background(), decls, nil)
	require.Equal(t, r1[0].ID, r2[0].ID)
	require.Equal(t, r1[0].DocumentCount, r2[0].DocumentCount)
}

func TestBuilderCategoryTakesPrecedence(t *testing.T) {
	b := NewBuilder(nil)
	decls := []Declaration{
		{CatalogID: "doc1", Related: []string{"architecture"}, Categories: []string{"architecture"}},
	}
	records := b.Build(context.Background(), decls, nil)
	require.Equal(t, KindCategory, records[0].Kind)
}

func indexByName(records []*Record) map[string]*Record {
	out := make(map[string]*Record, len(records))
	for _, r := range records {
		out[r.Name] = r
	}
	return out
}
