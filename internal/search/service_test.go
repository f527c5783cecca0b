package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concept-rag/conceptrag/internal/query"
	"github.com/concept-rag/conceptrag/internal/store"
)

type fakeCollection struct {
	name      string
	isCatalog bool
	hits      []store.VectorResult
	rows      map[uint64]store.Row
	stats     *store.BM25Stats
}

func (f *fakeCollection) Name() string     { return f.name }
func (f *fakeCollection) IsCatalog() bool  { return f.isCatalog }
func (f *fakeCollection) Stats() *store.BM25Stats { return f.stats }

func (f *fakeCollection) VectorSearch(ctx context.Context, q []float32, k int) ([]store.VectorResult, error) {
	if k > len(f.hits) {
		k = len(f.hits)
	}
	return f.hits[:k], nil
}

func (f *fakeCollection) Row(ctx context.Context, id uint64) (store.Row, bool, error) {
	r, ok := f.rows[id]
	return r, ok, nil
}

type stubEmbedder struct{ vec []float32 }

func (s stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vec, nil
}

func newStats(docs map[uint64]string) *store.BM25Stats {
	stats := store.NewBM25Stats()
	for id, text := range docs {
		stats.Add(id, store.Tokenize(text))
	}
	return stats
}

func TestSearch_TitleBoostDominatesTies(t *testing.T) {
	coll := &fakeCollection{
		name:      "catalog",
		isCatalog: true,
		hits: []store.VectorResult{
			{ID: 1, Distance: 0.5, Score: 0.5},
			{ID: 2, Distance: 0.1, Score: 0.9},
		},
		rows: map[uint64]store.Row{
			1: {ID: 1, Title: "Clean Architecture", Text: "a book about software design"},
			2: {ID: 2, Title: "Unrelated Book", Text: "something else entirely"},
		},
		stats: newStats(map[uint64]string{
			1: "a book about software design",
			2: "something else entirely",
		}),
	}

	svc := NewService(stubEmbedder{vec: []float32{0.1}}, DefaultConfig())
	exp := query.Expansion{OriginalTerms: []string{"clean", "architecture"}, Weights: map[string]float64{"clean": 1.0, "architecture": 1.0}}

	hits, err := svc.Search(context.Background(), coll, "clean architecture", exp, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, uint64(1), hits[0].Row.ID, "title hit must outrank higher raw vector similarity")
	assert.Greater(t, hits[0].Signals.Title, 0.0)
}

func TestSearch_EmptyAllTermsReducesToVectorPlusTitle(t *testing.T) {
	coll := &fakeCollection{
		name: "chunks",
		hits: []store.VectorResult{{ID: 1, Distance: 0.2, Score: 0.8}},
		rows: map[uint64]store.Row{
			1: {ID: 1, Text: "some chunk text"},
		},
		stats: newStats(map[uint64]string{1: "some chunk text"}),
	}

	svc := NewService(stubEmbedder{vec: []float32{0.1}}, DefaultConfig())
	hits, err := svc.Search(context.Background(), coll, "query", query.Expansion{}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Zero(t, hits[0].Signals.BM25)
	assert.Zero(t, hits[0].Signals.Concept)
	assert.Zero(t, hits[0].Signals.Wordnet)
}

func TestSearch_NaNDistanceDropped(t *testing.T) {
	coll := &fakeCollection{
		name: "chunks",
		hits: []store.VectorResult{
			{ID: 1, Distance: float32(nan()), Score: 0},
			{ID: 2, Distance: 0.1, Score: 0.9},
		},
		rows: map[uint64]store.Row{
			1: {ID: 1, Text: "a"},
			2: {ID: 2, Text: "b"},
		},
		stats: newStats(map[uint64]string{1: "a", 2: "b"}),
	}
	svc := NewService(stubEmbedder{vec: []float32{0.1}}, DefaultConfig())
	hits, err := svc.Search(context.Background(), coll, "q", query.Expansion{}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, uint64(2), hits[0].Row.ID)
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestConceptOverlap_NoConceptsScoresZero(t *testing.T) {
	got := conceptOverlap(nil, toSet([]string{"a", "b"}), 2)
	assert.Zero(t, got)
}

func TestMinMaxNormalize_FlatInputIsAllZero(t *testing.T) {
	out := minMaxNormalize([]float64{3, 3, 3})
	assert.Equal(t, []float64{0, 0, 0}, out)
}
