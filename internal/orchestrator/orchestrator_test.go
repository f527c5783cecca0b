package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/concept-rag/conceptrag/internal/search"
	"github.com/concept-rag/conceptrag/internal/store"
)

func TestPreview_TruncatesOnRuneBoundary(t *testing.T) {
	text := "a résumé of café culture across décades of café history"
	got := preview(text, 10)
	assert.LessOrEqual(t, len([]rune(got)), 10)
}

func TestPreview_ShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "short", preview("short", 280))
}

func TestJaccard_IdenticalWordSetsIsOne(t *testing.T) {
	a := toWordSet("dependency injection")
	b := toWordSet("dependency injection")
	assert.Equal(t, 1.0, jaccard(a, b))
}

func TestJaccard_DisjointWordSetsIsZero(t *testing.T) {
	a := toWordSet("dependency injection")
	b := toWordSet("garbage collection")
	assert.Zero(t, jaccard(a, b))
}

func TestJaccard_PartialOverlap(t *testing.T) {
	a := toWordSet("dependency injection pattern")
	b := toWordSet("dependency injection")
	got := jaccard(a, b)
	assert.InDelta(t, 2.0/3.0, got, 1e-9)
}

func TestCosineSimilarity_IdenticalVectorsIsOne(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, cosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_OrthogonalVectorsIsZero(t *testing.T) {
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{0, 1}))
}

func TestCosineSimilarity_MismatchedLengthsIsZero(t *testing.T) {
	assert.Zero(t, cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
}

func TestToChunkHits_MapsFieldsAndKeepsTitleSignal(t *testing.T) {
	hits := []search.Hit{
		{
			Row:     store.Row{SourcePath: "doc.txt", Text: "chunk text", Concepts: []string{"a"}},
			Score:   0.75,
			Signals: search.Signals{Vec: 0.5, Title: 10},
		},
	}
	out := toChunkHits(hits)
	assert.Len(t, out, 1)
	assert.Equal(t, "doc.txt", out[0].SourcePath)
	assert.Equal(t, "chunk text", out[0].Text)
	assert.Equal(t, []string{"a"}, out[0].MatchedConcepts)
	assert.Equal(t, 10.0, out[0].Signals.Title, "service-reported title signal is still surfaced for debugging even though chunks collections never set it")
}
