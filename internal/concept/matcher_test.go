package concept

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchExactWordBoundedConcept(t *testing.T) {
	m := NewMatcher()
	doc := DocConcepts{Primary: []string{"caching"}, Categories: []string{"infrastructure"}}
	res := m.Match(doc, "The system relies heavily on caching to reduce latency.")
	require.Contains(t, res.Concepts, "caching")
	require.Equal(t, []string{"infrastructure"}, res.ConceptCategories)
	require.Greater(t, res.ConceptDensity, 0.0)
}

func TestMatchRejectsSubstringWithoutWordBoundary(t *testing.T) {
	m := NewMatcher()
	doc := DocConcepts{Technical: []string{"cache"}}
	res := m.Match(doc, "We discussed cachefile rotation policy.")
	require.NotContains(t, res.Concepts, "cache")
}

func TestMatchFuzzyMultiWordConcept(t *testing.T) {
	m := NewMatcher()
	doc := DocConcepts{Primary: []string{"dependency injection"}}
	res := m.Match(doc, "This section explains injection of dependency containers across modules.")
	require.Contains(t, res.Concepts, "dependency injection")
}

func TestMatchNoMatchYieldsZeroDensityAndEmptyCategories(t *testing.T) {
	m := NewMatcher()
	doc := DocConcepts{Primary: []string{"quantum computing"}, Categories: []string{"physics"}}
	res := m.Match(doc, "A completely unrelated paragraph about gardening.")
	require.Empty(t, res.Concepts)
	require.Empty(t, res.ConceptCategories)
	require.Equal(t, 0.0, res.ConceptDensity)
}

func TestMatchRejectsPunctuationOnlyConcept(t *testing.T) {
	m := NewMatcher()
	doc := DocConcepts{Related: []string{"---"}}
	res := m.Match(doc, "Text full of --- dashes --- everywhere.")
	require.Empty(t, res.Concepts)
}

func TestMatchDensityBoundedToOne(t *testing.T) {
	m := NewMatcher()
	doc := DocConcepts{Primary: []string{"a", "b", "c", "d", "e", "f", "g", "h"}}
	res := m.Match(doc, "a b c d e f g h")
	require.LessOrEqual(t, res.ConceptDensity, 1.0)
}

func TestMatchRegexMetacharactersSafelyLiteral(t *testing.T) {
	m := NewMatcher()
	doc := DocConcepts{Technical: []string{"c++"}}
	res := m.Match(doc, "the codebase is written in c++ extensively")
	require.Contains(t, res.Concepts, "c++")
}

func TestStatisticsAggregatesAcrossChunks(t *testing.T) {
	results := []MatchResult{
		{Concepts: []string{"caching", "latency"}},
		{Concepts: []string{"caching"}},
		{},
	}
	stats := Statistics(results)
	require.Equal(t, 3, stats.TotalChunks)
	require.Equal(t, 2, stats.ChunksWithConcepts)
	require.InDelta(t, 1.0, stats.AvgConceptsPerChunk, 1e-9)
	require.Equal(t, "caching", stats.TopConcepts[0].Name)
	require.Equal(t, 2, stats.TopConcepts[0].Chunks)
}
