package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConceptIndex struct {
	candidates []ConceptCandidate
	err        error
}

func (s stubConceptIndex) NearestConcepts(ctx context.Context, vector []float32, k int) ([]ConceptCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

type stubLexical struct {
	relations map[string][2][]string // term -> [synonyms, hypernyms]
}

func (s stubLexical) Expand(ctx context.Context, term string) ([]string, []string, error) {
	rel, ok := s.relations[term]
	if !ok {
		return nil, nil, nil
	}
	return rel[0], rel[1], nil
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vec, s.err
}

func TestExpand_EmptyConceptTableIsDeterministic(t *testing.T) {
	e := NewExpander(nil, nil, nil, DefaultConfig())
	exp := e.Expand(context.Background(), "software architecture")

	assert.Equal(t, []string{"software", "architecture"}, exp.OriginalTerms)
	assert.Equal(t, map[string]float64{"software": 1.0, "architecture": 1.0}, exp.Weights)
	assert.Empty(t, exp.CorpusTerms)
	assert.Empty(t, exp.WordnetTerms)
}

func TestExpand_EmptyQueryReturnsEmptyExpansion(t *testing.T) {
	e := NewExpander(nil, nil, nil, DefaultConfig())
	exp := e.Expand(context.Background(), "  ")

	assert.Empty(t, exp.OriginalTerms)
	assert.Empty(t, exp.AllTerms)
	assert.Empty(t, exp.Weights)
}

func TestExpand_OriginalTermsAlwaysWeightOne(t *testing.T) {
	concepts := stubConceptIndex{candidates: []ConceptCandidate{
		{Name: "architecture", Kind: "thematic", Similarity: 0.9, RelatedConcepts: []string{"design"}},
	}}
	e := NewExpander(concepts, nil, stubEmbedder{vec: []float32{0.1}}, DefaultConfig())
	exp := e.Expand(context.Background(), "architecture")

	require.Contains(t, exp.Weights, "architecture")
	assert.Equal(t, 1.0, exp.Weights["architecture"])
	assert.InDelta(t, 0.8*0.9*0.75, exp.Weights["design"], 1e-9)
	assert.Contains(t, exp.CorpusTerms, "design")
	assert.NotContains(t, exp.CorpusTerms, "architecture")
}

func TestExpand_ThematicBelowFloorSkipped(t *testing.T) {
	concepts := stubConceptIndex{candidates: []ConceptCandidate{
		{Name: "unrelated", Kind: "thematic", Similarity: 0.1},
	}}
	e := NewExpander(concepts, nil, stubEmbedder{vec: []float32{0.1}}, DefaultConfig())
	exp := e.Expand(context.Background(), "query")

	assert.NotContains(t, exp.AllTerms, "unrelated")
}

func TestExpand_TerminologyNoRelatedFanOut(t *testing.T) {
	concepts := stubConceptIndex{candidates: []ConceptCandidate{
		{Name: "kubernetes", Kind: "terminology", Similarity: 0.7, RelatedConcepts: []string{"docker"}},
	}}
	e := NewExpander(concepts, nil, stubEmbedder{vec: []float32{0.1}}, DefaultConfig())
	exp := e.Expand(context.Background(), "query")

	assert.Contains(t, exp.CorpusTerms, "kubernetes")
	assert.NotContains(t, exp.AllTerms, "docker")
}

func TestExpand_LexicalNeverReplacesOriginal(t *testing.T) {
	lexical := stubLexical{relations: map[string][2][]string{
		"fast": {{"quick", "rapid"}, nil},
	}}
	e := NewExpander(nil, lexical, nil, DefaultConfig())
	exp := e.Expand(context.Background(), "fast")

	assert.Equal(t, 1.0, exp.Weights["fast"])
	assert.Equal(t, 0.6, exp.Weights["quick"])
	assert.Contains(t, exp.WordnetTerms, "quick")
	assert.Contains(t, exp.WordnetTerms, "rapid")
}

func TestExpand_CorpusUnreachableDegradesGracefully(t *testing.T) {
	concepts := stubConceptIndex{err: assertError{}}
	lexical := stubLexical{relations: map[string][2][]string{"fast": {{"quick"}, nil}}}
	e := NewExpander(concepts, lexical, stubEmbedder{vec: []float32{0.1}}, DefaultConfig())
	exp := e.Expand(context.Background(), "fast")

	assert.Empty(t, exp.CorpusTerms)
	assert.Contains(t, exp.WordnetTerms, "quick")
}

func TestExpand_WeightCombinationTakesMax(t *testing.T) {
	concepts := stubConceptIndex{candidates: []ConceptCandidate{
		{Name: "quick", Kind: "terminology", Similarity: 0.99},
	}}
	lexical := stubLexical{relations: map[string][2][]string{"fast": {{"quick"}, nil}}}
	e := NewExpander(concepts, lexical, stubEmbedder{vec: []float32{0.1}}, DefaultConfig())
	exp := e.Expand(context.Background(), "fast")

	// corpus weight 0.8*0.99 beats lexical's 0.6*1.0
	assert.InDelta(t, 0.8*0.99, exp.Weights["quick"], 1e-9)
}

type assertError struct{}

func (assertError) Error() string { return "concept table unreachable" }
