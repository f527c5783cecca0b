package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	responses []string
	calls     int
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp := f.responses[f.calls%len(f.responses)]
	f.calls++
	return resp, nil
}

func TestExtractSinglePass(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"primary_concepts":["caching"],"technical_terms":["redis"],"related_concepts":["latency"],"categories":["infrastructure"]}`,
	}}
	e := NewExtractor(client, 0)

	result := e.Extract(context.Background(), "short document about caching with redis")
	require.NoError(t, result.Err)
	require.Equal(t, []string{"caching"}, result.Concepts.PrimaryConcepts)
	require.Equal(t, []string{"redis"}, result.Concepts.TechnicalTerms)
	require.Equal(t, 1, client.calls)
}

func TestExtractMultiPassMergesAndPrefersHighestTier(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"primary_concepts":[],"technical_terms":["dependency injection"],"related_concepts":["testing"],"categories":["software design"]}`,
		`{"primary_concepts":["dependency injection"],"technical_terms":[],"related_concepts":["mocking"],"categories":["software design","architecture"]}`,
	}}
	e := NewExtractor(client, 10) // tiny threshold forces multiple sections

	text := strings.Repeat("x", 25)
	result := e.Extract(context.Background(), text)
	require.NoError(t, result.Err)
	require.Equal(t, []string{"dependency injection"}, result.Concepts.PrimaryConcepts)
	require.Empty(t, result.Concepts.TechnicalTerms)
	require.ElementsMatch(t, []string{"testing", "mocking"}, result.Concepts.RelatedConcepts)
	require.Equal(t, []string{"software design", "architecture"}, result.Concepts.Categories)
	require.Equal(t, 3, client.calls)
}

func TestExtractUnparseableDegradesToEmptyWithError(t *testing.T) {
	client := &fakeClient{responses: []string{"not json, sorry"}}
	e := NewExtractor(client, 0)

	result := e.Extract(context.Background(), "text")
	require.Error(t, result.Err)
	require.Empty(t, result.Concepts.PrimaryConcepts)
}

func TestSplitSectionsSingleWhenUnderThreshold(t *testing.T) {
	sections := splitSections("short", 400_000)
	require.Len(t, sections, 1)
}

func TestSplitSectionsMultipleWhenOverThreshold(t *testing.T) {
	sections := splitSections(strings.Repeat("a", 25), 10)
	require.Len(t, sections, 3)
}
