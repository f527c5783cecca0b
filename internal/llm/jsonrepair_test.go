package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConceptBlobCleanJSON(t *testing.T) {
	blob, err := parseConceptBlob(`{"primary_concepts":["a"],"technical_terms":["b"],"related_concepts":["c"],"categories":["d"]}`)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, blob.PrimaryConcepts)
}

func TestParseConceptBlobStripsCodeFence(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"primary_concepts\":[\"x\"],\"technical_terms\":[],\"related_concepts\":[],\"categories\":[]}\n```\nHope that helps!"
	blob, err := parseConceptBlob(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, blob.PrimaryConcepts)
}

func TestParseConceptBlobLocatesOutermostBraces(t *testing.T) {
	raw := `Sure, {"primary_concepts":["y"],"technical_terms":[],"related_concepts":[],"categories":[]} is the answer.`
	blob, err := parseConceptBlob(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"y"}, blob.PrimaryConcepts)
}

func TestParseConceptBlobUnrepairable(t *testing.T) {
	_, err := parseConceptBlob("not json at all, no braces")
	require.Error(t, err)
}

func TestNormalizeConcept(t *testing.T) {
	require.Equal(t, "dependency injection", normalizeConcept("  Dependency   Injection!  "))
}

func TestNormalizeListDedupesPreservingOrder(t *testing.T) {
	out := normalizeList([]string{"Foo", "bar", "foo ", "", "bar."})
	require.Equal(t, []string{"foo", "bar"}, out)
}
