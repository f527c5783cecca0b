package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default().Search, cfg.Search)
}

func TestLoadOverlaysYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  vec_weight: 0.5\n  bm25_weight: 0.3\n  concept_weight: 0.15\n  wordnet_weight: 0.05\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.InDelta(t, 0.5, cfg.Search.VecWeight, 1e-9)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  vec_weight: 0.5\n  bm25_weight: 0.3\n  concept_weight: 0.15\n  wordnet_weight: 0.05\n"), 0o644))

	t.Setenv("CONCEPTRAG_VEC_WEIGHT", "0.6")
	t.Setenv("CONCEPTRAG_BM25_WEIGHT", "0.25")
	t.Setenv("CONCEPTRAG_CONCEPT_WEIGHT", "0.1")
	t.Setenv("CONCEPTRAG_WORDNET_WEIGHT", "0.05")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.InDelta(t, 0.6, cfg.Search.VecWeight, 1e-9)
}

func TestValidateRejectsBadOverlap(t *testing.T) {
	cfg := Default()
	cfg.Chunking.Overlap = cfg.Chunking.WindowSize
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnbalancedWeights(t *testing.T) {
	cfg := Default()
	cfg.Search.VecWeight = 10
	require.Error(t, cfg.Validate())
}

func TestLLMAPIKeyFromEnvMissing(t *testing.T) {
	t.Setenv("CONCEPTRAG_LLM_API_KEY", "")
	os.Unsetenv("CONCEPTRAG_LLM_API_KEY")
	_, err := LLMAPIKeyFromEnv()
	require.Error(t, err)
}

func TestLLMAPIKeyFromEnvPresent(t *testing.T) {
	t.Setenv("CONCEPTRAG_LLM_API_KEY", "sk-test")
	key, err := LLMAPIKeyFromEnv()
	require.NoError(t, err)
	require.Equal(t, "sk-test", key)
}
