package extract

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/concept-rag/conceptrag/internal/llm"
)

type sequentialClient struct {
	mu   sync.Mutex
	n    int
	fail map[int]bool
	// failOn makes every call whose prompt contains this text fail.
	failOn string
}

func (c *sequentialClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	idx := c.n
	c.n++
	c.mu.Unlock()
	if c.fail[idx] || (c.failOn != "" && strings.Contains(prompt, c.failOn)) {
		return "", assertErr{}
	}
	return `{"primary_concepts":["concept"],"technical_terms":[],"related_concepts":[],"categories":[]}`, nil
}

type assertErr struct{}

func (assertErr) Error() string { return "simulated failure" }

func TestCoordinatorIsolatesPerDocumentFailures(t *testing.T) {
	// Every call for "doc b" fails; its retries end at the 1s timeout.
	client := &sequentialClient{fail: map[int]bool{}, failOn: "doc b"}
	extractor := llm.NewExtractor(client, 0)
	coord := NewCoordinator(extractor, Config{Concurrency: 2, RateLimitInterval: time.Millisecond, Timeout: time.Second})

	docs := []Document{
		{Source: "a.txt", Hash: "h1", Text: "doc a"},
		{Source: "b.txt", Hash: "h2", Text: "doc b"},
		{Source: "c.txt", Hash: "h3", Text: "doc c"},
	}

	results := coord.Run(context.Background(), docs)
	require.Len(t, results, 3)
	require.Error(t, results[1].Err)
	for _, r := range []DocResult{results[0], results[2]} {
		require.NoError(t, r.Err)
		require.NotNil(t, r.Concepts)
	}
}

func TestCoordinatorReportsProgress(t *testing.T) {
	client := &sequentialClient{fail: map[int]bool{}}
	extractor := llm.NewExtractor(client, 0)

	var calls int32
	coord := NewCoordinator(extractor, Config{
		Concurrency:       2,
		RateLimitInterval: time.Millisecond,
		Timeout:           time.Second,
		OnProgress: func(completed, total int, source string) {
			atomic.AddInt32(&calls, 1)
		},
	})

	docs := []Document{
		{Source: "a.txt", Hash: "h1", Text: "doc a"},
		{Source: "b.txt", Hash: "h2", Text: "doc b"},
	}
	coord.Run(context.Background(), docs)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestCoordinatorMarksPendingDocsCancelled(t *testing.T) {
	client := &sequentialClient{fail: map[int]bool{}}
	extractor := llm.NewExtractor(client, 0)
	coord := NewCoordinator(extractor, Config{Concurrency: 1, RateLimitInterval: time.Millisecond, Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []Document{{Source: "a.txt", Hash: "h1", Text: "doc a"}}
	results := coord.Run(ctx, docs)
	require.Len(t, results, 1)
	require.True(t, results[0].Cancelled)
}
