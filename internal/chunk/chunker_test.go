package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestChunkRespectsWindowSize(t *testing.T) {
	c := NewChunker(Options{WindowSize: 50, Overlap: 5})
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 10)
	chunks := c.Chunk([]PageRecord{{Text: text, SourcePath: "doc.txt", PageIndex: 0}})

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		require.LessOrEqual(t, len(ch.Text), 50)
	}
}

func TestChunkOverlapsAdjacent(t *testing.T) {
	c := NewChunker(Options{WindowSize: 40, Overlap: 10})
	text := strings.Repeat("alpha beta gamma delta epsilon ", 8)
	chunks := c.Chunk([]PageRecord{{Text: text, SourcePath: "doc.txt"}})
	require.GreaterOrEqual(t, len(chunks), 2)

	prev := chunks[0].Text
	cur := chunks[1].Text
	overlap := min(10, len(prev))
	require.Equal(t, prev[len(prev)-overlap:], cur[:overlap])
}

func TestChunkPrefersParagraphBoundary(t *testing.T) {
	c := NewChunker(Options{WindowSize: 60, Overlap: 0})
	text := "First paragraph sentence one. Sentence two here.\n\nSecond paragraph begins now and continues for a while longer."
	chunks := c.Chunk([]PageRecord{{Text: text, SourcePath: "doc.txt"}})
	require.NotEmpty(t, chunks)
	require.True(t, strings.HasSuffix(chunks[0].Text, "\n\n") || !strings.Contains(chunks[0].Text, "Second"))
}

func TestChunkNeverSplitsMultiByteRune(t *testing.T) {
	c := NewChunker(Options{WindowSize: 10, Overlap: 2})
	text := strings.Repeat("café ☕ dé", 6)
	chunks := c.Chunk([]PageRecord{{Text: text, SourcePath: "doc.txt"}})
	for _, ch := range chunks {
		require.True(t, utf8.ValidString(ch.Text))
	}
}

func TestChunkEmptyPages(t *testing.T) {
	c := NewChunker(DefaultOptions())
	require.Nil(t, c.Chunk(nil))
}

func TestChunkTracksPageIndex(t *testing.T) {
	c := NewChunker(Options{WindowSize: 500, Overlap: 10})
	chunks := c.Chunk([]PageRecord{
		{Text: "short page one", SourcePath: "doc.txt", PageIndex: 0},
		{Text: "short page two", SourcePath: "doc.txt", PageIndex: 1},
	})
	require.Len(t, chunks, 1)
	require.Equal(t, 0, chunks[0].PageIndex)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
