// Package chunk implements the fixed-window text chunker.
//
// It turns one document's ordered page records into overlapping windows of
// at most W characters, preferring to break on paragraph, then sentence,
// then word boundaries before falling back to a hard cut — and never inside
// a multi-byte grapheme.
package chunk

// PageRecord is one page-level unit of a document, as produced by an
// upstream document loader; only this shape is required.
type PageRecord struct {
	Text       string
	SourcePath string
	PageIndex  int
}

// Chunk is one fixed-window slice of a document's text.
type Chunk struct {
	// Text is the chunk body, at most WindowSize characters.
	Text string
	// SourcePath back-references the owning document.
	SourcePath string
	// PageIndex is the page the chunk's first character came from.
	PageIndex int
	// Offset is the character offset of Text within the document's full
	// concatenated text, used to derive a deterministic chunk id.
	Offset int
}

// Options configures the chunker.
type Options struct {
	// WindowSize is W, the target chunk size in characters.
	WindowSize int
	// Overlap is O, the number of trailing characters shared between
	// adjacent chunks.
	Overlap int
}

// DefaultOptions returns the default window/overlap (W=500, O=10).
func DefaultOptions() Options {
	return Options{WindowSize: 500, Overlap: 10}
}
