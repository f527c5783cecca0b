package chunk

import (
	"strings"
	"unicode/utf8"
)

// Chunker splits documents into fixed-window, overlapping chunks.
type Chunker struct {
	opts Options
}

// NewChunker constructs a Chunker. A non-positive WindowSize falls back to
// DefaultOptions.
func NewChunker(opts Options) *Chunker {
	if opts.WindowSize <= 0 {
		opts = DefaultOptions()
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	if opts.Overlap >= opts.WindowSize {
		opts.Overlap = opts.WindowSize - 1
	}
	return &Chunker{opts: opts}
}

// Chunk consumes one document's ordered page records and emits fixed-window
// chunks with small overlap. Pages are concatenated (in order, joined by a
// single newline) into one logical text before windowing, so a chunk may
// span a page boundary; PageIndex on the emitted chunk is the page owning
// the chunk's first rune.
func (c *Chunker) Chunk(pages []PageRecord) []Chunk {
	if len(pages) == 0 {
		return nil
	}

	var sb strings.Builder
	offsets := make([]int, 0, len(pages)) // byte offset where each page's text begins
	for i, p := range pages {
		offsets = append(offsets, sb.Len())
		if i > 0 {
			sb.WriteByte('\n')
			offsets[i] = sb.Len()
		}
		sb.WriteString(p.Text)
	}
	full := sb.String()
	if full == "" {
		return nil
	}

	sourcePath := pages[0].SourcePath

	var chunks []Chunk
	start := 0
	n := len(full)
	for start < n {
		end := c.windowEnd(full, start)
		text := full[start:end]
		chunks = append(chunks, Chunk{
			Text:       text,
			SourcePath: sourcePath,
			PageIndex:  pageForOffset(offsets, start),
			Offset:     start,
		})

		if end >= n {
			break
		}

		next := end - c.opts.Overlap
		if next <= start {
			next = end
		}
		// Never split a multi-byte rune: walk back to a rune boundary.
		for next > 0 && next < n && !utf8.RuneStart(full[next]) {
			next--
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// windowEnd returns the end byte offset of the window starting at start,
// preferring a paragraph break, then sentence end, then word boundary,
// before falling back to a hard cut at WindowSize. The returned offset is
// always a valid rune boundary and satisfies end > start.
func (c *Chunker) windowEnd(text string, start int) int {
	n := len(text)
	hardEnd := start + c.opts.WindowSize
	if hardEnd >= n {
		return n
	}
	// hardEnd must land on a rune boundary before we search backwards.
	for hardEnd > start && !utf8.RuneStart(text[hardEnd]) {
		hardEnd--
	}
	if hardEnd == start {
		// The window is narrower than the first rune: take that one rune.
		_, size := utf8.DecodeRuneInString(text[start:])
		return start + size
	}

	window := text[start:hardEnd]

	if idx := lastIndexAny(window, "\n\n"); idx >= 0 {
		return start + idx + 2
	}
	if idx := lastIndexByteSet(window, ".!?"); idx >= 0 && idx+1 < len(window) {
		return start + idx + 1
	}
	if idx := strings.LastIndexByte(window, ' '); idx > 0 {
		return start + idx + 1
	}
	return hardEnd
}

func lastIndexAny(s, substr string) int {
	return strings.LastIndex(s, substr)
}

func lastIndexByteSet(s string, set string) int {
	best := -1
	for _, b := range []byte(set) {
		if idx := strings.LastIndexByte(s, b); idx > best {
			best = idx
		}
	}
	return best
}

func pageForOffset(offsets []int, pos int) int {
	page := 0
	for i, off := range offsets {
		if off <= pos {
			page = i
		} else {
			break
		}
	}
	return page
}
