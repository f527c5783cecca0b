package index

import (
	"fmt"
	"hash/fnv"
)

// catalogID derives a document's catalog row id from its content hash,
// the same stable-hash approach internal/concept uses for concept names
// ("id derived from a stable function of source bytes").
func catalogID(contentHash string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(contentHash))
	return h.Sum64()
}

// chunkID derives a chunk's row id from its owning document's content hash
// and its character offset within the document, so re-ingesting identical
// content reproduces identical chunk ids.
func chunkID(contentHash string, offset int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", contentHash, offset)))
	return h.Sum64()
}
