package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/concept-rag/conceptrag/internal/chunk"
	"github.com/concept-rag/conceptrag/internal/index"
)

// corpusExtensions are the plain-text formats this CLI loader accepts.
// Binary formats (PDF/EPUB) are upstream loaders' concern and
// have no local implementation here.
var corpusExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// loadCorpus walks root and turns every accepted file into an
// index.Document: one page per file, content_hash the hex SHA-256 of the
// file's bytes ("the engine only requires content_hash to be a
// stable function of source bytes").
func loadCorpus(root string) ([]index.Document, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if corpusExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	docs := make([]index.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(data)
		docs = append(docs, index.Document{
			SourcePath:  p,
			ContentHash: hex.EncodeToString(sum[:]),
			Pages: []chunk.PageRecord{{
				Text:       string(data),
				SourcePath: p,
				PageIndex:  0,
			}},
		})
	}
	return docs, nil
}
