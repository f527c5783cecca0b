package store

import (
	"math"
	"sync"
)

// BM25Stats maintains corpus-wide term statistics (document frequency,
// average document length) for one table's text field, incrementally
// updated as rows are appended. WeightedBM25 uses these statistics to score
// a single candidate against a per-term weight bag, which is what the
// hybrid scorer's s_bm25 signal needs (§4.9): scoring a fixed candidate set
// returned by vector-knn, not running an independent top-k keyword search.
type BM25Stats struct {
	mu          sync.RWMutex
	docFreq     map[string]int
	docLength   map[uint64]int
	totalTokens int
	totalDocs   int
}

// NewBM25Stats creates an empty statistics accumulator.
func NewBM25Stats() *BM25Stats {
	return &BM25Stats{
		docFreq:   make(map[string]int),
		docLength: make(map[uint64]int),
	}
}

// Add records one document's tokens under the given row id. Re-adding an id
// first removes its prior length and document count, so those stay exact
// on repeated ingestion; document frequencies are not decremented (see
// removeLocked) and are counted again.
func (s *BM25Stats) Add(id uint64, tokens []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)

	seen := make(map[string]struct{})
	for _, t := range tokens {
		if _, ok := seen[t]; !ok {
			s.docFreq[t]++
			seen[t] = struct{}{}
		}
	}
	s.docLength[id] = len(tokens)
	s.totalTokens += len(tokens)
	s.totalDocs++
}

// Remove discards a row's contribution to the corpus statistics, used on
// whole-document purge.
func (s *BM25Stats) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *BM25Stats) removeLocked(id uint64) {
	length, ok := s.docLength[id]
	if !ok {
		return
	}
	// Document frequency is tracked per distinct term, not per occurrence;
	// without storing each document's term set we cannot decrement df
	// precisely, so df can overcount after a remove. The concepts table's
	// statistics are rebuilt from scratch by every ConceptsRepository.Replace;
	// the catalog and chunks statistics keep the overcount for the life of
	// the Adapter.
	s.totalTokens -= length
	s.totalDocs--
	delete(s.docLength, id)
}

// AvgDocLength returns the corpus's average document length in tokens.
func (s *BM25Stats) AvgDocLength() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.totalDocs == 0 {
		return 0
	}
	return float64(s.totalTokens) / float64(s.totalDocs)
}

// IDF returns the standard BM25 inverse document frequency for a term.
func (s *BM25Stats) IDF(term string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := float64(s.totalDocs)
	df := float64(s.docFreq[term])
	if n == 0 {
		return 0
	}
	v := math.Log(1 + (n-df+0.5)/(df+0.5))
	if v < 0 {
		return 0
	}
	return v
}

// WeightedBM25 scores one candidate's tokens against a weighted term bag
// (the expander's `weights`), using BM25Stats for idf and average length
// and the given k1/b parameters. Terms absent from weights contribute
// nothing, so the score is a weighted sum over exactly the expanded query
// vocabulary rather than the candidate's full text.
func WeightedBM25(tokens []string, weights map[string]float64, stats *BM25Stats, k1, b float64) float64 {
	if len(weights) == 0 || len(tokens) == 0 {
		return 0
	}

	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}

	dl := float64(len(tokens))
	avgdl := stats.AvgDocLength()
	if avgdl == 0 {
		avgdl = dl
	}

	var score float64
	for term, weight := range weights {
		f := float64(tf[term])
		if f == 0 {
			continue
		}
		idf := stats.IDF(term)
		num := f * (k1 + 1)
		den := f + k1*(1-b+b*dl/avgdl)
		score += weight * idf * (num / den)
	}
	return score
}
