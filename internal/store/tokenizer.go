package store

import (
	"regexp"
	"strings"
)

// tokenRegex matches alphanumeric runs for tokenization.
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// Tokenize splits text into lowercase alphanumeric tokens, filtering tokens
// shorter than two characters. Shared by the BM25 corpus statistics and the
// hybrid scorer; the query expander normalizes queries with its own
// function in internal/query.
func Tokenize(text string) []string {
	words := tokenRegex.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		if len(lower) >= 2 {
			tokens = append(tokens, lower)
		}
	}
	return tokens
}

// FilterStopWords removes stop words from a token list.
func FilterStopWords(tokens []string, stopWords map[string]struct{}) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := stopWords[token]; !isStop {
			result = append(result, token)
		}
	}
	return result
}

// BuildStopWordMap converts a slice of stop words into a lookup set.
func BuildStopWordMap(stopWords []string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		m[strings.ToLower(word)] = struct{}{}
	}
	return m
}

// DefaultStopWords is a short list of high-frequency English function words,
// the StopWords of DefaultBM25Config. BM25Stats is fed unfiltered Tokenize
// output, so these words are counted in its term statistics.
var DefaultStopWords = []string{
	"the", "a", "an", "and", "or", "but", "is", "are", "was", "were",
	"be", "been", "being", "of", "to", "in", "on", "at", "for", "with",
	"by", "from", "as", "it", "its", "this", "that", "these", "those",
	"not", "no", "do", "does", "did", "have", "has", "had", "will",
	"would", "can", "could", "shall", "should", "may", "might", "must",
}
