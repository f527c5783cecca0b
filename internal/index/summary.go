package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/concept-rag/conceptrag/internal/errors"
	"github.com/concept-rag/conceptrag/internal/llm"
)

// summaryPromptTemplate mirrors the concept-extraction prompt's pattern
// (internal/llm's buildExtractionPrompt): a formal instruction plus a
// strict-output contract, built with fmt.Sprintf.
const summaryPromptTemplate = `Summarize the following document in two to four sentences, for use as a search result preview. Plain prose only, no headings or bullet points.

Document:
%s`

// LLMSummarizer generates catalog summaries via the same LLM client the
// concept extractor uses.
type LLMSummarizer struct {
	client llm.Client
}

// NewLLMSummarizer builds an LLMSummarizer against client.
func NewLLMSummarizer(client llm.Client) *LLMSummarizer {
	return &LLMSummarizer{client: client}
}

// Summarize sends one prompt and returns the trimmed response text.
func (s *LLMSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(summaryPromptTemplate, text)
	cfg := errors.LLMRetryConfig()

	raw, err := errors.RetryWithResult(ctx, cfg, func() (string, error) {
		return s.client.Complete(ctx, prompt)
	})
	if err != nil {
		return "", errors.ExternalError(errors.ErrCodeLLMTimeout, "summary generation failed", err)
	}
	return strings.TrimSpace(raw), nil
}
