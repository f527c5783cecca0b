package llm

import (
	"context"
	"time"

	"github.com/concept-rag/conceptrag/internal/errors"
)

// ShortDocThreshold is Tshort: documents at or under this many characters
// are extracted in a single LLM call.
const ShortDocThreshold = 400_000

// Extractor produces a document's concept blob, splitting long documents
// into multiple passes and merging their results.
type Extractor struct {
	client    Client
	threshold int
}

// NewExtractor builds an Extractor. threshold <= 0 uses ShortDocThreshold.
func NewExtractor(client Client, threshold int) *Extractor {
	if threshold <= 0 {
		threshold = ShortDocThreshold
	}
	return &Extractor{client: client, threshold: threshold}
}

// Result is one document's extraction outcome, as returned to the
// Parallel Extraction Coordinator.
type Result struct {
	Concepts         ConceptBlob
	Err              error
	ProcessingTimeMS int64
}

// Extract runs one or more LLM passes over text and returns the merged,
// normalized concept blob. It never returns a transport error for malformed
// JSON: an unrepairable response degrades to an empty blob
// with the parse failure recorded in Result.Err.
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	start := time.Now()

	sections := splitSections(text, e.threshold)

	var merged *mergeState
	var lastErr error
	for _, section := range sections {
		blob, err := e.extractSection(ctx, section)
		if err != nil {
			lastErr = err
			continue
		}
		if merged == nil {
			merged = newMergeState()
		}
		merged.add(blob)
	}

	elapsed := time.Since(start).Milliseconds()

	if merged == nil {
		return Result{
			Concepts:         ConceptBlob{},
			Err:              errors.ExternalError(errors.ErrCodeLLMMalformed, "concept extraction produced no usable passes", lastErr),
			ProcessingTimeMS: elapsed,
		}
	}

	return Result{
		Concepts:         merged.blob(),
		ProcessingTimeMS: elapsed,
	}
}

func (e *Extractor) extractSection(ctx context.Context, section string) (ConceptBlob, error) {
	prompt := buildExtractionPrompt(section)
	cfg := errors.LLMRetryConfig()

	raw, err := errors.RetryWithResult(ctx, cfg, func() (string, error) {
		return e.client.Complete(ctx, prompt)
	})
	if err != nil {
		return ConceptBlob{}, errors.ExternalError(errors.ErrCodeLLMTimeout, "llm call failed", err)
	}

	blob, err := parseConceptBlob(raw)
	if err != nil {
		return ConceptBlob{}, errors.ExternalError(errors.ErrCodeLLMMalformed, "llm response unparseable", err)
	}
	return blob.normalized(), nil
}

// splitSections splits text into threshold-sized sections on rune
// boundaries, preserving order. A single section is returned when text fits
// under threshold.
func splitSections(text string, threshold int) []string {
	if len(text) <= threshold {
		return []string{text}
	}
	var sections []string
	runes := []rune(text)
	for start := 0; start < len(runes); start += threshold {
		end := start + threshold
		if end > len(runes) {
			end = len(runes)
		}
		sections = append(sections, string(runes[start:end]))
	}
	return sections
}

// mergeState accumulates concept blobs across multiple passes per the
// merge rules: highest tier wins for a given name, first-seen
// ordering is preserved, categories are unioned.
type mergeState struct {
	order   []string
	tier    map[string]Tier
	cats    []string
	catSeen map[string]struct{}
}

func newMergeState() *mergeState {
	return &mergeState{
		tier:    make(map[string]Tier),
		catSeen: make(map[string]struct{}),
	}
}

func (m *mergeState) add(blob ConceptBlob) {
	m.addTier(blob.PrimaryConcepts, TierPrimary)
	m.addTier(blob.TechnicalTerms, TierTechnical)
	m.addTier(blob.RelatedConcepts, TierRelated)
	for _, c := range blob.Categories {
		if _, ok := m.catSeen[c]; ok {
			continue
		}
		m.catSeen[c] = struct{}{}
		m.cats = append(m.cats, c)
	}
}

func (m *mergeState) addTier(names []string, tier Tier) {
	for _, name := range names {
		existing, ok := m.tier[name]
		if !ok {
			m.order = append(m.order, name)
			m.tier[name] = tier
			continue
		}
		if tier > existing {
			m.tier[name] = tier
		}
	}
}

func (m *mergeState) blob() ConceptBlob {
	var primary, technical, related []string
	for _, name := range m.order {
		switch m.tier[name] {
		case TierPrimary:
			primary = append(primary, name)
		case TierTechnical:
			technical = append(technical, name)
		default:
			related = append(related, name)
		}
	}
	return ConceptBlob{
		PrimaryConcepts: primary,
		TechnicalTerms:  technical,
		RelatedConcepts: related,
		Categories:      m.cats,
	}
}
