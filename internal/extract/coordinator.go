package extract

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/concept-rag/conceptrag/internal/llm"
)

// Document is one input to the coordinator: raw text plus identifying
// metadata carried through to the result.
type Document struct {
	Source string
	Hash   string
	Text   string
}

// DocResult is one document's extraction outcome.
type DocResult struct {
	Source           string
	Hash             string
	Concepts         *llm.ConceptBlob
	Err              error
	Cancelled        bool
	ProcessingTimeMS int64
}

// ProgressFunc is invoked after each document completes.
type ProgressFunc func(completed, total int, source string)

// Config configures the coordinator.
type Config struct {
	// Concurrency is C, the worker-pool size. Defaults to 3.
	Concurrency int
	// RateLimitInterval is I, the minimum spacing between LLM calls.
	RateLimitInterval time.Duration
	// Timeout is Tllm, the per-document extraction timeout.
	Timeout time.Duration
	// OnProgress is an optional progress callback.
	OnProgress ProgressFunc
}

// DefaultConfig returns the coordinator's default tuning (C=3,
// I=250ms, Tllm=120s).
func DefaultConfig() Config {
	return Config{
		Concurrency:       3,
		RateLimitInterval: 250 * time.Millisecond,
		Timeout:           120 * time.Second,
	}
}

// Coordinator runs extraction for a batch of documents with bounded
// concurrency and a shared rate limit on outgoing LLM calls.
type Coordinator struct {
	extractor *llm.Extractor
	limiter   *RateLimiter
	cfg       Config
}

// NewCoordinator builds a Coordinator. A zero-value Concurrency/Timeout in
// cfg is replaced by DefaultConfig's values.
func NewCoordinator(extractor *llm.Extractor, cfg Config) *Coordinator {
	d := DefaultConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = d.Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.RateLimitInterval <= 0 {
		cfg.RateLimitInterval = d.RateLimitInterval
	}
	return &Coordinator{
		extractor: extractor,
		limiter:   NewRateLimiter(cfg.RateLimitInterval),
		cfg:       cfg,
	}
}

// Metrics exposes the coordinator's rate-limiter counters.
func (c *Coordinator) Metrics() Metrics {
	return c.limiter.Metrics()
}

// Run extracts concepts for every document, isolating failures so that one
// document's error or timeout never affects siblings. On ctx cancellation,
// in-flight calls are allowed to finish or time out; documents not yet
// started are reported as cancelled.
func (c *Coordinator) Run(ctx context.Context, docs []Document) []DocResult {
	results := make([]DocResult, len(docs))
	total := len(docs)

	g, gctx := errgroup.WithContext(context.Background())
	sem := make(chan struct{}, c.cfg.Concurrency)

	var progressMu sync.Mutex
	completed := 0

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				results[i] = DocResult{Source: doc.Source, Hash: doc.Hash, Cancelled: true}
				c.notify(&progressMu, &completed, total, doc.Source)
				return nil
			}

			if err := c.limiter.Wait(ctx); err != nil {
				results[i] = DocResult{Source: doc.Source, Hash: doc.Hash, Cancelled: true}
				c.notify(&progressMu, &completed, total, doc.Source)
				return nil
			}

			// Detached from ctx: once started, a call runs to completion or
			// to its own timeout even if ctx is cancelled.
			docCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
			defer cancel()

			start := time.Now()
			res := c.extractor.Extract(docCtx, doc.Text)
			elapsed := time.Since(start).Milliseconds()

			dr := DocResult{
				Source:           doc.Source,
				Hash:             doc.Hash,
				ProcessingTimeMS: elapsed,
			}
			if res.Err != nil {
				dr.Err = res.Err
			} else {
				blob := res.Concepts
				dr.Concepts = &blob
			}
			results[i] = dr
			c.notify(&progressMu, &completed, total, doc.Source)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (c *Coordinator) notify(mu *sync.Mutex, completed *int, total int, source string) {
	if c.cfg.OnProgress == nil {
		return
	}
	mu.Lock()
	*completed++
	n := *completed
	mu.Unlock()
	c.cfg.OnProgress(n, total, source)
}
