package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/concept-rag/conceptrag/internal/chunk"
	"github.com/concept-rag/conceptrag/internal/concept"
	"github.com/concept-rag/conceptrag/internal/config"
	"github.com/concept-rag/conceptrag/internal/embed"
	"github.com/concept-rag/conceptrag/internal/extract"
	"github.com/concept-rag/conceptrag/internal/index"
	"github.com/concept-rag/conceptrag/internal/llm"
	"github.com/concept-rag/conceptrag/internal/orchestrator"
	"github.com/concept-rag/conceptrag/internal/query"
	"github.com/concept-rag/conceptrag/internal/repo"
	"github.com/concept-rag/conceptrag/internal/search"
	"github.com/concept-rag/conceptrag/internal/store"
)

// engine bundles everything a CLI command needs: the storage adapter, the
// three repositories, the query/search-backed orchestrator, and (for the
// index command only) the ingestion pipeline. It owns the lifetime of the
// embedder and the storage adapter.
type engine struct {
	cfg          *config.Config
	adapter      *store.Adapter
	catalog      *repo.CatalogRepository
	chunks       *repo.ChunksRepository
	concepts     *repo.ConceptsRepository
	embedder     embed.Embedder
	orchestrator *orchestrator.Orchestrator
	lexical      concept.LexicalClient
	pipeline     *index.Pipeline
}

// buildEngine wires the full stack from configuration. When forExtraction
// is true it also constructs the LLM client and ingestion pipeline,
// requiring CONCEPTRAG_LLM_API_KEY (mandatory at ingestion,
// unconsulted at query time).
func buildEngine(ctx context.Context, cfg *config.Config, forExtraction bool) (*engine, error) {
	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build embedder: %w", err)
	}

	// The store's vector dimension must match whatever the embedder
	// actually produces, which may differ from the configured default
	// for the chosen provider.
	cfg.Embeddings.Dimensions = embedder.Dimensions()

	adapter, err := store.Open(store.Config{
		Dir:        cfg.Storage.DataDir,
		Dimensions: cfg.Embeddings.Dimensions,
		Driver:     storeDriver(cfg.Storage.Driver),
	})
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("open storage adapter: %w", err)
	}
	if err := adapter.LoadIndexes(); err != nil {
		_ = adapter.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("load vector indexes: %w", err)
	}

	catalogRepo := repo.NewCatalogRepository(adapter)
	chunksRepo := repo.NewChunksRepository(adapter)
	conceptsRepo := repo.NewConceptsRepository(adapter)

	lexicalClient := buildLexicalClient(cfg)
	expanderLexical := orchestrator.NewLexicalExpander(lexicalClient)

	queryCfg := query.Config{
		CorpusNeighbors:            cfg.Query.CorpusNeighbors,
		ThematicSimilarityFloor:    cfg.Query.ThematicSimilarityFloor,
		TerminologySimilarityFloor: cfg.Query.TerminologySimilarityFloor,
		CorpusTermWeight:           0.8,
		RelatedExpansionDiscount:   0.75,
		MaxRelatedPerConcept:       cfg.Query.MaxRelatedExpansions,
		LexicalTermWeight:          0.6,
		MinTermLength:              2,
	}
	searchCfg := search.Config{
		Weights: search.Weights{
			Vec:     cfg.Search.VecWeight,
			BM25:    cfg.Search.BM25Weight,
			Concept: cfg.Search.ConceptWeight,
			Wordnet: cfg.Search.WordnetWeight,
		},
		BM25K1:     cfg.Search.BM25K1,
		BM25B:      cfg.Search.BM25B,
		Overfetch:  cfg.Search.OverfetchFactor,
		TitleBoost: cfg.Search.TitleBoost,
	}

	orch := orchestrator.New(catalogRepo, chunksRepo, conceptsRepo, embedder, expanderLexical, queryCfg, searchCfg)

	e := &engine{
		cfg:          cfg,
		adapter:      adapter,
		catalog:      catalogRepo,
		chunks:       chunksRepo,
		concepts:     conceptsRepo,
		embedder:     embedder,
		orchestrator: orch,
		lexical:      lexicalClient,
	}

	if forExtraction {
		apiKey, err := config.LLMAPIKeyFromEnv()
		if err != nil {
			_ = e.Close()
			return nil, err
		}

		llmClient := llm.NewAnthropicClient(llm.AnthropicConfig{
			APIKey: apiKey,
			Model:  cfg.Extraction.Model,
		}, nil)

		extractor := llm.NewExtractor(llmClient, cfg.Extraction.ShortDocThreshold)
		coordinator := extract.NewCoordinator(extractor, extract.Config{
			Concurrency:       cfg.Extraction.Concurrency,
			RateLimitInterval: durationMS(cfg.Extraction.MinRequestIntervalMS),
			Timeout:           cfg.Timeouts.LLM,
		})
		summarizer := index.NewLLMSummarizer(llmClient)

		e.pipeline = index.New(catalogRepo, chunksRepo, conceptsRepo, coordinator, embedder, summarizer, lexicalClient, index.Config{
			Chunking: chunk.Options{
				WindowSize: cfg.Chunking.WindowSize,
				Overlap:    cfg.Chunking.Overlap,
			},
		})
	}

	return e, nil
}

// Close releases the embedder and storage adapter, persisting vector
// indexes to disk first.
func (e *engine) Close() error {
	var firstErr error
	if e.adapter != nil {
		if err := e.adapter.SaveIndexes(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := e.adapter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if e.embedder != nil {
		if err := e.embedder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildEmbedder(ctx context.Context, cfg *config.Config) (embed.Embedder, error) {
	switch cfg.Embeddings.Provider {
	case "static":
		return embed.NewStaticEmbedder768(), nil
	case "http", "ollama":
		if cfg.Embeddings.Endpoint != "" {
			os.Setenv("CONCEPTRAG_OLLAMA_HOST", cfg.Embeddings.Endpoint)
		}
		return embed.NewEmbedder(ctx, embed.ProviderOllama, "")
	default:
		return embed.NewEmbedder(ctx, embed.ProviderType(cfg.Embeddings.Provider), "")
	}
}

func buildLexicalClient(cfg *config.Config) concept.LexicalClient {
	if cfg.Concepts.LexicalEndpoint == "" {
		return nil
	}
	return concept.NewHTTPLexicalClient(cfg.Concepts.LexicalEndpoint, cfg.Timeouts.Lexical)
}

func storeDriver(name string) store.Driver {
	if name == "cgo" {
		return store.DriverCGO
	}
	return store.DriverPure
}

func durationMS(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
