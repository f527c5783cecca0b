package index

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/concept-rag/conceptrag/internal/chunk"
	"github.com/concept-rag/conceptrag/internal/concept"
	"github.com/concept-rag/conceptrag/internal/extract"
	"github.com/concept-rag/conceptrag/internal/llm"
	"github.com/concept-rag/conceptrag/internal/store"
)

// Run ingests docs: documents whose content hash already has a catalog row
// are skipped. Each remaining document is extracted, chunked, matched and
// written; on any failure mid-write its partial catalog/chunk rows are
// rolled back so the table never holds a half-written document.
// After every document is processed, the global concept table is rebuilt
// from the corpus's full, current state.
func (p *Pipeline) Run(ctx context.Context, docs []Document) (*Report, error) {
	report := &Report{Failed: make(map[string]error)}

	toIngest := make([]Document, 0, len(docs))
	for _, d := range docs {
		if _, ok, err := p.catalog.ByHash(ctx, d.ContentHash); err != nil {
			return nil, err
		} else if ok {
			report.Skipped = append(report.Skipped, d.SourcePath)
			continue
		}
		toIngest = append(toIngest, d)
	}

	extractDocs := make([]extract.Document, len(toIngest))
	fullTexts := make([]string, len(toIngest))
	for i, d := range toIngest {
		text := joinPages(d.Pages)
		fullTexts[i] = text
		extractDocs[i] = extract.Document{Source: d.SourcePath, Hash: d.ContentHash, Text: text}
	}

	results := p.extractor.Run(ctx, extractDocs)

	for i, d := range toIngest {
		res := results[i]
		if res.Err != nil {
			report.Failed[d.SourcePath] = res.Err
			continue
		}
		if err := p.ingestOne(ctx, d, fullTexts[i], res.Concepts); err != nil {
			report.Failed[d.SourcePath] = err
			p.rollback(ctx, d)
			continue
		}
		report.Ingested = append(report.Ingested, d.SourcePath)
	}

	if err := p.rebuildConcepts(ctx); err != nil {
		return report, err
	}
	return report, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, d Document, fullText string, blob *llm.ConceptBlob) error {
	chunks := p.chunker.Chunk(d.Pages)

	doc := concept.DocConcepts{
		Primary:    blob.PrimaryConcepts,
		Technical:  blob.TechnicalTerms,
		Related:    blob.RelatedConcepts,
		Categories: blob.Categories,
	}

	chunkRecords := make([]*store.ChunkRecord, len(chunks))
	for i, c := range chunks {
		match := p.matcher.Match(doc, c.Text)
		vec, err := p.embed(ctx, c.Text)
		if err != nil {
			return err
		}
		chunkRecords[i] = &store.ChunkRecord{
			ID:                chunkID(d.ContentHash, c.Offset),
			SourcePath:        d.SourcePath,
			ContentHash:       d.ContentHash,
			Text:              c.Text,
			Concepts:          match.Concepts,
			ConceptCategories: match.ConceptCategories,
			ConceptDensity:    match.ConceptDensity,
			Embedding:         vec,
		}
	}

	summary := ""
	if p.summarizer != nil {
		s, err := p.summarizer.Summarize(ctx, fullText)
		if err != nil {
			slog.Warn("summary generation failed, catalog row left without a summary",
				slog.String("source_path", d.SourcePath), slog.Any("error", err))
		} else {
			summary = s
		}
	}
	summaryVec, err := p.embed(ctx, summary)
	if err != nil {
		return err
	}

	catalogRecord := &store.CatalogRecord{
		ID:          catalogID(d.ContentHash),
		SourcePath:  d.SourcePath,
		ContentHash: d.ContentHash,
		Summary:     summary,
		Concepts: store.ConceptBlob{
			Primary:    blob.PrimaryConcepts,
			Technical:  blob.TechnicalTerms,
			Related:    blob.RelatedConcepts,
			Categories: blob.Categories,
		},
		Embedding: summaryVec,
	}

	if err := p.chunks.InsertBatch(ctx, chunkRecords); err != nil {
		return err
	}
	return p.catalog.Upsert(ctx, catalogRecord)
}

func (p *Pipeline) rollback(ctx context.Context, d Document) {
	if err := p.chunks.DeleteByContentHash(ctx, d.ContentHash); err != nil {
		slog.Warn("rollback: failed to remove partial chunks", slog.String("source_path", d.SourcePath), slog.Any("error", err))
	}
	if err := p.catalog.Delete(ctx, d.SourcePath); err != nil {
		slog.Warn("rollback: failed to remove partial catalog row", slog.String("source_path", d.SourcePath), slog.Any("error", err))
	}
}

func (p *Pipeline) embed(ctx context.Context, text string) ([]float32, error) {
	if p.embedder == nil || text == "" {
		return nil, nil
	}
	return p.embedder.Embed(ctx, text)
}

// rebuildConcepts re-derives the entire concept table from every catalog
// and chunk row currently persisted, an idempotent full-rebuild. It runs
// after every ingestion batch so a concept no longer referenced by any
// document is dropped.
func (p *Pipeline) rebuildConcepts(ctx context.Context) error {
	allCatalog, err := p.catalog.All(ctx)
	if err != nil {
		return err
	}
	allChunks, err := p.chunks.All(ctx)
	if err != nil {
		return err
	}

	decls := make([]concept.Declaration, len(allCatalog))
	for i, c := range allCatalog {
		decls[i] = concept.Declaration{
			CatalogID:  strconv.FormatUint(c.ID, 10),
			Primary:    c.Concepts.Primary,
			Technical:  c.Concepts.Technical,
			Related:    c.Concepts.Related,
			Categories: c.Concepts.Categories,
		}
	}

	matches := make([]concept.ChunkMatch, len(allChunks))
	for i, c := range allChunks {
		matches[i] = concept.ChunkMatch{CatalogID: c.SourcePath, Concepts: c.Concepts}
	}

	records := p.builder.Build(ctx, decls, matches)
	p.enricher.Enrich(ctx, records)

	converted := make([]*store.ConceptRecord, len(records))
	for i, r := range records {
		converted[i] = toStoreConceptRecord(r)
	}
	return p.concepts.Replace(ctx, converted)
}

// toStoreConceptRecord bridges concept.Record's string-keyed CatalogIDs
// (document source paths or stringified ids, as handed to concept.Builder)
// onto store.ConceptRecord's persisted uint64 ids.
func toStoreConceptRecord(r *concept.Record) *store.ConceptRecord {
	ids := make([]uint64, 0, len(r.CatalogIDs))
	for _, s := range r.CatalogIDs {
		if id, err := strconv.ParseUint(s, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return &store.ConceptRecord{
		ID:              r.ID,
		Name:            r.Name,
		Kind:            store.ConceptKind(r.Kind),
		DocumentCount:   r.DocumentCount,
		ChunkCount:      r.ChunkCount,
		CatalogIDs:      ids,
		RelatedConcepts: r.RelatedConcepts,
		Synonyms:        r.Synonyms,
		BroaderTerms:    r.BroaderTerms,
		NarrowerTerms:   r.NarrowerTerms,
		Embedding:       r.Embedding,
		Weight:          r.Weight,
	}
}

func joinPages(pages []chunk.PageRecord) string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n")
}
