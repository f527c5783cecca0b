package store

import "context"

// Row is the subset of a table row the hybrid scorer needs, normalized
// across the three tables so the scorer does not need per-table branches.
type Row struct {
	ID                uint64
	Title             string
	Text              string
	Concepts          []string
	ConceptCategories []string
	SourcePath        string
	Embedding         []float32
	ConceptDensity    float64
}

// Collection is the minimal capability a searchable table exposes to the
// hybrid scorer (§9's open question: the scorer depends on this interface,
// not on any concrete table type). catalog, chunks, and concepts each
// implement it.
type Collection interface {
	Name() string
	IsCatalog() bool
	VectorSearch(ctx context.Context, query []float32, k int) ([]VectorResult, error)
	Row(ctx context.Context, id uint64) (Row, bool, error)
	Stats() *BM25Stats
}

// catalogCollection adapts the catalog table to Collection.
type catalogCollection struct{ a *Adapter }

func (c catalogCollection) Name() string     { return string(TableCatalog) }
func (c catalogCollection) IsCatalog() bool  { return true }
func (c catalogCollection) Stats() *BM25Stats { return c.a.stats[TableCatalog] }

func (c catalogCollection) VectorSearch(ctx context.Context, query []float32, k int) ([]VectorResult, error) {
	return c.a.catalogVec.Search(ctx, query, k)
}

func (c catalogCollection) Row(ctx context.Context, id uint64) (Row, bool, error) {
	r, ok, err := c.a.sql.GetCatalog(ctx, id)
	if err != nil || !ok {
		return Row{}, ok, err
	}
	concepts := append(append(append([]string{}, r.Concepts.Primary...), r.Concepts.Technical...), r.Concepts.Related...)
	return Row{
		ID:                r.ID,
		Title:             r.Title,
		Text:              r.Summary,
		Concepts:          concepts,
		ConceptCategories: r.Concepts.Categories,
		SourcePath:        r.SourcePath,
		Embedding:         r.Embedding,
	}, true, nil
}

// chunksCollection adapts the chunks table to Collection.
type chunksCollection struct{ a *Adapter }

func (c chunksCollection) Name() string      { return string(TableChunks) }
func (c chunksCollection) IsCatalog() bool   { return false }
func (c chunksCollection) Stats() *BM25Stats { return c.a.stats[TableChunks] }

func (c chunksCollection) VectorSearch(ctx context.Context, query []float32, k int) ([]VectorResult, error) {
	return c.a.chunksVec.Search(ctx, query, k)
}

func (c chunksCollection) Row(ctx context.Context, id uint64) (Row, bool, error) {
	r, ok, err := c.a.sql.GetChunk(ctx, id)
	if err != nil || !ok {
		return Row{}, ok, err
	}
	return Row{
		ID:                r.ID,
		Text:              r.Text,
		Concepts:          r.Concepts,
		ConceptCategories: r.ConceptCategories,
		SourcePath:        r.SourcePath,
		Embedding:         r.Embedding,
		ConceptDensity:    r.ConceptDensity,
	}, true, nil
}

// conceptsCollection adapts the concepts table to Collection.
type conceptsCollection struct{ a *Adapter }

func (c conceptsCollection) Name() string      { return string(TableConcepts) }
func (c conceptsCollection) IsCatalog() bool   { return false }
func (c conceptsCollection) Stats() *BM25Stats { return c.a.stats[TableConcepts] }

func (c conceptsCollection) VectorSearch(ctx context.Context, query []float32, k int) ([]VectorResult, error) {
	return c.a.conceptsVec.Search(ctx, query, k)
}

func (c conceptsCollection) Row(ctx context.Context, id uint64) (Row, bool, error) {
	r, ok, err := c.a.sql.GetConcept(ctx, id)
	if err != nil || !ok {
		return Row{}, ok, err
	}
	return Row{
		ID:       r.ID,
		Title:    r.Name,
		Text:     r.Name,
		Concepts: append([]string{r.Name}, r.RelatedConcepts...),
		Embedding: r.Embedding,
	}, true, nil
}

var (
	_ Collection = catalogCollection{}
	_ Collection = chunksCollection{}
	_ Collection = conceptsCollection{}
)
