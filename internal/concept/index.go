package concept

import (
	"context"
	"log/slog"
	"sort"
)

// RelatedConceptCap is R, the number of co-occurring concepts retained per
// record.
const RelatedConceptCap = 10

// Declaration is one document's concept declaration, as stored on its
// catalog record.
type Declaration struct {
	CatalogID  string
	Primary    []string
	Technical  []string
	Related    []string
	Categories []string
}

// ChunkMatch is one chunk's matched concept list, used to compute
// chunk_count.
type ChunkMatch struct {
	CatalogID string
	Concepts  []string
}

// Embedder embeds a concept name into its vector representation. Satisfied
// by internal/embed's Embedding Service.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Builder merges document declarations and chunk matches into the global
// concept table.
type Builder struct {
	embedder Embedder
}

// NewBuilder builds a Builder. embedder may be nil, in which case records
// are built without embeddings (useful for tests and dry runs).
func NewBuilder(embedder Embedder) *Builder {
	return &Builder{embedder: embedder}
}

// Build merges decls and matches into the global concept table. The result
// is idempotent under re-run with the same inputs, and a lowercase concept
// name id colliding with a different existing name is logged and the
// first-inserted record is kept.
func (b *Builder) Build(ctx context.Context, decls []Declaration, matches []ChunkMatch) []*Record {
	byName := make(map[string]*Record)
	idOwner := make(map[uint64]string)
	order := make([]string, 0)

	ensure := func(name string) *Record {
		if r, ok := byName[name]; ok {
			return r
		}
		id := NameToID(name)
		if owner, ok := idOwner[id]; ok && owner != name {
			slog.Warn("concept id collision, keeping first-inserted record",
				slog.String("existing", owner), slog.String("new", name), slog.Uint64("id", id))
			return byName[owner]
		}
		idOwner[id] = name
		r := &Record{ID: id, Name: name}
		byName[name] = r
		order = append(order, name)
		return r
	}

	catalogSets := make(map[string]map[string]struct{})
	coOccurrence := make(map[string]map[string]int)

	for _, d := range decls {
		declared := make(map[string]Kind)
		for _, c := range d.Categories {
			declared[c] = KindCategory
		}
		for _, c := range d.Primary {
			if declared[c] != KindCategory {
				declared[c] = KindThematic
			}
		}
		for _, c := range d.Technical {
			if _, ok := declared[c]; !ok {
				declared[c] = KindTerminology
			}
		}
		for _, c := range d.Related {
			if _, ok := declared[c]; !ok {
				declared[c] = KindRelated
			}
		}

		names := make([]string, 0, len(declared))
		for name, kind := range declared {
			r := ensure(name)
			assignKind(r, kind)
			if catalogSets[name] == nil {
				catalogSets[name] = make(map[string]struct{})
			}
			if _, already := catalogSets[name][d.CatalogID]; !already {
				catalogSets[name][d.CatalogID] = struct{}{}
				r.CatalogIDs = append(r.CatalogIDs, d.CatalogID)
			}
			names = append(names, name)
		}

		for _, a := range names {
			if coOccurrence[a] == nil {
				coOccurrence[a] = make(map[string]int)
			}
			for _, c := range names {
				if c == a {
					continue
				}
				coOccurrence[a][c]++
			}
		}
	}

	chunkCounts := make(map[string]int)
	for _, m := range matches {
		for _, c := range m.Concepts {
			chunkCounts[c]++
		}
	}

	for _, name := range order {
		r := byName[name]
		r.DocumentCount = len(r.CatalogIDs)
		r.ChunkCount = chunkCounts[name]
		r.Weight = r.DocumentCount + r.ChunkCount
		r.RelatedConcepts = topRelated(coOccurrence[name], RelatedConceptCap)
	}

	records := make([]*Record, 0, len(order))
	for _, name := range order {
		r := byName[name]
		if b.embedder != nil {
			if vec, err := b.embedder.Embed(ctx, r.Name); err == nil {
				r.Embedding = vec
			}
		}
		records = append(records, r)
	}
	return records
}

func assignKind(r *Record, kind Kind) {
	if precedence(kind) > precedence(r.Kind) {
		r.Kind = kind
	}
}

// precedence ranks kind so category > thematic > terminology > related;
// category ranks above thematic so a name declared as a category anywhere
// keeps kind category, which browsing depends on.
func precedence(k Kind) int {
	switch k {
	case KindCategory:
		return 3
	case KindThematic:
		return 2
	case KindTerminology:
		return 1
	default:
		return 0
	}
}

func topRelated(counts map[string]int, n int) []string {
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for name, c := range counts {
		pairs = append(pairs, pair{name, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.name
	}
	return out
}
