package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Config configures an Adapter: where it persists state and the fixed
// embedding dimension D shared by every table (§3).
type Config struct {
	Dir        string
	Dimensions int
	Driver     Driver
	// EnableBleve turns on the optional plain-keyword backend per table.
	// Off by default since the hybrid scorer uses BM25Stats directly.
	EnableBleve bool
}

// Adapter is the Storage Adapter: it owns one SQLite-backed metadata store
// and, per named table, a vector index, a BM25 statistics accumulator, and
// an optional Bleve keyword index. A gofrs/flock file lock per table
// serializes schema-affecting operations (full rebuilds, bulk replace)
// across processes sharing the same directory (§5).
type Adapter struct {
	cfg Config
	sql *SQLStore

	catalogVec  *HNSWStore
	chunksVec   *HNSWStore
	conceptsVec *HNSWStore

	stats map[TableName]*BM25Stats
	bleve map[TableName]BM25Index
	locks map[TableName]*flock.Flock
}

// Open creates or opens the on-disk state directory for one corpus and
// wires together its three tables.
func Open(cfg Config) (*Adapter, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}

	sqlPath := filepath.Join(cfg.Dir, "metadata.sqlite")
	if cfg.Dir == "" {
		sqlPath = ""
	}
	sqlStore, err := OpenSQL(sqlPath, cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}

	vecCfg := DefaultVectorStoreConfig(cfg.Dimensions)

	catalogVec, err := NewHNSWStore(vecCfg)
	if err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("create catalog vector store: %w", err)
	}
	chunksVec, err := NewHNSWStore(vecCfg)
	if err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("create chunks vector store: %w", err)
	}
	conceptsVec, err := NewHNSWStore(vecCfg)
	if err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("create concepts vector store: %w", err)
	}

	a := &Adapter{
		cfg:         cfg,
		sql:         sqlStore,
		catalogVec:  catalogVec,
		chunksVec:   chunksVec,
		conceptsVec: conceptsVec,
		stats: map[TableName]*BM25Stats{
			TableCatalog:  NewBM25Stats(),
			TableChunks:   NewBM25Stats(),
			TableConcepts: NewBM25Stats(),
		},
		bleve: map[TableName]BM25Index{},
		locks: map[TableName]*flock.Flock{},
	}

	if cfg.Dir != "" {
		for _, t := range []TableName{TableCatalog, TableChunks, TableConcepts} {
			a.locks[t] = flock.New(filepath.Join(cfg.Dir, string(t)+".lock"))
		}
	}

	if cfg.EnableBleve {
		for _, t := range []TableName{TableCatalog, TableChunks, TableConcepts} {
			idx, err := NewBleveBM25Index()
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("create bleve index for %s: %w", t, err)
			}
			a.bleve[t] = idx
		}
	}

	return a, nil
}

// Close releases every resource the Adapter owns.
func (a *Adapter) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(a.catalogVec.Close())
	record(a.chunksVec.Close())
	record(a.conceptsVec.Close())
	for _, idx := range a.bleve {
		record(idx.Close())
	}
	record(a.sql.Close())
	return firstErr
}

// Collection returns the searchable-collection view of one table.
func (a *Adapter) Collection(table TableName) Collection {
	switch table {
	case TableCatalog:
		return catalogCollection{a}
	case TableChunks:
		return chunksCollection{a}
	case TableConcepts:
		return conceptsCollection{a}
	default:
		return nil
	}
}

// SQL exposes the underlying metadata store for the repositories layer.
func (a *Adapter) SQL() *SQLStore { return a.sql }

// VectorStore exposes the underlying vector index for one table, used by
// the ingestion pipeline when appending new rows.
func (a *Adapter) VectorStore(table TableName) *HNSWStore {
	switch table {
	case TableCatalog:
		return a.catalogVec
	case TableChunks:
		return a.chunksVec
	case TableConcepts:
		return a.conceptsVec
	default:
		return nil
	}
}

// BM25Stats exposes the weighted-BM25 corpus statistics for one table.
func (a *Adapter) BM25Stats(table TableName) *BM25Stats { return a.stats[table] }

// Bleve exposes the optional plain-keyword index for one table, nil unless
// Config.EnableBleve was set.
func (a *Adapter) Bleve(table TableName) BM25Index { return a.bleve[table] }

// WithWriterLock runs fn while holding the named table's exclusive file
// lock, serializing schema-affecting operations (full concept-index
// rebuilds, bulk replace) across any process sharing this directory. It is
// a no-op lock (in-process only) when the Adapter was opened with no
// directory (in-memory use, e.g. tests).
func (a *Adapter) WithWriterLock(ctx context.Context, table TableName, fn func() error) error {
	lock, ok := a.locks[table]
	if !ok {
		return fn()
	}

	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire writer lock for %s: %w", table, err)
	}
	if !locked {
		return fmt.Errorf("writer lock for %s held by another process", table)
	}
	defer lock.Unlock()

	return fn()
}

// SaveIndexes persists every table's vector index to disk, under Config.Dir.
func (a *Adapter) SaveIndexes() error {
	if a.cfg.Dir == "" {
		return nil
	}
	for table, vec := range map[TableName]*HNSWStore{
		TableCatalog:  a.catalogVec,
		TableChunks:   a.chunksVec,
		TableConcepts: a.conceptsVec,
	} {
		path := filepath.Join(a.cfg.Dir, string(table)+".hnsw")
		if err := vec.Save(path); err != nil {
			return fmt.Errorf("save %s vector index: %w", table, err)
		}
	}
	return nil
}

// LoadIndexes restores every table's vector index from disk, under
// Config.Dir. Missing files are tolerated (first run).
func (a *Adapter) LoadIndexes() error {
	if a.cfg.Dir == "" {
		return nil
	}
	for table, vec := range map[TableName]*HNSWStore{
		TableCatalog:  a.catalogVec,
		TableChunks:   a.chunksVec,
		TableConcepts: a.conceptsVec,
	} {
		path := filepath.Join(a.cfg.Dir, string(table)+".hnsw")
		if err := vec.Load(path); err != nil {
			continue // first run: no persisted index yet
		}
	}
	return nil
}
