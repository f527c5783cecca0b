package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // CGO driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure-Go driver, registered as "sqlite"
)

// Driver selects which SQLite binding backs the SQL store. The pure-Go
// driver avoids a CGO toolchain requirement; the CGO driver is offered for
// parity with deployments that already require CGO for other reasons.
type Driver int

const (
	DriverPure Driver = iota
	DriverCGO
)

func (d Driver) String() string {
	if d == DriverCGO {
		return "sqlite3"
	}
	return "sqlite"
}

// SQLStore is the Storage Adapter's columnar persistence for the three
// named tables plus a small key-value state table, implemented over
// database/sql against either SQLite binding.
type SQLStore struct {
	db     *sql.DB
	driver Driver
}

// OpenSQL creates or opens the SQLite database at path ("" for in-memory)
// and ensures the schema exists.
func OpenSQL(path string, driver Driver) (*SQLStore, error) {
	dsn := path
	if path == "" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open(driver.String(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer, matches §5's per-table writer serialization

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.createTables(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog (
		id            INTEGER PRIMARY KEY,
		source_path   TEXT UNIQUE NOT NULL,
		content_hash  TEXT UNIQUE NOT NULL,
		summary       TEXT,
		concepts      TEXT,
		title         TEXT,
		author        TEXT,
		year          TEXT,
		publisher     TEXT,
		isbn          TEXT,
		embedding     TEXT,
		created_at    TEXT
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id                 INTEGER PRIMARY KEY,
		source_path        TEXT NOT NULL,
		content_hash       TEXT NOT NULL,
		text               TEXT,
		concepts           TEXT,
		concept_categories TEXT,
		concept_density    REAL,
		embedding          TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_content_hash ON chunks(content_hash);
	CREATE INDEX IF NOT EXISTS idx_chunks_source_path ON chunks(source_path);

	CREATE TABLE IF NOT EXISTS concepts (
		id                  INTEGER PRIMARY KEY,
		name                TEXT UNIQUE NOT NULL,
		kind                TEXT,
		document_count      INTEGER,
		chunk_count         INTEGER,
		catalog_ids         TEXT,
		related_concepts    TEXT,
		synonyms            TEXT,
		broader_terms       TEXT,
		narrower_terms      TEXT,
		embedding           TEXT,
		weight              INTEGER,
		parent_categories   TEXT,
		child_categories    TEXT,
		related_categories  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_concepts_kind ON concepts(kind);

	CREATE TABLE IF NOT EXISTS state (
		key   TEXT PRIMARY KEY,
		value TEXT
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func jsonOf(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseJSON[T any](s sql.NullString, out *T) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), out)
}

// --- catalog ---

// InsertCatalog inserts or replaces a catalog row (re-ingest of a document
// with a new content hash replaces the prior row for that source_path).
func (s *SQLStore) InsertCatalog(ctx context.Context, r *CatalogRecord) error {
	concepts, err := jsonOf(r.Concepts)
	if err != nil {
		return fmt.Errorf("encode concepts: %w", err)
	}
	embedding, err := jsonOf(r.Embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO catalog (id, source_path, content_hash, summary, concepts, title, author, year, publisher, isbn, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_path) DO UPDATE SET
			id=excluded.id, content_hash=excluded.content_hash, summary=excluded.summary,
			concepts=excluded.concepts, title=excluded.title, author=excluded.author,
			year=excluded.year, publisher=excluded.publisher, isbn=excluded.isbn,
			embedding=excluded.embedding, created_at=excluded.created_at
	`, r.ID, r.SourcePath, r.ContentHash, r.Summary, concepts, r.Title, r.Author, r.Year, r.Publisher, r.ISBN, embedding, r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	if err != nil {
		return fmt.Errorf("insert catalog: %w", err)
	}
	return nil
}

func scanCatalogRow(row interface {
	Scan(dest ...any) error
}) (*CatalogRecord, error) {
	var r CatalogRecord
	var concepts, embedding sql.NullString
	var createdAt sql.NullString
	if err := row.Scan(&r.ID, &r.SourcePath, &r.ContentHash, &r.Summary, &concepts,
		&r.Title, &r.Author, &r.Year, &r.Publisher, &r.ISBN, &embedding, &createdAt); err != nil {
		return nil, err
	}
	if err := parseJSON(concepts, &r.Concepts); err != nil {
		return nil, fmt.Errorf("decode concepts: %w", err)
	}
	if err := parseJSON(embedding, &r.Embedding); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	return &r, nil
}

const catalogColumns = `id, source_path, content_hash, summary, concepts, title, author, year, publisher, isbn, embedding, created_at`

// GetCatalogByHash looks up a catalog row by content hash, used for the
// skip-if-unchanged re-ingest check.
func (s *SQLStore) GetCatalogByHash(ctx context.Context, hash string) (*CatalogRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM catalog WHERE content_hash = ?`, hash)
	r, err := scanCatalogRow(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get catalog by hash: %w", err)
	}
	return r, true, nil
}

// GetCatalogBySourcePath looks up a catalog row by its unique source path.
func (s *SQLStore) GetCatalogBySourcePath(ctx context.Context, path string) (*CatalogRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM catalog WHERE source_path = ?`, path)
	r, err := scanCatalogRow(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get catalog by source path: %w", err)
	}
	return r, true, nil
}

// GetCatalogByTitle looks up a catalog row whose title matches (case
// insensitive, substring) query; used by extract_concepts document lookup.
func (s *SQLStore) GetCatalogByTitle(ctx context.Context, title string) (*CatalogRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+catalogColumns+` FROM catalog WHERE lower(title) LIKE ? OR lower(source_path) LIKE ? LIMIT 1`,
		"%"+strings.ToLower(title)+"%", "%"+strings.ToLower(title)+"%")
	r, err := scanCatalogRow(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get catalog by title: %w", err)
	}
	return r, true, nil
}

// GetCatalog looks up a catalog row by its primary id.
func (s *SQLStore) GetCatalog(ctx context.Context, id uint64) (*CatalogRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM catalog WHERE id = ?`, id)
	r, err := scanCatalogRow(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get catalog: %w", err)
	}
	return r, true, nil
}

// AllCatalog returns every catalog row, used by the concept index builder
// and full-rebuild operations.
func (s *SQLStore) AllCatalog(ctx context.Context) ([]*CatalogRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+catalogColumns+` FROM catalog`)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var out []*CatalogRecord
	for rows.Next() {
		r, err := scanCatalogRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteCatalogBySourcePath removes a document's catalog row. Callers are
// responsible for also removing its chunks (whole-document purge).
func (s *SQLStore) DeleteCatalogBySourcePath(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM catalog WHERE source_path = ?`, path)
	return err
}

// --- chunks ---

const chunkColumns = `id, source_path, content_hash, text, concepts, concept_categories, concept_density, embedding`

// InsertChunks inserts or replaces a batch of chunk rows in one transaction.
func (s *SQLStore) InsertChunks(ctx context.Context, chunks []*ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_path, content_hash, text, concepts, concept_categories, concept_density, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_path=excluded.source_path, content_hash=excluded.content_hash, text=excluded.text,
			concepts=excluded.concepts, concept_categories=excluded.concept_categories,
			concept_density=excluded.concept_density, embedding=excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("prepare insert chunk: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		concepts, err := jsonOf(c.Concepts)
		if err != nil {
			return fmt.Errorf("encode concepts: %w", err)
		}
		categories, err := jsonOf(c.ConceptCategories)
		if err != nil {
			return fmt.Errorf("encode concept categories: %w", err)
		}
		embedding, err := jsonOf(c.Embedding)
		if err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.SourcePath, c.ContentHash, c.Text, concepts, categories, c.ConceptDensity, embedding); err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func scanChunkRow(row interface {
	Scan(dest ...any) error
}) (*ChunkRecord, error) {
	var c ChunkRecord
	var concepts, categories, embedding sql.NullString
	if err := row.Scan(&c.ID, &c.SourcePath, &c.ContentHash, &c.Text, &concepts, &categories, &c.ConceptDensity, &embedding); err != nil {
		return nil, err
	}
	if err := parseJSON(concepts, &c.Concepts); err != nil {
		return nil, fmt.Errorf("decode concepts: %w", err)
	}
	if err := parseJSON(categories, &c.ConceptCategories); err != nil {
		return nil, fmt.Errorf("decode concept categories: %w", err)
	}
	if err := parseJSON(embedding, &c.Embedding); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	return &c, nil
}

// GetChunk looks up a single chunk by id.
func (s *SQLStore) GetChunk(ctx context.Context, id uint64) (*ChunkRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id)
	c, err := scanChunkRow(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get chunk: %w", err)
	}
	return c, true, nil
}

// ChunksByContentHash returns all chunks belonging to one document.
func (s *SQLStore) ChunksByContentHash(ctx context.Context, hash string) ([]*ChunkRecord, error) {
	return s.queryChunks(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE content_hash = ?`, hash)
}

// ChunksBySourcePath returns all chunks whose source_path equals path,
// backing chunks_search's restriction (§4.10).
func (s *SQLStore) ChunksBySourcePath(ctx context.Context, path string) ([]*ChunkRecord, error) {
	return s.queryChunks(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE source_path = ?`, path)
}

// ChunksByConcept returns every chunk whose concepts column mentions name,
// backing the membership query behind concept_search (§4.10). Matching is
// done in Go after a broad LIKE prefilter, since the concepts column is an
// opaque JSON array.
func (s *SQLStore) ChunksByConcept(ctx context.Context, name string) ([]*ChunkRecord, error) {
	candidates, err := s.queryChunks(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE concepts LIKE ?`, "%\""+name+"\"%")
	if err != nil {
		return nil, err
	}
	out := candidates[:0]
	for _, c := range candidates {
		for _, cc := range c.Concepts {
			if strings.EqualFold(cc, name) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// AllChunks returns every chunk row.
func (s *SQLStore) AllChunks(ctx context.Context) ([]*ChunkRecord, error) {
	return s.queryChunks(ctx, `SELECT `+chunkColumns+` FROM chunks`)
}

func (s *SQLStore) queryChunks(ctx context.Context, query string, args ...any) ([]*ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []*ChunkRecord
	for rows.Next() {
		c, err := scanChunkRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteChunksByContentHash removes all chunks for one document.
func (s *SQLStore) DeleteChunksByContentHash(ctx context.Context, hash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE content_hash = ?`, hash)
	return err
}

// --- concepts ---

const conceptColumns = `id, name, kind, document_count, chunk_count, catalog_ids, related_concepts, synonyms, broader_terms, narrower_terms, embedding, weight, parent_categories, child_categories, related_categories`

// UpsertConcept inserts or replaces one concept row, keyed by name.
func (s *SQLStore) UpsertConcept(ctx context.Context, c *ConceptRecord) error {
	catalogIDs, err := jsonOf(c.CatalogIDs)
	if err != nil {
		return err
	}
	related, err := jsonOf(c.RelatedConcepts)
	if err != nil {
		return err
	}
	synonyms, err := jsonOf(c.Synonyms)
	if err != nil {
		return err
	}
	broader, err := jsonOf(c.BroaderTerms)
	if err != nil {
		return err
	}
	narrower, err := jsonOf(c.NarrowerTerms)
	if err != nil {
		return err
	}
	embedding, err := jsonOf(c.Embedding)
	if err != nil {
		return err
	}
	parents, err := jsonOf(c.ParentCategories)
	if err != nil {
		return err
	}
	children, err := jsonOf(c.ChildCategories)
	if err != nil {
		return err
	}
	relatedCats, err := jsonOf(c.RelatedCategories)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO concepts (id, name, kind, document_count, chunk_count, catalog_ids, related_concepts, synonyms, broader_terms, narrower_terms, embedding, weight, parent_categories, child_categories, related_categories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			kind=excluded.kind, document_count=excluded.document_count, chunk_count=excluded.chunk_count,
			catalog_ids=excluded.catalog_ids, related_concepts=excluded.related_concepts,
			synonyms=excluded.synonyms, broader_terms=excluded.broader_terms, narrower_terms=excluded.narrower_terms,
			embedding=excluded.embedding, weight=excluded.weight,
			parent_categories=excluded.parent_categories, child_categories=excluded.child_categories,
			related_categories=excluded.related_categories
	`, c.ID, c.Name, string(c.Kind), c.DocumentCount, c.ChunkCount, catalogIDs, related, synonyms, broader, narrower, embedding, c.Weight, parents, children, relatedCats)
	if err != nil {
		return fmt.Errorf("upsert concept %q: %w", c.Name, err)
	}
	return nil
}

func scanConceptRow(row interface {
	Scan(dest ...any) error
}) (*ConceptRecord, error) {
	var c ConceptRecord
	var kind string
	var catalogIDs, related, synonyms, broader, narrower, embedding, parents, children, relatedCats sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &kind, &c.DocumentCount, &c.ChunkCount, &catalogIDs, &related,
		&synonyms, &broader, &narrower, &embedding, &c.Weight, &parents, &children, &relatedCats); err != nil {
		return nil, err
	}
	c.Kind = ConceptKind(kind)
	for _, pair := range []struct {
		src sql.NullString
		dst any
	}{
		{catalogIDs, &c.CatalogIDs},
		{related, &c.RelatedConcepts},
		{synonyms, &c.Synonyms},
		{broader, &c.BroaderTerms},
		{narrower, &c.NarrowerTerms},
		{embedding, &c.Embedding},
		{parents, &c.ParentCategories},
		{children, &c.ChildCategories},
		{relatedCats, &c.RelatedCategories},
	} {
		if !pair.src.Valid || pair.src.String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(pair.src.String), pair.dst); err != nil {
			return nil, fmt.Errorf("decode concept field: %w", err)
		}
	}
	return &c, nil
}

// GetConceptByName looks up a concept row by its unique lowercase name.
func (s *SQLStore) GetConceptByName(ctx context.Context, name string) (*ConceptRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+conceptColumns+` FROM concepts WHERE name = ?`, strings.ToLower(name))
	c, err := scanConceptRow(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get concept by name: %w", err)
	}
	return c, true, nil
}

// GetConcept looks up a concept row by its primary id.
func (s *SQLStore) GetConcept(ctx context.Context, id uint64) (*ConceptRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+conceptColumns+` FROM concepts WHERE id = ?`, id)
	c, err := scanConceptRow(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get concept: %w", err)
	}
	return c, true, nil
}

// AllConcepts returns every concept row.
func (s *SQLStore) AllConcepts(ctx context.Context) ([]*ConceptRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+conceptColumns+` FROM concepts`)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	defer rows.Close()

	var out []*ConceptRecord
	for rows.Next() {
		c, err := scanConceptRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan concept row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ScanConcepts returns a page of concept rows with the given kind (or any
// kind if empty), ordered by name, for the category-browsing operations of
// §4.10. cursor is the last name seen on the prior page ("" for the first).
func (s *SQLStore) ScanConcepts(ctx context.Context, kind ConceptKind, cursor string, limit int) ([]*ConceptRecord, string, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + conceptColumns + ` FROM concepts WHERE name > ?`
	args := []any{cursor}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY name LIMIT ?`
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("scan concepts: %w", err)
	}
	defer rows.Close()

	var out []*ConceptRecord
	for rows.Next() {
		c, err := scanConceptRow(rows)
		if err != nil {
			return nil, "", fmt.Errorf("scan concept row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := ""
	if len(out) > limit {
		next = out[limit-1].Name
		out = out[:limit]
	}
	return out, next, nil
}

// ReplaceConcepts atomically replaces the entire concepts table, used by a
// full concept-index rebuild to garbage-collect concepts no document
// references anymore (§3's ownership rule).
func (s *SQLStore) ReplaceConcepts(ctx context.Context, records []*ConceptRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM concepts`); err != nil {
		return fmt.Errorf("clear concepts: %w", err)
	}

	for _, c := range records {
		if err := insertConceptTx(ctx, tx, c); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertConceptTx(ctx context.Context, tx *sql.Tx, c *ConceptRecord) error {
	catalogIDs, _ := jsonOf(c.CatalogIDs)
	related, _ := jsonOf(c.RelatedConcepts)
	synonyms, _ := jsonOf(c.Synonyms)
	broader, _ := jsonOf(c.BroaderTerms)
	narrower, _ := jsonOf(c.NarrowerTerms)
	embedding, _ := jsonOf(c.Embedding)
	parents, _ := jsonOf(c.ParentCategories)
	children, _ := jsonOf(c.ChildCategories)
	relatedCats, _ := jsonOf(c.RelatedCategories)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO concepts (id, name, kind, document_count, chunk_count, catalog_ids, related_concepts, synonyms, broader_terms, narrower_terms, embedding, weight, parent_categories, child_categories, related_categories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, string(c.Kind), c.DocumentCount, c.ChunkCount, catalogIDs, related, synonyms, broader, narrower, embedding, c.Weight, parents, children, relatedCats)
	if err != nil {
		return fmt.Errorf("insert concept %q: %w", c.Name, err)
	}
	return nil
}

// --- state ---

// GetState reads a key-value state entry (checkpoint stage, index dimension
// bookkeeping, etc.).
func (s *SQLStore) GetState(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %q: %w", key, err)
	}
	return value, true, nil
}

// SetState writes a key-value state entry.
func (s *SQLStore) SetState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`, key, value)
	return err
}
