//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package pgvector provides a PostgreSQL vector store backed by the
// pgvector extension.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/netvexa/rag-go/vectorstore"
)

var _ vectorstore.Store = (*Store)(nil)

const (
	// DefaultTable is the default chunk table name.
	DefaultTable = "rag_chunks"
	// DefaultDimensions is the vector column width used by EnsureSchema.
	DefaultDimensions = 1536
)

// chunkColumns is the scan column list shared by all read queries.
// Embedding stays server-side; reads never need it.
const chunkColumns = "id, document_id, agent_id, content, chunk_index, section_title, page_number, language, has_code, token_count, word_count, created_at"

// Store persists chunks in PostgreSQL with cosine distance search.
type Store struct {
	db         *sql.DB
	table      string
	dimensions int
}

// Option configures the store.
type Option func(*options)

type options struct {
	dsn        string
	db         *sql.DB
	table      string
	dimensions int
}

// WithDSN sets the PostgreSQL connection string.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithDB supplies an open database handle. Takes precedence over
// WithDSN; the caller keeps ownership and closes it.
func WithDB(db *sql.DB) Option {
	return func(o *options) {
		o.db = db
	}
}

// WithTable overrides the chunk table name.
func WithTable(table string) Option {
	return func(o *options) {
		o.table = table
	}
}

// WithDimensions sets the vector column width for EnsureSchema.
func WithDimensions(dimensions int) Option {
	return func(o *options) {
		o.dimensions = dimensions
	}
}

// New creates a PostgreSQL-backed store.
func New(opts ...Option) (*Store, error) {
	o := options{table: DefaultTable, dimensions: DefaultDimensions}
	for _, opt := range opts {
		opt(&o)
	}
	db := o.db
	if db == nil {
		if o.dsn == "" {
			return nil, fmt.Errorf("pgvector: either WithDB or WithDSN is required")
		}
		var err error
		db, err = sql.Open("postgres", o.dsn)
		if err != nil {
			return nil, fmt.Errorf("pgvector: open database: %w", err)
		}
	}
	return &Store{db: db, table: o.table, dimensions: o.dimensions}, nil
}

// Dimensions reports the vector column width the store was built for.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// EnsureSchema creates the extension, table, and indexes if absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d),
			chunk_index INTEGER NOT NULL DEFAULT 0,
			section_title TEXT NOT NULL DEFAULT '',
			page_number INTEGER NOT NULL DEFAULT 0,
			language TEXT NOT NULL DEFAULT '',
			has_code BOOLEAN NOT NULL DEFAULT FALSE,
			token_count INTEGER NOT NULL DEFAULT 0,
			word_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table, s.dimensions),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_agent ON %s (agent_id)", s.table, s.table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_document ON %s (agent_id, document_id)", s.table, s.table),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema: %w", vectorstore.ErrPersistenceFailure, err)
		}
	}
	return nil
}

// AddChunks implements the vectorstore.Store interface. The batch is
// upserted in one transaction so a failed document never lands half
// written.
func (s *Store) AddChunks(ctx context.Context, chunks []*vectorstore.StoredChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", vectorstore.ErrPersistenceFailure, err)
	}
	defer tx.Rollback()

	upsert := fmt.Sprintf(`INSERT INTO %s
		(id, document_id, agent_id, content, embedding, chunk_index, section_title, page_number, language, has_code, token_count, word_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			chunk_index = EXCLUDED.chunk_index,
			section_title = EXCLUDED.section_title,
			page_number = EXCLUDED.page_number,
			language = EXCLUDED.language,
			has_code = EXCLUDED.has_code,
			token_count = EXCLUDED.token_count,
			word_count = EXCLUDED.word_count`, s.table)

	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx, upsert,
			c.ID, c.DocumentID, c.AgentID, c.Text, embeddingArg(c.Embedding),
			c.Index, c.SectionTitle, c.PageNumber, c.Language, c.HasCode,
			c.TokenCount, c.WordCount,
		); err != nil {
			return fmt.Errorf("%w: upsert chunk %s: %w", vectorstore.ErrPersistenceFailure, c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", vectorstore.ErrPersistenceFailure, err)
	}
	return nil
}

// SimilaritySearch implements the vectorstore.Store interface using
// the cosine distance operator.
func (s *Store) SimilaritySearch(ctx context.Context, agentID string, vector []float64, limit int) ([]*vectorstore.ScoredChunk, error) {
	query := fmt.Sprintf(`SELECT %s, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE agent_id = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $3`, chunkColumns, s.table)

	rows, err := s.db.QueryContext(ctx, query, embeddingArg(vector), agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity search: %w", vectorstore.ErrPersistenceFailure, err)
	}
	defer rows.Close()

	var results []*vectorstore.ScoredChunk
	for rows.Next() {
		c, score, err := scanScoredChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %w", vectorstore.ErrPersistenceFailure, err)
		}
		results = append(results, &vectorstore.ScoredChunk{Chunk: c, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %w", vectorstore.ErrPersistenceFailure, err)
	}
	return results, nil
}

// KeywordCandidates implements the vectorstore.Store interface with a
// case-insensitive substring match on any query term.
func (s *Store) KeywordCandidates(ctx context.Context, agentID string, terms []string, limit int) ([]*vectorstore.StoredChunk, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	patterns := make([]string, len(terms))
	for i, term := range terms {
		patterns[i] = "%" + escapeLike(term) + "%"
	}

	query := fmt.Sprintf(`SELECT %s
		FROM %s
		WHERE agent_id = $1 AND content ILIKE ANY($2)
		ORDER BY created_at DESC
		LIMIT $3`, chunkColumns, s.table)

	rows, err := s.db.QueryContext(ctx, query, agentID, pq.Array(patterns), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: keyword candidates: %w", vectorstore.ErrPersistenceFailure, err)
	}
	defer rows.Close()
	return collectChunks(rows)
}

// MissingEmbeddings implements the vectorstore.Store interface.
func (s *Store) MissingEmbeddings(ctx context.Context, agentID string, limit int) ([]*vectorstore.StoredChunk, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM %s
		WHERE agent_id = $1 AND embedding IS NULL
		ORDER BY created_at
		LIMIT $2`, chunkColumns, s.table)

	rows, err := s.db.QueryContext(ctx, query, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: missing embeddings: %w", vectorstore.ErrPersistenceFailure, err)
	}
	defer rows.Close()
	return collectChunks(rows)
}

// UpdateEmbedding implements the vectorstore.Store interface.
func (s *Store) UpdateEmbedding(ctx context.Context, chunkID string, embedding []float64) error {
	query := fmt.Sprintf("UPDATE %s SET embedding = $1 WHERE id = $2", s.table)
	if _, err := s.db.ExecContext(ctx, query, embeddingArg(embedding), chunkID); err != nil {
		return fmt.Errorf("%w: update embedding %s: %w", vectorstore.ErrPersistenceFailure, chunkID, err)
	}
	return nil
}

// DeleteDocument implements the vectorstore.Store interface.
func (s *Store) DeleteDocument(ctx context.Context, agentID, documentID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE agent_id = $1 AND document_id = $2", s.table)
	if _, err := s.db.ExecContext(ctx, query, agentID, documentID); err != nil {
		return fmt.Errorf("%w: delete document %s: %w", vectorstore.ErrPersistenceFailure, documentID, err)
	}
	return nil
}

// Count implements the vectorstore.Store interface.
func (s *Store) Count(ctx context.Context, agentID string) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE agent_id = $1", s.table)
	var n int
	if err := s.db.QueryRowContext(ctx, query, agentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", vectorstore.ErrPersistenceFailure, err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// embeddingArg converts to the pgvector wire type, or NULL when the
// chunk has no embedding yet.
func embeddingArg(embedding []float64) any {
	if len(embedding) == 0 {
		return nil
	}
	vec := make([]float32, len(embedding))
	for i, v := range embedding {
		vec[i] = float32(v)
	}
	return pgvector.NewVector(vec)
}

// escapeLike escapes LIKE metacharacters in a user-supplied term.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

func scanScoredChunk(rows *sql.Rows) (*vectorstore.StoredChunk, float64, error) {
	var (
		c     vectorstore.StoredChunk
		score float64
	)
	if err := rows.Scan(
		&c.ID, &c.DocumentID, &c.AgentID, &c.Text, &c.Index, &c.SectionTitle,
		&c.PageNumber, &c.Language, &c.HasCode, &c.TokenCount, &c.WordCount,
		&c.CreatedAt, &score,
	); err != nil {
		return nil, 0, err
	}
	return &c, score, nil
}

func collectChunks(rows *sql.Rows) ([]*vectorstore.StoredChunk, error) {
	var out []*vectorstore.StoredChunk
	for rows.Next() {
		var c vectorstore.StoredChunk
		if err := rows.Scan(
			&c.ID, &c.DocumentID, &c.AgentID, &c.Text, &c.Index, &c.SectionTitle,
			&c.PageNumber, &c.Language, &c.HasCode, &c.TokenCount, &c.WordCount,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", vectorstore.ErrPersistenceFailure, err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %w", vectorstore.ErrPersistenceFailure, err)
	}
	return out, nil
}
