//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package vectorstore defines persistence for embedded chunks. Every
// operation is scoped to an agent: one agent's documents are never
// visible to another's queries.
package vectorstore

import (
	"context"
	"errors"
	"time"
)

// ErrPersistenceFailure wraps backend storage errors so callers can
// distinguish them from bad input.
var ErrPersistenceFailure = errors.New("vectorstore: persistence failure")

// StoredChunk is one chunk as persisted. Embedding may be nil when
// the provider was unavailable at ingestion time; such chunks are
// invisible to vector search until backfilled.
type StoredChunk struct {
	ID           string
	DocumentID   string
	AgentID      string
	Text         string
	Embedding    []float64
	Index        int
	SectionTitle string
	PageNumber   int
	Language     string
	HasCode      bool
	TokenCount   int
	WordCount    int
	CreatedAt    time.Time
}

// ScoredChunk pairs a chunk with its similarity score in [0, 1].
type ScoredChunk struct {
	Chunk *StoredChunk
	Score float64
}

// Store persists chunks and serves the two retrieval legs of hybrid
// search.
type Store interface {
	// AddChunks upserts a batch of chunks.
	AddChunks(ctx context.Context, chunks []*StoredChunk) error

	// SimilaritySearch returns up to limit chunks for the agent ranked
	// by cosine similarity to the query vector, best first.
	SimilaritySearch(ctx context.Context, agentID string, vector []float64, limit int) ([]*ScoredChunk, error)

	// KeywordCandidates returns up to limit chunks for the agent that
	// contain at least one of the query terms. Scoring is the caller's
	// job; this only narrows the pool.
	KeywordCandidates(ctx context.Context, agentID string, terms []string, limit int) ([]*StoredChunk, error)

	// MissingEmbeddings returns up to limit chunks for the agent whose
	// embedding is absent.
	MissingEmbeddings(ctx context.Context, agentID string, limit int) ([]*StoredChunk, error)

	// UpdateEmbedding sets the embedding for one chunk.
	UpdateEmbedding(ctx context.Context, chunkID string, embedding []float64) error

	// DeleteDocument removes all chunks of the given document.
	DeleteDocument(ctx context.Context, agentID, documentID string) error

	// Count returns the number of stored chunks for the agent.
	Count(ctx context.Context, agentID string) (int, error)
}

// Dimensioned is implemented by stores with a fixed vector width, such
// as a pgvector table. Engines cross-check it against the embedder at
// construction so a mismatch fails at startup, not at the first query.
type Dimensioned interface {
	Dimensions() int
}
