//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvexa/rag-go/vectorstore"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	err := s.AddChunks(context.Background(), []*vectorstore.StoredChunk{
		{ID: "c1", DocumentID: "d1", AgentID: "a1", Text: "pricing plans and billing", Embedding: []float64{1, 0}},
		{ID: "c2", DocumentID: "d1", AgentID: "a1", Text: "refund policy details", Embedding: []float64{0, 1}},
		{ID: "c3", DocumentID: "d2", AgentID: "a1", Text: "pricing tiers comparison", Embedding: []float64{0.9, 0.1}},
		{ID: "c4", DocumentID: "d3", AgentID: "a2", Text: "pricing for another tenant", Embedding: []float64{1, 0}},
		{ID: "c5", DocumentID: "d2", AgentID: "a1", Text: "chunk without embedding yet"},
	})
	require.NoError(t, err)
}

func TestSimilaritySearchScopedAndOrdered(t *testing.T) {
	s := New()
	seed(t, s)

	results, err := s.SimilaritySearch(context.Background(), "a1", []float64{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3, "other tenants and unembedded chunks are excluded")

	assert.Equal(t, "c1", results[0].Chunk.ID)
	assert.Equal(t, "c3", results[1].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSimilaritySearchLimit(t *testing.T) {
	s := New()
	seed(t, s)

	results, err := s.SimilaritySearch(context.Background(), "a1", []float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Chunk.ID)
}

func TestKeywordCandidates(t *testing.T) {
	s := New()
	seed(t, s)

	hits, err := s.KeywordCandidates(context.Background(), "a1", []string{"pricing"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, "a1", h.AgentID)
		assert.Contains(t, h.Text, "pricing")
	}

	hits, err = s.KeywordCandidates(context.Background(), "a1", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMissingEmbeddingsAndBackfill(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	missing, err := s.MissingEmbeddings(ctx, "a1", 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "c5", missing[0].ID)

	require.NoError(t, s.UpdateEmbedding(ctx, "c5", []float64{0.5, 0.5}))
	missing, err = s.MissingEmbeddings(ctx, "a1", 10)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	require.NoError(t, s.DeleteDocument(ctx, "a1", "d1"))

	n, err := s.Count(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Other tenant untouched.
	n, err = s.Count(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCosineSimilarityEdgeCases(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 0}))
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
}
