//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides a process-local vector store for tests
// and small single-node deployments.
package inmemory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/netvexa/rag-go/vectorstore"
)

var _ vectorstore.Store = (*Store)(nil)

// Store keeps chunks in a map guarded by a RWMutex. Vector search is
// a linear cosine scan, fine for the corpus sizes tests use.
type Store struct {
	mu     sync.RWMutex
	chunks map[string]*vectorstore.StoredChunk
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{chunks: make(map[string]*vectorstore.StoredChunk)}
}

// AddChunks implements the vectorstore.Store interface.
func (s *Store) AddChunks(_ context.Context, chunks []*vectorstore.StoredChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		cp := *c
		cp.Embedding = append([]float64(nil), c.Embedding...)
		s.chunks[c.ID] = &cp
	}
	return nil
}

// SimilaritySearch implements the vectorstore.Store interface.
func (s *Store) SimilaritySearch(_ context.Context, agentID string, vector []float64, limit int) ([]*vectorstore.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var scored []*vectorstore.ScoredChunk
	for _, c := range s.chunks {
		if c.AgentID != agentID || len(c.Embedding) == 0 {
			continue
		}
		score := cosineSimilarity(vector, c.Embedding)
		scored = append(scored, &vectorstore.ScoredChunk{Chunk: c, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// KeywordCandidates implements the vectorstore.Store interface.
// Candidates are ordered by how many distinct terms they contain.
func (s *Store) KeywordCandidates(_ context.Context, agentID string, terms []string, limit int) ([]*vectorstore.StoredChunk, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		chunk   *vectorstore.StoredChunk
		matches int
	}
	var hits []hit
	for _, c := range s.chunks {
		if c.AgentID != agentID {
			continue
		}
		text := strings.ToLower(c.Text)
		matches := 0
		for _, term := range terms {
			if strings.Contains(text, strings.ToLower(term)) {
				matches++
			}
		}
		if matches > 0 {
			hits = append(hits, hit{chunk: c, matches: matches})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].matches != hits[j].matches {
			return hits[i].matches > hits[j].matches
		}
		return hits[i].chunk.ID < hits[j].chunk.ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]*vectorstore.StoredChunk, len(hits))
	for i, h := range hits {
		out[i] = h.chunk
	}
	return out, nil
}

// MissingEmbeddings implements the vectorstore.Store interface.
func (s *Store) MissingEmbeddings(_ context.Context, agentID string, limit int) ([]*vectorstore.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*vectorstore.StoredChunk
	for _, c := range s.chunks {
		if c.AgentID == agentID && len(c.Embedding) == 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateEmbedding implements the vectorstore.Store interface.
func (s *Store) UpdateEmbedding(_ context.Context, chunkID string, embedding []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chunks[chunkID]
	if !ok {
		return nil
	}
	c.Embedding = append([]float64(nil), embedding...)
	return nil
}

// DeleteDocument implements the vectorstore.Store interface.
func (s *Store) DeleteDocument(_ context.Context, agentID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.chunks {
		if c.AgentID == agentID && c.DocumentID == documentID {
			delete(s.chunks, id)
		}
	}
	return nil
}

// Count implements the vectorstore.Store interface.
func (s *Store) Count(_ context.Context, agentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.chunks {
		if c.AgentID == agentID {
			n++
		}
	}
	return n, nil
}

// cosineSimilarity returns similarity in [-1, 1]; zero-length or
// mismatched vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
