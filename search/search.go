//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package search implements hybrid retrieval: vector similarity and
// BM25 keyword scoring over a shared candidate pool, blended into one
// ranking.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/netvexa/rag-go/log"
	"github.com/netvexa/rag-go/telemetry"
	"github.com/netvexa/rag-go/vectorstore"
)

// Default blend weights. Weights are renormalized to sum to one, so
// callers may pass any positive pair.
const (
	DefaultVectorWeight  = 0.7
	DefaultKeywordWeight = 0.3
	// DefaultLimit is the result count when the request leaves it unset.
	DefaultLimit = 10
)

// ErrSearchFailed is returned when both retrieval legs fail.
var ErrSearchFailed = errors.New("search: both vector and keyword retrieval failed")

// Result is one ranked chunk. VectorScore and KeywordScore are
// max-normalized within the result set; Score is their weighted blend.
type Result struct {
	Chunk        *vectorstore.StoredChunk
	VectorScore  float64
	KeywordScore float64
	Score        float64
	Highlights   []string
}

// Request describes one hybrid search.
type Request struct {
	AgentID string
	Query   string
	// QueryVector is the embedded query. Nil degrades the search to
	// keyword-only.
	QueryVector []float64
	// Limit is the number of results to return. Zero means DefaultLimit.
	Limit int
}

// Engine runs hybrid search over a vector store.
type Engine struct {
	store         vectorstore.Store
	vectorWeight  float64
	keywordWeight float64
}

// Option configures the engine.
type Option func(*Engine)

// WithWeights sets the blend weights for the vector and keyword legs.
// The pair is renormalized so the weights sum to one.
func WithWeights(vector, keyword float64) Option {
	return func(e *Engine) {
		e.vectorWeight = vector
		e.keywordWeight = keyword
	}
}

// NewEngine creates a hybrid search engine over the given store.
func NewEngine(store vectorstore.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		vectorWeight:  DefaultVectorWeight,
		keywordWeight: DefaultKeywordWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	if total := e.vectorWeight + e.keywordWeight; total > 0 && total != 1.0 {
		e.vectorWeight /= total
		e.keywordWeight /= total
	}
	return e
}

// Search implements hybrid retrieval. The two legs run independently:
// a failing leg degrades the search to the other, and only when both
// fail does the call error.
func (e *Engine) Search(ctx context.Context, req *Request) ([]*Result, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, span := telemetry.Tracer.Start(ctx, telemetry.OperationSearch)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.KeyAgentID, req.AgentID),
		attribute.Int(telemetry.KeyQueryLength, len(req.Query)),
	)

	var (
		vectorResults []*vectorstore.ScoredChunk
		vectorErr     error
	)
	if len(req.QueryVector) > 0 {
		vectorResults, vectorErr = e.store.SimilaritySearch(ctx, req.AgentID, req.QueryVector, limit*2)
		if vectorErr != nil {
			log.WarnContext(ctx, fmt.Sprintf("vector search failed, degrading to keyword-only: %v", vectorErr))
		}
	}

	queryTokens := Tokenize(req.Query)
	var (
		keywordCandidates []*vectorstore.StoredChunk
		keywordErr        error
	)
	if len(queryTokens) > 0 {
		keywordCandidates, keywordErr = e.store.KeywordCandidates(ctx, req.AgentID, queryTokens, limit*3)
		if keywordErr != nil {
			log.WarnContext(ctx, fmt.Sprintf("keyword search failed, degrading to vector-only: %v", keywordErr))
		}
	}

	if vectorErr != nil && keywordErr != nil {
		telemetry.TraceError(span, ErrSearchFailed)
		return nil, fmt.Errorf("%w: vector: %w; keyword: %w", ErrSearchFailed, vectorErr, keywordErr)
	}

	keywordScores := e.scoreKeywordCandidates(queryTokens, keywordCandidates)
	results := e.combine(req.Query, vectorResults, keywordCandidates, keywordScores)

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	span.SetAttributes(attribute.Int(telemetry.KeyResultCount, len(results)))
	return results, nil
}

// scoreKeywordCandidates runs BM25 over the candidate pool.
func (e *Engine) scoreKeywordCandidates(queryTokens []string, candidates []*vectorstore.StoredChunk) map[string]float64 {
	if len(candidates) == 0 {
		return nil
	}
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	scorer := newBM25Scorer(queryTokens, texts)

	scores := make(map[string]float64, len(candidates))
	for i, c := range candidates {
		scores[c.ID] = scorer.score(i)
	}
	return scores
}

// combine max-normalizes each leg's scores and blends them.
func (e *Engine) combine(
	query string,
	vectorResults []*vectorstore.ScoredChunk,
	keywordCandidates []*vectorstore.StoredChunk,
	keywordScores map[string]float64,
) []*Result {
	chunks := make(map[string]*vectorstore.StoredChunk)
	vectorScores := make(map[string]float64)
	for _, r := range vectorResults {
		chunks[r.Chunk.ID] = r.Chunk
		vectorScores[r.Chunk.ID] = r.Score
	}
	for _, c := range keywordCandidates {
		chunks[c.ID] = c
	}

	maxVector := maxScore(vectorScores)
	maxKeyword := maxScore(keywordScores)

	results := make([]*Result, 0, len(chunks))
	for id, chunk := range chunks {
		vectorScore := 0.0
		if maxVector > 0 {
			vectorScore = vectorScores[id] / maxVector
		}
		keywordScore := 0.0
		if maxKeyword > 0 {
			keywordScore = keywordScores[id] / maxKeyword
		}
		results = append(results, &Result{
			Chunk:        chunk,
			VectorScore:  vectorScore,
			KeywordScore: keywordScore,
			Score:        e.vectorWeight*vectorScore + e.keywordWeight*keywordScore,
			Highlights:   extractHighlights(chunk.Text, query),
		})
	}
	return results
}

func maxScore(scores map[string]float64) float64 {
	maxVal := 0.0
	for _, s := range scores {
		if s > maxVal {
			maxVal = s
		}
	}
	return maxVal
}
