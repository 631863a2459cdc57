//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package rag wires parsing, chunking, embedding, retrieval, and
// completion into one retrieval-augmented generation engine. All
// collaborators are injected; the package holds no globals.
package rag

import (
	"errors"
	"fmt"

	"github.com/panjf2000/ants/v2"

	"github.com/netvexa/rag-go/cache"
	"github.com/netvexa/rag-go/chunking"
	"github.com/netvexa/rag-go/completion"
	"github.com/netvexa/rag-go/embedding"
	"github.com/netvexa/rag-go/search"
	"github.com/netvexa/rag-go/search/rerank"
	"github.com/netvexa/rag-go/vectorstore"
)

// Defaults applied when options leave a knob unset.
const (
	// DefaultTopK is the number of results returned by Search and used
	// to ground Answer.
	DefaultTopK = 5
	// DefaultContextBudget is the grounding context limit in tokens.
	DefaultContextBudget = 3000
	// DefaultWorkers bounds concurrent embedding batches during
	// ingestion.
	DefaultWorkers = 4
)

// Engine is the retrieval-augmented generation pipeline.
type Engine struct {
	embedder  embedding.Embedder
	store     vectorstore.Store
	searcher  *search.Engine
	reranker  rerank.Reranker
	completer completion.Provider
	cache     cache.Cache // optional: conversation history and document records

	pool          *ants.Pool
	topK          int
	contextBudget int
	workers       int
	chunkOpts     []chunking.Option
}

// Option configures the engine.
type Option func(*Engine)

// WithEmbedder sets the embedding provider. Required.
func WithEmbedder(e embedding.Embedder) Option {
	return func(eng *Engine) {
		eng.embedder = e
	}
}

// WithStore sets the vector store. Required.
func WithStore(s vectorstore.Store) Option {
	return func(eng *Engine) {
		eng.store = s
	}
}

// WithCompletionProvider sets the text generation provider. Required.
// Pass a completion.Chain for provider fallback.
func WithCompletionProvider(p completion.Provider) Option {
	return func(eng *Engine) {
		eng.completer = p
	}
}

// WithReranker overrides the default feature reranker.
func WithReranker(r rerank.Reranker) Option {
	return func(eng *Engine) {
		eng.reranker = r
	}
}

// WithCache enables conversation history and document record storage.
// Without it both features are silently disabled.
func WithCache(c cache.Cache) Option {
	return func(eng *Engine) {
		eng.cache = c
	}
}

// WithSearchEngine overrides the hybrid search engine, e.g. to change
// the blend weights.
func WithSearchEngine(s *search.Engine) Option {
	return func(eng *Engine) {
		eng.searcher = s
	}
}

// WithTopK sets how many results ground an answer.
func WithTopK(k int) Option {
	return func(eng *Engine) {
		if k > 0 {
			eng.topK = k
		}
	}
}

// WithContextBudget sets the grounding context limit in tokens.
func WithContextBudget(tokens int) Option {
	return func(eng *Engine) {
		if tokens > 0 {
			eng.contextBudget = tokens
		}
	}
}

// WithWorkers bounds how many embedding batches run concurrently
// during ingestion.
func WithWorkers(n int) Option {
	return func(eng *Engine) {
		if n > 0 {
			eng.workers = n
		}
	}
}

// WithChunkingOptions forwards options to the chunking strategies used
// during ingestion.
func WithChunkingOptions(opts ...chunking.Option) Option {
	return func(eng *Engine) {
		eng.chunkOpts = append(eng.chunkOpts, opts...)
	}
}

// New creates an engine and validates its collaborators up front, so
// a misconfigured deployment fails at startup rather than on the
// first request.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		topK:          DefaultTopK,
		contextBudget: DefaultContextBudget,
		workers:       DefaultWorkers,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.embedder == nil {
		return nil, errors.New("rag: embedder is required")
	}
	if eng.store == nil {
		return nil, errors.New("rag: vector store is required")
	}
	if eng.completer == nil {
		return nil, errors.New("rag: completion provider is required")
	}
	dims := eng.embedder.GetDimensions()
	if dims <= 0 {
		return nil, fmt.Errorf("rag: embedder reports invalid dimensions %d", dims)
	}
	if d, ok := eng.store.(vectorstore.Dimensioned); ok {
		if want := d.Dimensions(); want > 0 && want != dims {
			return nil, fmt.Errorf("rag: embedder produces %d-dimension vectors but the store expects %d", dims, want)
		}
	}

	if eng.searcher == nil {
		eng.searcher = search.NewEngine(eng.store)
	}
	if eng.reranker == nil {
		eng.reranker = rerank.NewFeatureReranker()
	}

	pool, err := ants.NewPool(eng.workers)
	if err != nil {
		return nil, fmt.Errorf("rag: create worker pool: %w", err)
	}
	eng.pool = pool
	return eng, nil
}

// Close releases the ingestion worker pool.
func (e *Engine) Close() {
	e.pool.Release()
}
